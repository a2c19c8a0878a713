// Copyright 2014 Canonical Ltd.
// Licensed under the LGPLv3, see LICENCE file for details.

package bundle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/juju/utils/set"

	"github.com/juju/bundleplan/charmref"
)

// validConstraintKeys is the closed set of constraint keys a bundle
// may specify. Unlike the teacher, which delegates constraint
// validation to an injected callback backed by Juju's live
// constraints package, nothing in this module's retrieved pack
// exercises a constraints-parsing library, so the key set named by
// the specification is checked directly here.
var validConstraintKeys = map[string]bool{
	"arch":          true,
	"cpu-cores":     true,
	"cores":         true,
	"mem":           true,
	"root-disk":     true,
	"container":     true,
	"cpu-power":     true,
	"tags":          true,
	"networks":      true,
	"instance-type": true,
}

var validMachineID = regexp.MustCompile(`^(?:0|[1-9][0-9]*)$`)

var validSeries = regexp.MustCompile(`^[a-z]+(?:[a-z-]+[a-z])?$`)

// collector accumulates diagnostics while walking a bundle. It never
// stops on the first problem: every sub-validator appends to errs and
// keeps going, so a single Validate call surfaces every independent
// problem it finds.
type collector struct {
	bd   *BundleData
	errs []string
}

func (c *collector) addf(format string, args ...interface{}) {
	c.errs = append(c.errs, fmt.Sprintf(format, args...))
}

// Validate walks bd and returns a possibly-empty, order-stable list
// of human-readable diagnostics. It never panics and never mutates
// bd; every problem found is reported, none of them stop the walk.
func Validate(bd *BundleData) []string {
	if bd == nil {
		return []string{"bundle does not appear to be a bundle"}
	}
	if bd.Applications == nil || bd.Applications.Len() == 0 {
		return []string{"bundle does not define any (services|applications)"}
	}
	if bd.MachinesSet && bd.Machines == nil {
		return []string{"machines spec does not appear to be well-formed"}
	}

	c := &collector{bd: bd}
	c.validateSeries()
	c.validateMachines()
	machinesUsed := set.NewStrings()
	c.validateApplications(machinesUsed)
	c.validateRelations()
	c.validateUnreferencedMachines(machinesUsed)
	return c.errs
}

func (c *collector) validateSeries() {
	if c.bd.Series == "" {
		return
	}
	if c.bd.Series == "bundle" {
		c.addf("bundle declares an invalid series %q", c.bd.Series)
		return
	}
	if !validSeries.MatchString(c.bd.Series) {
		c.addf("bundle declares an invalid series %q", c.bd.Series)
	}
}

func (c *collector) validateMachines() {
	if c.bd.Machines == nil {
		return
	}
	c.bd.Machines.Range(func(id string, m *MachineSpec) bool {
		if n, err := parseMachineID(id); err != nil || n < 0 {
			c.addf("invalid machine id %q found in machines", id)
		}
		if m == nil {
			return true
		}
		c.validateConstraints(m.Constraints, fmt.Sprintf("machine %q", id))
		if m.Series != "" && !validSeries.MatchString(m.Series) {
			c.addf("invalid series %q for machine %q", m.Series, id)
		}
		return true
	})
}

func (c *collector) validateConstraints(constraints, context string) {
	if constraints == "" {
		return
	}
	for _, tok := range strings.Fields(constraints) {
		kv := strings.SplitN(tok, "=", 2)
		if len(kv) != 2 || kv[1] == "" {
			c.addf("invalid constraints %q in %s: malformed constraint %q", constraints, context, tok)
			continue
		}
		if !validConstraintKeys[kv[0]] {
			c.addf("invalid constraints %q in %s: unknown constraint key %q", constraints, context, kv[0])
		}
	}
}

func (c *collector) validateApplications(machinesUsed set.Strings) {
	c.bd.Applications.Range(func(name string, svc *ApplicationSpec) bool {
		if svc == nil {
			c.addf("application %q has no definition", name)
			return true
		}
		var ref *charmref.Reference
		if svc.Charm == "" {
			c.addf("application %q has no charm specified", name)
		} else if parsed, err := charmref.Parse(svc.Charm, false); err != nil {
			c.addf("invalid charm URL in application %q: %v", name, err)
		} else if parsed.IsLocal() {
			c.addf("application %q has a local charm URL %q", name, svc.Charm)
		} else if parsed.IsBundle() {
			c.addf("application %q refers to a bundle, not a charm: %q", name, svc.Charm)
		} else {
			ref = &parsed
		}

		if svc.NumUnits < 0 {
			c.addf("application %q has a negative number of units %d; must be a positive digit", name, svc.NumUnits)
		}

		c.validateConstraints(svc.Constraints, fmt.Sprintf("application %q", name))

		if len(svc.To) > svc.NumUnits {
			c.addf("too many units specified in unit placement for application %q", name)
		}
		for _, p := range svc.To {
			c.validatePlacement(p, ref, machinesUsed)
		}
		return true
	})
}

func (c *collector) validatePlacement(p string, ref *charmref.Reference, machinesUsed set.Strings) {
	placement, err := ParsePlacementFor(p, c.bd.IsLegacy())
	if err != nil {
		c.addf("invalid placement %q: %v", p, err)
		return
	}
	if placement.ContainerType != "" && placement.ContainerType != "lxc" && placement.ContainerType != "kvm" {
		c.addf("invalid container type %q in placement %q", placement.ContainerType, p)
		return
	}
	switch {
	case placement.TargetsService():
		target, ok := c.bd.Applications.Get(placement.Service)
		if !ok {
			c.addf("placement %q refers to an application not defined in this bundle", p)
			return
		}
		if target == nil {
			// Already reported as an application with no definition.
			return
		}
		if n, hasIndex := placement.UnitIndex(); hasIndex && n >= target.NumUnits {
			c.addf("placement %q specifies a unit greater than the %d unit(s) started by the target application", p, target.NumUnits)
		}
	case placement.TargetsNewMachine():
		// Always valid; a fresh machine is created on demand.
	case c.bd.IsLegacy():
		if placement.Machine != "0" {
			c.addf("placement %q may not place a unit on machine %q in a legacy bundle", p, placement.Machine)
			return
		}
		machinesUsed.Add(placement.Machine)
	default:
		machine, ok := c.bd.Machines.Get(placement.Machine)
		if !ok {
			c.addf("placement %q refers to a machine not defined in this bundle", p)
			return
		}
		if ref != nil && machine != nil {
			effective := machine.Series
			if effective == "" {
				effective = c.bd.Series
			}
			if effective != "" && ref.Series != "" && effective != ref.Series {
				c.addf("placement %q targets machine %q with series %q, incompatible with charm series %q", p, placement.Machine, effective, ref.Series)
			}
		}
		machinesUsed.Add(placement.Machine)
	}
}

func (c *collector) validateRelations() {
	for _, rel := range c.bd.Relations {
		if len(rel) != 2 {
			c.addf("relation %q has %d endpoint(s), not 2", rel, len(rel))
			continue
		}
		for _, raw := range rel {
			ep := parseEndpointString(raw)
			if ep.Application == "" {
				c.addf("relation %q has malformed endpoint %q", rel, raw)
				continue
			}
			if _, ok := c.bd.Applications.Get(ep.Application); !ok {
				c.addf("relation %q refers to application %q not defined in this bundle", rel, ep.Application)
			}
		}
	}
}

func (c *collector) validateUnreferencedMachines(machinesUsed set.Strings) {
	if c.bd.Machines == nil {
		return
	}
	c.bd.Machines.Range(func(id string, _ *MachineSpec) bool {
		if !machinesUsed.Contains(id) {
			c.addf("machine %s not referred to by a placement directive", id)
		}
		return true
	})
}

func parseEndpointString(e string) Endpoint {
	parts := strings.SplitN(e, ":", 2)
	ep := Endpoint{Application: parts[0]}
	if len(parts) == 2 {
		ep.Interface = parts[1]
	}
	return ep
}

// parseMachineID converts a declared machine id to an integer for the
// validator's non-negative machine id check.
func parseMachineID(id string) (int, error) {
	return strconv.Atoi(id)
}
