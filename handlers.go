// Copyright 2015 Canonical Ltd.
// Licensed under the LGPLv3, see LICENCE file for details.

package bundleplan

import (
	"fmt"
	"strings"

	"github.com/juju/errors"

	"github.com/juju/bundleplan/bundle"
	"github.com/juju/bundleplan/charmref"
)

// handleApplications walks the bundle's applications in declaration
// order, emitting one addCharm change per distinct charm (the first
// application to reference a charm URL adds it; later applications
// sharing that URL reuse the change already generated) followed by a
// deploy change, an optional setAnnotations change and an optional
// expose change for each application. It returns the deploy change id
// for each application, keyed by application name.
func handleApplications(cs *changeset, apps *bundle.OrderedMap[*bundle.ApplicationSpec], addedCharms map[string]string) map[string]string {
	addedApps := make(map[string]string, apps.Len())
	apps.Range(func(name string, svc *bundle.ApplicationSpec) bool {
		if svc == nil {
			return true
		}
		charmId, ok := addedCharms[svc.Charm]
		if !ok {
			charmId = newAddCharmChange(cs, AddCharmParams{Charm: svc.Charm}).Id()
			addedCharms[svc.Charm] = charmId
		}

		options := map[string]interface{}{}
		if svc.Options != nil {
			svc.Options.Range(func(k string, v interface{}) bool {
				options[k] = v
				return true
			})
		}
		deploy := newAddApplicationChange(cs, AddApplicationParams{
			Charm:       svc.Charm,
			Application: name,
			Options:     options,
		}, charmId)
		addedApps[name] = deploy.Id()

		if svc.Annotations != nil && svc.Annotations.Len() > 0 {
			newSetAnnotationsChange(cs, SetAnnotationsParams{
				Id:          deploy.Id(),
				EntityType:  "application",
				Annotations: toStringMap(svc.Annotations),
			}, deploy.Id())
		}
		if svc.Expose {
			newExposeChange(cs, ExposeParams{Application: deploy.Id()}, deploy.Id())
		}
		return true
	})
	return addedApps
}

// handleMachines walks the bundle's declared machines in order,
// emitting one addMachines change (and an optional setAnnotations
// change) for each. It returns the addMachines change id for each
// machine, keyed by the bundle's machine id.
func handleMachines(cs *changeset, machines *bundle.OrderedMap[*bundle.MachineSpec]) map[string]string {
	addedMachines := make(map[string]string)
	if machines == nil {
		return addedMachines
	}
	machines.Range(func(id string, m *bundle.MachineSpec) bool {
		params := AddMachineParams{}
		if m != nil {
			params.Series = m.Series
			params.Constraints = parseConstraintsMap(m.Constraints)
		}
		add := newAddMachineChange(cs, params)
		addedMachines[id] = add.Id()
		if m != nil && m.Annotations != nil && m.Annotations.Len() > 0 {
			newSetAnnotationsChange(cs, SetAnnotationsParams{
				Id:          add.Id(),
				EntityType:  "machine",
				Annotations: toStringMap(m.Annotations),
			}, add.Id())
		}
		return true
	})
	return addedMachines
}

// handleRelations emits one addRelation change per relation pair, in
// bundle declaration order, requiring the deploy changes for both
// sides.
func handleRelations(cs *changeset, relations [][]string, addedApps map[string]string) {
	for _, rel := range relations {
		if len(rel) != 2 {
			continue
		}
		ep1, ep2 := splitEndpoint(rel[0]), splitEndpoint(rel[1])
		app1, ok1 := addedApps[ep1.application]
		app2, ok2 := addedApps[ep2.application]
		if !ok1 || !ok2 {
			continue
		}
		newAddRelationChange(cs, AddRelationParams{
			Endpoint1: endpointArg(app1, ep1.iface),
			Endpoint2: endpointArg(app2, ep2.iface),
		}, app1, app2)
	}
}

// unitPlacer resolves unit placement directives into addUnit changes,
// creating machines and containers on demand and memoizing every unit
// it has already placed so that a "co-locate with this other unit"
// directive can be resolved regardless of which application is
// processed first.
type unitPlacer struct {
	cs            *changeset
	data          *bundle.BundleData
	addedApps     map[string]string
	addedMachines map[string]string
	units         map[string]map[int]string
	containers    map[string]string
}

// handleUnits places every unit of every application, in application
// declaration order.
func handleUnits(cs *changeset, data *bundle.BundleData, addedApps, addedMachines map[string]string) error {
	p := &unitPlacer{
		cs:            cs,
		data:          data,
		addedApps:     addedApps,
		addedMachines: addedMachines,
		units:         make(map[string]map[int]string),
		containers:    make(map[string]string),
	}
	var placeErr error
	data.Applications.Range(func(name string, svc *bundle.ApplicationSpec) bool {
		if svc == nil {
			return true
		}
		for i := 0; i < svc.NumUnits; i++ {
			if _, err := p.unit(name, i); err != nil {
				placeErr = errors.Annotatef(err, "application %q unit %d", name, i)
				return false
			}
		}
		return true
	})
	return placeErr
}

// unit returns the addUnit change id for application/index, creating
// it (and any machine or container it needs) the first time it is
// asked for.
func (p *unitPlacer) unit(application string, index int) (string, error) {
	if ids, ok := p.units[application]; ok {
		if id, ok := ids[index]; ok {
			return id, nil
		}
	}

	svc, ok := p.data.Applications.Get(application)
	if !ok {
		return "", errors.NotFoundf("application %q", application)
	}
	placementStr := placementFor(svc.To, index, p.data.IsLegacy())

	var to string
	requires := []string{}
	if placementStr != "" {
		placement, err := bundle.ParsePlacementFor(placementStr, p.data.IsLegacy())
		if err != nil {
			return "", errors.Trace(err)
		}
		switch {
		case placement.TargetsService():
			target, ok := p.data.Applications.Get(placement.Service)
			if !ok {
				return "", errors.NotFoundf("application %q", placement.Service)
			}
			idx := index
			if n, hasIdx := placement.UnitIndex(); hasIdx {
				if n >= target.NumUnits {
					return "", errors.NotValidf("placement %q: unit %d of application %q (started %d unit(s))", placementStr, n, placement.Service, target.NumUnits)
				}
				idx = n
			}
			targetId, err := p.unit(placement.Service, idx)
			if err != nil {
				return "", errors.Trace(err)
			}
			to = ref(targetId)
			requires = append(requires, targetId)
		case placement.TargetsNewMachine():
			machineId, err := p.newMachine(application, placement.ContainerType)
			if err != nil {
				return "", err
			}
			to = ref(machineId)
			requires = append(requires, machineId)
		case p.data.IsLegacy():
			if placement.Machine != "0" {
				return "", errors.NotValidf("placement %q in a legacy bundle", placementStr)
			}
			to = "0"
		default:
			machineId, err := p.existingMachine(placement.Machine, placement.ContainerType)
			if err != nil {
				return "", err
			}
			to = ref(machineId)
			requires = append(requires, machineId)
		}
	}

	appId, ok := p.addedApps[application]
	if !ok {
		return "", errors.NotFoundf("deploy change for application %q", application)
	}
	requires = append([]string{appId}, requires...)
	add := newAddUnitChange(p.cs, AddUnitParams{Application: appId, To: to}, requires...)

	if p.units[application] == nil {
		p.units[application] = make(map[int]string)
	}
	p.units[application][index] = add.Id()
	return add.Id(), nil
}

// newMachine creates a brand new machine (or container, if
// containerType is set) to host a unit, resolving its series from the
// target application's charm, falling back to the bundle default.
func (p *unitPlacer) newMachine(application, containerType string) (string, error) {
	series := p.seriesFor(application)
	add := newAddMachineChange(p.cs, AddMachineParams{
		Series:        series,
		ContainerType: containerType,
	})
	return add.Id(), nil
}

// existingMachine returns the addMachines change id that stands in
// for the bundle's declared machine id, creating (and memoizing) a
// nested container change first if containerType is set. Two
// placement directives naming the same machine and container type
// share a single container, matching how the same "lxc:N" directive
// is understood everywhere else in the bundle.
func (p *unitPlacer) existingMachine(machineId, containerType string) (string, error) {
	baseId, ok := p.addedMachines[machineId]
	if !ok {
		return "", errors.NotFoundf("machine %q", machineId)
	}
	if containerType == "" {
		return baseId, nil
	}
	key := machineId + ":" + containerType
	if id, ok := p.containers[key]; ok {
		return id, nil
	}
	add := newAddMachineChange(p.cs, AddMachineParams{
		ContainerType: containerType,
		ParentId:      baseId,
	}, baseId)
	p.containers[key] = add.Id()
	return add.Id(), nil
}

// seriesFor resolves the series a new machine created for application
// should run, preferring the application's own charm series and
// falling back to the bundle's default series.
func (p *unitPlacer) seriesFor(application string) string {
	if svc, ok := p.data.Applications.Get(application); ok && svc.Charm != "" {
		if ref, err := charmref.Parse(svc.Charm, false); err == nil && ref.Series != "" {
			return ref.Series
		}
	}
	return p.data.Series
}

// placementFor returns the raw placement directive for unit index of
// an application whose "to" clause is to, or "" if the unit is left
// unplaced. v4 bundles extend the last directive in to to cover every
// unit beyond len(to); legacy v3 bundles do not (each unit needs its
// own entry, or is left unplaced).
func placementFor(to []string, index int, legacy bool) string {
	if index < len(to) {
		return to[index]
	}
	if len(to) > 0 && !legacy {
		return to[len(to)-1]
	}
	return ""
}

type endpoint struct {
	application string
	iface       string
}

func splitEndpoint(e string) endpoint {
	parts := strings.SplitN(e, ":", 2)
	ep := endpoint{application: parts[0]}
	if len(parts) == 2 {
		ep.iface = parts[1]
	}
	return ep
}

func endpointArg(changeId, iface string) string {
	if iface == "" {
		return ref(changeId)
	}
	return fmt.Sprintf("%s:%s", ref(changeId), iface)
}

func toStringMap(m *bundle.OrderedMap[string]) map[string]string {
	out := make(map[string]string, m.Len())
	m.Range(func(k, v string) bool {
		out[k] = v
		return true
	})
	return out
}

// parseConstraintsMap turns a "key=value key2=value2" constraints
// string into a mapping, the shape addMachines changes carry their
// constraints in. Malformed tokens are dropped; Validate is expected
// to have already rejected them.
func parseConstraintsMap(constraints string) map[string]string {
	if constraints == "" {
		return nil
	}
	out := map[string]string{}
	for _, tok := range strings.Fields(constraints) {
		kv := strings.SplitN(tok, "=", 2)
		if len(kv) != 2 {
			continue
		}
		out[kv[0]] = kv[1]
	}
	return out
}
