// Copyright 2014 Canonical Ltd.
// Licensed under the LGPLv3, see LICENCE file for details.

package bundle

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/juju/names/v4"
)

// Placement is a parsed unit placement directive, as specified in
// the "to" clause of an application entry in a bundle.
//
// In regular-expression-like notation each directive matches:
//
//	(<containertype>:)?(<service>(/<unit>)?|<machine>|new)
type Placement struct {
	// ContainerType is "lxc", "kvm", or "" if the directive does not
	// request a new container.
	ContainerType string

	// Machine is a machine id, the literal "new", or "" if the
	// directive targets a service/unit instead.
	Machine string

	// Service is the target application name, or "" if the
	// directive targets a machine.
	Service string

	// Unit is the unit index within Service, or "" if unspecified
	// (meaning: co-locate by position among directives).
	Unit string
}

var snippetReplacer = strings.NewReplacer(
	"container", "(?:lxc|kvm)",
	"number", names.NumberSnippet,
	"service", names.ApplicationSnippet,
)

var validPlacement = regexp.MustCompile(
	snippetReplacer.Replace(`^(?:(container):)?(?:(service)(?:/(number))?|(number))$`),
)

var validDigits = regexp.MustCompile(`^[0-9]+$`)

// ParsePlacement parses a single v4 unit placement directive:
//
//	(<containertype>:)?(<service>(/<unit>)?|<machine>|new)
func ParsePlacement(p string) (*Placement, error) {
	m := validPlacement.FindStringSubmatch(p)
	if m == nil {
		return nil, errors.NotValidf("placement %q", p)
	}
	up := &Placement{
		ContainerType: m[1],
		Service:       m[2],
		Unit:          m[3],
		Machine:       m[4],
	}
	if up.Service == "new" {
		// "new" is a machine keyword, not a valid application name
		// collision; the grammar can't tell them apart on its own.
		if up.Unit != "" {
			return nil, errors.NotValidf("placement %q", p)
		}
		up.Machine, up.Service = "new", ""
	}
	return up, nil
}

// ParseLegacyPlacement parses a single legacy v3 unit placement
// directive:
//
//	(<containertype>:)?(<service>(=<unit>)?|<machine>)
//
// Unlike the v4 form, "new" has no special meaning here: v3 bundles
// never place units on a fresh machine, only on the bootstrap machine
// "0", so a bare non-digit token is always an application name, "new"
// included.
func ParseLegacyPlacement(p string) (*Placement, error) {
	rest := p
	var container string
	if strings.Count(rest, ":") > 1 {
		return nil, errors.NotValidf("placement %q", p)
	}
	if strings.Contains(rest, ":") {
		parts := strings.SplitN(rest, ":", 2)
		container, rest = parts[0], parts[1]
	}
	if strings.Count(rest, "=") > 1 {
		return nil, errors.NotValidf("placement %q", p)
	}
	var unit string
	if strings.Contains(rest, "=") {
		parts := strings.SplitN(rest, "=", 2)
		rest, unit = parts[0], parts[1]
	}
	if rest == "" {
		return nil, errors.NotValidf("placement %q", p)
	}
	up := &Placement{ContainerType: container, Unit: unit}
	if validDigits.MatchString(rest) {
		up.Machine = rest
	} else {
		up.Service = rest
	}
	return up, nil
}

// ParsePlacementFor parses p with the v4 grammar, or the legacy v3
// grammar if legacy is true.
func ParsePlacementFor(p string, legacy bool) (*Placement, error) {
	if legacy {
		return ParseLegacyPlacement(p)
	}
	return ParsePlacement(p)
}

// UnitIndex returns the parsed unit number and true, or (0, false) if
// the directive left the unit index unspecified.
func (p *Placement) UnitIndex() (int, bool) {
	if p.Unit == "" {
		return 0, false
	}
	n, err := strconv.Atoi(p.Unit)
	if err != nil {
		return 0, false
	}
	return n, true
}

// TargetsMachine reports whether the directive names an existing
// declared machine id (not "new", not a service).
func (p *Placement) TargetsMachine() bool {
	return p.Machine != "" && p.Machine != "new"
}

// TargetsNewMachine reports whether the directive is "new" (optionally
// "containertype:new").
func (p *Placement) TargetsNewMachine() bool {
	return p.Machine == "new"
}

// TargetsService reports whether the directive names another
// application (for co-location).
func (p *Placement) TargetsService() bool {
	return p.Service != ""
}
