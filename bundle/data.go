// Copyright 2014 Canonical Ltd.
// Licensed under the LGPLv3, see LICENCE file for details.

// Package bundle defines the decoded bundle data model — the
// already-decoded YAML tree the rest of this module operates on — and
// the compositional validator that walks it.
package bundle

// BundleData holds the contents of a decoded deployment bundle. It is
// built by a caller (typically by decoding YAML, which is explicitly
// outside this module's scope) and is never mutated by Validate or by
// the change-set generator.
type BundleData struct {
	// Series is the default charm series for the whole bundle.
	Series string

	// Applications holds one entry per application the bundle will
	// create, indexed by application name. A bundle may spell this
	// key "services" instead; both decode into this single field.
	Applications *OrderedMap[*ApplicationSpec]

	// Machines holds one entry for each machine referred to by a
	// unit placement directive. MachinesSet records whether the
	// "machines" key was present in the source bundle at all (even
	// if empty): its presence, not its emptiness, is what marks a
	// bundle as v4 rather than legacy v3.
	Machines    *OrderedMap[*MachineSpec]
	MachinesSet bool

	// Relations holds a slice of two-element endpoint pairs.
	Relations [][]string
}

// IsLegacy reports whether this is a legacy v3 bundle: one with no
// "machines" key at all.
func (bd *BundleData) IsLegacy() bool {
	return !bd.MachinesSet
}

// ApplicationSpec represents a single application that will be
// deployed as part of the bundle.
type ApplicationSpec struct {
	// Charm holds the charm URL or reference string for this
	// application.
	Charm string

	// NumUnits holds the number of units of the application that
	// will be deployed.
	NumUnits int

	// To holds up to NumUnits placement directives for the
	// application's units. If there are fewer elements than
	// NumUnits, the last element is replicated to fill the rest
	// (v4 bundles only — see the generator's handleUnits).
	To []string

	// Options holds the configuration values to apply to the new
	// application.
	Options *OrderedMap[interface{}]

	// Constraints holds the default constraints to apply when
	// creating new machines for units of the application.
	Constraints string

	// Storage holds storage constraints for the application's units.
	Storage *OrderedMap[string]

	// Annotations holds annotations to apply to the application.
	Annotations *OrderedMap[string]

	// Expose, if true, causes the application to be exposed.
	Expose bool
}

// MachineSpec represents a notional machine that will be mapped onto
// an actual machine at bundle deployment time.
type MachineSpec struct {
	Series      string
	Constraints string
	Annotations *OrderedMap[string]
}

// Endpoint is one side of a relation, either "name" alone or
// "name:interface".
type Endpoint struct {
	Application string
	Interface   string
}

// String renders the endpoint back to its bundle syntax.
func (ep Endpoint) String() string {
	if ep.Interface == "" {
		return ep.Application
	}
	return ep.Application + ":" + ep.Interface
}
