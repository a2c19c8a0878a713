// Copyright 2015 Canonical Ltd.
// Licensed under the LGPLv3, see LICENCE file for details.

// Package bundleplan lowers a decoded deployment bundle into an
// ordered, dependency-linked sequence of primitive deployment
// operations ("changes") that an orchestrator can execute step by
// step. The bundle is assumed to have already been validated with
// bundle.Validate; FromData itself never talks to an orchestration
// backend, never executes anything, and produces the same sequence
// every time it is given the same bundle.
package bundleplan

import (
	"fmt"

	"github.com/juju/errors"

	"github.com/juju/bundleplan/bundle"
)

// Record holds a single change required to deploy a bundle. It is
// the wire shape described by the specification: a stable id, the
// method to invoke, its positional arguments, and the ids of changes
// that must be applied first.
type Record struct {
	// Id is this change's unique identifier, "{method}-{n}" with n a
	// zero-based counter unique within one FromData call. "deploy"
	// changes use the historical "addService" id prefix, a quirk the
	// original bundle lowering tool carries and this module keeps for
	// compatibility with existing orchestrators.
	Id string `json:"id"`

	// Method is the action to perform.
	Method string `json:"method"`

	// Args holds the positional arguments for Method; its shape
	// depends on Method (see the Change implementations in params.go).
	Args []interface{} `json:"args"`

	// Requires holds the ids of changes that must be applied before
	// this one. Every id here appears earlier in the sequence
	// FromData returned.
	Requires []string `json:"requires"`
}

// Change is implemented by every kind of record this package emits.
// Concrete types carry a typed Params struct; GUIArgs renders that
// struct into the positional shape the wire Record needs.
type Change interface {
	Id() string
	Method() string
	Requires() []string
	GUIArgs() []interface{}
}

// Record converts c to its wire representation.
func toRecord(c Change) *Record {
	return &Record{
		Id:       c.Id(),
		Method:   c.Method(),
		Args:     c.GUIArgs(),
		Requires: c.Requires(),
	}
}

type baseChange struct {
	id       string
	requires []string
}

func (b *baseChange) Id() string         { return b.id }
func (b *baseChange) Requires() []string { return b.requires }

// changeset accumulates the changes produced by one FromData call and
// hands out ids from a single counter shared across all methods, per
// the specification's id scheme.
type changeset struct {
	records []Change
}

// idPrefix maps a method name to the prefix used in its generated id.
// "deploy" keeps the historical "addService" prefix; every other
// method uses its own name.
func idPrefix(method string) string {
	if method == "deploy" {
		return "addService"
	}
	return method
}

func (cs *changeset) nextId(method string) string {
	return fmt.Sprintf("%s-%d", idPrefix(method), len(cs.records))
}

func (cs *changeset) add(c Change) Change {
	cs.records = append(cs.records, c)
	return c
}

// "$"+id is how a change is referenced from another change's args.
func ref(id string) string {
	return "$" + id
}

// FromData generates and returns the sequence of changes required to
// deploy the given bundle data. The bundle data is assumed to have
// already been validated with bundle.Validate; FromData surfaces
// malformed placement directives as errors rather than panicking, but
// does not repeat the rest of Validate's checks.
func FromData(data *bundle.BundleData) ([]*Record, error) {
	if data == nil || data.Applications == nil {
		return nil, errors.NotValidf("bundle data")
	}
	cs := &changeset{}
	addedCharms := make(map[string]string)
	addedApps := handleApplications(cs, data.Applications, addedCharms)
	addedMachines := handleMachines(cs, data.Machines)
	handleRelations(cs, data.Relations, addedApps)
	if err := handleUnits(cs, data, addedApps, addedMachines); err != nil {
		return nil, err
	}

	records := make([]*Record, len(cs.records))
	for i, c := range cs.records {
		records[i] = toRecord(c)
	}
	return records, nil
}
