// Copyright 2015 Canonical Ltd.
// Licensed under the LGPLv3, see LICENCE file for details.

package bundleplan

// AddCharmParams holds the parameters for an "addCharm" change.
type AddCharmParams struct {
	// Charm holds the charm URL to add.
	Charm string
}

type addCharmChange struct {
	baseChange
	Params AddCharmParams
}

func (c *addCharmChange) Method() string { return "addCharm" }

func (c *addCharmChange) GUIArgs() []interface{} {
	return []interface{}{c.Params.Charm}
}

func newAddCharmChange(cs *changeset, p AddCharmParams) *addCharmChange {
	c := &addCharmChange{
		baseChange: baseChange{id: cs.nextId("addCharm")},
		Params:     p,
	}
	cs.add(c)
	return c
}

// AddApplicationParams holds the parameters for a "deploy" change. The
// charm URL is carried as a literal string rather than a reference to
// the addCharm change that introduced it, matching the wire format
// orchestrators consuming this module's output already expect.
type AddApplicationParams struct {
	Charm       string
	Application string
	Options     map[string]interface{}
}

type addApplicationChange struct {
	baseChange
	Params AddApplicationParams
}

func (c *addApplicationChange) Method() string { return "deploy" }

func (c *addApplicationChange) GUIArgs() []interface{} {
	options := c.Params.Options
	if options == nil {
		options = map[string]interface{}{}
	}
	return []interface{}{c.Params.Charm, c.Params.Application, options}
}

func newAddApplicationChange(cs *changeset, p AddApplicationParams, requires ...string) *addApplicationChange {
	c := &addApplicationChange{
		baseChange: baseChange{id: cs.nextId("deploy"), requires: requires},
		Params:     p,
	}
	cs.add(c)
	return c
}

// AddMachineParams holds the parameters for an "addMachines" change.
type AddMachineParams struct {
	Series        string
	Constraints   map[string]string
	ContainerType string
	ParentId      string
}

type addMachineChange struct {
	baseChange
	Params AddMachineParams
}

func (c *addMachineChange) Method() string { return "addMachines" }

func (c *addMachineChange) GUIArgs() []interface{} {
	arg := map[string]interface{}{}
	if c.Params.Series != "" {
		arg["series"] = c.Params.Series
	}
	if len(c.Params.Constraints) > 0 {
		arg["constraints"] = c.Params.Constraints
	}
	if c.Params.ContainerType != "" {
		arg["containerType"] = c.Params.ContainerType
	}
	if c.Params.ParentId != "" {
		arg["parentId"] = ref(c.Params.ParentId)
	}
	return []interface{}{arg}
}

func newAddMachineChange(cs *changeset, p AddMachineParams, requires ...string) *addMachineChange {
	c := &addMachineChange{
		baseChange: baseChange{id: cs.nextId("addMachines"), requires: requires},
		Params:     p,
	}
	cs.add(c)
	return c
}

// AddUnitParams holds the parameters for an "addUnit" change.
type AddUnitParams struct {
	Application string

	// To is the fully rendered placement target: "$<id>" to target
	// another change's result, the literal "0" for the legacy v3
	// bootstrap machine, or "" if the unit is left for the
	// orchestrator to place.
	To string
}

type addUnitChange struct {
	baseChange
	Params AddUnitParams
}

func (c *addUnitChange) Method() string { return "addUnit" }

func (c *addUnitChange) GUIArgs() []interface{} {
	var to interface{}
	if c.Params.To != "" {
		to = c.Params.To
	}
	return []interface{}{ref(c.Params.Application), 1, to}
}

func newAddUnitChange(cs *changeset, p AddUnitParams, requires ...string) *addUnitChange {
	c := &addUnitChange{
		baseChange: baseChange{id: cs.nextId("addUnit"), requires: requires},
		Params:     p,
	}
	cs.add(c)
	return c
}

// AddRelationParams holds the parameters for an "addRelation" change.
type AddRelationParams struct {
	Endpoint1 string
	Endpoint2 string
}

type addRelationChange struct {
	baseChange
	Params AddRelationParams
}

func (c *addRelationChange) Method() string { return "addRelation" }

func (c *addRelationChange) GUIArgs() []interface{} {
	return []interface{}{c.Params.Endpoint1, c.Params.Endpoint2}
}

func newAddRelationChange(cs *changeset, p AddRelationParams, requires ...string) *addRelationChange {
	c := &addRelationChange{
		baseChange: baseChange{id: cs.nextId("addRelation"), requires: requires},
		Params:     p,
	}
	cs.add(c)
	return c
}

// SetAnnotationsParams holds the parameters for a "setAnnotations"
// change.
type SetAnnotationsParams struct {
	Id          string
	EntityType  string
	Annotations map[string]string
}

type setAnnotationsChange struct {
	baseChange
	Params SetAnnotationsParams
}

func (c *setAnnotationsChange) Method() string { return "setAnnotations" }

func (c *setAnnotationsChange) GUIArgs() []interface{} {
	return []interface{}{ref(c.Params.Id), c.Params.EntityType, c.Params.Annotations}
}

func newSetAnnotationsChange(cs *changeset, p SetAnnotationsParams, requires ...string) *setAnnotationsChange {
	c := &setAnnotationsChange{
		baseChange: baseChange{id: cs.nextId("setAnnotations"), requires: requires},
		Params:     p,
	}
	cs.add(c)
	return c
}

// ExposeParams holds the parameters for an "expose" change.
type ExposeParams struct {
	Application string
}

type exposeChange struct {
	baseChange
	Params ExposeParams
}

func (c *exposeChange) Method() string { return "expose" }

func (c *exposeChange) GUIArgs() []interface{} {
	return []interface{}{ref(c.Params.Application)}
}

func newExposeChange(cs *changeset, p ExposeParams, requires ...string) *exposeChange {
	c := &exposeChange{
		baseChange: baseChange{id: cs.nextId("expose"), requires: requires},
		Params:     p,
	}
	cs.add(c)
	return c
}
