// Copyright 2014 Canonical Ltd.
// Licensed under the LGPLv3, see LICENCE file for details.

package bundle_test

import (
	jujutesting "github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/bundleplan/bundle"
)

type placementSuite struct {
	jujutesting.IsolationSuite
}

var _ = gc.Suite(&placementSuite{})

var placementTests = []struct {
	about  string
	p      string
	expect bundle.Placement
}{{
	about:  "bare machine",
	p:      "0",
	expect: bundle.Placement{Machine: "0"},
}, {
	about:  "new machine",
	p:      "new",
	expect: bundle.Placement{Machine: "new"},
}, {
	about:  "container on new machine",
	p:      "lxc:new",
	expect: bundle.Placement{ContainerType: "lxc", Machine: "new"},
}, {
	about:  "container on existing machine",
	p:      "kvm:0",
	expect: bundle.Placement{ContainerType: "kvm", Machine: "0"},
}, {
	about:  "application co-location",
	p:      "django",
	expect: bundle.Placement{Service: "django"},
}, {
	about:  "unit co-location",
	p:      "django/3",
	expect: bundle.Placement{Service: "django", Unit: "3"},
}, {
	about:  "container onto a unit",
	p:      "lxc:django/3",
	expect: bundle.Placement{ContainerType: "lxc", Service: "django", Unit: "3"},
}}

func (s *placementSuite) TestParsePlacement(c *gc.C) {
	for i, test := range placementTests {
		c.Logf("test %d: %s", i, test.about)
		p, err := bundle.ParsePlacement(test.p)
		c.Assert(err, jc.ErrorIsNil)
		c.Assert(*p, jc.DeepEquals, test.expect)
	}
}

func (s *placementSuite) TestParsePlacementErrors(c *gc.C) {
	for _, p := range []string{"", "lxd:0", "django/", "/3", "lxc:new/3"} {
		_, err := bundle.ParsePlacement(p)
		c.Assert(err, gc.NotNil)
	}
}

func (s *placementSuite) TestUnitIndex(c *gc.C) {
	p, err := bundle.ParsePlacement("django/3")
	c.Assert(err, jc.ErrorIsNil)
	n, ok := p.UnitIndex()
	c.Assert(ok, jc.IsTrue)
	c.Assert(n, gc.Equals, 3)

	p, err = bundle.ParsePlacement("django")
	c.Assert(err, jc.ErrorIsNil)
	_, ok = p.UnitIndex()
	c.Assert(ok, jc.IsFalse)
}

var legacyPlacementTests = []struct {
	about  string
	p      string
	expect bundle.Placement
}{{
	about:  "bare machine",
	p:      "0",
	expect: bundle.Placement{Machine: "0"},
}, {
	about:  "application co-location",
	p:      "django",
	expect: bundle.Placement{Service: "django"},
}, {
	about:  "unit co-location",
	p:      "django=3",
	expect: bundle.Placement{Service: "django", Unit: "3"},
}, {
	about:  "container onto a unit",
	p:      "lxc:django=3",
	expect: bundle.Placement{ContainerType: "lxc", Service: "django", Unit: "3"},
}, {
	about:  "container on an existing machine",
	p:      "lxc:0",
	expect: bundle.Placement{ContainerType: "lxc", Machine: "0"},
}, {
	about:  "new is an application name, not a machine keyword, in v3",
	p:      "new",
	expect: bundle.Placement{Service: "new"},
}}

func (s *placementSuite) TestParseLegacyPlacement(c *gc.C) {
	for i, test := range legacyPlacementTests {
		c.Logf("test %d: %s", i, test.about)
		p, err := bundle.ParseLegacyPlacement(test.p)
		c.Assert(err, jc.ErrorIsNil)
		c.Assert(*p, jc.DeepEquals, test.expect)
	}
}

func (s *placementSuite) TestParseLegacyPlacementErrors(c *gc.C) {
	for _, p := range []string{"", "a:b:0", "django=1=2"} {
		_, err := bundle.ParseLegacyPlacement(p)
		c.Assert(err, gc.NotNil)
	}
}

func (s *placementSuite) TestParsePlacementFor(c *gc.C) {
	p, err := bundle.ParsePlacementFor("django=3", true)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(*p, jc.DeepEquals, bundle.Placement{Service: "django", Unit: "3"})

	p, err = bundle.ParsePlacementFor("django/3", false)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(*p, jc.DeepEquals, bundle.Placement{Service: "django", Unit: "3"})
}
