// Copyright 2014 Canonical Ltd.
// Licensed under the LGPLv3, see LICENCE file for details.

package bundle_test

import (
	jujutesting "github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"
	yaml "gopkg.in/yaml.v2"

	"github.com/juju/bundleplan/bundle"
)

type orderedMapSuite struct {
	jujutesting.IsolationSuite
}

var _ = gc.Suite(&orderedMapSuite{})

func (s *orderedMapSuite) TestSetGet(c *gc.C) {
	m := bundle.NewOrderedMap[int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 10)
	v, ok := m.Get("a")
	c.Assert(ok, jc.IsTrue)
	c.Assert(v, gc.Equals, 10)
	c.Assert(m.Keys(), jc.DeepEquals, []string{"a", "b"})
}

func (s *orderedMapSuite) TestPreservesInsertionOrder(c *gc.C) {
	var m bundle.OrderedMap[string]
	err := yaml.Unmarshal([]byte(`
zebra: z
apple: a
mango: m
`), &m)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(m.Keys(), jc.DeepEquals, []string{"zebra", "apple", "mango"})
}

func (s *orderedMapSuite) TestRangeStopsEarly(c *gc.C) {
	m := bundle.NewOrderedMap[int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	var seen []string
	m.Range(func(k string, v int) bool {
		seen = append(seen, k)
		return k != "b"
	})
	c.Assert(seen, jc.DeepEquals, []string{"a", "b"})
}
