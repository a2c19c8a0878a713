// Copyright 2015 Canonical Ltd.
// Licensed under the LGPLv3, see LICENCE file for details.

package charmref_test

import (
	"testing"

	"github.com/juju/errors"
	jujutesting "github.com/juju/testing"
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"

	"github.com/juju/bundleplan/charmref"
)

func TestPackage(t *testing.T) {
	gc.TestingT(t)
}

type referenceSuite struct {
	jujutesting.IsolationSuite
}

var _ = gc.Suite(&referenceSuite{})

var parseTests = []struct {
	url            string
	fullyQualified bool
	expect         charmref.Reference
}{{
	url: "django",
	expect: charmref.Reference{
		Schema: charmref.CharmStore, Name: "django", Revision: -1,
	},
}, {
	url: "cs:django-42",
	expect: charmref.Reference{
		Schema: charmref.CharmStore, Name: "django", Revision: 42,
	},
}, {
	url: "cs:trusty/django-42",
	expect: charmref.Reference{
		Schema: charmref.CharmStore, Series: "trusty", Name: "django", Revision: 42,
	},
}, {
	url: "cs:~joe/trusty/django-42",
	expect: charmref.Reference{
		Schema: charmref.CharmStore, User: "joe", Series: "trusty", Name: "django", Revision: 42,
	},
}, {
	url: "cs:~joe/django",
	expect: charmref.Reference{
		Schema: charmref.CharmStore, User: "joe", Name: "django", Revision: -1,
	},
}, {
	url: "local:trusty/django",
	expect: charmref.Reference{
		Schema: charmref.Local, Series: "trusty", Name: "django", Revision: -1,
	},
}, {
	url:            "cs:trusty/django-42",
	fullyQualified: true,
	expect: charmref.Reference{
		Schema: charmref.CharmStore, Series: "trusty", Name: "django", Revision: 42,
	},
}}

func (s *referenceSuite) TestParse(c *gc.C) {
	for i, test := range parseTests {
		c.Logf("test %d: %s", i, test.url)
		ref, err := charmref.Parse(test.url, test.fullyQualified)
		c.Assert(err, jc.ErrorIsNil)
		c.Assert(ref, jc.DeepEquals, test.expect)
	}
}

var parseErrorTests = []struct {
	url            string
	fullyQualified bool
	expect         string
}{{
	url:    "bogus:django",
	expect: `charm or bundle URL "bogus:django" has invalid schema not valid`,
}, {
	url:    "local:~joe/django",
	expect: `local charm or bundle URL "local:~joe/django" with user name not valid`,
}, {
	url:    "cs:~bad user/django",
	expect: `charm or bundle URL "cs:~bad user/django" has invalid user name not valid`,
}, {
	url:    "cs:a/b/c/django",
	expect: `charm or bundle URL "cs:a/b/c/django" has invalid form not valid`,
}, {
	url:    "cs:Trusty/django",
	expect: `charm or bundle URL "cs:Trusty/django" has invalid series not valid`,
}, {
	url:    "cs:trusty/Django",
	expect: `charm or bundle URL "cs:trusty/Django" has invalid name not valid`,
}, {
	url:            "django",
	fullyQualified: true,
	expect:         `charm or bundle URL "django" has no schema not valid`,
}, {
	url:            "cs:django",
	fullyQualified: true,
	expect:         `charm or bundle URL "cs:django" has no series not valid`,
}, {
	url:            "cs:trusty/django",
	fullyQualified: true,
	expect:         `charm or bundle URL "cs:trusty/django" has no revision not valid`,
}}

func (s *referenceSuite) TestParseErrors(c *gc.C) {
	for i, test := range parseErrorTests {
		c.Logf("test %d: %s", i, test.url)
		_, err := charmref.Parse(test.url, test.fullyQualified)
		c.Assert(err, gc.ErrorMatches, test.expect)
		c.Assert(errors.IsNotValid(err), jc.IsTrue)
	}
}

func (s *referenceSuite) TestRoundTrip(c *gc.C) {
	for i, test := range parseTests {
		c.Logf("test %d: %s", i, test.url)
		ref, err := charmref.Parse(test.url, test.fullyQualified)
		c.Assert(err, jc.ErrorIsNil)
		roundTripped, err := charmref.Parse(ref.String(), ref.IsFullyQualified())
		c.Assert(err, jc.ErrorIsNil)
		c.Assert(roundTripped, jc.DeepEquals, ref)
	}
}

func (s *referenceSuite) TestString(c *gc.C) {
	ref := charmref.Reference{Schema: charmref.CharmStore, User: "joe", Series: "trusty", Name: "django", Revision: 42}
	c.Assert(ref.String(), gc.Equals, "cs:~joe/trusty/django-42")
	ref.Revision = -1
	c.Assert(ref.String(), gc.Equals, "cs:~joe/trusty/django")
	ref.User = ""
	c.Assert(ref.String(), gc.Equals, "cs:trusty/django")
}

func (s *referenceSuite) TestIsBundle(c *gc.C) {
	ref, err := charmref.Parse("cs:bundle/canonical-kubernetes-42", false)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(ref.IsBundle(), jc.IsTrue)

	ref, err = charmref.Parse("cs:trusty/django", false)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(ref.IsBundle(), jc.IsFalse)
}

func (s *referenceSuite) TestIsLocal(c *gc.C) {
	ref, err := charmref.Parse("local:django", false)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(ref.IsLocal(), jc.IsTrue)
}

func (s *referenceSuite) TestSimilar(c *gc.C) {
	a, err := charmref.Parse("cs:~joe/trusty/django-1", false)
	c.Assert(err, jc.ErrorIsNil)
	b, err := charmref.Parse("cs:~joe/xenial/django-42", false)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(charmref.Similar(a, b), jc.IsTrue)

	other, err := charmref.Parse("cs:~joe/trusty/wordpress-1", false)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(charmref.Similar(a, other), jc.IsFalse)
}

func (s *referenceSuite) TestParseJujucharmsURL(c *gc.C) {
	ref, err := charmref.ParseJujucharmsURL("https://jujucharms.com/django/trusty/42")
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(ref.Series, gc.Equals, "trusty")
	c.Assert(ref.Name, gc.Equals, "django")

	ref, err = charmref.ParseJujucharmsURL("canonical-kubernetes")
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(ref.Series, gc.Equals, "bundle")
	c.Assert(ref.IsBundle(), jc.IsTrue)
}

func (s *referenceSuite) TestJujucharmsID(c *gc.C) {
	ref, err := charmref.Parse("cs:~joe/trusty/django-42", false)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(charmref.JujucharmsID(ref), gc.Equals, "u/joe/django/trusty")
	c.Assert(charmref.JujucharmsID(ref, "stable"), gc.Equals, "u/joe/django/trusty/stable")
}
