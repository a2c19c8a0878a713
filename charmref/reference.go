// Copyright 2015 Canonical Ltd.
// Licensed under the LGPLv3, see LICENCE file for details.

// Package charmref implements the canonical syntactic form for charm
// and bundle URLs, such as:
//
//	cs:~joe/trusty/django-42
//	cs:trusty/django
//	local:django
//
// It is deliberately ignorant of what a charm actually contains: it
// only parses and renders the reference, and classifies it (local vs
// store, charm vs bundle, fully qualified or not).
package charmref

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// Schema is the collaborator identified by a Reference's leading
// component ("cs" or "local").
type Schema string

const (
	CharmStore Schema = "cs"
	Local      Schema = "local"

	// bundleSeries is the sentinel series value that marks a
	// Reference as identifying a bundle rather than a charm.
	bundleSeries = "bundle"
)

var (
	validUser     = regexp.MustCompile(`^[a-z0-9][a-zA-Z0-9+.-]+$`)
	validSeries   = regexp.MustCompile(`^[a-z]+(?:[a-z-]+[a-z])?$`)
	validName     = regexp.MustCompile(`^[a-z][a-z0-9]*(?:-[a-z0-9]*[a-z][a-z0-9]*)*$`)
	validRevision = regexp.MustCompile(`^(?:0|[1-9][0-9]*)$`)
)

// Reference is a parsed charm or bundle URL.
type Reference struct {
	Schema   Schema
	User     string
	Series   string
	Name     string
	Revision int // -1 if unset

	// Channel is only used when rendering a jujucharms.com-style id
	// or URL; it plays no part in parsing or equality.
	Channel string
}

// IsBundle reports whether ref identifies a bundle rather than a charm.
func (ref Reference) IsBundle() bool {
	return ref.Series == bundleSeries
}

// IsLocal reports whether ref uses the "local" schema.
func (ref Reference) IsLocal() bool {
	return ref.Schema == Local
}

// IsFullyQualified reports whether schema, series and revision are
// all present.
func (ref Reference) IsFullyQualified() bool {
	return ref.Schema != "" && ref.Series != "" && ref.Revision >= 0
}

// Similar reports whether a and b share the same schema, user and name.
// It ignores series and revision, so it identifies "the same charm,
// any version" rather than "the same exact reference".
func Similar(a, b Reference) bool {
	return a.Schema == b.Schema && a.User == b.User && a.Name == b.Name
}

// Parse parses url into a Reference.
//
// When fullyQualified is false, a missing schema defaults to "cs", a
// missing series becomes "", and a missing revision is left unset
// (-1). When fullyQualified is true, schema, series and revision are
// all required, and their absence is an error.
func Parse(url string, fullyQualified bool) (Reference, error) {
	var ref Reference
	ref.Revision = -1

	rest := url
	if i := strings.Index(url, ":"); i >= 0 {
		schema := Schema(url[:i])
		if schema != CharmStore && schema != Local {
			return Reference{}, errors.NotValidf("charm or bundle URL %q has invalid schema", url)
		}
		ref.Schema = schema
		rest = url[i+1:]
	} else if fullyQualified {
		return Reference{}, errors.NotValidf("charm or bundle URL %q has no schema", url)
	} else {
		ref.Schema = CharmStore
	}

	parts := strings.Split(rest, "/")
	switch len(parts) {
	case 3:
		// ~user/series/name-rev
		if !strings.HasPrefix(parts[0], "~") {
			return Reference{}, errors.NotValidf("charm or bundle URL %q has invalid form", url)
		}
		if ref.Schema == Local {
			return Reference{}, errors.NotValidf("local charm or bundle URL %q with user name", url)
		}
		if err := ref.setUser(url, parts[0]); err != nil {
			return Reference{}, err
		}
		ref.Series = parts[1]
		parts = parts[2:]
	case 2:
		if strings.HasPrefix(parts[0], "~") {
			// ~user/name-rev, no series.
			if ref.Schema == Local {
				return Reference{}, errors.NotValidf("local charm or bundle URL %q with user name", url)
			}
			if err := ref.setUser(url, parts[0]); err != nil {
				return Reference{}, err
			}
		} else {
			// series/name-rev.
			ref.Series = parts[0]
		}
		parts = parts[1:]
	case 1:
		// name-rev only; in fully qualified mode the missing series is
		// rejected below.
	default:
		return Reference{}, errors.NotValidf("charm or bundle URL %q has invalid form", url)
	}

	if ref.Series != "" && !validSeries.MatchString(ref.Series) {
		return Reference{}, errors.NotValidf("charm or bundle URL %q has invalid series", url)
	}
	if fullyQualified && ref.Series == "" {
		return Reference{}, errors.NotValidf("charm or bundle URL %q has no series", url)
	}

	if err := ref.setNameAndRevision(url, parts[0], fullyQualified); err != nil {
		return Reference{}, err
	}
	return ref, nil
}

func (ref *Reference) setUser(url, part string) error {
	user := part[1:]
	if !validUser.MatchString(user) {
		return errors.NotValidf("charm or bundle URL %q has invalid user name", url)
	}
	ref.User = user
	return nil
}

// setNameAndRevision splits the last path segment on its rightmost
// "-" to separate the charm name from an optional trailing revision.
func (ref *Reference) setNameAndRevision(url, segment string, fullyQualified bool) error {
	name := segment
	revision := -1
	if i := strings.LastIndex(segment, "-"); i > 0 {
		tail := segment[i+1:]
		if validRevision.MatchString(tail) {
			n, err := strconv.Atoi(tail)
			if err != nil {
				// Cannot happen: validRevision already matched.
				return errors.Annotatef(err, "charm or bundle URL %q has invalid revision", url)
			}
			name = segment[:i]
			revision = n
		} else if fullyQualified {
			return errors.NotValidf("charm or bundle URL %q has invalid revision", url)
		}
		// Non-strict mode and a non-numeric tail: treat the whole
		// segment as the name, as spec'd.
	}
	if !validName.MatchString(name) {
		return errors.NotValidf("charm or bundle URL %q has invalid name", url)
	}
	if fullyQualified && revision < 0 {
		return errors.NotValidf("charm or bundle URL %q has no revision", url)
	}
	ref.Name = name
	ref.Revision = revision
	return nil
}

// jujucharmsPrefix is stripped, if present, before parsing the
// jujucharms.com short path form.
const jujucharmsPrefix = "https://jujucharms.com/"

// ParseJujucharmsURL accepts the jujucharms.com short path form
// "[u/user/]name[/series][/revision]", optionally prefixed by
// "https://jujucharms.com/". Unlike Parse, the absence of a series
// yields the bundle sentinel series: a path such as "name" or
// "name/revision" identifies a bundle, since charms on jujucharms.com
// are always addressed with an explicit series.
func ParseJujucharmsURL(url string) (Reference, error) {
	trimmed := strings.TrimPrefix(url, jujucharmsPrefix)
	parts := strings.Split(strings.TrimSuffix(trimmed, "/"), "/")
	var user, series string
	if len(parts) > 2 && parts[0] == "u" {
		user, parts = "~"+parts[1]+"/", parts[2:]
	}
	name := parts[0]
	if n := len(parts); n > 1 && validRevision.MatchString(parts[n-1]) {
		name, parts = name+"-"+parts[n-1], parts[:n-1]
	}
	if len(parts) > 1 {
		series = strings.Join(parts[1:], "/") + "/"
	}
	ref, err := Parse(user+series+name, false)
	if err != nil {
		return Reference{}, err
	}
	if ref.Series == "" {
		ref.Series = bundleSeries
	}
	return ref, nil
}

// path renders ref without its schema, e.g. "~joe/trusty/django-42".
func (ref Reference) path() string {
	var parts []string
	if ref.User != "" {
		parts = append(parts, "~"+ref.User)
	}
	if ref.Series != "" {
		parts = append(parts, ref.Series)
	}
	if ref.Revision >= 0 {
		parts = append(parts, fmt.Sprintf("%s-%d", ref.Name, ref.Revision))
	} else {
		parts = append(parts, ref.Name)
	}
	return strings.Join(parts, "/")
}

// Path renders ref without its schema.
func Path(ref Reference) string {
	return ref.path()
}

// String renders ref as "{schema}:{path}".
func (ref Reference) String() string {
	return fmt.Sprintf("%s:%s", ref.Schema, ref.path())
}

// JujucharmsID renders ref the way the jujucharms.com store addresses
// it: "u/user/name/series/channel" for a charm store user reference,
// or "name/series/channel" for an unowned one. An empty channel
// omits the trailing channel segment.
func JujucharmsID(ref Reference, channel ...string) string {
	var ch string
	if len(channel) > 0 {
		ch = channel[0]
	} else {
		ch = ref.Channel
	}
	var parts []string
	if ref.User != "" {
		parts = append(parts, "u", ref.User)
	}
	parts = append(parts, ref.Name)
	if ref.Series != "" && ref.Series != bundleSeries {
		parts = append(parts, ref.Series)
	}
	if ch != "" {
		parts = append(parts, ch)
	}
	return strings.Join(parts, "/")
}

// JujucharmsURL renders ref as a full "https://jujucharms.com/..." URL.
func JujucharmsURL(ref Reference, channel ...string) string {
	return jujucharmsPrefix + JujucharmsID(ref, channel...)
}
