// Copyright 2014 Canonical Ltd.
// Licensed under the LGPLv3, see LICENCE file for details.

package bundle

import (
	"io"
	"io/ioutil"

	"github.com/juju/errors"
	yaml "gopkg.in/yaml.v2"
)

// ReadBundleData reads and decodes bundle data from r. The returned
// data is not verified; call Validate to check it.
//
// This is a convenience decode adapter, not part of the core's
// contract: Validate and the change-set generator never call it
// themselves, and accept a *BundleData built however the caller
// likes.
func ReadBundleData(r io.Reader) (*BundleData, error) {
	content, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var bd BundleData
	if err := yaml.Unmarshal(content, &bd); err != nil {
		return nil, errors.Annotate(err, "cannot unmarshal bundle data")
	}
	return &bd, nil
}

// UnmarshalYAML decodes a top-level bundle mapping, recognizing both
// the "services" and "applications" spellings as the same field, and
// recording whether "machines" was present so legacy v3 bundles can
// be told apart from v4 ones with an empty machines section.
func (bd *BundleData) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw yaml.MapSlice
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*bd = BundleData{}
	for _, item := range raw {
		key, _ := item.Key.(string)
		switch key {
		case "series":
			s, _ := item.Value.(string)
			bd.Series = s
		case "services", "applications":
			apps, err := decodeOrderedMap[*ApplicationSpec](item.Value)
			if err != nil {
				return errors.Annotatef(err, "cannot unmarshal %s", key)
			}
			bd.Applications = apps
		case "machines":
			bd.MachinesSet = true
			machines, err := decodeOrderedMap[*MachineSpec](item.Value)
			if err != nil {
				return errors.Annotate(err, "cannot unmarshal machines")
			}
			bd.Machines = machines
		case "relations":
			var rels [][]string
			if err := reencode(item.Value, &rels); err != nil {
				return errors.Annotate(err, "cannot unmarshal relations")
			}
			bd.Relations = rels
		}
	}
	return nil
}

// reencode round-trips a yaml-decoded interface{} value (typically a
// yaml.MapSlice or []interface{}) through YAML again so it can be
// unmarshaled into a concrete Go type. This keeps the package's
// UnmarshalYAML methods composable without hand-rolling a second
// tree-walker for every nested shape.
func reencode(value interface{}, out interface{}) error {
	content, err := yaml.Marshal(value)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(content, out)
}

func decodeOrderedMap[V any](value interface{}) (*OrderedMap[V], error) {
	m := NewOrderedMap[V]()
	if err := reencode(value, m); err != nil {
		return nil, err
	}
	return m, nil
}

// UnmarshalYAML decodes an application spec, normalizing the "to"
// clause (which may be a bare scalar or a list) into a slice.
func (svc *ApplicationSpec) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw yaml.MapSlice
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*svc = ApplicationSpec{NumUnits: 0}
	for _, item := range raw {
		key, _ := item.Key.(string)
		switch key {
		case "charm":
			s, _ := item.Value.(string)
			svc.Charm = s
		case "num_units":
			n, err := toInt(item.Value)
			if err != nil {
				return errors.Annotate(err, "num_units")
			}
			svc.NumUnits = n
		case "to":
			to, err := toStringSlice(item.Value)
			if err != nil {
				return errors.Annotate(err, "to")
			}
			svc.To = to
		case "options":
			opts, err := decodeOrderedMap[interface{}](item.Value)
			if err != nil {
				return err
			}
			svc.Options = opts
		case "constraints":
			s, _ := item.Value.(string)
			svc.Constraints = s
		case "storage":
			st, err := decodeOrderedMap[string](item.Value)
			if err != nil {
				return err
			}
			svc.Storage = st
		case "annotations":
			ann, err := decodeOrderedMap[string](item.Value)
			if err != nil {
				return err
			}
			svc.Annotations = ann
		case "expose":
			b, _ := item.Value.(bool)
			svc.Expose = b
		}
	}
	return nil
}

// UnmarshalYAML decodes a machine spec. A null or empty mapping value
// decodes to a valid, all-zero *MachineSpec.
func (m *MachineSpec) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw yaml.MapSlice
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*m = MachineSpec{}
	for _, item := range raw {
		key, _ := item.Key.(string)
		switch key {
		case "series":
			s, _ := item.Value.(string)
			m.Series = s
		case "constraints":
			s, _ := item.Value.(string)
			m.Constraints = s
		case "annotations":
			ann, err := decodeOrderedMap[string](item.Value)
			if err != nil {
				return err
			}
			m.Annotations = ann
		}
	}
	return nil
}

func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	default:
		return 0, errors.NotValidf("must be a digit")
	}
}

func toStringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, errors.NotValidf("placement %v", e)
			}
			out = append(out, s)
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		return nil, errors.NotValidf("to clause %v", value)
	}
}
