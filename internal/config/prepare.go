package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/melih-ucgun/ifprop/internal/core"
	"github.com/melih-ucgun/ifprop/internal/ipprop"
)

// Prepare rewrites interface property resources into their canonical shape
// before sorting:
//
//   - "properties" is normalized; a resource written as net0/ipv4 with flat
//     properties is re-keyed to net0 (and its default ID follows), with
//     depends_on references to the old ID rewritten.
//   - every ip_interface resource named by the identity is added to
//     depends_on.
//
// All invalid resources are reported together.
func Prepare(cfg *Config) error {
	var errs *multierror.Error

	candidates := make([]ipprop.Candidate, 0, len(cfg.Resources))
	interfaceIDs := make(map[string][]string)
	for _, res := range cfg.Resources {
		candidates = append(candidates, ipprop.Candidate{Type: res.Type, Name: res.Name})
		if res.Type == ipprop.InterfaceType {
			interfaceIDs[res.Name] = append(interfaceIDs[res.Name], res.ID)
		}
	}

	renamed := make(map[string]string)
	for i := range cfg.Resources {
		res := &cfg.Resources[i]
		if res.Type != ipprop.ResourceType {
			continue
		}

		raw := res.Params["properties"]
		value, ok := ipprop.AsParams(raw)
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w: properties must be a mapping, got %T", res.ID, ipprop.ErrInvalidValue, raw))
			continue
		}

		name, props, err := ipprop.Normalize(res.Name, value)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", res.ID, err))
			continue
		}

		for _, dep := range ipprop.DependsOn(res.Name, candidates) {
			res.DependsOn = appendUnique(res.DependsOn, interfaceIDs[dep]...)
		}

		if res.Params == nil {
			res.Params = make(map[string]interface{})
		}
		res.Params["properties"] = props.Params()

		if name != res.Name {
			if res.ID == DefaultID(res.Type, res.Name) {
				newID := DefaultID(res.Type, name)
				renamed[res.ID] = newID
				res.ID = newID
			}
			res.Name = name
		}
	}

	if len(renamed) > 0 {
		for i := range cfg.Resources {
			deps := cfg.Resources[i].DependsOn
			for j, dep := range deps {
				if newID, ok := renamed[dep]; ok {
					deps[j] = newID
				}
			}
		}
	}

	return errs.ErrorOrNil()
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}

// Items flattens sorted layers into engine items, keeping the layering.
func Items(layers [][]ResourceConfig) [][]core.ConfigItem {
	out := make([][]core.ConfigItem, 0, len(layers))
	for _, layer := range layers {
		items := make([]core.ConfigItem, 0, len(layer))
		for _, res := range layer {
			items = append(items, res.Item())
		}
		out = append(out, items)
	}
	return out
}

// Item converts the resource into an engine item.
func (r ResourceConfig) Item() core.ConfigItem {
	return core.ConfigItem{
		ID:     r.ID,
		Name:   r.Name,
		Type:   r.Type,
		State:  r.State,
		When:   r.When,
		Params: r.Params,
	}
}
