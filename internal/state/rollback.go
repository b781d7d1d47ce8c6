package state

import (
	"fmt"
	"sort"
	"strings"

	"github.com/melih-ucgun/ifprop/internal/core"
	"github.com/melih-ucgun/ifprop/internal/ipprop"
)

// RollbackItems turns the changes of a transaction into config items that
// restore the previous values. Property changes are grouped per interface
// and temporary flag; fields that had no value before are left out.
// Interface creations and deletions are reversed in a first layer, the
// property items follow in a second one. Properties of an interface the
// rollback removes are dropped.
func RollbackItems(tx *Transaction) [][]core.ConfigItem {
	type groupKey struct {
		target    string
		temporary bool
	}

	var interfaces []core.ConfigItem
	groups := make(map[groupKey]ipprop.PropertyMap)

	for _, ch := range tx.Changes {
		switch ch.Type {
		case ipprop.InterfaceType:
			interfaces = append(interfaces, core.ConfigItem{
				ID:    fmt.Sprintf("rollback:%s:%s", ch.Type, ch.Target),
				Type:  ch.Type,
				Name:  ch.Target,
				State: ch.From,
			})
		case ipprop.ResourceType:
			if ch.Absent {
				continue
			}
			proto, prop, ok := splitField(ch.Field)
			if !ok {
				continue
			}
			key := groupKey{ch.Target, ch.Temporary}
			if groups[key] == nil {
				groups[key] = make(ipprop.PropertyMap)
			}
			groups[key].Set(proto, prop, ipprop.ScalarValue(ch.From))
		}
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].target != keys[j].target {
			return keys[i].target < keys[j].target
		}
		return !keys[i].temporary && keys[j].temporary
	})

	removed := make(map[string]bool)
	for _, item := range interfaces {
		if item.State == string(ipprop.EnsureAbsent) {
			removed[item.Name] = true
		}
	}

	var props []core.ConfigItem
	for _, k := range keys {
		if removed[k.target] {
			continue
		}
		id := fmt.Sprintf("rollback:%s:%s", ipprop.ResourceType, k.target)
		if k.temporary {
			id += ":temporary"
		}
		props = append(props, core.ConfigItem{
			ID:   id,
			Type: ipprop.ResourceType,
			Name: k.target,
			Params: map[string]interface{}{
				"properties": groups[k].Params(),
				"temporary":  k.temporary,
			},
		})
	}

	var layers [][]core.ConfigItem
	if len(interfaces) > 0 {
		layers = append(layers, interfaces)
	}
	if len(props) > 0 {
		layers = append(layers, props)
	}
	return layers
}

// splitField splits "ipv4.mtu" into protocol and property.
func splitField(field string) (ipprop.Protocol, string, bool) {
	proto, prop, ok := strings.Cut(field, ".")
	if !ok || prop == "" || !ipprop.IsProtocol(proto) {
		return "", "", false
	}
	return ipprop.Protocol(proto), prop, true
}
