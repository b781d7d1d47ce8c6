package ipprop

import "fmt"

// Protocol is a network-layer property namespace on an interface.
type Protocol string

const (
	ProtoIP   Protocol = "ip"
	ProtoIPv4 Protocol = "ipv4"
	ProtoIPv6 Protocol = "ipv6"
)

// Protocols lists every protocol a property map may be keyed by.
var Protocols = []Protocol{ProtoIP, ProtoIPv4, ProtoIPv6}

// IsProtocol reports whether s names a known protocol.
func IsProtocol(s string) bool {
	for _, p := range Protocols {
		if string(p) == s {
			return true
		}
	}
	return false
}

// Normalize turns either accepted properties syntax into a PropertyMap.
//
// A value whose top-level keys include a protocol is canonical and is
// returned together with the unchanged identity. Any other value is a flat
// property map scoped to the protocol in the identity ("net0/ipv4"); the
// protocol suffix is stripped from the returned identity and the value is
// nested under it. Callers must re-key the resource by the returned identity.
func Normalize(identity string, value map[string]interface{}) (string, PropertyMap, error) {
	if !isCanonical(value) {
		ifname, proto := SplitIdentity(identity)
		if proto == "" {
			return "", nil, fmt.Errorf("%w: %q", ErrMissingProtocol, identity)
		}
		if !IsProtocol(proto) {
			return "", nil, fmt.Errorf("%w: %q", ErrUnknownProtocol, proto)
		}

		props, err := propertiesOf(value)
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", identity, err)
		}
		return ifname, PropertyMap{Protocol(proto): props}, nil
	}

	canonical := make(PropertyMap, len(value))
	for key, raw := range value {
		if !IsProtocol(key) {
			return "", nil, fmt.Errorf("%w: %q mixed with protocol keys in %s", ErrUnknownProtocol, key, identity)
		}

		inner, ok := asMap(raw)
		if !ok {
			return "", nil, fmt.Errorf("%w: %s.%s must be a property map, got %T", ErrInvalidValue, identity, key, raw)
		}

		props, err := propertiesOf(inner)
		if err != nil {
			return "", nil, fmt.Errorf("%s.%s: %w", identity, key, err)
		}
		canonical[Protocol(key)] = props
	}
	return identity, canonical, nil
}

func isCanonical(value map[string]interface{}) bool {
	for key := range value {
		if IsProtocol(key) {
			return true
		}
	}
	return false
}

func propertiesOf(value map[string]interface{}) (Properties, error) {
	props := make(Properties, len(value))
	for name, raw := range value {
		v, err := ValueOf(raw)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		props[name] = v
	}
	return props, nil
}

func asMap(raw interface{}) (map[string]interface{}, bool) {
	switch m := raw.(type) {
	case map[string]interface{}:
		return m, true
	case map[string]string:
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	case Properties:
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = v
		}
		return out, true
	case nil:
		return map[string]interface{}{}, true
	default:
		return nil, false
	}
}

// AsParams converts a decoded `properties` param into the map Normalize
// accepts. ok is false when raw is not a mapping.
func AsParams(raw interface{}) (map[string]interface{}, bool) {
	return asMap(raw)
}
