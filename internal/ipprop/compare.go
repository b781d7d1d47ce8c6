package ipprop

import "fmt"

// MatchFunc reports whether an observed value satisfies a desired one.
// Providers supply their own when the OS prints values differently from
// how operators write them.
type MatchFunc func(observed, desired Value) bool

// DefaultMatch is Value.Equal.
func DefaultMatch(observed, desired Value) bool {
	return observed.Equal(desired)
}

// InSync reports whether observed satisfies every protocol and property
// named in desired. Protocols and properties only present in observed are
// never looked at. It returns on the first missing protocol, missing
// property or mismatch.
func InSync(desired, observed PropertyMap, match MatchFunc) bool {
	if match == nil {
		match = DefaultMatch
	}

	for _, proto := range desired.Protocols() {
		have, ok := observed[proto]
		if !ok {
			return false
		}

		want := desired[proto]
		for _, name := range want.Names() {
			current, ok := have[name]
			if !ok || !match(current, want[name]) {
				return false
			}
		}
	}
	return true
}

// Change is one desired property the observed state does not satisfy.
type Change struct {
	Protocol Protocol
	Property string
	Current  Value
	Desired  Value
	// Missing is set when the observed state has no value at all.
	Missing bool
}

// Field returns "proto.property".
func (c Change) Field() string {
	return string(c.Protocol) + "." + c.Property
}

func (c Change) String() string {
	current := c.Current.String()
	if c.Missing {
		current = "(absent)"
	}
	return fmt.Sprintf("%s: %s -> %s", c.Field(), current, c.Desired.String())
}

// Changes is the full drift between a desired and an observed state.
type Changes []Change

// Diff walks every desired property, unlike InSync which stops early, and
// reports those observed does not satisfy. Order is protocol, then property,
// both lexical.
func Diff(desired, observed PropertyMap, match MatchFunc) Changes {
	if match == nil {
		match = DefaultMatch
	}

	var changes Changes
	for _, proto := range desired.Protocols() {
		have := observed[proto]
		want := desired[proto]
		for _, name := range want.Names() {
			current, ok := have[name]
			if ok && match(current, want[name]) {
				continue
			}
			changes = append(changes, Change{
				Protocol: proto,
				Property: name,
				Current:  current,
				Desired:  want[name],
				Missing:  !ok,
			})
		}
	}
	return changes
}

// Desired collects the desired side of the changes.
func (c Changes) Desired() PropertyMap {
	m := make(PropertyMap)
	for _, ch := range c {
		m.Set(ch.Protocol, ch.Property, ch.Desired)
	}
	return m
}

// Previous collects the observed side of the changes. Properties that had
// no observed value cannot be restored and are left out.
func (c Changes) Previous() PropertyMap {
	m := make(PropertyMap)
	for _, ch := range c {
		if ch.Missing {
			continue
		}
		m.Set(ch.Protocol, ch.Property, ch.Current)
	}
	return m
}
