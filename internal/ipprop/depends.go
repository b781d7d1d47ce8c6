package ipprop

import (
	"slices"
	"strings"
)

// Candidate is a resource that may satisfy a dependency hint.
type Candidate struct {
	Type string
	Name string
}

// DependsOn returns the names of the ip_interface candidates named by any
// segment of identity, in candidate order. An empty result is not an error;
// the resource then simply has no ordering constraint.
func DependsOn(identity string, candidates []Candidate) []string {
	segments := strings.Split(identity, "/")

	var names []string
	for _, c := range candidates {
		if c.Type != InterfaceType {
			continue
		}
		if slices.Contains(segments, c.Name) {
			names = append(names, c.Name)
		}
	}
	return names
}
