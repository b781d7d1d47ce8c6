package core

import (
	"fmt"
	"sort"
	"sync"
)

// ResourceFactory builds a resource from its config params.
type ResourceFactory func(name string, params map[string]interface{}, ctx *SystemContext) (Resource, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]ResourceFactory)
)

// RegisterResource makes a resource type available to the factory. Adapters
// call it from init. Registering the same type twice panics.
func RegisterResource(resType string, factory ResourceFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[resType]; exists {
		panic(fmt.Sprintf("resource type %q registered twice", resType))
	}
	registry[resType] = factory
}

// LookupResource returns the factory for a resource type.
func LookupResource(resType string) (ResourceFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := registry[resType]
	return factory, ok
}

// RegisteredTypes lists registered resource types, sorted.
func RegisteredTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
