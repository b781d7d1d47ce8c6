package resource

import (
	"fmt"
	"strings"

	"github.com/melih-ucgun/ifprop/internal/core"

	// Adapters register their resource types in init.
	_ "github.com/melih-ucgun/ifprop/internal/adapters/network"
)

// CreateResourceWithParams builds a resource of the given type through the
// registry. It matches core.ResourceCreator.
func CreateResourceWithParams(resType string, name string, params map[string]interface{}, ctx *core.SystemContext) (core.Resource, error) {
	factory, ok := core.LookupResource(resType)
	if !ok {
		return nil, fmt.Errorf("bilinmeyen kaynak tipi: %s (known: %s)", resType, strings.Join(core.RegisteredTypes(), ", "))
	}

	if params == nil {
		params = make(map[string]interface{})
	}
	return factory(name, params, ctx)
}
