package core

// Resource is the interface representing a manageable unit in the system.
// Solves Import Cycle issue by being in the Core package.
type Resource interface {
	Apply(ctx *SystemContext) (Result, error)
	// Check reports whether the resource needs action.
	Check(ctx *SystemContext) (bool, error)
	Validate() error
	GetName() string
	GetType() string
}

// Revertable is the interface that revertible resources must implement.
type Revertable interface {
	Revert(ctx *SystemContext) error
}

// Differ is implemented by resources that can describe their drift for plan
// output, one line per field.
type Differ interface {
	Diff(ctx *SystemContext) ([]string, error)
}

// BaseResource holds common fields.
type BaseResource struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

func (b *BaseResource) GetName() string {
	return b.Name
}

func (b *BaseResource) GetType() string {
	return b.Type
}
