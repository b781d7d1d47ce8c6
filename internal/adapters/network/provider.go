package network

import (
	"errors"

	"github.com/melih-ucgun/ifprop/internal/core"
	"github.com/melih-ucgun/ifprop/internal/ipprop"
)

// ErrNotSupported is returned for operations a provider cannot perform on
// its platform.
var ErrNotSupported = errors.New("not supported by provider")

// PropertyProvider reads and writes interface protocol properties on one
// platform.
type PropertyProvider interface {
	Name() string

	// Fetch returns the observed properties of every protocol on ifname.
	Fetch(ctx *core.SystemContext, ifname string) (ipprop.PropertyMap, error)
	// Apply sets the given properties. A temporary apply does not survive a
	// reboot.
	Apply(ctx *core.SystemContext, ifname string, props ipprop.PropertyMap, temporary bool) error
	// Match compares an observed value with a desired one the way the
	// platform prints values.
	Match(observed, desired ipprop.Value) bool

	InterfaceExists(ctx *core.SystemContext, ifname string) (bool, error)
	CreateInterface(ctx *core.SystemContext, ifname string) error
	DeleteInterface(ctx *core.SystemContext, ifname string) error
	ListInterfaces(ctx *core.SystemContext) ([]string, error)
}
