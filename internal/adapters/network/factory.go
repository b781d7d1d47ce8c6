package network

import (
	"fmt"

	"github.com/melih-ucgun/ifprop/internal/core"
)

// GetPropertyProvider picks the provider for the detected OS.
func GetPropertyProvider(ctx *core.SystemContext) (PropertyProvider, error) {
	switch ctx.OS {
	case "illumos", "solaris", "sunos":
		return &IpadmProvider{}, nil
	case "linux":
		return &SysctlProvider{}, nil
	default:
		return nil, fmt.Errorf("no interface property provider for OS %q: %w", ctx.OS, ErrNotSupported)
	}
}
