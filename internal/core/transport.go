package core

import (
	"context"
	"io"
)

// Transport is the interface for executing commands across different
// communication channels (local, SSH, etc.)
type Transport interface {
	io.Closer

	// Execute runs a command and returns its combined output
	Execute(ctx context.Context, cmd string) (string, error)

	// GetOS returns the operating system name (e.g., "linux", "sunos")
	GetOS(ctx context.Context) (string, error)
}
