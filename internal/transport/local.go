package transport

import (
	"context"
	"runtime"

	"github.com/melih-ucgun/ifprop/internal/core"
)

// LocalTransport implements Transport for the local machine
type LocalTransport struct{}

func NewLocalTransport() *LocalTransport {
	return &LocalTransport{}
}

func (t *LocalTransport) Close() error {
	return nil
}

// Execute runs cmd through sh -c so local and remote commands are parsed the
// same way.
func (t *LocalTransport) Execute(ctx context.Context, cmd string) (string, error) {
	return core.RunCommandContext(ctx, "sh", "-c", cmd)
}

func (t *LocalTransport) GetOS(ctx context.Context) (string, error) {
	return runtime.GOOS, nil
}
