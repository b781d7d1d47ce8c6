package transport

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalTransport(t *testing.T) {
	tr := NewLocalTransport()
	defer tr.Close()

	out, err := tr.Execute(context.Background(), "echo net0 | tr a-z A-Z")
	require.NoError(t, err)
	assert.Equal(t, "NET0", out)

	_, err = tr.Execute(context.Background(), "exit 3")
	assert.Error(t, err)

	osName, err := tr.GetOS(context.Background())
	require.NoError(t, err)
	assert.Equal(t, runtime.GOOS, osName)
}

func TestMockTransport(t *testing.T) {
	m := NewMockTransport().
		AddResponse("ipadm show-if -p -o IFNAME", "net0").
		AddResponse("ipadm show-if -p -o IFNAME", "net0\nnet1")
	ctx := context.Background()

	out, _ := m.Execute(ctx, "ipadm show-if -p -o IFNAME")
	assert.Equal(t, "net0", out)
	out, _ = m.Execute(ctx, "ipadm show-if -p -o IFNAME")
	assert.Equal(t, "net0\nnet1", out)
	out, _ = m.Execute(ctx, "ipadm show-if -p -o IFNAME")
	assert.Equal(t, "net0\nnet1", out, "last response repeats")

	_, err := m.Execute(ctx, "reboot")
	assert.ErrorContains(t, err, "unexpected command")

	m.OnExecute = func(cmd string) (string, error) { return "handled", nil }
	out, err = m.Execute(ctx, "reboot")
	require.NoError(t, err)
	assert.Equal(t, "handled", out)

	assert.True(t, m.Called("reboot"))
	assert.Equal(t, 3, m.CalledWithPrefix("ipadm"))

	osName, _ := m.GetOS(ctx)
	assert.Equal(t, "linux", osName)
	require.NoError(t, m.Close())
	assert.True(t, m.Closed())
}
