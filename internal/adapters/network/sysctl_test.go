package network

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/melih-ucgun/ifprop/internal/core"
	"github.com/melih-ucgun/ifprop/internal/ipprop"
	"github.com/melih-ucgun/ifprop/internal/transport"
)

func linuxContext(t *testing.T) (*core.SystemContext, *transport.MockTransport) {
	t.Helper()
	mock := transport.NewMockTransport()
	ctx := core.NewSystemContext(false, mock)
	ctx.OS = "linux"
	return ctx, mock
}

func TestSysctl_Fetch(t *testing.T) {
	ctx, mock := linuxContext(t)
	mock.AddResponse("cat /sys/class/net/eth0/mtu", "1500\n")
	mock.AddResponse("sysctl -e net.ipv4.conf.eth0",
		"net.ipv4.conf.eth0.forwarding = 1\nnet.ipv4.conf.eth0.rp_filter = 2\n")
	mock.AddResponse("sysctl -e net.ipv6.conf.eth0",
		"net.ipv6.conf.eth0.mtu = 1500\nnet.ipv6.conf.eth0.disable_ipv6 = 0\n")

	props, err := (&SysctlProvider{}).Fetch(ctx, "eth0")
	require.NoError(t, err)

	assert.Equal(t, ipprop.PropertyMap{
		ipprop.ProtoIP:   {"mtu": ipprop.ScalarValue("1500")},
		ipprop.ProtoIPv4: {"forwarding": ipprop.ScalarValue("1"), "rp_filter": ipprop.ScalarValue("2")},
		ipprop.ProtoIPv6: {"mtu": ipprop.ScalarValue("1500"), "disable_ipv6": ipprop.ScalarValue("0")},
	}, props)
}

func TestSysctl_FetchMissingInterface(t *testing.T) {
	ctx, mock := linuxContext(t)
	mock.AddError("cat /sys/class/net/eth9/mtu", "No such file or directory", errors.New("exit status 1"))

	_, err := (&SysctlProvider{}).Fetch(ctx, "eth9")
	assert.ErrorContains(t, err, "interface eth9 not found")
}

func TestSysctl_Apply(t *testing.T) {
	props := ipprop.PropertyMap{
		ipprop.ProtoIP:   {"mtu": ipprop.ScalarValue("9000")},
		ipprop.ProtoIPv4: {"forwarding": ipprop.ScalarValue("1")},
	}

	t.Run("persistent", func(t *testing.T) {
		ctx, mock := linuxContext(t)
		mock.OnExecute = func(cmd string) (string, error) { return "", nil }

		require.NoError(t, (&SysctlProvider{}).Apply(ctx, "eth0", props, false))
		assert.Equal(t, []string{
			"ip link set dev eth0 mtu 9000",
			"sysctl -w net.ipv4.conf.eth0.forwarding=1",
			"printf '%s\\n' 'net.ipv4.conf.eth0.forwarding = 1' > /etc/sysctl.d/90-ifprop-eth0-ipv4-forwarding.conf",
		}, mock.Calls())
	})

	t.Run("temporary", func(t *testing.T) {
		ctx, mock := linuxContext(t)
		mock.OnExecute = func(cmd string) (string, error) { return "", nil }

		p := &SysctlProvider{SysctlDir: "/run/sysctl.d"}
		require.NoError(t, p.Apply(ctx, "eth0", props, true))
		assert.Equal(t, 0, mock.CalledWithPrefix("printf"))
		assert.True(t, mock.Called("sysctl -w net.ipv4.conf.eth0.forwarding=1"))
	})

	t.Run("multi-field value", func(t *testing.T) {
		ctx, mock := linuxContext(t)
		mock.OnExecute = func(cmd string) (string, error) { return "", nil }

		err := (&SysctlProvider{}).Apply(ctx, "eth0", ipprop.PropertyMap{
			ipprop.ProtoIPv6: {"router_solicitations": ipprop.ListValue("3", "4")},
		}, false)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"sysctl -w 'net.ipv6.conf.eth0.router_solicitations=3 4'",
			"printf '%s\\n' 'net.ipv6.conf.eth0.router_solicitations = 3 4' > /etc/sysctl.d/90-ifprop-eth0-ipv6-router_solicitations.conf",
		}, mock.Calls())
	})

	t.Run("unsupported link property", func(t *testing.T) {
		ctx, _ := linuxContext(t)
		err := (&SysctlProvider{}).Apply(ctx, "eth0",
			ipprop.PropertyMap{ipprop.ProtoIP: {"arp": ipprop.ScalarValue("on")}}, true)
		assert.ErrorIs(t, err, ErrNotSupported)
	})
}

func TestSysctl_Match(t *testing.T) {
	p := &SysctlProvider{}
	tests := []struct {
		observed string
		desired  string
		want     bool
	}{
		{"1", "on", true},
		{"0", "false", true},
		{"1", "1", true},
		{"4096\t87380\t6291456", "4096 87380 6291456", true},
		{"1", "off", false},
		{"2", "on", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Match(ipprop.ScalarValue(tt.observed), ipprop.ScalarValue(tt.desired)),
			"%q vs %q", tt.observed, tt.desired)
	}

	assert.True(t, p.Match(ipprop.ScalarValue("4096\t87380"), ipprop.ListValue("4096", "87380")))
	assert.False(t, p.Match(ipprop.ScalarValue("4096\t87380"), ipprop.ListValue("4096")))
}

func TestSysctl_Interfaces(t *testing.T) {
	ctx, mock := linuxContext(t)
	mock.AddResponse("ls -1 /sys/class/net", "eth0\nlo\n")

	p := &SysctlProvider{}
	ok, err := p.InterfaceExists(ctx, "eth0")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.ErrorIs(t, p.CreateInterface(ctx, "eth1"), ErrNotSupported)
	assert.ErrorIs(t, p.DeleteInterface(ctx, "eth0"), ErrNotSupported)
}
