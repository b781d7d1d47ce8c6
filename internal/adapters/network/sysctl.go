package network

import (
	"fmt"
	"strings"

	"github.com/alessio/shellescape"

	"github.com/melih-ucgun/ifprop/internal/core"
	"github.com/melih-ucgun/ifprop/internal/ipprop"
)

// SysctlProvider maps interface properties onto Linux per-interface sysctls
// (net.ipv4.conf.<if>.*, net.ipv6.conf.<if>.*). The "ip" protocol only
// carries the link mtu.
type SysctlProvider struct {
	// SysctlDir is where persistent settings are written. Defaults to
	// /etc/sysctl.d.
	SysctlDir string
}

func (p *SysctlProvider) Name() string { return "sysctl" }

func (p *SysctlProvider) dir() string {
	if p.SysctlDir != "" {
		return p.SysctlDir
	}
	return "/etc/sysctl.d"
}

func sysctlPrefix(proto ipprop.Protocol, ifname string) string {
	return fmt.Sprintf("net.%s.conf.%s", proto, ifname)
}

func (p *SysctlProvider) Fetch(ctx *core.SystemContext, ifname string) (ipprop.PropertyMap, error) {
	props := make(ipprop.PropertyMap)

	mtu, err := ctx.Exec("cat " + shellescape.Quote("/sys/class/net/"+ifname+"/mtu"))
	if err != nil {
		return nil, fmt.Errorf("interface %s not found: %w", ifname, err)
	}
	props.Set(ipprop.ProtoIP, "mtu", ipprop.ScalarValue(strings.TrimSpace(mtu)))

	for _, proto := range []ipprop.Protocol{ipprop.ProtoIPv4, ipprop.ProtoIPv6} {
		prefix := sysctlPrefix(proto, ifname)
		// -e: IPv6 may be disabled on the interface
		out, err := ctx.Exec("sysctl -e " + prefix)
		if err != nil {
			return nil, fmt.Errorf("sysctl %s: %w: %s", prefix, err, strings.TrimSpace(out))
		}

		// net.ipv4.conf.eth0.forwarding = 1
		for _, line := range splitLines(out) {
			key, val, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			name, ok := strings.CutPrefix(strings.TrimSpace(key), prefix+".")
			if !ok {
				continue
			}
			props.Set(proto, name, ipprop.ScalarValue(strings.TrimSpace(val)))
		}
	}
	return props, nil
}

func (p *SysctlProvider) Apply(ctx *core.SystemContext, ifname string, props ipprop.PropertyMap, temporary bool) error {
	for _, proto := range props.Protocols() {
		for _, name := range props[proto].Names() {
			value := sysctlValue(props[proto][name])

			if proto == ipprop.ProtoIP {
				if err := p.setLink(ctx, ifname, name, value, temporary); err != nil {
					return err
				}
				continue
			}

			key := sysctlPrefix(proto, ifname) + "." + name
			if out, err := ctx.Exec("sysctl -w " + shellescape.Quote(key+"="+value)); err != nil {
				return fmt.Errorf("sysctl -w %s: %w: %s", key, err, strings.TrimSpace(out))
			}
			if temporary {
				continue
			}

			path := fmt.Sprintf("%s/90-ifprop-%s-%s-%s.conf", p.dir(), ifname, proto, name)
			line := fmt.Sprintf("%s = %s", key, value)
			cmd := fmt.Sprintf("printf '%%s\\n' %s > %s", shellescape.Quote(line), shellescape.Quote(path))
			if out, err := ctx.Exec(cmd); err != nil {
				return fmt.Errorf("persist %s: %w: %s", key, err, strings.TrimSpace(out))
			}
		}
	}
	return nil
}

func (p *SysctlProvider) setLink(ctx *core.SystemContext, ifname, name, value string, temporary bool) error {
	if name != "mtu" {
		return fmt.Errorf("ip.%s on %s: %w", name, ifname, ErrNotSupported)
	}
	cmd := fmt.Sprintf("ip link set dev %s mtu %s", shellescape.Quote(ifname), shellescape.Quote(value))
	if out, err := ctx.Exec(cmd); err != nil {
		return fmt.Errorf("ip link set %s mtu: %w: %s", ifname, err, strings.TrimSpace(out))
	}
	if !temporary {
		ctx.Log().Warn("link mtu is runtime only on linux, persist it in the network configuration",
			"interface", ifname, "mtu", value)
	}
	return nil
}

// Match accepts the spellings operators use for sysctl booleans ("on",
// "yes", "true") and ignores whitespace differences in multi-field values.
func (p *SysctlProvider) Match(observed, desired ipprop.Value) bool {
	if observed.IsList() || desired.IsList() {
		observed, desired = sysctlFields(observed), sysctlFields(desired)
	}
	return observed.Map(sysctlCanonical).Equal(desired.Map(sysctlCanonical))
}

// sysctlValue renders a value for sysctl; multi-field values are separated
// by spaces.
func sysctlValue(v ipprop.Value) string {
	if v.IsList() {
		return strings.Join(v.Items(), " ")
	}
	return v.String()
}

// sysctlFields splits a scalar the way sysctl prints multi-field values.
func sysctlFields(v ipprop.Value) ipprop.Value {
	if v.IsList() {
		return v
	}
	return ipprop.ListValue(strings.Fields(v.String())...)
}

func sysctlCanonical(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	switch strings.ToLower(s) {
	case "on", "yes", "true", "enabled":
		return "1"
	case "off", "no", "false", "disabled":
		return "0"
	}
	return s
}

func (p *SysctlProvider) ListInterfaces(ctx *core.SystemContext) ([]string, error) {
	out, err := ctx.Exec("ls -1 /sys/class/net")
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w: %s", err, strings.TrimSpace(out))
	}
	return splitLines(out), nil
}

func (p *SysctlProvider) InterfaceExists(ctx *core.SystemContext, ifname string) (bool, error) {
	return listContains(ctx, p, ifname)
}

// CreateInterface fails: Linux links come from drivers or the network
// manager, not from an IP interface plumb step.
func (p *SysctlProvider) CreateInterface(ctx *core.SystemContext, ifname string) error {
	return fmt.Errorf("create interface %s: %w", ifname, ErrNotSupported)
}

func (p *SysctlProvider) DeleteInterface(ctx *core.SystemContext, ifname string) error {
	return fmt.Errorf("delete interface %s: %w", ifname, ErrNotSupported)
}
