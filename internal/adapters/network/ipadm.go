package network

import (
	"fmt"
	"strings"

	"github.com/alessio/shellescape"

	"github.com/melih-ucgun/ifprop/internal/core"
	"github.com/melih-ucgun/ifprop/internal/ipprop"
)

// IpadmProvider manages interface properties with ipadm(8) on illumos and
// Solaris.
type IpadmProvider struct{}

func (p *IpadmProvider) Name() string { return "ipadm" }

func (p *IpadmProvider) Fetch(ctx *core.SystemContext, ifname string) (ipprop.PropertyMap, error) {
	// Parsable output, one "PROTO:PROPERTY:CURRENT" per line:
	//   ipv4:mtu:1500
	//   ipv6:hostmodel:weak
	// A literal ':' in a value is printed as '\:'.
	out, err := ctx.Exec("ipadm show-ifprop -c -o PROTO,PROPERTY,CURRENT " + shellescape.Quote(ifname))
	if err != nil {
		return nil, fmt.Errorf("ipadm show-ifprop %s: %w: %s", ifname, err, strings.TrimSpace(out))
	}

	props := make(ipprop.PropertyMap)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := splitParsable(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("ipadm show-ifprop %s: unexpected line %q", ifname, line)
		}
		if !ipprop.IsProtocol(fields[0]) {
			continue
		}
		props.Set(ipprop.Protocol(fields[0]), fields[1], ipprop.ScalarValue(fields[2]))
	}
	return props, nil
}

// splitParsable splits one line of ipadm -c output on unescaped colons.
func splitParsable(line string) []string {
	var (
		fields []string
		cur    strings.Builder
	)
	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '\\' && i+1 < len(line):
			i++
			cur.WriteByte(line[i])
		case c == ':':
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(fields, cur.String())
}

func (p *IpadmProvider) Apply(ctx *core.SystemContext, ifname string, props ipprop.PropertyMap, temporary bool) error {
	for _, proto := range props.Protocols() {
		for _, name := range props[proto].Names() {
			args := []string{"ipadm", "set-ifprop"}
			if temporary {
				args = append(args, "-t")
			}
			args = append(args,
				"-p", shellescape.Quote(name+"="+props[proto][name].String()),
				"-m", string(proto),
				shellescape.Quote(ifname))

			if out, err := ctx.Exec(strings.Join(args, " ")); err != nil {
				return fmt.Errorf("ipadm set-ifprop %s.%s on %s: %w: %s", proto, name, ifname, err, strings.TrimSpace(out))
			}
		}
	}
	return nil
}

// Match compares case-insensitively; ipadm accepts "ON" for "on" but always
// prints lowercase.
func (p *IpadmProvider) Match(observed, desired ipprop.Value) bool {
	return observed.Map(strings.ToLower).Equal(desired.Map(strings.ToLower))
}

func (p *IpadmProvider) ListInterfaces(ctx *core.SystemContext) ([]string, error) {
	out, err := ctx.Exec("ipadm show-if -p -o IFNAME")
	if err != nil {
		return nil, fmt.Errorf("ipadm show-if: %w: %s", err, strings.TrimSpace(out))
	}
	return splitLines(out), nil
}

func (p *IpadmProvider) InterfaceExists(ctx *core.SystemContext, ifname string) (bool, error) {
	return listContains(ctx, p, ifname)
}

func (p *IpadmProvider) CreateInterface(ctx *core.SystemContext, ifname string) error {
	if out, err := ctx.Exec("ipadm create-ip " + shellescape.Quote(ifname)); err != nil {
		return fmt.Errorf("ipadm create-ip %s: %w: %s", ifname, err, strings.TrimSpace(out))
	}
	return nil
}

func (p *IpadmProvider) DeleteInterface(ctx *core.SystemContext, ifname string) error {
	if out, err := ctx.Exec("ipadm delete-ip " + shellescape.Quote(ifname)); err != nil {
		return fmt.Errorf("ipadm delete-ip %s: %w: %s", ifname, err, strings.TrimSpace(out))
	}
	return nil
}

func splitLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func listContains(ctx *core.SystemContext, p PropertyProvider, ifname string) (bool, error) {
	names, err := p.ListInterfaces(ctx)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if name == ifname {
			return true, nil
		}
	}
	return false, nil
}
