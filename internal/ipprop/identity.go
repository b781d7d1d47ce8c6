// Package ipprop holds the rules of the ip_interface_properties resource:
// identity validation, normalization of the two accepted property syntaxes,
// the in-sync comparison and the dependency hint on ip_interface resources.
//
// Nothing here touches the operating system. Providers report observed
// state as a PropertyMap and receive the desired PropertyMap back.
package ipprop

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
)

const (
	// ResourceType is the config type name of the properties resource.
	ResourceType = "ip_interface_properties"

	// InterfaceType is the config type name of the raw interface resource
	// that a properties resource depends on.
	InterfaceType = "ip_interface"

	MinNameLength = 3
	MaxNameLength = 16
)

var identityPattern = regexp.MustCompile(`^[a-z_0-9]+[0-9]+(/(ip|ipv4|ipv6)?)?$`)

// SplitIdentity splits "net0/ipv4" into ("net0", "ipv4"). The protocol is
// empty when the identity carries no suffix.
func SplitIdentity(identity string) (ifname, proto string) {
	ifname, proto, _ = strings.Cut(identity, "/")
	return ifname, proto
}

// Validate checks the length of the interface name and the pattern of the
// whole identity. Both checks always run; the returned error matches every
// rule that failed.
func Validate(identity string) error {
	var result *multierror.Error

	ifname, _ := SplitIdentity(identity)
	if n := len(ifname); n < MinNameLength || n > MaxNameLength {
		result = multierror.Append(result,
			fmt.Errorf("%w: %q is %d characters, want %d-%d", ErrInvalidLength, ifname, n, MinNameLength, MaxNameLength))
	}

	if !identityPattern.MatchString(identity) {
		result = multierror.Append(result,
			fmt.Errorf("%w: %q must look like net0, net0/ip, net0/ipv4 or net0/ipv6", ErrInvalidFormat, identity))
	}

	return result.ErrorOrNil()
}
