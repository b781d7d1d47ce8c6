// Package utils holds the small checks shared by the resources and the
// transports.
package utils

// IsOneOf reports whether value is one of allowed. Resources use it for
// their "state" param.
func IsOneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// IsValidPort reports whether port can be dialed; hosts are checked with it
// before an SSH connection is opened.
func IsValidPort(port int) bool {
	return 1 <= port && port <= 65535
}
