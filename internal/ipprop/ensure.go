package ipprop

import (
	"fmt"
	"strconv"
	"strings"
)

// Ensure is the requested existence state of a resource.
type Ensure string

const (
	EnsurePresent Ensure = "present"
	EnsureAbsent  Ensure = "absent"
)

// ParseEnsure accepts "" and "present". "absent" always fails with
// ErrUnsupportedEnsure because properties of an interface cannot be removed.
func ParseEnsure(state string) (Ensure, error) {
	switch Ensure(state) {
	case "", EnsurePresent:
		return EnsurePresent, nil
	case EnsureAbsent:
		return "", ErrUnsupportedEnsure
	default:
		return "", fmt.Errorf("%w %q: want present", ErrInvalidEnsure, state)
	}
}

// ParseTemporary reads the temporary flag. A temporary change does not
// survive a reboot; how that is achieved is up to the provider.
func ParseTemporary(raw interface{}) (bool, error) {
	switch val := raw.(type) {
	case nil:
		return false, nil
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "":
			return false, nil
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fmt.Errorf("%w, got %s", ErrInvalidTemporary, strconv.Quote(fmt.Sprint(raw)))
}
