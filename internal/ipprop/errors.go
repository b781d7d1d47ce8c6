package ipprop

import "errors"

var (
	// ErrInvalidFormat is returned when an identity does not match the
	// interface[/protocol] pattern.
	ErrInvalidFormat = errors.New("invalid interface identity format")

	// ErrInvalidLength is returned when the interface name is shorter than
	// MinNameLength or longer than MaxNameLength.
	ErrInvalidLength = errors.New("invalid interface name length")

	// ErrUnsupportedEnsure is returned for state=absent. Interface properties
	// can only be synchronized, never removed.
	ErrUnsupportedEnsure = errors.New("state 'absent' is not supported for interface properties")

	// ErrInvalidEnsure is returned for any state other than present/absent.
	ErrInvalidEnsure = errors.New("invalid state")

	// ErrMissingProtocol is returned when a flat property map is given but the
	// identity names no protocol to scope it to.
	ErrMissingProtocol = errors.New("flat properties require a protocol in the resource name")

	ErrUnknownProtocol  = errors.New("unknown protocol")
	ErrInvalidValue     = errors.New("invalid property value")
	ErrInvalidTemporary = errors.New("temporary must be true or false")
)
