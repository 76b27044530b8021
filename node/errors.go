package node

import (
	errors "golang.org/x/xerrors"
)

var (
	// ErrDone ends a parameter enumeration.
	ErrDone = errors.New("no more results")

	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotReady is returned when an operation needs a negotiated format
	// or I/O areas that are not yet in place.
	ErrNotReady = errors.New("not ready")

	ErrUnsupported = errors.New("not supported")

	// ErrUnknownParam is returned when enumerating a parameter id the node
	// does not know.
	ErrUnknownParam = errors.New("unknown parameter")

	ErrInvalidFormat = errors.New("invalid format")

	// ErrUnsupportedConversion is returned when no sample transform exists
	// for a negotiated input format.
	ErrUnsupportedConversion = errors.New("unsupported conversion")

	ErrInvalidBuffer = errors.New("invalid buffer")
)
