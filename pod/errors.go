package pod

import errors "golang.org/x/xerrors"

var (
	// ErrOutOfSpace is returned when a Builder's buffer is too small. The
	// builder keeps counting, so Needed reports the required size.
	ErrOutOfSpace = errors.New("out of space")

	// ErrMissingProperty is returned by ParseObject when a required key is absent.
	ErrMissingProperty = errors.New("missing property")

	// ErrTypeMismatch is returned when a value does not have the expected type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrNoIntersection is returned by Filter when two values have nothing in common.
	ErrNoIntersection = errors.New("no intersection")

	// ErrInvalid is returned when decoding a malformed value.
	ErrInvalid = errors.New("invalid pod")
)
