package tsast

import "errors"

var (
	// ErrInvalidNode is returned when a node cannot be printed or built from
	// the given inputs.
	ErrInvalidNode = errors.New("invalid node")
	ErrParse       = errors.New("parse failed")
)
