package core

import "errors"

// Common errors.
var (
	// ErrUnknownRequestType rejects a request whose request_type matches no
	// pipeline. Raised before any worker is invoked.
	ErrUnknownRequestType = errors.New("unknown request_type")

	// ErrUnknownOperation rejects an update operation outside add/update/delete.
	ErrUnknownOperation = errors.New("unknown operation")
)
