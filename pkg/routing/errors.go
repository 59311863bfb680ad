package routing

import "errors"

// ErrNoBackend is returned when the router has no usable backend handle.
var ErrNoBackend = errors.New("routing: no backend configured")
