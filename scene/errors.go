package scene

import "errors"

// Sentinel errors distinguishing malformed input (ConfigurationError) from
// I/O failures (ResourceError), per the error taxonomy: both terminate the
// process with a human-readable message and are never raised on the render
// hot path.
var (
	ErrConfiguration = errors.New("scene: configuration error")
	ErrResource      = errors.New("scene: resource error")
)
