package analyzer

import "errors"

// Configuration errors, raised before any filesystem or process work.
var (
	ErrNoChain = errors.New("analyzer: extraction chain is not configured")
	ErrNoPath  = errors.New("analyzer: no source path given")
)
