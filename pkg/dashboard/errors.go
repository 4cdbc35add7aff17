package dashboard

import "errors"

// Error types
var (
	ErrNetwork       = errors.New("dashboard unreachable")
	ErrNotFound      = errors.New("not found")
	ErrRequestFailed = errors.New("dashboard request failed")
	ErrBadResponse   = errors.New("unexpected dashboard response")
)
