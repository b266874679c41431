package schema

import "errors"

var (
	// ErrInvalidRequest indicates a malformed request payload.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrTabNotFound indicates a requested tab key is not configured.
	ErrTabNotFound = errors.New("tab not found")
	// ErrTabNotProbed indicates the operation requires a probed tab.
	ErrTabNotProbed = errors.New("tab is not probed")
	// ErrNoTabs indicates no tabs are configured.
	ErrNoTabs = errors.New("no tabs configured")
	// ErrMissingURL indicates the proxy endpoint was called without a url.
	ErrMissingURL = errors.New("Missing url")
)
