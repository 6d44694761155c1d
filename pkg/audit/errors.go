package audit

import "errors"

var (
	errNilEntry  = errors.New("entry cannot be nil")
	errNoRuleset = errors.New("entry ruleset cannot be empty")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("audit store is closed")
)
