// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package binding

import (
	"fmt"
)

// BindingError is returned from Bind when a path or query value is
// missing, malformed, or inconsistent.  This is a client input fault.
type BindingError struct {
	// Param is the query key, or "id" for the path identifier.
	Param string

	// Value is the offending value, if there was one.
	Value string

	// Reason describes the failure.
	Reason string
}

func (e BindingError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %v parameter: %v", e.Param, e.Reason)
	}
	return fmt.Sprintf("invalid %v parameter %q: %v", e.Param, e.Value, e.Reason)
}

// ErrContinuationGone is returned from Bind when a continuation token
// does not name a live page, either because it was never issued or
// because its page was evicted.
type ErrContinuationGone struct {
	Token string
}

func (e ErrContinuationGone) Error() string {
	return fmt.Sprintf("continuation %q is no longer valid", e.Token)
}
