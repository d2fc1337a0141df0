// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package dispatch

import (
	"errors"
	"fmt"
)

// ErrFrozen is returned from Registry.Register after Freeze has been
// called.
var ErrFrozen = errors.New("operation registry is frozen")

// ErrNotFrozen is returned from Registry.Resolve before Freeze has
// been called.
var ErrNotFrozen = errors.New("operation registry is still being built")

// ErrNoMatch is returned when no registered handler serves a request.
// This is reported to the client as an unsupported operation.
type ErrNoMatch struct {
	// Path is the request path, if the path itself had no known
	// shape.
	Path string

	// Kind and ResourceType are set if the path was classified
	// but nothing was registered for it.
	Kind         Kind
	ResourceType string
}

func (e ErrNoMatch) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("no operation matches %v", e.Path)
	}
	if e.ResourceType == "" {
		return fmt.Sprintf("operation %v is not supported", e.Kind)
	}
	return fmt.Sprintf("operation %v is not supported for %v", e.Kind, e.ResourceType)
}

// ErrAmbiguous is returned from Registry.Register if a handler is
// already registered for the same resource type and operation kind.
// This is a configuration fault.
type ErrAmbiguous struct {
	Kind         Kind
	ResourceType string
}

func (e ErrAmbiguous) Error() string {
	if e.ResourceType == "" {
		return fmt.Sprintf("more than one handler for server-level %v", e.Kind)
	}
	return fmt.Sprintf("more than one handler for %v on %v", e.Kind, e.ResourceType)
}

// ErrBadDescriptor is returned from Registry.Register if a descriptor
// is inconsistent, for instance declaring a path id on a type-level
// operation.  This is a configuration fault.
type ErrBadDescriptor struct {
	Kind         Kind
	ResourceType string
	Reason       string
}

func (e ErrBadDescriptor) Error() string {
	return fmt.Sprintf("invalid %v descriptor for %q: %v", e.Kind, e.ResourceType, e.Reason)
}
