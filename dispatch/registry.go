// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package dispatch decides which registered handler serves a request.
//
// Handlers are registered at startup against a resource type and an
// operation kind, together with the list of parameters they expect.
// Once every handler is registered the Registry is frozen, and from
// then on it is only read, so any number of request goroutines can
// resolve against it without locking.
//
// Resolution happens in two steps.  Classify looks only at the shape
// of the URL path and decides the operation kind; the registry then
// looks up the one handler for that kind and resource type.  Because
// there is at most one handler per (type, kind) pair, the order in
// which handlers were registered never affects the outcome.
package dispatch

import (
	"net/http"

	"github.com/diffeo/go-fhirhistory/binding"
	"github.com/diffeo/go-fhirhistory/resource"
)

// Handler is application code that serves one operation.  It receives
// the bound arguments in the order its descriptor declared them, and
// returns records in the order the response should present them.
// Read kinds must return exactly one record.  Errors are passed back
// to the client unmodified.
type Handler func(args binding.Args) ([]resource.Record, error)

// Descriptor registers a handler for one operation.
type Descriptor struct {
	Kind Kind

	// ResourceType is the resource type served, or "" for a
	// server-level operation.
	ResourceType string

	// Params lists the handler's parameters in call order.
	Params []binding.Param

	Handler Handler
}

type key struct {
	resourceType string
	kind         Kind
}

// Registry holds the registered descriptors.  Build it with
// NewRegistry and Register, then call Freeze before resolving.
type Registry struct {
	descriptors  map[key]*Descriptor
	continuation *Descriptor
	frozen       bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		descriptors: make(map[key]*Descriptor),
		continuation: &Descriptor{
			Kind: GetPages,
			Params: []binding.Param{
				{Source: binding.Paging, Shape: binding.ShapePage, Required: true},
			},
		},
	}
}

// Register adds a descriptor.  Returns ErrAmbiguous if a handler is
// already registered for the same type and kind, ErrBadDescriptor if
// the descriptor is inconsistent, or ErrFrozen if the registry is no
// longer accepting registrations.
func (r *Registry) Register(d Descriptor) error {
	if r.frozen {
		return ErrFrozen
	}
	if err := validate(d); err != nil {
		return err
	}
	k := key{resourceType: d.ResourceType, kind: d.Kind}
	if _, exists := r.descriptors[k]; exists {
		return ErrAmbiguous{Kind: d.Kind, ResourceType: d.ResourceType}
	}
	// Keep our own copy of the parameter list so the caller
	// cannot change it after the fact.
	d.Params = append([]binding.Param(nil), d.Params...)
	r.descriptors[k] = &d
	return nil
}

func validate(d Descriptor) error {
	bad := func(reason string) error {
		return ErrBadDescriptor{Kind: d.Kind, ResourceType: d.ResourceType, Reason: reason}
	}
	if d.Handler == nil {
		return bad("no handler")
	}
	switch {
	case d.Kind == GetPages:
		return bad("continuation requests are served internally")
	case d.Kind.IsTyped() && !validType(d.ResourceType):
		return bad("resource type required")
	case !d.Kind.IsTyped() && d.ResourceType != "":
		return bad("server-level operation cannot have a resource type")
	}
	if _, known := kindNames[d.Kind]; !known {
		return bad("unknown operation kind")
	}
	for _, p := range d.Params {
		if err := p.Validate(); err != nil {
			return bad(err.Error())
		}
		if p.Source == binding.PathID && !d.Kind.IsInstance() {
			return bad("path id parameter on an operation without an instance")
		}
	}
	return nil
}

// Freeze ends registration.  After this the registry is read-only and
// safe for concurrent use.
func (r *Registry) Freeze() {
	r.frozen = true
}

// Descriptors returns the registered descriptors, in no particular
// order.
func (r *Registry) Descriptors() []Descriptor {
	result := make([]Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		result = append(result, *d)
	}
	return result
}

// Continuation returns the built-in descriptor for continuation
// requests.  It has a single required Paging parameter and no
// handler: binding it always either produces a page or fails.
func (r *Registry) Continuation() *Descriptor {
	return r.continuation
}

// Match is the result of a successful resolution.
type Match struct {
	Descriptor *Descriptor

	// Identifier is the resource named by the request path.  It
	// is empty for type and server operations.
	Identifier resource.Identifier
}

// Resolve finds the handler for a request.  Only GET and HEAD requests
// are served.  Returns ErrNoMatch if the path has no known shape or no
// handler is registered for it, and ErrNotFrozen if called during
// registration.
func (r *Registry) Resolve(method string, segments []string) (Match, error) {
	if !r.frozen {
		return Match{}, ErrNotFrozen
	}
	kind, id, err := Classify(segments)
	if err != nil {
		return Match{}, err
	}
	if method != http.MethodGet && method != http.MethodHead {
		return Match{}, ErrNoMatch{Kind: kind, ResourceType: id.ResourceType}
	}
	d, ok := r.descriptors[key{resourceType: id.ResourceType, kind: kind}]
	if !ok {
		return Match{}, ErrNoMatch{Kind: kind, ResourceType: id.ResourceType}
	}
	return Match{Descriptor: d, Identifier: id}, nil
}
