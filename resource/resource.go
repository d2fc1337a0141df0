// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package resource defines the records and values that flow between
// the dispatch core and application handlers.
//
// A Record is an opaque structured document with a resource type, a
// logical id, and optionally a version id.  The core never looks
// inside Record.Content; it only needs the identity fields to build
// links.  Identifier is the same triple as parsed out of a request
// path.
//
// The primitive types here (InstantType, DateTimeType, StringType)
// are the closed set of shapes that a query parameter can be coerced
// into.  All of them remember the literal they were created from, so
// ValueAsString always returns exactly what the client sent.
package resource

import (
	"fmt"
	"strings"
	"time"
)

// HistorySegment is the path marker that introduces history and
// version-specific URLs, as in /Patient/123/_history/4.
const HistorySegment = "_history"

// Record is a single versioned resource as returned by a handler.
type Record struct {
	// ResourceType names the kind of resource, e.g. "Patient".
	ResourceType string

	// ID is the logical id of the resource within its type.
	ID string

	// VersionID identifies this particular version.  It may be
	// empty if the handler does not track versions.
	VersionID string

	// LastUpdated is the time this version was written, or the
	// zero time if unknown.
	LastUpdated time.Time

	// Content is the body of the resource, other than its
	// identity and metadata.
	Content map[string]interface{}
}

// Identifier returns the identity of the record.
func (r Record) Identifier() Identifier {
	return Identifier{
		ResourceType: r.ResourceType,
		ID:           r.ID,
		VersionID:    r.VersionID,
	}
}

// Identifier names a resource instance, and possibly one version of
// it.
type Identifier struct {
	ResourceType string
	ID           string
	VersionID    string
}

// HasVersion returns true if the identifier names a specific version.
func (id Identifier) HasVersion() bool {
	return id.VersionID != ""
}

// HasID returns true if the identifier names an instance at all.
func (id Identifier) HasID() bool {
	return id.ID != ""
}

// Unversioned returns a copy of id without its version.
func (id Identifier) Unversioned() Identifier {
	id.VersionID = ""
	return id
}

// String renders the identifier as a relative URL path,
// "Type/id" or "Type/id/_history/vid".
func (id Identifier) String() string {
	parts := make([]string, 0, 4)
	if id.ResourceType != "" {
		parts = append(parts, id.ResourceType)
	}
	if id.ID != "" {
		parts = append(parts, id.ID)
	}
	if id.VersionID != "" {
		parts = append(parts, HistorySegment, id.VersionID)
	}
	return strings.Join(parts, "/")
}

// ParseIdentifier is the inverse of Identifier.String.  It accepts
// "Type/id" and "Type/id/_history/vid", optionally preceded by a base
// URL; anything before the type is ignored.
func ParseIdentifier(s string) (Identifier, error) {
	parts := strings.Split(strings.Trim(s, "/"), "/")
	n := len(parts)
	switch {
	case n >= 4 && parts[n-2] == HistorySegment:
		return Identifier{
			ResourceType: parts[n-4],
			ID:           parts[n-3],
			VersionID:    parts[n-1],
		}, nil
	case n >= 2 && parts[n-1] != HistorySegment && parts[n-2] != HistorySegment:
		return Identifier{ResourceType: parts[n-2], ID: parts[n-1]}, nil
	}
	return Identifier{}, fmt.Errorf("invalid resource identifier %q", s)
}
