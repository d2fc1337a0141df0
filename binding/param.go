// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package binding builds handler argument lists from requests.
//
// Each handler declares, at registration time, an ordered list of
// Param values.  A Param names where a value comes from (its Source)
// and what Go value the handler wants to receive (its Shape).  Bind
// walks that list and produces one argument per Param, in order.
//
// The set of shapes is closed.  Every shape has exactly one coercion
// function, and a source accepts only some shapes; see
// Source.Accepts.  In particular, several Params may share the
// QuerySince source with different shapes, and each of them receives
// the same literal, coerced separately.
package binding

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/diffeo/go-fhirhistory/paging"
	"github.com/diffeo/go-fhirhistory/resource"
)

// Query parameter names governed by the binder.
const (
	AtParam       = "_at"
	SinceParam    = "_since"
	GetPagesParam = "_getpages"
)

// Source says where a parameter value comes from.
type Source int

const (
	// PathID binds the instance (and version) named in the URL
	// path.
	PathID Source = iota
	// QueryRange binds all occurrences of a query key, "_at" by
	// default, into a date range.
	QueryRange
	// QuerySince binds a single query value, "_since" by default,
	// into a point in time or string.
	QuerySince
	// Paging binds a continuation token, "_getpages" by default.
	// If one is present the handler is not called at all.
	Paging
)

func (s Source) String() string {
	switch s {
	case PathID:
		return "PathID"
	case QueryRange:
		return "QueryRange"
	case QuerySince:
		return "QuerySince"
	case Paging:
		return "Paging"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// Shape is the Go type a handler receives for a parameter.
type Shape int

const (
	// ShapeIdentifier is a resource.Identifier.
	ShapeIdentifier Shape = iota
	// ShapeDateRange is a *resource.DateRange.
	ShapeDateRange
	// ShapeInstant is a *resource.InstantType.
	ShapeInstant
	// ShapeDateTime is a *resource.DateTimeType, the generic
	// point-in-time shape.  It is never coerced to an instant, even
	// where a handler also declares ShapeInstant for the same value.
	ShapeDateTime
	// ShapeString is a *resource.StringType.
	ShapeString
	// ShapePrimitive is an untyped resource.Primitive; the
	// concrete value is a *resource.StringType.
	ShapePrimitive
	// ShapePage is a *paging.Page.
	ShapePage
)

func (s Shape) String() string {
	switch s {
	case ShapeIdentifier:
		return "Identifier"
	case ShapeDateRange:
		return "DateRange"
	case ShapeInstant:
		return "Instant"
	case ShapeDateTime:
		return "DateTime"
	case ShapeString:
		return "String"
	case ShapePrimitive:
		return "Primitive"
	case ShapePage:
		return "Page"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Accepts returns true if a parameter with source s can be bound
// into shape.
func (s Source) Accepts(shape Shape) bool {
	switch s {
	case PathID:
		return shape == ShapeIdentifier
	case QueryRange:
		return shape == ShapeDateRange
	case QuerySince:
		return shape == ShapeInstant || shape == ShapeDateTime ||
			shape == ShapeString || shape == ShapePrimitive
	case Paging:
		return shape == ShapePage
	}
	return false
}

// Param describes one handler parameter.
type Param struct {
	Source Source
	Shape  Shape

	// Name overrides the query key for query sources.  If empty
	// the source's standard key is used.
	Name string

	// Required makes absence of the value a binding error rather
	// than a nil argument.
	Required bool
}

// Key returns the query key the parameter reads, or "" for PathID.
func (p Param) Key() string {
	if p.Name != "" {
		return p.Name
	}
	switch p.Source {
	case QueryRange:
		return AtParam
	case QuerySince:
		return SinceParam
	case Paging:
		return GetPagesParam
	}
	return ""
}

// Validate checks that the parameter's source and shape go together.
func (p Param) Validate() error {
	if !p.Source.Accepts(p.Shape) {
		return fmt.Errorf("parameter source %v cannot bind shape %v", p.Source, p.Shape)
	}
	return nil
}

// The standard parameter declarations.

// ID binds the path identifier and requires it.
func ID() Param {
	return Param{Source: PathID, Shape: ShapeIdentifier, Required: true}
}

// At binds the "_at" range.
func At() Param {
	return Param{Source: QueryRange, Shape: ShapeDateRange}
}

// Since binds "_since" into shape.
func Since(shape Shape) Param {
	return Param{Source: QuerySince, Shape: shape}
}

// Request is the part of an HTTP request the binder looks at.
type Request struct {
	// Identifier is the resource named in the URL path, as
	// determined by the resolver.
	Identifier resource.Identifier

	Query  url.Values
	Header http.Header
}

// PageFetcher retrieves stored pages by continuation token.
// *paging.Cache is the standard implementation.
type PageFetcher interface {
	Fetch(token string) (*paging.Page, bool)
}
