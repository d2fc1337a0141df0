// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package binding

import (
	"github.com/diffeo/go-fhirhistory/resource"
)

// Args is a bound argument list.  The accessors return the zero value
// if the argument is absent or has a different shape, so handlers can
// read their parameters by position without type switches.
type Args []interface{}

func (a Args) at(i int) interface{} {
	if i < 0 || i >= len(a) {
		return nil
	}
	return a[i]
}

// Identifier returns argument i as a resource identifier.
func (a Args) Identifier(i int) resource.Identifier {
	id, _ := a.at(i).(resource.Identifier)
	return id
}

// DateRange returns argument i as a date range, or nil if no range
// was requested.
func (a Args) DateRange(i int) *resource.DateRange {
	r, _ := a.at(i).(*resource.DateRange)
	return r
}

// Instant returns argument i as an instant.
func (a Args) Instant(i int) *resource.InstantType {
	v, _ := a.at(i).(*resource.InstantType)
	return v
}

// DateTime returns argument i as a date-time.
func (a Args) DateTime(i int) *resource.DateTimeType {
	v, _ := a.at(i).(*resource.DateTimeType)
	return v
}

// String returns argument i as a string value.
func (a Args) String(i int) *resource.StringType {
	v, _ := a.at(i).(*resource.StringType)
	return v
}

// Primitive returns argument i as any scalar value.
func (a Args) Primitive(i int) resource.Primitive {
	v, _ := a.at(i).(resource.Primitive)
	return v
}
