// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package resource

import (
	"fmt"
	"strings"
	"time"
)

// Prefix is a comparison operator that can lead a date value in a
// query string, as in "_at=gt2001".
type Prefix string

// The known comparison prefixes.
const (
	Equal          Prefix = "eq"
	NotEqual       Prefix = "ne"
	GreaterThan    Prefix = "gt"
	LessThan       Prefix = "lt"
	GreaterOrEqual Prefix = "ge"
	LessOrEqual    Prefix = "le"
	StartsAfter    Prefix = "sa"
	EndsBefore     Prefix = "eb"
)

var knownPrefixes = map[Prefix]bool{
	Equal: true, NotEqual: true,
	GreaterThan: true, LessThan: true,
	GreaterOrEqual: true, LessOrEqual: true,
	StartsAfter: true, EndsBefore: true,
}

// Polarity says which end of a range a prefix constrains.
type Polarity int

const (
	// BothBounds prefixes (eq, ne) pin both ends of a range.
	BothBounds Polarity = iota
	// LowerBound prefixes (gt, ge, sa) constrain the start.
	LowerBound
	// UpperBound prefixes (lt, le, eb) constrain the end.
	UpperBound
)

// Polarity returns the end of a range that p constrains.
func (p Prefix) Polarity() Polarity {
	switch p {
	case GreaterThan, GreaterOrEqual, StartsAfter:
		return LowerBound
	case LessThan, LessOrEqual, EndsBefore:
		return UpperBound
	default:
		return BothBounds
	}
}

// SplitPrefix separates a leading comparison prefix from a query
// value.  If value does not start with a known prefix followed by
// something else, the prefix is Equal and value is returned whole.
func SplitPrefix(value string) (Prefix, string) {
	if len(value) > 2 {
		p := Prefix(strings.ToLower(value[:2]))
		if knownPrefixes[p] {
			return p, value[2:]
		}
	}
	return Equal, value
}

// DateBound is one end of a DateRange.
type DateBound struct {
	Prefix Prefix
	Value  *DateTimeType
}

// ValueAsString returns the literal date, without its prefix.
func (b *DateBound) ValueAsString() string {
	return b.Value.ValueAsString()
}

// String returns the bound as it would appear in a query string.
func (b *DateBound) String() string {
	return string(b.Prefix) + b.Value.ValueAsString()
}

// Matches checks a single time against this bound's prefix.
func (b *DateBound) Matches(when time.Time) bool {
	switch b.Prefix {
	case GreaterThan, StartsAfter:
		return !when.Before(b.Value.End())
	case GreaterOrEqual:
		return !when.Before(b.Value.Time())
	case LessThan, EndsBefore:
		return when.Before(b.Value.Time())
	case LessOrEqual:
		return when.Before(b.Value.End())
	case NotEqual:
		return !b.Value.Covers(when)
	default:
		return b.Value.Covers(when)
	}
}

// DateRange is an interval with an independent prefix on each end.
// A nil *DateRange means no range was requested at all; a non-nil
// range always has at least one bound.  For eq and ne, Lower and
// Upper are the same bound.
type DateRange struct {
	Lower *DateBound
	Upper *DateBound
}

// NewDateRange builds a range from up to two bounds, checking that
// they are consistent.
func NewDateRange(lower, upper *DateBound) (*DateRange, error) {
	if lower == nil && upper == nil {
		return nil, fmt.Errorf("date range needs at least one bound")
	}
	if lower != nil && upper != nil && lower != upper &&
		!upper.end().After(lower.start()) {
		return nil, fmt.Errorf("date range %v to %v is empty", lower, upper)
	}
	return &DateRange{Lower: lower, Upper: upper}, nil
}

// start is the earliest time a lower bound admits.
func (b *DateBound) start() time.Time {
	if b.Prefix == GreaterThan || b.Prefix == StartsAfter {
		return b.Value.End()
	}
	return b.Value.Time()
}

// end is the first time past the latest an upper bound admits.
func (b *DateBound) end() time.Time {
	if b.Prefix == LessThan || b.Prefix == EndsBefore {
		return b.Value.Time()
	}
	return b.Value.End()
}

// Matches returns true if when satisfies every bound of the range.
func (r *DateRange) Matches(when time.Time) bool {
	if r.Lower != nil && !r.Lower.Matches(when) {
		return false
	}
	if r.Upper != nil && r.Upper != r.Lower && !r.Upper.Matches(when) {
		return false
	}
	return true
}

// Start returns the earliest time the range admits, or the zero time
// if it has no lower bound.
func (r *DateRange) Start() time.Time {
	if r.Lower == nil {
		return time.Time{}
	}
	return r.Lower.start()
}

// Values returns the query string values that would reproduce the
// range.
func (r *DateRange) Values() []string {
	if r.Lower != nil && r.Lower == r.Upper {
		return []string{r.Lower.String()}
	}
	var values []string
	if r.Lower != nil {
		values = append(values, r.Lower.String())
	}
	if r.Upper != nil {
		values = append(values, r.Upper.String())
	}
	return values
}
