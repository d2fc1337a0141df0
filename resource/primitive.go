// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package resource

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Primitive is a single scalar value that remembers its literal form.
type Primitive interface {
	// ValueAsString returns the literal the value was created
	// from.
	ValueAsString() string
}

// Precision describes how much of a date-time literal was given.
type Precision int

const (
	// PrecisionYear is a literal like "2005".
	PrecisionYear Precision = iota
	// PrecisionMonth is a literal like "2005-03".
	PrecisionMonth
	// PrecisionDay is a literal like "2005-03-04".
	PrecisionDay
	// PrecisionMinute is a literal like "2005-03-04T05:06Z".
	PrecisionMinute
	// PrecisionSecond is a literal like "2005-03-04T05:06:07Z".
	PrecisionSecond
	// PrecisionFraction has fractional seconds.
	PrecisionFraction
)

var (
	yearPattern  = regexp.MustCompile(`^[0-9]{4}$`)
	monthPattern = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}$`)
	dayPattern   = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
)

// Time layouts accepted after the date part, most specific first.
// A missing zone is read as UTC.
var timeLayouts = []struct {
	layout    string
	precision Precision
}{
	{"2006-01-02T15:04:05.999999999Z07:00", PrecisionFraction},
	{"2006-01-02T15:04:05Z07:00", PrecisionSecond},
	{"2006-01-02T15:04Z07:00", PrecisionMinute},
	{"2006-01-02T15:04:05.999999999", PrecisionFraction},
	{"2006-01-02T15:04:05", PrecisionSecond},
	{"2006-01-02T15:04", PrecisionMinute},
}

// temporal is the shared representation of the point-in-time types.
type temporal struct {
	literal   string
	start     time.Time
	precision Precision
}

func parseTemporal(literal string) (temporal, error) {
	var (
		t   time.Time
		p   Precision
		err error
	)
	switch {
	case yearPattern.MatchString(literal):
		t, err = time.Parse("2006", literal)
		p = PrecisionYear
	case monthPattern.MatchString(literal):
		t, err = time.Parse("2006-01", literal)
		p = PrecisionMonth
	case dayPattern.MatchString(literal):
		t, err = time.Parse("2006-01-02", literal)
		p = PrecisionDay
	default:
		err = fmt.Errorf("invalid date-time %q", literal)
		for _, l := range timeLayouts {
			// Fractional layouts also accept literals with no
			// fraction at all.
			if l.precision == PrecisionFraction && !strings.Contains(literal, ".") {
				continue
			}
			if parsed, perr := time.Parse(l.layout, literal); perr == nil {
				t, p, err = parsed, l.precision, nil
				break
			}
		}
	}
	if err != nil {
		return temporal{}, fmt.Errorf("invalid date-time %q", literal)
	}
	return temporal{literal: literal, start: t, precision: p}, nil
}

// ValueAsString returns the original literal.
func (t temporal) ValueAsString() string {
	return t.literal
}

// Time returns the earliest instant covered by the value.
func (t temporal) Time() time.Time {
	return t.start
}

// Precision returns the precision of the original literal.
func (t temporal) Precision() Precision {
	return t.precision
}

// End returns the first instant after the interval the value covers.
// "2005" covers all of 2005, so its end is 2006-01-01T00:00:00Z.
func (t temporal) End() time.Time {
	switch t.precision {
	case PrecisionYear:
		return t.start.AddDate(1, 0, 0)
	case PrecisionMonth:
		return t.start.AddDate(0, 1, 0)
	case PrecisionDay:
		return t.start.AddDate(0, 0, 1)
	case PrecisionMinute:
		return t.start.Add(time.Minute)
	case PrecisionSecond:
		return t.start.Add(time.Second)
	default:
		return t.start.Add(time.Nanosecond)
	}
}

// Covers returns true if when falls within the interval of the value.
func (t temporal) Covers(when time.Time) bool {
	return !when.Before(t.start) && when.Before(t.End())
}

// DateTimeType is a point in time of any precision from a year down
// to fractional seconds.
type DateTimeType struct {
	temporal
}

// ParseDateTime parses a date-time literal.
func ParseDateTime(literal string) (*DateTimeType, error) {
	t, err := parseTemporal(literal)
	if err != nil {
		return nil, err
	}
	return &DateTimeType{t}, nil
}

// InstantType is a precise point in time.  Partial literals such as
// "2005" are accepted and keep their literal form.
type InstantType struct {
	temporal
}

// ParseInstant parses an instant literal.
func ParseInstant(literal string) (*InstantType, error) {
	t, err := parseTemporal(literal)
	if err != nil {
		return nil, err
	}
	return &InstantType{t}, nil
}

// StringType is an uninterpreted string value.
type StringType struct {
	Value string
}

// NewString creates a new StringType.
func NewString(value string) *StringType {
	return &StringType{Value: value}
}

// ValueAsString returns the string.
func (s *StringType) ValueAsString() string {
	return s.Value
}
