// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package binding

import (
	"github.com/diffeo/go-fhirhistory/paging"
	"github.com/diffeo/go-fhirhistory/resource"
)

// Result is the outcome of a successful Bind.
type Result struct {
	// Args holds one value per declared parameter, in order.
	// Absent optional values are nil.
	Args Args

	// Page is set if the request carried a live continuation
	// token.  In that case Args is nil and the handler must not
	// be called; the page is returned instead.
	Page *paging.Page
}

// Bind builds the argument list for params from req.  pages may be
// nil if the server does no paging, in which case every continuation
// token is reported as gone.  The first failing parameter aborts the
// whole bind.
func Bind(params []Param, req Request, pages PageFetcher) (Result, error) {
	args := make(Args, len(params))
	for i, param := range params {
		var (
			value interface{}
			err   error
		)
		switch param.Source {
		case PathID:
			value, err = bindID(param, req)

		case QueryRange:
			value, err = bindRange(param, req)

		case QuerySince:
			value, err = bindSince(param, req)

		case Paging:
			token := req.Query.Get(param.Key())
			if token == "" {
				if param.Required {
					return Result{}, BindingError{Param: param.Key(), Reason: "continuation token required"}
				}
				continue
			}
			var page *paging.Page
			ok := false
			if pages != nil {
				page, ok = pages.Fetch(token)
			}
			if !ok {
				return Result{}, ErrContinuationGone{Token: token}
			}
			return Result{Page: page}, nil

		default:
			err = BindingError{Param: param.Key(), Reason: "unknown parameter source " + param.Source.String()}
		}
		if err != nil {
			return Result{}, err
		}
		args[i] = value
	}
	return Result{Args: args}, nil
}

func bindID(param Param, req Request) (interface{}, error) {
	if !req.Identifier.HasID() {
		if param.Required {
			return nil, BindingError{Param: "id", Reason: "resource id missing from path"}
		}
		return nil, nil
	}
	return req.Identifier, nil
}

func bindRange(param Param, req Request) (interface{}, error) {
	r, err := ParseRange(param.Key(), req.Query[param.Key()])
	if err != nil {
		return nil, err
	}
	if r == nil {
		if param.Required {
			return nil, BindingError{Param: param.Key(), Reason: "required"}
		}
		return nil, nil
	}
	return r, nil
}

func bindSince(param Param, req Request) (interface{}, error) {
	literal, present, err := singleValue(param.Key(), req.Query[param.Key()])
	if err != nil {
		return nil, err
	}
	if !present {
		if param.Required {
			return nil, BindingError{Param: param.Key(), Reason: "required"}
		}
		return nil, nil
	}
	value, err := Coerce(param.Shape, literal)
	if err != nil {
		return nil, BindingError{Param: param.Key(), Value: literal, Reason: err.Error()}
	}
	return value, nil
}

// singleValue extracts the one non-empty value of a query key.
func singleValue(key string, values []string) (string, bool, error) {
	var found []string
	for _, v := range values {
		if v != "" {
			found = append(found, v)
		}
	}
	switch len(found) {
	case 0:
		return "", false, nil
	case 1:
		return found[0], true, nil
	default:
		return "", false, BindingError{Param: key, Reason: "may only appear once"}
	}
}

// Coerce converts a literal query value into shape.  Only the scalar
// shapes (instant, date-time, string, primitive) are supported.  The
// result's ValueAsString always returns literal unchanged.
func Coerce(shape Shape, literal string) (resource.Primitive, error) {
	switch shape {
	case ShapeInstant:
		v, err := resource.ParseInstant(literal)
		if err != nil {
			return nil, err
		}
		return v, nil
	case ShapeDateTime:
		v, err := resource.ParseDateTime(literal)
		if err != nil {
			return nil, err
		}
		return v, nil
	case ShapeString, ShapePrimitive:
		return resource.NewString(literal), nil
	}
	return nil, BindingError{Value: literal, Reason: "shape " + shape.String() + " is not a scalar"}
}

// ParseRange combines every occurrence of a range parameter into one
// DateRange.  Each value is "<prefix><date>", where the prefix
// defaults to eq.  Lower-bound prefixes (gt, ge, sa) and upper-bound
// prefixes (lt, le, eb) may each appear once; eq or ne must appear
// alone and pins both ends.  No values at all produces a nil range.
func ParseRange(key string, values []string) (*resource.DateRange, error) {
	var present []string
	for _, v := range values {
		if v != "" {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return nil, nil
	}
	if len(present) > 2 {
		return nil, BindingError{Param: key, Reason: "at most two values may be given"}
	}

	var lower, upper *resource.DateBound
	for _, value := range present {
		prefix, literal := resource.SplitPrefix(value)
		dt, err := resource.ParseDateTime(literal)
		if err != nil {
			return nil, BindingError{Param: key, Value: value, Reason: err.Error()}
		}
		bound := &resource.DateBound{Prefix: prefix, Value: dt}
		switch prefix.Polarity() {
		case resource.LowerBound:
			if lower != nil {
				return nil, BindingError{Param: key, Value: value, Reason: "two lower bounds"}
			}
			lower = bound
		case resource.UpperBound:
			if upper != nil {
				return nil, BindingError{Param: key, Value: value, Reason: "two upper bounds"}
			}
			upper = bound
		default:
			if len(present) != 1 {
				return nil, BindingError{Param: key, Value: value, Reason: string(prefix) + " cannot be combined with another bound"}
			}
			lower, upper = bound, bound
		}
	}
	r, err := resource.NewDateRange(lower, upper)
	if err != nil {
		return nil, BindingError{Param: key, Reason: err.Error()}
	}
	return r, nil
}
