// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/diffeo/go-fhirhistory/binding"
	"github.com/diffeo/go-fhirhistory/dispatch"
	"github.com/diffeo/go-fhirhistory/resource"
)

// ErrorStatus describes errors that correspond to specific HTTP status
// codes.
type ErrorStatus interface {
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// ErrUnsupportedMediaType is returned from Decode() if the provided
// Content-Type: is unrecognized.  This translates directly into the
// equivalent HTTP 415 error.
type ErrUnsupportedMediaType struct {
	Type string
}

func (e ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("Unsupported media type %q", e.Type)
}

// HTTPStatus returns a fixed 415 Unsupported Media Type error code.
func (e ErrUnsupportedMediaType) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// ErrNotFound is a wrapper error that indicates that, due to the
// embedded error, a REST service should return a 404 Not Found error.
type ErrNotFound struct {
	Err error
}

func (e ErrNotFound) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 404 Not Found error code.
func (e ErrNotFound) HTTPStatus() int {
	return http.StatusNotFound
}

// ErrBadRequest is returned as an error when there is an error decoding
// the request path or query parameters.
type ErrBadRequest struct {
	Err error
}

func (e ErrBadRequest) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 400 Bad Request HTTP status code.
func (e ErrBadRequest) HTTPStatus() int {
	return http.StatusBadRequest
}

// ErrNoSuchResource is returned from a read whose handler found no
// record for the requested identifier.
type ErrNoSuchResource struct {
	ID resource.Identifier
}

func (e ErrNoSuchResource) Error() string {
	return fmt.Sprintf("Resource %v is not known", e.ID)
}

// HTTPStatus returns a fixed 404 Not Found error code.
func (e ErrNoSuchResource) HTTPStatus() int {
	return http.StatusNotFound
}

// ErrGone wraps an error about a continuation token that no longer
// names a stored result.
type ErrGone struct {
	Err error
}

func (e ErrGone) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 410 Gone HTTP status code.
func (e ErrGone) HTTPStatus() int {
	return http.StatusGone
}

// ErrConfiguration wraps a server configuration fault, such as a
// handler registry that was never frozen.
type ErrConfiguration struct {
	Err error
}

func (e ErrConfiguration) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 500 Internal Server Error HTTP status
// code.
func (e ErrConfiguration) HTTPStatus() int {
	return http.StatusInternalServerError
}

// Classify wraps one of the dispatch core's errors in the wrapper that
// carries its HTTP status.  Other errors are returned unchanged.
func Classify(err error) error {
	switch err.(type) {
	case dispatch.ErrNoMatch:
		return ErrNotFound{Err: err}
	case binding.BindingError:
		return ErrBadRequest{Err: err}
	case binding.ErrContinuationGone:
		return ErrGone{Err: err}
	case dispatch.ErrAmbiguous, dispatch.ErrBadDescriptor:
		return ErrConfiguration{Err: err}
	}
	switch err {
	case dispatch.ErrNotFrozen, dispatch.ErrFrozen:
		return ErrConfiguration{Err: err}
	}
	return err
}

// FromError populates an ErrorResponse to fill in its fields based
// on an error value.  This remaps the well-known dispatch errors to
// specific e.Error codes.
func (e *ErrorResponse) FromError(err error) {
	switch err {
	case dispatch.ErrNotFrozen:
		e.Error = "ErrNotFrozen"
	case dispatch.ErrFrozen:
		e.Error = "ErrFrozen"
	}
	switch et := err.(type) {
	case dispatch.ErrNoMatch:
		e.Error = "ErrNoMatch"
		e.Value = et.Path
	case dispatch.ErrAmbiguous:
		e.Error = "ErrAmbiguous"
		e.Value = et.ResourceType
	case binding.BindingError:
		e.Error = "BindingError"
		e.Value = et.Param
	case binding.ErrContinuationGone:
		e.Error = "ErrContinuationGone"
		e.Value = et.Token
	case ErrNoSuchResource:
		e.Error = "ErrNoSuchResource"
		e.Value = et.ID.String()
	case ErrNotFound:
		// Discard this wrapper and return the embedded error
		e.FromError(et.Err)
	case ErrBadRequest:
		e.FromError(et.Err)
	case ErrGone:
		e.FromError(et.Err)
	case ErrConfiguration:
		e.FromError(et.Err)
	}
}

// ToError converts e back to a dispatch error, if that is possible.
// If not, returns a plain error with e.Message text.  Errors that only
// carry a message, like ErrNoMatch for a classified path, come back
// with the server's message and without their structured fields.
func (e *ErrorResponse) ToError() error {
	switch e.Error {
	case "ErrNotFrozen":
		return dispatch.ErrNotFrozen
	case "ErrFrozen":
		return dispatch.ErrFrozen
	case "ErrNoMatch":
		return ErrNotFound{Err: errors.New(e.Message)}
	case "BindingError":
		return ErrBadRequest{Err: errors.New(e.Message)}
	case "ErrContinuationGone":
		return binding.ErrContinuationGone{Token: e.Value}
	case "ErrNoSuchResource":
		id, err := resource.ParseIdentifier(e.Value)
		if err != nil {
			return errors.New(e.Message)
		}
		return ErrNoSuchResource{ID: id}
	default:
		return errors.New(e.Message)
	}
}

// FromPanic populates an error response based on a panic.  Typical use
// is:
//
//     defer func() {
//         if obj := recovered(); obj != nil {
//             resp := restdata.ErrorResponse{}
//             resp.FromPanic(obj)
//             // write resp out as makes sense
//         }
//    }
func (e *ErrorResponse) FromPanic(obj interface{}) {
	e.Error = "panic"
	if recoveredError, isError := obj.(error); isError {
		e.Message = recoveredError.Error()
	} else {
		e.Message = fmt.Sprintf("%+v", obj)
	}
	var stack [4096]byte
	len := runtime.Stack(stack[:], false)
	e.Stack = string(stack[:len])
}
