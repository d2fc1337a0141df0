// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

// This file contains a REST skeleton framework.
//
// The bulk of this is dealing with HTTP content type negotiation, and
// providing a standard way to deal with output values and errors.
// Only JSON is ever produced, but clients may ask for it under any of
// several names, either with an Accept: header or with a _format
// query parameter that overrides it.

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/diffeo/go-fhirhistory/restdata"
	"github.com/sirupsen/logrus"
)

// FormatParam is the query parameter that overrides the Accept:
// header.
const FormatParam = "_format"

// errBadAccept is returned from negotiateResponse() if the Accept:
// header is malformed (and no more specific error applies).
var errBadAccept = errors.New("Invalid Accept: header")

// errNotAcceptable is returned from negotiateResponse() if the Accept:
// header does not mention any media types we can actually return.
type errNotAcceptable struct{}

func (e errNotAcceptable) Error() string {
	return "No acceptable representation for response"
}

func (e errNotAcceptable) HTTPStatus() int {
	return http.StatusNotAcceptable
}

// errMethodNotAllowed is used within the resourceHandler implementation
// to flag an error if a particular HTTP method is not allowed.  This
// corresponds exactly to the 405 Method Not Allowed HTTP status code.
type errMethodNotAllowed struct {
	Method string
}

func (e errMethodNotAllowed) Error() string {
	return fmt.Sprintf("Method %v not allowed", e.Method)
}

func (e errMethodNotAllowed) HTTPStatus() int {
	return http.StatusMethodNotAllowed
}

// responseLocated is returned as a value response from handler
// functions whose body has a canonical URL of its own.
type responseLocated struct {
	// Location holds the canonical URL of the returned resource.
	Location string

	// Body contains the object sent in the body of the response.
	Body interface{}
}

type resourceHandler struct {
	// Context reads an HTTP request and produces a context object.
	Context func(req *http.Request) (*context, error)

	// Get returns a representation of the object.  It serves both
	// GET and HEAD.
	Get func(*context) (interface{}, error)

	// Log receives a line for every failed request.
	Log logrus.FieldLogger

	// Done, if non-nil, is called with the final status of every
	// request.  ctx is nil if the request failed before a context
	// could be built.
	Done func(ctx *context, status int)
}

func (h *resourceHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	var (
		ctx          *context
		out          interface{}
		err          error
		status       int
		responseType string
	)

	// Recover from panics by sending an HTTP error.
	defer func() {
		if recovered := recover(); recovered != nil {
			response := restdata.ErrorResponse{}
			response.FromPanic(recovered)
			if h.Log != nil {
				h.Log.WithFields(logrus.Fields{
					"method": req.Method,
					"path":   req.URL.Path,
					"panic":  response.Message,
				}).Error("request handler panicked")
			}
			if h.Done != nil {
				h.Done(ctx, http.StatusInternalServerError)
			}
			resp.Header().Set("Content-Type", restdata.V1JSONMediaType)
			resp.WriteHeader(http.StatusInternalServerError)
			_ = restdata.Encode(resp, response)
		}
	}()

	// Start by trying to come up with a response type, even before
	// looking at the path.  This determines what format an error
	// message could be sent back as.
	status = http.StatusBadRequest
	responseType, err = negotiateResponse(req)
	if err != nil {
		// Gotta pick something
		responseType = restdata.V1JSONMediaType
	}

	// Get bits from URL parameters
	if err == nil {
		ctx, err = h.Context(req)
	}

	// Actually call the handler method
	if err == nil {
		// If anything else goes wrong here, it's an error in
		// client code
		status = http.StatusInternalServerError
		switch req.Method {
		case http.MethodGet, http.MethodHead:
			out, err = h.Get(ctx)
		default:
			err = errMethodNotAllowed{Method: req.Method}
		}
	}

	// Fix up the final result based on what we know.
	if err != nil {
		// Pick a better status code if we know of one
		if errS, hasStatus := err.(restdata.ErrorStatus); hasStatus {
			status = errS.HTTPStatus()
		}
		h.logFailure(req, status, err)
		resp := restdata.ErrorResponse{Error: "error", Message: err.Error()}
		resp.FromError(err)
		out = resp
	} else if out == nil {
		status = http.StatusNoContent
	} else if located, isLocated := out.(responseLocated); isLocated {
		status = http.StatusOK
		if located.Location != "" {
			resp.Header().Set("Content-Location", located.Location)
		}
		out = located.Body
	} else {
		status = http.StatusOK
	}
	if req.Method == http.MethodHead && status < 300 {
		out = nil
	}
	if h.Done != nil {
		h.Done(ctx, status)
	}

	// Actually send the response.  It is possible for the encoder
	// to fail, but by the point this happens we've already
	// written an HTTP status line, so there is nothing better to
	// do than drop the error.
	if out != nil {
		resp.Header().Set("Content-Type", responseType)
	}
	resp.WriteHeader(status)
	if out != nil {
		_ = restdata.Encode(resp, out)
	}
}

// logFailure reports a failed request.  Server-side failures are
// errors; anything the client could fix is only debug output.
func (h *resourceHandler) logFailure(req *http.Request, status int, err error) {
	if h.Log == nil {
		return
	}
	entry := h.Log.WithFields(logrus.Fields{
		"method": req.Method,
		"path":   req.URL.Path,
		"status": status,
		"error":  err,
	})
	if status >= 500 {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
}

// negotiateResponse returns a supported MIME type for the response
// body, following the path laid out in RFC 7231 section 5.3.  A
// _format query parameter, if present, is used instead of the
// Accept: header.
func negotiateResponse(req *http.Request) (string, error) {
	if format := req.URL.Query().Get(FormatParam); format != "" {
		if restdata.CanonicalMediaType(format) == "" {
			return "", errNotAcceptable{}
		}
		if strings.Contains(format, "/") {
			return format, nil
		}
		return restdata.V1JSONMediaType, nil
	}

	accept := req.Header.Get("Accept")
	if accept == "" {
		accept = "*/*"
	}
	bestType := ""
	bestQ := 0.0
	mediaRanges := strings.Split(accept, ",")
	for _, mediaRange := range mediaRanges {
		mediaRange = strings.TrimSpace(mediaRange)
		mediaType, params, err := mime.ParseMediaType(mediaRange)
		if err != nil {
			return "", err
		}

		// What is the "q" ("quality") parameter for this type?
		// If it is less than the best known so far, skip it
		q := 1.0
		if qStr, haveQ := params["q"]; haveQ {
			q, err = strconv.ParseFloat(qStr, 64)
			if err != nil {
				return "", err
			}
			if q < 0.0 || q > 1.0 {
				return "", errBadAccept
			}
		}
		if q < bestQ {
			continue
		}

		// This is acceptable if it's a JSON type we know; or
		// it's one of a couple of specific wildcards.  Also
		// need to handle wildcard precedence.  So:
		if mediaType == "*/*" {
			// Doesn't override anything.
			if q > bestQ {
				bestType = mediaType
				bestQ = q
			}
		} else if mediaType == "text/*" || mediaType == "application/*" {
			// Only overrides "*/*".
			if q > bestQ || bestType == "*/*" {
				bestType = mediaType
				bestQ = q
			}
		} else if restdata.CanonicalMediaType(mediaType) != "" {
			// Overrides any wildcard.  We want the first one
			// at a given q to win.
			if q > bestQ || bestType == "*/*" || bestType == "text/*" || bestType == "application/*" {
				bestType = mediaType
				bestQ = q
			}
		}
		// Otherwise we don't recognize this type at all, so
		// just drop it.
	}
	// If this failed to win, return an error
	if bestQ == 0.0 {
		return "", errNotAcceptable{}
	}
	switch bestType {
	case "*/*", "application/*":
		return restdata.V1JSONMediaType, nil
	case "text/*":
		return "text/json", nil
	default:
		return bestType, nil
	}
}
