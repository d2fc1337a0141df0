// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/diffeo/go-fhirhistory/binding"
	"github.com/diffeo/go-fhirhistory/dispatch"
	"github.com/diffeo/go-fhirhistory/restdata"
	"github.com/gorilla/mux"
)

// unresolved is the metrics label for requests that never reached a
// descriptor.
const unresolved = "unresolved"

// context holds all of the information and objects that can be extracted
// from the request.
type context struct {
	Method string

	// Segments holds the path below the router's prefix, split
	// on "/" with empty segments dropped.
	Segments []string

	QueryParams url.Values
	Header      http.Header

	// BaseURL is the absolute URL of the service root, without a
	// trailing slash.
	BaseURL string

	// Kind names the operation, once resolved.
	Kind string
}

func (api *restAPI) Context(req *http.Request) (ctx *context, err error) {
	ctx = &context{
		Method:      req.Method,
		QueryParams: req.URL.Query(),
		Header:      req.Header,
		Kind:        unresolved,
	}
	vars := mux.Vars(req)
	if rest, present := vars["rest"]; present {
		ctx.Segments = dispatch.SplitPath(rest)
	}
	ctx.BaseURL, err = api.baseURL(req)
	return
}

// baseURL finds the absolute URL of the service root.  A configured
// base URL always wins; otherwise it is built from the request's host
// and the path the router is mounted at.
func (api *restAPI) baseURL(req *http.Request) (string, error) {
	if api.BaseURL != "" {
		return strings.TrimRight(api.BaseURL, "/"), nil
	}
	route := api.Router.Get("operation")
	if route == nil {
		return "", errors.New("no operation route")
	}
	root, err := route.URL("rest", "")
	if err != nil {
		return "", err
	}
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	if proto := req.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + req.Host + strings.TrimRight(root.Path, "/"), nil
}

// IntParam looks at ctx.QueryParams for a parameter named name.  If it
// is absent, returns def.  If it is present but not a non-negative
// integer, returns a bad-request error.
func (ctx *context) IntParam(name string, def int) (int, error) {
	value := ctx.QueryParams.Get(name)
	if value == "" {
		return def, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, restdata.ErrBadRequest{Err: binding.BindingError{
			Param:  name,
			Value:  value,
			Reason: "expected a non-negative integer",
		}}
	}
	return n, nil
}

// Count returns the requested page size: def if the request does not
// name one, clamped to max.  A zero count is treated as absent.
func (ctx *context) Count(def, max int) (int, error) {
	count, err := ctx.IntParam(restdata.CountParam, def)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		count = def
	}
	if max > 0 && count > max {
		count = max
	}
	return count, nil
}
