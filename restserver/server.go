// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"

	"github.com/diffeo/go-fhirhistory/binding"
	"github.com/diffeo/go-fhirhistory/dispatch"
	"github.com/diffeo/go-fhirhistory/paging"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Page size defaults used when Options leaves them zero.
const (
	DefaultPageSize    = 20
	DefaultMaxPageSize = 500
)

// Options tune the behavior of the REST service.  The zero value is
// usable: it derives the base URL from each request, pages at
// DefaultPageSize, and never stores results for continuation.
type Options struct {
	// BaseURL is the absolute URL of the service root, used to
	// build fullUrl and continuation links.  If empty, it is
	// derived from each request's Host: header.
	BaseURL string

	// PageSize is the number of history entries returned when the
	// client does not ask for a specific _count.
	PageSize int

	// MaxPageSize caps the _count a client may ask for.
	MaxPageSize int

	// Pages stores history results larger than one page.  If nil,
	// history results are never split, and every continuation
	// token is reported as gone.
	Pages *paging.Cache

	// Logger receives request failures.  If nil, the logrus
	// standard logger is used.
	Logger logrus.FieldLogger

	// Observe, if non-nil, is called once per request with the
	// operation kind and the final HTTP status.
	Observe func(kind string, status int)
}

// NewRouter creates a new HTTP handler that serves every operation in
// reg.  All resources are under the URL path root, e.g. /Patient/1.
// For more control over this setup, create a mux.Router and call
// PopulateRouter instead.
func NewRouter(reg *dispatch.Registry, opts Options) http.Handler {
	r := mux.NewRouter()
	PopulateRouter(r, reg, opts)
	return r
}

// PopulateRouter adds the history and read routes to an existing
// github.com/gorilla/mux router object.  This can be used, for
// instance, to place the service under a subpath:
//
//     r := mux.NewRouter()
//     s := r.PathPrefix("/fhir").Subrouter()
//     PopulateRouter(s, reg, restserver.Options{})
//
// reg should already be frozen; until it is, every request fails
// with a server error.
func PopulateRouter(r *mux.Router, reg *dispatch.Registry, opts Options) {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = DefaultMaxPageSize
	}
	if opts.MaxPageSize < opts.PageSize {
		opts.MaxPageSize = opts.PageSize
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	api := &restAPI{Options: opts, Registry: reg, Router: r}
	api.PopulateRouter(r)
}

// restAPI holds the persistent state for the REST API.
type restAPI struct {
	Options
	Registry *dispatch.Registry
	Router   *mux.Router
}

// PopulateRouter adds all URL paths to a router.  Continuation
// requests are matched first; every other path is classified by the
// registry.
func (api *restAPI) PopulateRouter(r *mux.Router) {
	r.Path("/").Queries(binding.GetPagesParam, "{token}").Name("continuation").Handler(api.handler(api.Continue))
	r.Path("/{rest:.*}").Name("operation").Handler(api.handler(api.Operation))
}

func (api *restAPI) handler(get func(*context) (interface{}, error)) http.Handler {
	return &resourceHandler{
		Context: api.Context,
		Get:     get,
		Log:     api.Logger,
		Done:    api.done,
	}
}

func (api *restAPI) done(ctx *context, status int) {
	if api.Observe == nil {
		return
	}
	kind := unresolved
	if ctx != nil {
		kind = ctx.Kind
	}
	api.Observe(kind, status)
}

// pages returns the continuation store as a binder page source, or
// nil if there is none.
func (api *restAPI) pages() binding.PageFetcher {
	if api.Pages == nil {
		return nil
	}
	return api.Pages
}
