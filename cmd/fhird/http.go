// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/diffeo/go-fhirhistory/dispatch"
	"github.com/diffeo/go-fhirhistory/paging"
	"github.com/diffeo/go-fhirhistory/restserver"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

// HTTP serves the history REST interface.
type HTTP struct {
	Config   Config
	Registry *dispatch.Registry
	Pages    *paging.Cache
	Metrics  *metrics
	Gatherer prometheus.Gatherer

	// Log receives failures from the REST handlers.
	Log logrus.FieldLogger

	// RequestLog, if non-nil, receives a debug line per request.
	RequestLog logrus.FieldLogger
}

// Handler builds the complete handler chain: panic recovery, request
// logging, and timing around the REST routes and /metrics.
func (h *HTTP) Handler() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(h.Gatherer, promhttp.HandlerOpts{}))

	sub := r
	if prefix := strings.TrimRight(h.Config.Prefix, "/"); prefix != "" {
		sub = r.PathPrefix(prefix).Subrouter()
	}
	restserver.PopulateRouter(sub, h.Registry, restserver.Options{
		BaseURL:     h.Config.BaseURL,
		PageSize:    h.Config.PageSize,
		MaxPageSize: h.Config.MaxPageSize,
		Pages:       h.Pages,
		Logger:      h.Log,
		Observe:     h.Metrics.observe,
	})

	n := negroni.New(negroni.NewRecovery())
	if h.RequestLog != nil {
		n.Use(requestLogger(h.RequestLog))
	}
	n.Use(h.Metrics.middleware())
	n.UseHandler(r)
	return n
}

// Serve runs an HTTP server on the configured local address.  This
// serves connections forever, and only returns if the listener
// fails.
func (h *HTTP) Serve() error {
	return http.ListenAndServe(h.Config.HTTP, h.Handler())
}

func requestLogger(log logrus.FieldLogger) negroni.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
		start := time.Now()
		next(rw, req)
		log.WithFields(logrus.Fields{
			"method":   req.Method,
			"uri":      req.URL.RequestURI(),
			"status":   responseStatus(rw),
			"duration": time.Since(start),
		}).Debug("request")
	}
}
