// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/diffeo/go-fhirhistory/paging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/negroni"
)

// metrics holds the daemon's Prometheus collectors.
type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newMetrics(r prometheus.Registerer, pages *paging.Cache) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "diffeo",
				Subsystem: "fhirhistory",
				Name:      "requests_total",
				Help:      "Requests served, by operation kind and HTTP status",
			},
			[]string{"kind", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "diffeo",
				Subsystem: "fhirhistory",
				Name:      "request_duration_seconds",
				Help:      "Time to serve HTTP requests, by HTTP status",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"status"},
		),
	}
	livePages := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "diffeo",
			Subsystem: "fhirhistory",
			Name:      "paging_live_pages",
			Help:      "Stored history results continuation links can reach",
		},
		func() float64 { return float64(pages.Len()) },
	)
	evictions := prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Namespace: "diffeo",
			Subsystem: "fhirhistory",
			Name:      "paging_evictions_total",
			Help:      "Stored history results discarded to make room",
		},
		func() float64 { return float64(pages.Evictions()) },
	)
	for _, c := range []prometheus.Collector{m.requests, m.duration, livePages, evictions} {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// observe counts one request.  It is the restserver Observe hook.
func (m *metrics) observe(kind string, status int) {
	m.requests.WithLabelValues(kind, strconv.Itoa(status)).Inc()
}

// middleware times every request passing through the negroni chain.
func (m *metrics) middleware() negroni.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
		start := time.Now()
		next(rw, req)
		m.duration.WithLabelValues(strconv.Itoa(responseStatus(rw))).Observe(time.Since(start).Seconds())
	}
}

// responseStatus recovers the status code negroni recorded.
func responseStatus(rw http.ResponseWriter) int {
	if nrw, ok := rw.(negroni.ResponseWriter); ok {
		return nrw.Status()
	}
	return 0
}
