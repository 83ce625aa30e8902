// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package metrics exposes Prometheus metrics for served responses.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Responses counts the responses written per route and status code.
type Responses struct {
	total *prometheus.CounterVec
}

// NewResponses registers the waypoint_http_responses_total counter with reg.
func NewResponses(reg prometheus.Registerer) (*Responses, error) {
	total := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "waypoint_http_responses_total",
			Help: "Total number of HTTP responses written, by route and status code.",
		},
		[]string{"route", "code"},
	)
	err := reg.Register(total)
	if err != nil {
		return nil, err
	}
	return &Responses{total: total}, nil
}

// Middleware counts every response h writes under the given route.
// Its signature matches mux.Middleware.
func (m *Responses) Middleware(route string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		h.ServeHTTP(sw, r)
		m.total.WithLabelValues(route, strconv.Itoa(sw.code)).Inc()
	})
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

type statusWriter struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.code = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets [http.ResponseController] reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
