// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package health reports whether a service is able to serve traffic.
package health

import (
	"context"
	"net/http"
	"sync/atomic"
)

// Metric represents anything that can report its health status.
type Metric interface {
	Healthy(context.Context) bool
}

// Binary represents a [Metric] that is either healthy or not.
// The zero value is healthy.
type Binary struct {
	unhealthy atomic.Bool
}

// MarkUnhealthy switches m to the unhealthy state.
func (m *Binary) MarkUnhealthy() {
	m.unhealthy.Store(true)
}

// MarkHealthy switches m to the healthy state.
func (m *Binary) MarkHealthy() {
	m.unhealthy.Store(false)
}

// Healthy implements the [Metric] interface.
func (m *Binary) Healthy(ctx context.Context) bool {
	return !m.unhealthy.Load()
}

// AndMetric represents multiple Metrics all and'd together.
type AndMetric []Metric

// And returns a [Metric] which is only healthy if all metrics are.
func And(metrics ...Metric) AndMetric {
	return AndMetric(metrics)
}

// Healthy implements the [Metric] interface.
func (m AndMetric) Healthy(ctx context.Context) bool {
	for _, metric := range m {
		if !metric.Healthy(ctx) {
			return false
		}
	}
	return true
}

// Handler responds with 200 OK while m is healthy and
// 503 Service Unavailable otherwise.
func Handler(m Metric) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Healthy(r.Context()) {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})
}
