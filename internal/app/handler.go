// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package app assembles the waypoint service from a rules file.
package app

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/z5labs/waypoint/health"
	"github.com/z5labs/waypoint/metrics"
	"github.com/z5labs/waypoint/mux"
	"github.com/z5labs/waypoint/redirect"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricsPath   = "/metrics"
	LivenessPath  = "/health/liveness"
	ReadinessPath = "/health/readiness"
)

// ErrInvalidPrefix is returned for mount prefixes which are not a plain
// absolute path.
var ErrInvalidPrefix = errors.New("mount prefix must start with '/' and must not contain wildcards, whitespace or percent-encoded characters")

// InvalidMountError reports a [Mount] which could not be registered.
type InvalidMountError struct {
	Prefix string
	Cause  error
}

// Error implements the [builtin.error] interface.
func (e InvalidMountError) Error() string {
	return fmt.Sprintf("invalid mount %q: %s", e.Prefix, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e InvalidMountError) Unwrap() error {
	return e.Cause
}

// DuplicatePathError is returned when two redirects, or a redirect and a
// built in endpoint, would answer for the same path.
type DuplicatePathError struct {
	Path string
}

// Error implements the [builtin.error] interface.
func (e DuplicatePathError) Error() string {
	return fmt.Sprintf("more than one handler registered for path: %s", e.Path)
}

type handlerOptions struct {
	registry  *prometheus.Registry
	readiness health.Metric
}

// HandlerOption configures [NewHandler].
type HandlerOption func(*handlerOptions)

// Registry sets where response metrics are registered and gathered from.
// By default a new registry is used.
func Registry(reg *prometheus.Registry) HandlerOption {
	return func(ho *handlerOptions) {
		ho.registry = reg
	}
}

// Readiness backs the readiness endpoint. By default it is always healthy.
func Readiness(m health.Metric) HandlerOption {
	return func(ho *handlerOptions) {
		ho.readiness = m
	}
}

// NewHandler registers every redirect in cfg, along with the metrics and
// health endpoints, and returns the resulting [http.Handler]. All invalid
// rules and mounts are reported together.
func NewHandler(cfg Config, opts ...HandlerOption) (http.Handler, error) {
	ho := &handlerOptions{
		registry:  prometheus.NewRegistry(),
		readiness: &health.Binary{},
	}
	for _, opt := range opts {
		opt(ho)
	}

	responses, err := metrics.NewResponses(ho.registry)
	if err != nil {
		return nil, err
	}

	paths := newPathSet(MetricsPath, LivenessPath, ReadinessPath)
	root := mux.NewHttp(mux.WithMiddleware(responses.Middleware))

	var errs []error
	rules, err := redirect.Rules(cfg.Redirects)
	if err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, paths.add("", rules)...)
	if len(errs) == 0 {
		top := mux.NewHttp()
		redirect.Register(top, rules...)
		root.Mount("/", top)
	}

	for _, m := range cfg.Mounts {
		rules, err := mountRules(m)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		dups := paths.add(m.Prefix, rules)
		if len(dups) > 0 {
			errs = append(errs, dups...)
			continue
		}
		if len(errs) > 0 {
			continue
		}

		sub := mux.NewHttp()
		redirect.Register(sub, rules...)
		root.Mount(m.Prefix, sub)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	root.Handle(mux.MethodGet, MetricsPath, metrics.Handler(ho.registry), mux.Exact())
	root.Handle(mux.MethodGet, LivenessPath, health.Handler(health.And()), mux.Exact())
	root.Handle(mux.MethodGet, ReadinessPath, health.Handler(ho.readiness), mux.Exact())
	return root, nil
}

func mountRules(m Mount) ([]*redirect.Rule, error) {
	if !strings.HasPrefix(m.Prefix, "/") || strings.ContainsAny(m.Prefix, "{}%") || strings.IndexFunc(m.Prefix, unicode.IsSpace) >= 0 {
		return nil, InvalidMountError{Prefix: m.Prefix, Cause: ErrInvalidPrefix}
	}
	rules, err := redirect.Rules(m.Redirects)
	if err != nil {
		return nil, InvalidMountError{Prefix: m.Prefix, Cause: err}
	}
	return rules, nil
}

type pathSet map[string]struct{}

func newPathSet(paths ...string) pathSet {
	s := make(pathSet, len(paths))
	for _, p := range paths {
		s[p] = struct{}{}
	}
	return s
}

// add records the full path of every rule under prefix, as [mux.Http.Mount]
// would register it, and reports any path seen before.
func (s pathSet) add(prefix string, rules []*redirect.Rule) []error {
	prefix = strings.TrimSuffix(prefix, "/")

	var errs []error
	for _, rule := range rules {
		p := prefix + rule.Source()
		if _, ok := s[p]; ok {
			errs = append(errs, DuplicatePathError{Path: p})
			continue
		}
		s[p] = struct{}{}
	}
	return errs
}
