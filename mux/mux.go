// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package mux provides a request multiplexer built on [http.ServeMux]
// which supports mounting one multiplexer under a path prefix.
package mux

import (
	"fmt"
	"net/http"
	"path"
	"slices"
	"strings"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Method defines an HTTP method a handler can be registered for.
type Method string

const (
	// MethodAny matches requests regardless of their method.
	MethodAny    Method = ""
	MethodGet    Method = http.MethodGet
	MethodHead   Method = http.MethodHead
	MethodPut    Method = http.MethodPut
	MethodPost   Method = http.MethodPost
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
)

// HttpOption defines a configuration option for [Http].
type HttpOption func(*Http)

// NotFoundHandler will register the given [http.Handler] to handle
// any HTTP requests that do not match any other method-pattern combinations.
func NotFoundHandler(h http.Handler) HttpOption {
	return func(mux *Http) {
		mux.notFound = h
	}
}

// MethodNotAllowedHandler will register the given [http.Handler] to handle
// any HTTP requests whose method does not match the method registered to a pattern.
func MethodNotAllowedHandler(h http.Handler) HttpOption {
	return func(mux *Http) {
		mux.methodNotAllowed = h
	}
}

// Middleware wraps the handler registered for pattern. For mounted routes
// pattern includes the mount prefix.
type Middleware func(pattern string, h http.Handler) http.Handler

// WithMiddleware wraps every handler registered with, or mounted on, the
// multiplexer. The first middleware given is the outermost.
func WithMiddleware(mws ...Middleware) HttpOption {
	return func(mux *Http) {
		mux.middleware = append(mux.middleware, mws...)
	}
}

type route struct {
	method  Method
	pattern string
	handler http.Handler
	exact   bool
}

// HandleOption configures a single registration with [Http.Handle].
type HandleOption func(*route)

// Exact disables the trailing slash aliasing done by [Http.Handle]. The
// handler is then only reached for the exact pattern, with a pattern ending
// in "/" only matching that path and not every path below it.
func Exact() HandleOption {
	return func(r *route) {
		r.exact = true
	}
}

// Http wraps a [http.ServeMux] and provides some helpers around overriding
// the default "HTTP 404 Not Found" and "HTTP 405 Method Not Allowed" behaviour.
type Http struct {
	mux *http.ServeMux

	initFallbacksOnce sync.Once
	notFound          http.Handler
	methodNotAllowed  http.Handler
	middleware        []Middleware

	routes      []route
	pathMethods map[string][]Method
}

// NewHttp initializes a request multiplexer using the standard [http.ServeMux].
func NewHttp(opts ...HttpOption) *Http {
	mux := &Http{
		mux:         http.NewServeMux(),
		pathMethods: make(map[string][]Method),
	}
	for _, opt := range opts {
		opt(mux)
	}
	return mux
}

// Handle will register the [http.Handler] for the given method and pattern
// with the underlying [http.ServeMux]. Unless [Exact] is given, a pattern
// without a trailing slash is also registered with one and vice versa.
func (m *Http) Handle(method Method, pattern string, h http.Handler, opts ...HandleOption) {
	r := route{
		method:  method,
		pattern: pattern,
		handler: h,
	}
	for _, opt := range opts {
		opt(&r)
	}
	m.routes = append(m.routes, r)
	m.register(r)
}

// Mount registers every route currently registered on sub under the given
// prefix. Handlers still see the full request path, including the prefix.
//
// Routes registered on sub after Mount returns are not mounted, and the
// middleware of sub is not applied to them, only that of m.
func (m *Http) Mount(prefix string, sub *Http) {
	prefix = strings.TrimSuffix(prefix, "/")
	for _, r := range sub.routes {
		r.pattern = prefix + r.pattern
		m.routes = append(m.routes, r)
		m.register(r)
	}
}

func (m *Http) register(r route) {
	h := r.handler
	for i := len(m.middleware) - 1; i >= 0; i-- {
		h = m.middleware[i](r.pattern, h)
	}
	h = otelhttp.WithRouteTag(r.pattern, h)

	if r.exact {
		pattern := r.pattern
		if strings.HasSuffix(pattern, "/") {
			pattern += "{$}"
		}
		m.handle(r.method, pattern, h)
		return
	}

	m.handle(r.method, r.pattern, h)

	// {$} is a special case where we only want to exact match the path pattern.
	if strings.HasSuffix(r.pattern, "{$}") {
		return
	}

	if strings.HasSuffix(r.pattern, "/") {
		withoutTrailingSlash := r.pattern[:len(r.pattern)-1]
		if len(withoutTrailingSlash) == 0 {
			return
		}
		m.handle(r.method, withoutTrailingSlash, h)
		return
	}

	// if the end of the path contains the "..." wildcard segment
	// then we can't add a "/" to it since "..." should not be followed
	// by a "/", per the http.ServeMux docs.
	base := path.Base(r.pattern)
	if strings.Contains(base, "...") {
		return
	}

	m.handle(r.method, r.pattern+"/", h)
}

func (m *Http) handle(method Method, pattern string, h http.Handler) {
	m.pathMethods[pattern] = append(m.pathMethods[pattern], method)
	if method == MethodAny {
		m.mux.Handle(pattern, h)
		return
	}
	m.mux.Handle(fmt.Sprintf("%s %s", method, pattern), h)
}

// ServeHTTP implements the [http.Handler] interface.
func (m *Http) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.initFallbacksOnce.Do(m.registerFallbackHandlers)

	m.mux.ServeHTTP(w, r)
}

func (m *Http) registerFallbackHandlers() {
	fs := []func(*http.ServeMux){
		registerNotFoundHandler(m.notFound),
		registerMethodNotAllowedHandler(m.methodNotAllowed, m.pathMethods),
	}
	for _, f := range fs {
		f(m.mux)
	}
}

func registerNotFoundHandler(h http.Handler) func(*http.ServeMux) {
	return func(mux *http.ServeMux) {
		if h == nil {
			return
		}
		mux.Handle("/{path...}", h)
	}
}

func registerMethodNotAllowedHandler(h http.Handler, pathMethods map[string][]Method) func(*http.ServeMux) {
	return func(mux *http.ServeMux) {
		if h == nil {
			return
		}
		if len(pathMethods) == 0 {
			return
		}

		supportedMethods := []Method{
			http.MethodGet,
			http.MethodPut,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
			http.MethodHead,
			http.MethodPatch,
			http.MethodTrace,
		}

		for path, methods := range pathMethods {
			// a method-less pattern already accepts every method
			if slices.Contains(methods, MethodAny) {
				continue
			}
			// http.ServeMux routes HEAD requests to GET patterns
			if slices.Contains(methods, MethodGet) {
				methods = append(slices.Clip(methods), MethodHead)
			}

			unsupportedMethods := diffSets(supportedMethods, methods)
			for _, method := range unsupportedMethods {
				mux.Handle(fmt.Sprintf("%s %s", method, path), h)
			}
		}
	}
}

func diffSets[T comparable](xs, ys []T) []T {
	zs := make([]T, 0, len(xs))
	for _, x := range xs {
		if slices.Contains(ys, x) {
			continue
		}
		zs = append(zs, x)
	}
	return zs
}
