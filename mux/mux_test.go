// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package mux

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusCodeHandler int

func (h statusCodeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(int(h))
}

type pathEcho struct{}

func (pathEcho) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
}

func TestNotFoundHandler(t *testing.T) {
	testCases := []struct {
		name            string
		registerPattern string
		requestPath     string
		notFound        bool
	}{
		{
			name:        "matches not found if nothing is registered and '/' is requested",
			requestPath: "/",
			notFound:    true,
		},
		{
			name:            "matches not found if an unknown sub-path is requested",
			registerPattern: "/hello",
			requestPath:     "/bye",
			notFound:        true,
		},
		{
			name:            "matches not found if '/{$}' is registered and a sub-path is requested",
			registerPattern: "/{$}",
			requestPath:     "/bye",
			notFound:        true,
		},
		{
			name:            "does not match not found if the pattern is requested",
			registerPattern: "/hello",
			requestPath:     "/hello",
		},
		{
			name:            "does not match not found if the trailing slash alias is requested",
			registerPattern: "/hello",
			requestPath:     "/hello/",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := NewHttp(
				NotFoundHandler(statusCodeHandler(http.StatusTeapot)),
			)
			if tc.registerPattern != "" {
				mux.Handle(MethodGet, tc.registerPattern, statusCodeHandler(http.StatusOK))
			}

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "http://example.com"+tc.requestPath, nil)

			mux.ServeHTTP(w, r)

			if tc.notFound {
				require.Equal(t, http.StatusTeapot, w.Result().StatusCode)
				return
			}
			require.Equal(t, http.StatusOK, w.Result().StatusCode)
		})
	}
}

func TestMethodNotAllowedHandler(t *testing.T) {
	testCases := []struct {
		name             string
		registerMethods  []Method
		method           string
		methodNotAllowed bool
	}{
		{
			name:            "succeeds when the registered method is used",
			registerMethods: []Method{MethodGet},
			method:          http.MethodGet,
		},
		{
			name:            "succeeds for HEAD when GET is registered",
			registerMethods: []Method{MethodGet},
			method:          http.MethodHead,
		},
		{
			name:            "succeeds when more than one method is registered",
			registerMethods: []Method{MethodGet, MethodPost},
			method:          http.MethodPost,
		},
		{
			name:             "fails when an unregistered method is used",
			registerMethods:  []Method{MethodGet},
			method:           http.MethodPost,
			methodNotAllowed: true,
		},
		{
			name:            "succeeds for any method when registered without one",
			registerMethods: []Method{MethodAny},
			method:          http.MethodDelete,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mux := NewHttp(
				MethodNotAllowedHandler(statusCodeHandler(http.StatusMethodNotAllowed)),
			)
			for _, method := range tc.registerMethods {
				mux.Handle(method, "/hello", statusCodeHandler(http.StatusOK))
			}

			w := httptest.NewRecorder()
			r := httptest.NewRequest(tc.method, "http://example.com/hello", nil)

			mux.ServeHTTP(w, r)

			if tc.methodNotAllowed {
				require.Equal(t, http.StatusMethodNotAllowed, w.Result().StatusCode)
				return
			}
			require.Equal(t, http.StatusOK, w.Result().StatusCode)
		})
	}
}

func TestExact(t *testing.T) {
	t.Run("will not register a trailing slash alias", func(t *testing.T) {
		t.Run("if the pattern has no trailing slash", func(t *testing.T) {
			mux := NewHttp()
			mux.Handle(MethodAny, "/one", statusCodeHandler(http.StatusOK), Exact())

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "http://example.com/one/", nil)

			mux.ServeHTTP(w, r)

			if !assert.Equal(t, http.StatusNotFound, w.Result().StatusCode) {
				return
			}
		})
	})

	t.Run("will only match the root path", func(t *testing.T) {
		t.Run("if the pattern is '/'", func(t *testing.T) {
			mux := NewHttp()
			mux.Handle(MethodAny, "/", statusCodeHandler(http.StatusOK), Exact())

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
			mux.ServeHTTP(w, r)
			if !assert.Equal(t, http.StatusOK, w.Result().StatusCode) {
				return
			}

			w = httptest.NewRecorder()
			r = httptest.NewRequest(http.MethodGet, "http://example.com/other", nil)
			mux.ServeHTTP(w, r)
			if !assert.Equal(t, http.StatusNotFound, w.Result().StatusCode) {
				return
			}
		})
	})
}

func TestHttp_Mount(t *testing.T) {
	testCases := []struct {
		name         string
		prefix       string
		requestPath  string
		expectStatus int
		expectPath   string
	}{
		{
			name:         "serves the mounted route with the full path",
			prefix:       "/scoped",
			requestPath:  "/scoped/one",
			expectStatus: http.StatusOK,
			expectPath:   "/scoped/one",
		},
		{
			name:         "trims a trailing slash from the prefix",
			prefix:       "/scoped/",
			requestPath:  "/scoped/one",
			expectStatus: http.StatusOK,
			expectPath:   "/scoped/one",
		},
		{
			name:         "keeps the route at its original path",
			prefix:       "/scoped",
			requestPath:  "/one",
			expectStatus: http.StatusOK,
			expectPath:   "/one",
		},
		{
			name:         "does not match outside the prefix",
			prefix:       "/scoped",
			requestPath:  "/other/one",
			expectStatus: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sub := NewHttp()
			sub.Handle(MethodAny, "/one", pathEcho{}, Exact())

			root := NewHttp()
			root.Mount(tc.prefix, sub)
			root.Mount("/", sub)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "http://example.com"+tc.requestPath, nil)

			root.ServeHTTP(w, r)

			resp := w.Result()
			require.Equal(t, tc.expectStatus, resp.StatusCode)
			if tc.expectPath != "" {
				require.Equal(t, tc.expectPath, resp.Header.Get("X-Path"))
			}
		})
	}
}

func TestWithMiddleware(t *testing.T) {
	t.Run("will wrap mounted routes with the full pattern", func(t *testing.T) {
		t.Run("if the middleware is set on the parent", func(t *testing.T) {
			var patterns []string
			record := func(pattern string, h http.Handler) http.Handler {
				patterns = append(patterns, pattern)
				return h
			}

			sub := NewHttp()
			sub.Handle(MethodAny, "/one", statusCodeHandler(http.StatusOK), Exact())

			root := NewHttp(WithMiddleware(record))
			root.Mount("/scoped", sub)

			if !assert.Equal(t, []string{"/scoped/one"}, patterns) {
				return
			}
		})
	})

	t.Run("will apply the first middleware outermost", func(t *testing.T) {
		t.Run("if more than one middleware is given", func(t *testing.T) {
			var order []string
			named := func(name string) Middleware {
				return func(pattern string, h http.Handler) http.Handler {
					return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
						order = append(order, name)
						h.ServeHTTP(w, r)
					})
				}
			}

			mux := NewHttp(WithMiddleware(named("outer"), named("inner")))
			mux.Handle(MethodGet, "/hello", statusCodeHandler(http.StatusOK))

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "http://example.com/hello", nil)
			mux.ServeHTTP(w, r)

			if !assert.Equal(t, []string{"outer", "inner"}, order) {
				return
			}
		})
	})
}
