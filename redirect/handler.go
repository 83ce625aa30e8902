// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package redirect

import (
	"net/http"

	"github.com/z5labs/waypoint/mux"
)

// Func computes a redirect for the path of a request which was
// already matched by a router.
type Func func(requestPath string) Response

// Func returns [Rule.Evaluate] as a [Func].
func (r *Rule) Func() Func {
	return r.Evaluate
}

// ServeHTTP implements the [http.Handler] interface.
func (r *Rule) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	Write(w, r.Evaluate(req.URL.Path))
}

// Handler lifts a [Func] into an [http.Handler].
func Handler(f Func) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Write(w, f(r.URL.Path))
	})
}

// Write writes resp to w with an empty body. It panics with an
// [InvalidStatusError] if the status code is outside of 200..999.
func Write(w http.ResponseWriter, resp Response) {
	if resp.StatusCode < 200 || resp.StatusCode > 999 {
		panic(InvalidStatusError{StatusCode: resp.StatusCode})
	}
	w.Header().Set("Location", resp.Location)
	w.WriteHeader(resp.StatusCode)
}

// Registrar is anything rules can be registered with, e.g. [mux.Http].
type Registrar interface {
	Handle(method mux.Method, pattern string, h http.Handler, opts ...mux.HandleOption)
}

// Register registers each rule for every method at exactly its source path.
func Register(m Registrar, rules ...*Rule) {
	for _, rule := range rules {
		m.Handle(mux.MethodAny, rule.source, rule, mux.Exact())
	}
}
