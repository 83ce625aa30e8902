// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package redirect

import (
	"fmt"
	"net/http"
	"strings"
)

// Kind reports how a [Target] is turned into a Location.
type Kind int

const (
	// KindAbsolute targets are used as-is.
	KindAbsolute Kind = iota

	// KindRelative targets are appended to the request path
	// once the rule's source path has been stripped from it.
	KindRelative
)

// String implements the [fmt.Stringer] interface.
func (k Kind) String() string {
	switch k {
	case KindAbsolute:
		return "absolute"
	case KindRelative:
		return "relative"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Target is where a [Rule] redirects to.
type Target struct {
	kind  Kind
	value string
}

// Absolute returns a [Target] which is used verbatim as the Location,
// e.g. "/new" or "https://duckduckgo.com/".
func Absolute(location string) Target {
	return Target{kind: KindAbsolute, value: location}
}

// Relative returns a [Target] which is appended to whatever precedes the
// rule's source path in the request path.
func Relative(location string) Target {
	return Target{kind: KindRelative, value: location}
}

// Kind returns whether t is absolute or relative.
func (t Target) Kind() Kind {
	return t.kind
}

// Value returns the raw target string.
func (t Target) Value() string {
	return t.value
}

// Option configures a [Rule]. Options are applied once, by [From].
type Option func(*Rule)

// ToAbsolute redirects to the given address or path as-is.
func ToAbsolute(location string) Option {
	return func(r *Rule) {
		r.target = Absolute(location)
	}
}

// ToRelative redirects to the given path relative to the matched path.
func ToRelative(location string) Option {
	return func(r *Rule) {
		r.target = Relative(location)
	}
}

// Temporary responds with "307 Temporary Redirect" instead of
// "308 Permanent Redirect".
func Temporary() Option {
	return WithStatus(http.StatusTemporaryRedirect)
}

// WithStatus responds with the given status code. The code is not
// restricted to the 3xx class, e.g. 301 or 302 are both accepted, so
// picking a meaningful code is up to the caller.
//
// Only codes between 200 and 999 produce a final response through
// [Rule.ServeHTTP]. [Write] panics with an [InvalidStatusError] for any
// other code.
func WithStatus(code int) Option {
	return func(r *Rule) {
		r.statusCode = code
	}
}

// Rule redirects requests for a single source path. A Rule is immutable
// once returned by [From] and is safe for concurrent use.
type Rule struct {
	source     string
	target     Target
	statusCode int
}

// From returns a [Rule] for the given source path. Unless configured
// otherwise it redirects to the absolute path "/" with the
// "308 Permanent Redirect" status.
func From(source string, opts ...Option) *Rule {
	r := &Rule{
		source:     source,
		target:     Absolute("/"),
		statusCode: http.StatusPermanentRedirect,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Source returns the path this rule answers for.
func (r *Rule) Source() string {
	return r.source
}

// Target returns where this rule redirects to.
func (r *Rule) Target() Target {
	return r.target
}

// StatusCode returns the status code this rule responds with.
func (r *Rule) StatusCode() int {
	return r.statusCode
}

// Response describes a redirect. The body is always empty.
type Response struct {
	StatusCode int
	Location   string
}

// InvalidStatusError is the panic value of [Write] for a status code
// which can not end a response.
type InvalidStatusError struct {
	StatusCode int
}

// Error implements the [builtin.error] interface.
func (e InvalidStatusError) Error() string {
	return fmt.Sprintf("redirect: status code %d can not be written as a final response", e.StatusCode)
}

// MatchViolationError is the panic value of [Rule.Evaluate] when the
// request path does not end with the rule's source path, meaning the
// router dispatched a request this rule never matched.
type MatchViolationError struct {
	Source string
	Path   string
}

// Error implements the [builtin.error] interface.
func (e MatchViolationError) Error() string {
	return fmt.Sprintf("redirect: request path %q does not end with source path %q", e.Path, e.Source)
}

// Evaluate computes the redirect for a request whose path matched this rule.
//
// A relative target replaces the trailing source path of requestPath, so a
// rule from "/one" to "/two" mounted under "/scoped" redirects "/scoped/one"
// to "/scoped/two". Evaluate panics with a [MatchViolationError] if
// requestPath does not end with the source path.
func (r *Rule) Evaluate(requestPath string) Response {
	resp := Response{
		StatusCode: r.statusCode,
	}
	switch r.target.kind {
	case KindRelative:
		prefix, ok := strings.CutSuffix(requestPath, r.source)
		if !ok {
			panic(MatchViolationError{Source: r.source, Path: requestPath})
		}
		resp.Location = prefix + r.target.value
	default:
		resp.Location = r.target.value
	}
	return resp
}
