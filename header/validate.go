// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package header

import (
	"context"
	"net/http"
)

// Validator represents a header validator for an incoming [http.Request].
// A Validator which returns false must have already written a response.
type Validator interface {
	Validate(http.ResponseWriter, *http.Request) (*http.Request, bool)
}

// ValidatorFunc implements [Validator] for funcs.
type ValidatorFunc func(http.ResponseWriter, *http.Request) (*http.Request, bool)

// Validate implements the [Validator] interface.
func (f ValidatorFunc) Validate(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
	return f(w, r)
}

// Handler is an [http.Handler] which applies header validators
// before passing the request to a wrapped [http.Handler].
type Handler struct {
	validators []Validator
	base       http.Handler
}

// Validate wraps the given [http.Handler] with header validators.
func Validate(h http.Handler, validators ...Validator) *Handler {
	return &Handler{
		validators: validators,
		base:       h,
	}
}

// ServeHTTP implements the [http.Handler] interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, validator := range h.validators {
		var valid bool
		r, valid = validator.Validate(w, r)
		if !valid {
			return
		}
	}
	h.base.ServeHTTP(w, r)
}

type contextKey string

// Required validates the header is present exactly once with a valid value.
// If not, HTTP 400 Bad Request is returned. The parsed value is available to
// the wrapped handler via [FromContext].
func Required(c Uint64) Validator {
	return ValidatorFunc(func(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
		v, ok := c.Get(r.Header)
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			return r, false
		}
		ctx := context.WithValue(r.Context(), contextKey(c.name), v)
		return r.WithContext(ctx), true
	})
}

// AtMost validates that the header, when present and valid, does not exceed max.
// If it does, HTTP 413 Content Too Large is returned. Absent or invalid
// values are left for [Required] to decide on.
func AtMost(c Uint64, max uint64) Validator {
	return ValidatorFunc(func(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
		v, ok := c.Get(r.Header)
		if ok && v > max {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return r, false
		}
		return r, true
	})
}

// FromContext returns the value validated by [Required] for the given header.
func FromContext(ctx context.Context, c Uint64) (uint64, bool) {
	v, ok := ctx.Value(contextKey(c.name)).(uint64)
	return v, ok
}
