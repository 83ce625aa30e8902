// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package header provides strict codecs for single-value HTTP headers.
//
// A single-value integer header, e.g. Content-Length, must be present exactly
// once and must contain exactly one decimal integer:
//
//	Content-Length = 1*DIGIT
//
// Anything else, including duplicated headers, grouping separators such as
// "123,567" or "123_567", signs, whitespace and values overflowing 64 bits,
// is treated the same as the header being absent.
package header

import (
	"fmt"
	"net/http"
	"strconv"
	"unicode/utf8"

	"golang.org/x/net/http/httpguts"
)

// Uint64 is a codec for a header carrying a single unsigned 64-bit
// decimal integer. The zero value is not usable, see [NewUint64].
type Uint64 struct {
	name string
}

// InvalidNameError is the panic value of [NewUint64] when given
// a string which is not a valid HTTP field name.
type InvalidNameError struct {
	Name string
}

// Error implements the [builtin.error] interface.
func (e InvalidNameError) Error() string {
	return fmt.Sprintf("invalid http header name: %q", e.Name)
}

// NewUint64 returns a [Uint64] codec for the given header name.
// The name is canonicalized with [http.CanonicalHeaderKey].
//
// NewUint64 panics if name is not a valid HTTP field name.
func NewUint64(name string) Uint64 {
	if !httpguts.ValidHeaderFieldName(name) {
		panic(InvalidNameError{Name: name})
	}
	return Uint64{
		name: http.CanonicalHeaderKey(name),
	}
}

// Name returns the canonical header name.
func (c Uint64) Name() string {
	return c.name
}

// Parse validates the raw values supplied under this header for one message.
// It returns false if there is not exactly one value or if that value
// is not a strict decimal integer which fits in a uint64.
func (c Uint64) Parse(values [][]byte) (uint64, bool) {
	if len(values) != 1 {
		return 0, false
	}
	if !utf8.Valid(values[0]) {
		return 0, false
	}
	return parseDigits(string(values[0]))
}

// ParseString is [Uint64.Parse] for values which have already been
// decoded into strings, e.g. the values of an [http.Header].
func (c Uint64) ParseString(values []string) (uint64, bool) {
	if len(values) != 1 {
		return 0, false
	}
	if !utf8.ValidString(values[0]) {
		return 0, false
	}
	return parseDigits(values[0])
}

// Get parses every value stored in h under this header's name.
func (c Uint64) Get(h http.Header) (uint64, bool) {
	return c.ParseString(h[c.name])
}

// Format encodes v as an ASCII decimal string.
func (c Uint64) Format(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// Set replaces any values stored in h under this header's name with v.
func (c Uint64) Set(h http.Header, v uint64) {
	h[c.name] = []string{c.Format(v)}
}

// ParseDigits parses s using the same strict 1*DIGIT grammar as [Uint64.Parse].
func ParseDigits(s string) (uint64, bool) {
	return parseDigits(s)
}

func parseDigits(s string) (uint64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}

	// only digits remain so the only possible failure is overflow
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
