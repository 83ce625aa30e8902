// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/z5labs/waypoint/header"
)

// BoolFromString parses the string read by r with [strconv.ParseBool].
func BoolFromString(r Reader[string]) Reader[bool] {
	return Map(r, func(ctx context.Context, s string) (bool, error) {
		return strconv.ParseBool(s)
	})
}

// IntFromString parses the string read by r with [strconv.Atoi].
func IntFromString(r Reader[string]) Reader[int] {
	return Map(r, func(ctx context.Context, s string) (int, error) {
		return strconv.Atoi(s)
	})
}

// Int64FromString parses the string read by r as a base 10 int64.
func Int64FromString(r Reader[string]) Reader[int64] {
	return Map(r, func(ctx context.Context, s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

// InvalidUint64Error is returned by [Uint64FromString] for any
// string which is not a plain decimal integer fitting in 64 bits.
type InvalidUint64Error struct {
	Value string
}

// Error implements the [builtin.error] interface.
func (e InvalidUint64Error) Error() string {
	return fmt.Sprintf("config: invalid unsigned integer: %q", e.Value)
}

// Uint64FromString parses the string read by r with the same strict
// grammar used for integer HTTP headers, see [header.ParseDigits].
// Signs, whitespace and separators are all rejected.
func Uint64FromString(r Reader[string]) Reader[uint64] {
	return Map(r, func(ctx context.Context, s string) (uint64, error) {
		v, ok := header.ParseDigits(s)
		if !ok {
			return 0, InvalidUint64Error{Value: s}
		}
		return v, nil
	})
}

// DurationFromString parses the string read by r with [time.ParseDuration].
func DurationFromString(r Reader[string]) Reader[time.Duration] {
	return Map(r, func(ctx context.Context, s string) (time.Duration, error) {
		return time.ParseDuration(s)
	})
}
