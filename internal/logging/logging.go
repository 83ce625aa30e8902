// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package logging builds the structured logger used by the waypoint command.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// UnknownLevelError is returned by [ParseLevel] for unrecognized level names.
type UnknownLevelError struct {
	Level string
	Cause error
}

// Error implements the [builtin.error] interface.
func (e UnknownLevelError) Error() string {
	return fmt.Sprintf("unknown log level %q: %s", e.Level, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e UnknownLevelError) Unwrap() error {
	return e.Cause
}

// ParseLevel parses level names such as "debug", "INFO" or "warn+2".
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(s))
	if err != nil {
		return 0, UnknownLevelError{Level: s, Cause: err}
	}
	return lvl, nil
}

// NewHandler returns a JSON [slog.Handler] writing records at or above
// level to w, correlated with the active trace if there is one.
func NewHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return &traceHandler{
		base: slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		}),
	}
}

// traceHandler adds the trace and span ids of a valid span context
// under an "otel" group.
type traceHandler struct {
	base slog.Handler
}

func (h *traceHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.base.Enabled(ctx, lvl)
}

func (h *traceHandler) Handle(ctx context.Context, record slog.Record) error {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return h.base.Handle(ctx, record)
	}

	r := record.Clone()
	r.AddAttrs(
		slog.Group(
			"otel",
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		),
	)
	return h.base.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{base: h.base.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{base: h.base.WithGroup(name)}
}
