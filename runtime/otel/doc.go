// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otel wraps a [waypoint.Runtime] with OpenTelemetry tracing.
//
// The wrapping [Runtime] registers its tracer provider and propagator
// globally before running the wrapped runtime and shuts the tracer
// provider down once the wrapped runtime returns.
//
//	tp := otel.BuildTracerProvider(
//	    otel.Resource("waypoint"),
//	    otel.BuildTraceIDRatioBasedSampler(config.ReaderOf(1.0)),
//	    otel.BuildStdoutSpanExporter(os.Stdout),
//	)
//
//	rt := otel.BuildRuntime(
//	    waypoint.BuilderOf[propagation.TextMapPropagator](propagation.TraceContext{}),
//	    tp,
//	    httpRuntimeBuilder,
//	)
//
// Any error from shutting down the tracer provider is joined with the
// error of the wrapped runtime.
package otel
