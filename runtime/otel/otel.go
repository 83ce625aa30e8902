// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otel

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/z5labs/waypoint"
	"github.com/z5labs/waypoint/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InvalidRatioError is returned when a sampling ratio is outside of [0, 1].
type InvalidRatioError struct {
	Ratio float64
}

// Error implements the [builtin.error] interface.
func (e InvalidRatioError) Error() string {
	return fmt.Sprintf("sampling ratio must be between 0 and 1: %v", e.Ratio)
}

// Resource returns a [waypoint.Builder] for a resource identifying the service.
func Resource(serviceName string) waypoint.Builder[*resource.Resource] {
	return waypoint.BuilderFunc[*resource.Resource](func(ctx context.Context) (*resource.Resource, error) {
		return resource.NewSchemaless(
			attribute.String("service.name", serviceName),
		), nil
	})
}

// BuildTraceIDRatioBasedSampler samples the given ratio of traces. An unset
// ratio samples every trace.
func BuildTraceIDRatioBasedSampler(ratio config.Reader[float64]) waypoint.Builder[sdktrace.Sampler] {
	return waypoint.BuilderFunc[sdktrace.Sampler](func(ctx context.Context) (sdktrace.Sampler, error) {
		r := config.MustOr(ctx, 1.0, ratio)
		if r < 0 || r > 1 {
			return nil, InvalidRatioError{Ratio: r}
		}
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(r)), nil
	})
}

// BuildStdoutSpanExporter writes spans to w in a human-readable format.
func BuildStdoutSpanExporter(w io.Writer) waypoint.Builder[sdktrace.SpanExporter] {
	return waypoint.BuilderFunc[sdktrace.SpanExporter](func(ctx context.Context) (sdktrace.SpanExporter, error) {
		return stdouttrace.New(stdouttrace.WithWriter(w))
	})
}

// BuildTracerProvider batches spans from the sampler into the exporter.
func BuildTracerProvider(
	resourceBuilder waypoint.Builder[*resource.Resource],
	samplerBuilder waypoint.Builder[sdktrace.Sampler],
	exporterBuilder waypoint.Builder[sdktrace.SpanExporter],
) waypoint.Builder[*sdktrace.TracerProvider] {
	return waypoint.BuilderFunc[*sdktrace.TracerProvider](func(ctx context.Context) (*sdktrace.TracerProvider, error) {
		res, err := resourceBuilder.Build(ctx)
		if err != nil {
			return nil, err
		}
		sampler, err := samplerBuilder.Build(ctx)
		if err != nil {
			return nil, err
		}
		exporter, err := exporterBuilder.Build(ctx)
		if err != nil {
			return nil, err
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sampler),
			sdktrace.WithBatcher(exporter),
		)
		return tp, nil
	})
}

// Runtime runs R with T registered as the global tracer provider.
type Runtime[T trace.TracerProvider, R waypoint.Runtime] struct {
	textMapPropagator propagation.TextMapPropagator
	tracerProvider    T
	runtime           R
}

// BuildRuntime builds the propagator and tracer provider before the
// wrapped runtime, so the runtime may capture the global providers.
func BuildRuntime[T trace.TracerProvider, R waypoint.Runtime](
	textMapPropagatorBuilder waypoint.Builder[propagation.TextMapPropagator],
	tracerProviderBuilder waypoint.Builder[T],
	runtimeBuilder waypoint.Builder[R],
) waypoint.Builder[Runtime[T, R]] {
	return waypoint.BuilderFunc[Runtime[T, R]](func(ctx context.Context) (Runtime[T, R], error) {
		var rt Runtime[T, R]

		propagator, err := textMapPropagatorBuilder.Build(ctx)
		if err != nil {
			return rt, err
		}
		tp, err := tracerProviderBuilder.Build(ctx)
		if err != nil {
			return rt, err
		}

		otel.SetTextMapPropagator(propagator)
		otel.SetTracerProvider(tp)

		runtime, err := runtimeBuilder.Build(ctx)
		if err != nil {
			if sd, ok := any(tp).(shutdowner); ok {
				err = errors.Join(err, sd.Shutdown(ctx))
			}
			return rt, err
		}

		rt = Runtime[T, R]{
			textMapPropagator: propagator,
			tracerProvider:    tp,
			runtime:           runtime,
		}
		return rt, nil
	})
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// Run implements the [waypoint.Runtime] interface.
func (r Runtime[T, R]) Run(ctx context.Context) error {
	otel.SetTextMapPropagator(r.textMapPropagator)
	otel.SetTracerProvider(r.tracerProvider)

	var hooks []waypoint.Hook
	if sd, ok := any(r.tracerProvider).(shutdowner); ok {
		hooks = append(hooks, waypoint.HookFunc(sd.Shutdown))
	}

	err := r.runtime.Run(ctx)
	herr := waypoint.MultiHook(hooks...).Run(context.WithoutCancel(ctx))
	return errors.Join(err, herr)
}
