// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package waypoint

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/z5labs/waypoint/internal/try"
)

// Builder represents anything which can construct a value of type T.
type Builder[T any] interface {
	Build(context.Context) (T, error)
}

// BuilderFunc is a functional implementation of the [Builder] interface.
type BuilderFunc[T any] func(context.Context) (T, error)

// Build implements the [Builder] interface.
func (f BuilderFunc[T]) Build(ctx context.Context) (T, error) {
	return f(ctx)
}

// BuilderOf returns a [Builder] which always returns the given value.
func BuilderOf[T any](v T) Builder[T] {
	return BuilderFunc[T](func(_ context.Context) (T, error) {
		return v, nil
	})
}

// MustBuild calls b.Build and panics if an error is returned.
// It is meant to be used inside of other Builders, where the panic
// will be recovered by [RecoverPanics] or the enclosing [BuilderFunc].
func MustBuild[T any](ctx context.Context, b Builder[T]) T {
	v, err := b.Build(ctx)
	if err != nil {
		panic(err)
	}
	return v
}

// Map transforms the output of a [Builder] with the given function.
// f is never called if the underlying [Builder] fails.
func Map[A, B any](b Builder[A], f func(context.Context, A) (B, error)) Builder[B] {
	return BuilderFunc[B](func(ctx context.Context) (B, error) {
		a, err := b.Build(ctx)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(ctx, a)
	})
}

// Bind chains two Builders together, allowing the output of the first
// to decide how the second is constructed.
func Bind[A, B any](b Builder[A], f func(context.Context, A) Builder[B]) Builder[B] {
	return BuilderFunc[B](func(ctx context.Context) (B, error) {
		a, err := b.Build(ctx)
		if err != nil {
			var zero B
			return zero, err
		}
		return f(ctx, a).Build(ctx)
	})
}

// Runtime represents a long running component e.g. an HTTP server.
type Runtime interface {
	Run(context.Context) error
}

// RuntimeFunc is a functional implementation of the [Runtime] interface.
type RuntimeFunc func(context.Context) error

// Run implements the [Runtime] interface.
func (f RuntimeFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Runner builds and runs a [Runtime].
type Runner[T Runtime] interface {
	Run(context.Context, Builder[T]) error
}

// RunnerFunc is a functional implementation of the [Runner] interface.
type RunnerFunc[T Runtime] func(context.Context, Builder[T]) error

// Run implements the [Runner] interface.
func (f RunnerFunc[T]) Run(ctx context.Context, b Builder[T]) error {
	return f(ctx, b)
}

// DefaultRunner returns a [Runner] which simply builds the [Runtime]
// and then runs it.
func DefaultRunner[T Runtime]() Runner[T] {
	return RunnerFunc[T](func(ctx context.Context, b Builder[T]) error {
		rt, err := b.Build(ctx)
		if err != nil {
			return err
		}
		return rt.Run(ctx)
	})
}

// RecoverPanics wraps a [Runner] such that any panic, either while
// building or running, is returned as an error instead.
func RecoverPanics[T Runtime](r Runner[T]) Runner[T] {
	return RunnerFunc[T](func(ctx context.Context, b Builder[T]) (err error) {
		defer try.Recover(&err)

		return r.Run(ctx, b)
	})
}

// NotifyOnSignal wraps a [Runner] such that the [context.Context] given
// to it is cancelled when any of the given signals are received.
func NotifyOnSignal[T Runtime](r Runner[T], signals ...os.Signal) Runner[T] {
	return RunnerFunc[T](func(ctx context.Context, b Builder[T]) error {
		sigCtx, cancel := signal.NotifyContext(ctx, signals...)
		defer cancel()

		return r.Run(sigCtx, b)
	})
}

// Hook is an action performed relative to running a [Runtime],
// e.g. flushing telemetry once it has stopped.
type Hook interface {
	Run(context.Context) error
}

// HookFunc is a func implementation of the [Hook] interface.
type HookFunc func(context.Context) error

// Run implements the [Hook] interface.
func (f HookFunc) Run(ctx context.Context) error {
	return f(ctx)
}

type multiHook []Hook

func (mh multiHook) Run(ctx context.Context) error {
	errs := make([]error, 0, len(mh))
	for _, h := range mh {
		err := h.Run(ctx)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MultiHook returns a [Hook] which runs every hook in order. Every hook
// runs even if an earlier one fails and all errors are joined.
func MultiHook(hooks ...Hook) Hook {
	return multiHook(hooks)
}

// PostRun wraps a [Runner] such that hook always runs once r returns,
// whether r succeeded or not. The hook receives a context which is not
// cancelled along with the one given to Run.
func PostRun[T Runtime](r Runner[T], hook Hook) Runner[T] {
	return RunnerFunc[T](func(ctx context.Context, b Builder[T]) error {
		err := r.Run(ctx, b)
		herr := hook.Run(context.WithoutCancel(ctx))
		return errors.Join(err, herr)
	})
}
