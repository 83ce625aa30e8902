// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"context"
	"errors"
)

// Value is a configuration value which may or may not be set.
type Value[T any] struct {
	v   T
	set bool
}

// ValueOf returns a set [Value] holding v.
func ValueOf[T any](v T) Value[T] {
	return Value[T]{v: v, set: true}
}

// Value returns the underlying value and whether it was set.
func (v Value[T]) Value() (T, bool) {
	return v.v, v.set
}

// Reader reads a configuration value.
type Reader[T any] interface {
	Read(context.Context) (Value[T], error)
}

// ReaderFunc is a func implementation of [Reader].
type ReaderFunc[T any] func(context.Context) (Value[T], error)

// Read implements the [Reader] interface.
func (f ReaderFunc[T]) Read(ctx context.Context) (Value[T], error) {
	return f(ctx)
}

// ReaderOf returns a [Reader] which always returns v as a set value.
func ReaderOf[T any](v T) Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		return ValueOf(v), nil
	})
}

// ErrValueNotSet is returned by [Read] when the [Reader] has no value.
var ErrValueNotSet = errors.New("config: value not set")

// Read returns the value read by r or [ErrValueNotSet] if there is none.
func Read[T any](ctx context.Context, r Reader[T]) (T, error) {
	var zero T
	val, err := r.Read(ctx)
	if err != nil {
		return zero, err
	}
	v, ok := val.Value()
	if !ok {
		return zero, ErrValueNotSet
	}
	return v, nil
}

// Must is like [Read] but panics on any error, including an unset value.
func Must[T any](ctx context.Context, r Reader[T]) T {
	v, err := Read(ctx, r)
	if err != nil {
		panic(err)
	}
	return v
}

// MustOr is like [Must] but returns defaultValue when r has no value.
func MustOr[T any](ctx context.Context, defaultValue T, r Reader[T]) T {
	return Must(ctx, Default(defaultValue, r))
}

// Default returns defaultValue whenever r has no value.
func Default[T any](defaultValue T, r Reader[T]) Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		val, err := r.Read(ctx)
		if err != nil {
			return Value[T]{}, err
		}
		if _, ok := val.Value(); ok {
			return val, nil
		}
		return ValueOf(defaultValue), nil
	})
}

// Or returns the first set value read from readers, in order.
func Or[T any](readers ...Reader[T]) Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		for _, r := range readers {
			val, err := r.Read(ctx)
			if err != nil {
				return Value[T]{}, err
			}
			if _, ok := val.Value(); ok {
				return val, nil
			}
		}
		return Value[T]{}, nil
	})
}

// Map transforms a set value read from r with f. Unset values stay unset.
func Map[A, B any](r Reader[A], f func(context.Context, A) (B, error)) Reader[B] {
	return ReaderFunc[B](func(ctx context.Context) (Value[B], error) {
		val, err := r.Read(ctx)
		if err != nil {
			return Value[B]{}, err
		}
		a, ok := val.Value()
		if !ok {
			return Value[B]{}, nil
		}
		b, err := f(ctx, a)
		if err != nil {
			return Value[B]{}, err
		}
		return ValueOf(b), nil
	})
}

// Bind reads from the [Reader] f returns for a set value read from r.
// Unset values stay unset.
func Bind[A, B any](r Reader[A], f func(context.Context, A) Reader[B]) Reader[B] {
	return ReaderFunc[B](func(ctx context.Context) (Value[B], error) {
		val, err := r.Read(ctx)
		if err != nil {
			return Value[B]{}, err
		}
		a, ok := val.Value()
		if !ok {
			return Value[B]{}, nil
		}
		return f(ctx, a).Read(ctx)
	})
}
