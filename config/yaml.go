// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"context"
	"encoding"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/z5labs/waypoint/internal/try"
	"gopkg.in/yaml.v3"
)

// InvalidYamlError occurs if the underlying [io.Reader] contains invalid YAML.
type InvalidYamlError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e InvalidYamlError) Error() string {
	return fmt.Sprintf("invalid yaml: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e InvalidYamlError) Unwrap() error {
	return e.Cause
}

// DecodeError occurs when valid YAML does not fit the shape of the
// target type, e.g. an unknown field or a field of the wrong type.
type DecodeError struct {
	Cause error
}

// Error implements the [builtin.error] interface.
func (e DecodeError) Error() string {
	return fmt.Sprintf("failed to decode config: %s", e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e DecodeError) Unwrap() error {
	return e.Cause
}

// Yaml decodes YAML read from r into a T using its `config` struct tags.
// If r is also an [io.Closer] it is closed once read.
//
// Keys which do not map to any field of T are reported as a [DecodeError].
func Yaml[T any](r io.Reader) Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (_ Value[T], err error) {
		if c, ok := r.(io.Closer); ok {
			defer try.Close(&err, c)
		}

		b, err := io.ReadAll(r)
		if err != nil {
			return Value[T]{}, err
		}

		m := make(map[string]any)
		err = yaml.Unmarshal(b, &m)
		if err != nil {
			return Value[T]{}, InvalidYamlError{Cause: err}
		}

		var v T
		err = decode(m, &v)
		if err != nil {
			return Value[T]{}, DecodeError{Cause: err}
		}
		return ValueOf(v), nil
	})
}

// YamlFile decodes the YAML file at path. A missing file is reported as
// an unset value, see [ReadFile].
func YamlFile[T any](path string) Reader[T] {
	return Bind(ReadFile(path), func(ctx context.Context, f *os.File) Reader[T] {
		return Yaml[T](f)
	})
}

func decode(input map[string]any, v any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "config",
		Result:      v,
		ErrorUnused: true,
		DecodeHook: composeDecodeHooks(
			textUnmarshalerHookFunc(),
			timeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

var errInvalidDecodeCondition = errors.New("invalid decode condition")

// TypeCoercionError occurs when attempting to decode a config
// value into a struct field whose type does not match the config
// value type, up to, coercion.
type TypeCoercionError struct {
	From  reflect.Type
	To    reflect.Type
	Cause error
}

// Error implements the [builtin.error] interface.
func (e TypeCoercionError) Error() string {
	return fmt.Sprintf("failed to coerce value from %s to %s: %s", e.From, e.To, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e TypeCoercionError) Unwrap() error {
	return e.Cause
}

func composeDecodeHooks(hs ...mapstructure.DecodeHookFunc) mapstructure.DecodeHookFuncValue {
	return func(f, t reflect.Value) (any, error) {
		for _, h := range hs {
			v, err := mapstructure.DecodeHookExec(h, f, t)
			if err == nil {
				return v, nil
			}
			if errors.Is(err, errInvalidDecodeCondition) {
				continue
			}
			return nil, TypeCoercionError{
				From:  f.Type(),
				To:    t.Type(),
				Cause: err,
			}
		}
		return f.Interface(), nil
	}
}

func textUnmarshalerHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return nil, errInvalidDecodeCondition
		}
		result := reflect.New(t)
		u, ok := result.Interface().(encoding.TextUnmarshaler)
		if !ok {
			return nil, errInvalidDecodeCondition
		}
		err := u.UnmarshalText([]byte(reflect.ValueOf(data).String()))
		if err != nil {
			return nil, err
		}
		return result.Elem().Interface(), nil
	}
}

func timeDurationHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(time.Duration(0)) {
			return nil, errInvalidDecodeCondition
		}

		switch f.Kind() {
		case reflect.String:
			return time.ParseDuration(reflect.ValueOf(data).String())
		case reflect.Int, reflect.Int64:
			return time.Duration(reflect.ValueOf(data).Int()), nil
		default:
			return nil, errInvalidDecodeCondition
		}
	}
}
