// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"context"
	"os"
)

// Env reads the environment variable with the given name. A variable
// which is present but empty is still considered set.
func Env(name string) Reader[string] {
	return ReaderFunc[string](func(ctx context.Context) (Value[string], error) {
		v, ok := os.LookupEnv(name)
		if !ok {
			return Value[string]{}, nil
		}
		return ValueOf(v), nil
	})
}
