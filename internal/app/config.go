// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/z5labs/waypoint/config"
	"github.com/z5labs/waypoint/redirect"
)

// Config is the contents of a rules file.
//
//	redirects:
//	  - source: /duck
//	    absolute: https://duckduckgo.com/
//	    temporary: true
//	mounts:
//	  - prefix: /docs
//	    redirects:
//	      - source: /latest
//	        relative: /v2
type Config struct {
	Redirects []redirect.Config `config:"redirects"`
	Mounts    []Mount           `config:"mounts"`
}

// Mount is a group of redirects scoped under a path prefix.
type Mount struct {
	Prefix    string            `config:"prefix"`
	Redirects []redirect.Config `config:"redirects"`
}

// RulesFileNotFoundError is returned by [ReadConfig] when there is no file at Path.
type RulesFileNotFoundError struct {
	Path string
}

// Error implements the [builtin.error] interface.
func (e RulesFileNotFoundError) Error() string {
	return fmt.Sprintf("rules file not found: %s", e.Path)
}

// ReadConfig reads the rules file at path.
func ReadConfig(ctx context.Context, path string) (Config, error) {
	cfg, err := config.Read(ctx, config.YamlFile[Config](path))
	if errors.Is(err, config.ErrValueNotSet) {
		return Config{}, RulesFileNotFoundError{Path: path}
	}
	return cfg, err
}
