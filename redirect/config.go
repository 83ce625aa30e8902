// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package redirect

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Config describes a [Rule] in a config file.
//
//	redirects:
//	  - source: /duck
//	    absolute: https://duckduckgo.com/
//	    temporary: true
//	  - source: /old
//	    relative: /new
//	    status: 301
type Config struct {
	Source    string `config:"source"`
	Absolute  string `config:"absolute"`
	Relative  string `config:"relative"`
	Temporary bool   `config:"temporary"`
	Status    int    `config:"status"`
}

var (
	ErrMissingSource     = errors.New("source path must be set")
	ErrInvalidSource     = errors.New("source path must start with '/' and must not contain whitespace")
	ErrWildcardSource    = errors.New("source path must not contain wildcards")
	ErrEscapedSource     = errors.New("source path must not contain percent-encoded characters")
	ErrAmbiguousTarget   = errors.New("only one of absolute or relative may be set")
	ErrAmbiguousStatus   = errors.New("only one of temporary or status may be set")
	ErrStatusOutOfBounds = errors.New("status must be between 200 and 999")
)

// InvalidConfigError reports why a [Config] could not be turned into a [Rule].
type InvalidConfigError struct {
	Source string
	Cause  error
}

// Error implements the [builtin.error] interface.
func (e InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid redirect for source %q: %s", e.Source, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e InvalidConfigError) Unwrap() error {
	return e.Cause
}

// Rule validates cfg and builds the [Rule] it describes.
func (cfg Config) Rule() (*Rule, error) {
	err := cfg.validate()
	if err != nil {
		return nil, InvalidConfigError{Source: cfg.Source, Cause: err}
	}

	var opts []Option
	switch {
	case cfg.Absolute != "":
		opts = append(opts, ToAbsolute(cfg.Absolute))
	case cfg.Relative != "":
		opts = append(opts, ToRelative(cfg.Relative))
	}
	switch {
	case cfg.Temporary:
		opts = append(opts, Temporary())
	case cfg.Status != 0:
		opts = append(opts, WithStatus(cfg.Status))
	}
	return From(cfg.Source, opts...), nil
}

func (cfg Config) validate() error {
	if cfg.Source == "" {
		return ErrMissingSource
	}
	if !strings.HasPrefix(cfg.Source, "/") || strings.IndexFunc(cfg.Source, unicode.IsSpace) >= 0 {
		return ErrInvalidSource
	}
	// http.ServeMux would treat these as wildcards, which breaks
	// the suffix stripping done for relative targets.
	if strings.ContainsAny(cfg.Source, "{}") {
		return ErrWildcardSource
	}
	// http.ServeMux unescapes patterns but rules are evaluated against the
	// decoded request path, so an escaped source could never be stripped.
	if strings.Contains(cfg.Source, "%") {
		return ErrEscapedSource
	}
	if cfg.Absolute != "" && cfg.Relative != "" {
		return ErrAmbiguousTarget
	}
	if cfg.Temporary && cfg.Status != 0 {
		return ErrAmbiguousStatus
	}
	// 1xx codes are informational and never end a response.
	if cfg.Status != 0 && (cfg.Status < 200 || cfg.Status > 999) {
		return ErrStatusOutOfBounds
	}
	return nil
}

// Rules builds a [Rule] for every [Config]. All invalid configs are
// reported together.
func Rules(cfgs []Config) ([]*Rule, error) {
	rules := make([]*Rule, 0, len(cfgs))
	var errs []error
	for _, cfg := range cfgs {
		rule, err := cfg.Rule()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rules = append(rules, rule)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return rules, nil
}
