// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package redirect

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig_Rule(t *testing.T) {
	testCases := []struct {
		name           string
		cfg            Config
		expectedErr    error
		expectedTarget Target
		expectedStatus int
	}{
		{
			name:           "source only uses the defaults",
			cfg:            Config{Source: "/one"},
			expectedTarget: Absolute("/"),
			expectedStatus: http.StatusPermanentRedirect,
		},
		{
			name:           "absolute and temporary",
			cfg:            Config{Source: "/duck", Absolute: "https://duckduckgo.com/", Temporary: true},
			expectedTarget: Absolute("https://duckduckgo.com/"),
			expectedStatus: http.StatusTemporaryRedirect,
		},
		{
			name:           "relative with status",
			cfg:            Config{Source: "/old", Relative: "/new", Status: http.StatusMovedPermanently},
			expectedTarget: Relative("/new"),
			expectedStatus: http.StatusMovedPermanently,
		},
		{
			name:           "trailing dots are literal",
			cfg:            Config{Source: "/files...", Relative: "/all"},
			expectedTarget: Relative("/all"),
			expectedStatus: http.StatusPermanentRedirect,
		},
		{
			name:        "missing source",
			cfg:         Config{Absolute: "/two"},
			expectedErr: ErrMissingSource,
		},
		{
			name:        "source without a leading slash",
			cfg:         Config{Source: "example.com/one"},
			expectedErr: ErrInvalidSource,
		},
		{
			name:        "source with whitespace",
			cfg:         Config{Source: "/one two"},
			expectedErr: ErrInvalidSource,
		},
		{
			name:        "wildcard source",
			cfg:         Config{Source: "/users/{id}"},
			expectedErr: ErrWildcardSource,
		},
		{
			name:        "percent-encoded source",
			cfg:         Config{Source: "/caf%C3%A9"},
			expectedErr: ErrEscapedSource,
		},
		{
			name:        "source with an invalid escape",
			cfg:         Config{Source: "/100%"},
			expectedErr: ErrEscapedSource,
		},
		{
			name:        "both targets",
			cfg:         Config{Source: "/one", Absolute: "/a", Relative: "/b"},
			expectedErr: ErrAmbiguousTarget,
		},
		{
			name:        "temporary and status",
			cfg:         Config{Source: "/one", Temporary: true, Status: http.StatusFound},
			expectedErr: ErrAmbiguousStatus,
		},
		{
			name:        "status below range",
			cfg:         Config{Source: "/one", Status: 99},
			expectedErr: ErrStatusOutOfBounds,
		},
		{
			name:        "informational status",
			cfg:         Config{Source: "/one", Status: http.StatusContinue},
			expectedErr: ErrStatusOutOfBounds,
		},
		{
			name:        "status above range",
			cfg:         Config{Source: "/one", Status: 1000},
			expectedErr: ErrStatusOutOfBounds,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rule, err := tc.cfg.Rule()
			if tc.expectedErr != nil {
				require.ErrorIs(t, err, tc.expectedErr)

				var ice InvalidConfigError
				require.ErrorAs(t, err, &ice)
				require.Equal(t, tc.cfg.Source, ice.Source)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.cfg.Source, rule.Source())
			require.Equal(t, tc.expectedTarget, rule.Target())
			require.Equal(t, tc.expectedStatus, rule.StatusCode())
		})
	}
}

func TestRules(t *testing.T) {
	t.Run("will return every rule in order", func(t *testing.T) {
		rules, err := Rules([]Config{
			{Source: "/one", Relative: "/two"},
			{Source: "/three", Absolute: "/four"},
		})
		require.NoError(t, err)
		require.Len(t, rules, 2)
		require.Equal(t, "/one", rules[0].Source())
		require.Equal(t, "/three", rules[1].Source())
	})

	t.Run("will report every invalid config", func(t *testing.T) {
		rules, err := Rules([]Config{
			{Source: "/one", Relative: "/two"},
			{},
			{Source: "/x", Status: 5},
		})
		require.Nil(t, rules)
		require.True(t, errors.Is(err, ErrMissingSource))
		require.True(t, errors.Is(err, ErrStatusOutOfBounds))
	})
}
