// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package header

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUint64_Parse(t *testing.T) {
	testCases := []struct {
		name        string
		values      [][]byte
		expectedVal uint64
		expectOk    bool
	}{
		{
			name:   "no header",
			values: [][]byte{},
		},
		{
			name:   "nil values",
			values: nil,
		},
		{
			name:   "empty header",
			values: [][]byte{[]byte("")},
		},
		{
			name:        "zero",
			values:      [][]byte{[]byte("0")},
			expectedVal: 0,
			expectOk:    true,
		},
		{
			name:        "one",
			values:      [][]byte{[]byte("1")},
			expectedVal: 1,
			expectOk:    true,
		},
		{
			name:        "one two three",
			values:      [][]byte{[]byte("123")},
			expectedVal: 123,
			expectOk:    true,
		},
		{
			name:        "leading zeros",
			values:      [][]byte{[]byte("007")},
			expectedVal: 7,
			expectOk:    true,
		},
		{
			name:        "thirty two power plus one",
			values:      [][]byte{[]byte("4294967297")},
			expectedVal: 4_294_967_297,
			expectOk:    true,
		},
		{
			name:        "sixty four power minus one",
			values:      [][]byte{[]byte("18446744073709551615")},
			expectedVal: 18_446_744_073_709_551_615,
			expectOk:    true,
		},
		{
			name:   "sixty four power overflows",
			values: [][]byte{[]byte("18446744073709551616")},
		},
		{
			name:   "comma separator",
			values: [][]byte{[]byte("123,567")},
		},
		{
			name:   "underscore separator",
			values: [][]byte{[]byte("123_567")},
		},
		{
			name:   "plus sign",
			values: [][]byte{[]byte("+123")},
		},
		{
			name:   "minus sign",
			values: [][]byte{[]byte("-1")},
		},
		{
			name:   "decimal point",
			values: [][]byte{[]byte("12.0")},
		},
		{
			name:   "leading whitespace",
			values: [][]byte{[]byte(" 12")},
		},
		{
			name:   "trailing whitespace",
			values: [][]byte{[]byte("12 ")},
		},
		{
			name:   "trailing garbage",
			values: [][]byte{[]byte("12abc")},
		},
		{
			name:   "hex prefix",
			values: [][]byte{[]byte("0x10")},
		},
		{
			name:   "invalid utf8",
			values: [][]byte{{0xff, '1'}},
		},
		{
			name:   "non-ascii digits",
			values: [][]byte{[]byte("١٢٣")},
		},
		{
			name:   "duplicate headers",
			values: [][]byte{[]byte("1"), []byte("2")},
		},
		{
			name:   "duplicate identical headers",
			values: [][]byte{[]byte("42"), []byte("42")},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			val, ok := ContentLength.Parse(tc.values)
			require.Equal(t, tc.expectOk, ok)
			require.Equal(t, tc.expectedVal, val)
		})
	}
}

func TestUint64_Get(t *testing.T) {
	testCases := []struct {
		name        string
		header      http.Header
		expectedVal uint64
		expectOk    bool
	}{
		{
			name:   "missing header",
			header: http.Header{},
		},
		{
			name: "single valid value",
			header: http.Header{
				"Content-Length": []string{"512"},
			},
			expectedVal: 512,
			expectOk:    true,
		},
		{
			name: "multiple values",
			header: http.Header{
				"Content-Length": []string{"512", "512"},
			},
		},
		{
			name: "list in one value",
			header: http.Header{
				"Content-Length": []string{"42, 42"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			val, ok := ContentLength.Get(tc.header)
			require.Equal(t, tc.expectOk, ok)
			require.Equal(t, tc.expectedVal, val)
		})
	}
}

func TestUint64_Set(t *testing.T) {
	c := NewUint64("x-upload-length")
	require.Equal(t, "X-Upload-Length", c.Name())

	h := http.Header{}
	h.Add("X-Upload-Length", "1")
	h.Add("X-Upload-Length", "2")

	c.Set(h, 18_446_744_073_709_551_615)
	require.Equal(t, []string{"18446744073709551615"}, h.Values("X-Upload-Length"))

	val, ok := c.Get(h)
	require.True(t, ok)
	require.Equal(t, uint64(18_446_744_073_709_551_615), val)
}

func TestNewUint64(t *testing.T) {
	testCases := []struct {
		name        string
		headerName  string
		expectPanic bool
	}{
		{
			name:       "valid token",
			headerName: "Content-Length",
		},
		{
			name:        "empty name",
			headerName:  "",
			expectPanic: true,
		},
		{
			name:        "contains space",
			headerName:  "Content Length",
			expectPanic: true,
		},
		{
			name:        "contains colon",
			headerName:  "Content-Length:",
			expectPanic: true,
		},
		{
			name:        "contains crlf",
			headerName:  "X-Evil\r\nSet-Cookie",
			expectPanic: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.expectPanic {
				require.PanicsWithValue(t, InvalidNameError{Name: tc.headerName}, func() {
					NewUint64(tc.headerName)
				})
				return
			}
			require.NotPanics(t, func() {
				NewUint64(tc.headerName)
			})
		})
	}
}
