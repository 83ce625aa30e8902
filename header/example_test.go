// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package header_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/z5labs/waypoint/header"
)

func ExampleUint64_Parse() {
	inputs := [][][]byte{
		{[]byte("12345")},
		{[]byte("123,567")},
		{[]byte("123"), []byte("567")},
		nil,
	}
	for _, values := range inputs {
		v, ok := header.ContentLength.Parse(values)
		fmt.Println(v, ok)
	}
	// Output:
	// 12345 true
	// 0 false
	// 0 false
	// 0 false
}

func ExampleUint64_Set() {
	h := http.Header{}
	header.ContentLength.Set(h, 42)

	fmt.Println(h.Get("Content-Length"))
	// Output: 42
}

func ExampleValidate() {
	h := header.Validate(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n, _ := header.FromContext(r.Context(), header.ContentLength)
			fmt.Println("accepted", n, "bytes")
		}),
		header.Required(header.ContentLength),
		header.AtMost(header.ContentLength, 16),
	)

	for _, body := range []string{"hello", strings.Repeat("x", 32)} {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "http://example.com", strings.NewReader(body))
		header.ContentLength.Set(r.Header, uint64(len(body)))

		h.ServeHTTP(w, r)
		fmt.Println(w.Result().StatusCode)
	}
	// Output:
	// accepted 5 bytes
	// 200
	// 413
}
