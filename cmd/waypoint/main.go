// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command waypoint serves the HTTP redirects defined in a rules file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/z5labs/waypoint/internal/app"
)

func main() {
	err := app.Run(context.Background(), os.Args[1:]...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
