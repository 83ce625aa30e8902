// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package waypoint

import (
	"context"
	"fmt"
)

func Example() {
	rt := Map(BuilderOf("/one"), func(ctx context.Context, source string) (Runtime, error) {
		return RuntimeFunc(func(ctx context.Context) error {
			fmt.Println("serving", source)
			return nil
		}), nil
	})

	runner := PostRun(
		RecoverPanics(DefaultRunner[Runtime]()),
		HookFunc(func(ctx context.Context) error {
			fmt.Println("flushed")
			return nil
		}),
	)

	err := runner.Run(context.Background(), rt)
	if err != nil {
		fmt.Println(err)
	}
	// Output:
	// serving /one
	// flushed
}
