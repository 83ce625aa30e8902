// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package waypoint provides the building blocks for running the waypoint
// redirect service.
//
// The package is built around three abstractions:
//
//   - Builder[T]: constructs a component with context support
//   - Runtime: a long running component, e.g. an HTTP server
//   - Runner[T]: builds a Runtime and runs it
//
// Builders compose with [Map] and [Bind]. Runners compose by wrapping:
//
//	runner := waypoint.PostRun(
//	    waypoint.NotifyOnSignal(
//	        waypoint.RecoverPanics(waypoint.DefaultRunner[http.Runtime]()),
//	        os.Interrupt,
//	    ),
//	    waypoint.HookFunc(tracerProvider.Shutdown),
//	)
//	err := runner.Run(ctx, rt)
//
// The redirects themselves live in the redirect package and are routed
// with the mux package.
package waypoint
