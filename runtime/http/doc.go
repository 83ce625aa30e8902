// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package http provides a [waypoint.Runtime] which serves HTTP.
//
// A [Runtime] is composed from a listener builder, a handler builder and
// server options, each of which is read through a [config.Reader]:
//
//	rt := http.Build(
//	    http.BuildTCPListener(config.Env("ADDR")),
//	    waypoint.BuilderOf[http.Handler](h),
//	    http.ReadTimeout(config.DurationFromString(config.Env("READ_TIMEOUT"))),
//	)
//
//	err := waypoint.NotifyOnSignal(waypoint.DefaultRunner[http.Runtime](), os.Interrupt).Run(ctx, rt)
//
// When server options are not specified, the following defaults are applied:
//
//   - DisableGeneralOptionsHandler: false
//   - ReadTimeout: 5 seconds
//   - ReadHeaderTimeout: 2 seconds
//   - WriteTimeout: 10 seconds
//   - IdleTimeout: 120 seconds
//   - ShutdownTimeout: 10 seconds
//   - MaxHeaderBytes: 1048576 bytes (1 MB)
package http
