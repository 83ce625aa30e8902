// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/z5labs/waypoint"
	"github.com/z5labs/waypoint/config"
	"github.com/z5labs/waypoint/health"
	"github.com/z5labs/waypoint/internal/noop"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

// DefaultAddr is the address listened on when none is configured.
const DefaultAddr = ":8080"

// BuildTCPListener creates a [waypoint.Builder] that listens on the TCP
// address read from addr, or [DefaultAddr] if it is not set.
func BuildTCPListener(addr config.Reader[string]) waypoint.Builder[net.Listener] {
	return waypoint.BuilderFunc[net.Listener](func(ctx context.Context) (net.Listener, error) {
		var a string
		err := readOr(ctx, &a, DefaultAddr, addr)
		if err != nil {
			return nil, err
		}
		return net.Listen("tcp", a)
	})
}

// Server holds the configuration for an HTTP server.
type Server struct {
	disableGeneralOptionsHandler config.Reader[bool]
	readTimeout                  config.Reader[time.Duration]
	readHeaderTimeout            config.Reader[time.Duration]
	writeTimeout                 config.Reader[time.Duration]
	idleTimeout                  config.Reader[time.Duration]
	shutdownTimeout              config.Reader[time.Duration]
	maxHeaderBytes               config.Reader[int]

	logHandler slog.Handler
	readiness  *health.Binary
}

// ServerOption is a functional option for configuring a [Server].
type ServerOption func(*Server)

// DisableGeneralOptionsHandler controls whether the server automatically
// replies to "OPTIONS *" requests.
func DisableGeneralOptionsHandler(disable config.Reader[bool]) ServerOption {
	return func(srv *Server) {
		srv.disableGeneralOptionsHandler = disable
	}
}

// ReadTimeout sets the maximum duration for reading the entire request,
// including the body. The default is 5 seconds.
func ReadTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(srv *Server) {
		srv.readTimeout = d
	}
}

// ReadHeaderTimeout sets the maximum duration for reading request headers.
// The default is 2 seconds.
func ReadHeaderTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(srv *Server) {
		srv.readHeaderTimeout = d
	}
}

// WriteTimeout sets the maximum duration before timing out writes of the
// response. The default is 10 seconds.
func WriteTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(srv *Server) {
		srv.writeTimeout = d
	}
}

// IdleTimeout sets the maximum duration to wait for the next request when
// keep-alives are enabled. The default is 120 seconds.
func IdleTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(srv *Server) {
		srv.idleTimeout = d
	}
}

// ShutdownTimeout bounds how long in-flight requests are given to complete
// once the server starts shutting down. The default is 10 seconds.
func ShutdownTimeout(d config.Reader[time.Duration]) ServerOption {
	return func(srv *Server) {
		srv.shutdownTimeout = d
	}
}

// MaxHeaderBytes sets the maximum number of bytes the server will read
// parsing the request header's keys and values, including the request line.
// The default is 1048576 bytes (1 MB).
func MaxHeaderBytes(n config.Reader[int]) ServerOption {
	return func(srv *Server) {
		srv.maxHeaderBytes = n
	}
}

// LogHandler sets the [slog.Handler] used for server lifecycle logs.
// By default nothing is logged.
func LogHandler(h slog.Handler) ServerOption {
	return func(srv *Server) {
		srv.logHandler = h
	}
}

// Readiness is marked unhealthy as soon as the server begins shutting down.
func Readiness(m *health.Binary) ServerOption {
	return func(srv *Server) {
		srv.readiness = m
	}
}

// Runtime is a [waypoint.Runtime] serving HTTP until its context is cancelled.
type Runtime struct {
	ls              net.Listener
	srv             *http.Server
	shutdownTimeout time.Duration
	log             *slog.Logger
	readiness       *health.Binary
}

// Addr returns the address the runtime is listening on.
func (r Runtime) Addr() net.Addr {
	return r.ls.Addr()
}

// Run serves HTTP requests and blocks until ctx is cancelled or serving
// fails. Once ctx is cancelled the server is gracefully shut down and Run
// returns nil, unless shutting down itself fails.
func (r Runtime) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r.log.InfoContext(ctx, "started service", slog.String("addr", r.ls.Addr().String()))
		return r.srv.Serve(r.ls)
	})
	g.Go(func() error {
		<-gctx.Done()

		r.log.InfoContext(ctx, "shutting down service")
		if r.readiness != nil {
			r.readiness.MarkUnhealthy()
		}

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.shutdownTimeout)
		defer cancel()
		return r.srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	r.log.ErrorContext(ctx, "service stopped unexpectedly", slog.Any("error", err))
	return err
}

// Build creates a [waypoint.Builder] for a [Runtime] serving the handler
// built by b on the listener built by listener. Every request is traced
// with [otelhttp.NewHandler].
func Build(listener waypoint.Builder[net.Listener], b waypoint.Builder[http.Handler], opts ...ServerOption) waypoint.Builder[Runtime] {
	return waypoint.BuilderFunc[Runtime](func(ctx context.Context) (rt Runtime, err error) {
		srv := Server{
			logHandler: noop.LogHandler{},
		}
		for _, opt := range opts {
			opt(&srv)
		}

		h, err := b.Build(ctx)
		if err != nil {
			return Runtime{}, err
		}

		httpServer := &http.Server{
			Handler: otelhttp.NewHandler(h, "waypoint"),
		}
		err = errors.Join(
			readOr(ctx, &httpServer.DisableGeneralOptionsHandler, false, srv.disableGeneralOptionsHandler),
			readOr(ctx, &httpServer.ReadTimeout, 5*time.Second, srv.readTimeout),
			readOr(ctx, &httpServer.ReadHeaderTimeout, 2*time.Second, srv.readHeaderTimeout),
			readOr(ctx, &httpServer.WriteTimeout, 10*time.Second, srv.writeTimeout),
			readOr(ctx, &httpServer.IdleTimeout, 120*time.Second, srv.idleTimeout),
			readOr(ctx, &httpServer.MaxHeaderBytes, 1048576, srv.maxHeaderBytes),
			readOr(ctx, &rt.shutdownTimeout, 10*time.Second, srv.shutdownTimeout),
		)
		if err != nil {
			return Runtime{}, err
		}
		httpServer.ErrorLog = slog.NewLogLogger(srv.logHandler, slog.LevelError)

		ls, err := listener.Build(ctx)
		if err != nil {
			return Runtime{}, err
		}

		rt.ls = ls
		rt.srv = httpServer
		rt.log = slog.New(srv.logHandler)
		rt.readiness = srv.readiness
		return rt, nil
	})
}

func readOr[T any](ctx context.Context, dst *T, defaultValue T, r config.Reader[T]) error {
	if r == nil {
		*dst = defaultValue
		return nil
	}
	v, err := config.Read(ctx, config.Default(defaultValue, r))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
