// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"syscall"

	"github.com/z5labs/waypoint"
	"github.com/z5labs/waypoint/config"
	"github.com/z5labs/waypoint/health"
	"github.com/z5labs/waypoint/internal/logging"
	"github.com/z5labs/waypoint/internal/noop"
	"github.com/z5labs/waypoint/redirect"
	rthttp "github.com/z5labs/waypoint/runtime/http"
	rtotel "github.com/z5labs/waypoint/runtime/otel"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Run executes the waypoint command line with the given arguments.
func Run(ctx context.Context, args ...string) error {
	cmd := buildCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "waypoint",
		Short:         "Serve HTTP redirects defined in a rules file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(
		serveCmd(),
		validateCmd(),
	)
	return cmd
}

func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("WAYPOINT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	err := v.BindPFlags(cmd.Flags())
	if err != nil {
		return nil, err
	}
	return v, nil
}

// viperReader reads key from v, whose value comes from a flag,
// an environment variable or the flag default. The zero value is unset.
func viperReader[T comparable](v *viper.Viper, key string, get func(string) T) config.Reader[T] {
	return config.ReaderFunc[T](func(ctx context.Context) (config.Value[T], error) {
		var zero T
		x := get(key)
		if x == zero {
			return config.Value[T]{}, nil
		}
		return config.ValueOf(x), nil
	})
}

func asRuntime[T waypoint.Runtime](_ context.Context, rt T) (waypoint.Runtime, error) {
	return rt, nil
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the redirects in a rules file",
	}

	flags := cmd.Flags()
	flags.String("addr", rthttp.DefaultAddr, "address to listen on")
	flags.String("rules", "rules.yaml", "path to the rules file")
	flags.String("log-level", "info", "minimum log level")
	flags.Bool("trace-stdout", false, "export traces to stdout")
	flags.Float64("trace-ratio", 1, "fraction of traces to sample when tracing is enabled")
	flags.Duration("shutdown-timeout", 0, "time given to in-flight requests on shutdown")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		v, err := newViper(cmd)
		if err != nil {
			return err
		}

		level, err := logging.ParseLevel(v.GetString("log-level"))
		if err != nil {
			return err
		}
		logHandler := logging.NewHandler(cmd.ErrOrStderr(), level)

		httpRt := BuildRuntime(ServeConfig{
			Addr:       viperReader(v, "addr", v.GetString),
			RulesPath:  v.GetString("rules"),
			LogHandler: logHandler,
			ServerOptions: []rthttp.ServerOption{
				rthttp.ShutdownTimeout(viperReader(v, "shutdown-timeout", v.GetDuration)),
			},
		})

		rt := waypoint.Map(httpRt, asRuntime[rthttp.Runtime])
		if v.GetBool("trace-stdout") {
			rt = waypoint.Map(
				rtotel.BuildRuntime(
					waypoint.BuilderOf[propagation.TextMapPropagator](propagation.TraceContext{}),
					rtotel.BuildTracerProvider(
						rtotel.Resource("waypoint"),
						rtotel.BuildTraceIDRatioBasedSampler(config.ReaderOf(v.GetFloat64("trace-ratio"))),
						rtotel.BuildStdoutSpanExporter(cmd.OutOrStdout()),
					),
					httpRt,
				),
				asRuntime[rtotel.Runtime[*sdktrace.TracerProvider, rthttp.Runtime]],
			)
		}

		runner := waypoint.NotifyOnSignal(
			waypoint.RecoverPanics(waypoint.DefaultRunner[waypoint.Runtime]()),
			os.Interrupt,
			syscall.SIGTERM,
		)
		return runner.Run(cmd.Context(), rt)
	}
	return cmd
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a rules file and print the redirects it defines",
	}
	cmd.Flags().String("rules", "rules.yaml", "path to the rules file")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		v, err := newViper(cmd)
		if err != nil {
			return err
		}

		cfg, err := ReadConfig(cmd.Context(), v.GetString("rules"))
		if err != nil {
			return err
		}
		_, err = NewHandler(cfg)
		if err != nil {
			return err
		}
		return printRules(cmd.OutOrStdout(), cfg)
	}
	return cmd
}

func printRules(w io.Writer, cfg Config) error {
	// NewHandler has already validated every rule
	top, _ := redirect.Rules(cfg.Redirects)
	for _, rule := range top {
		_, err := fmt.Fprintln(w, describe("", rule))
		if err != nil {
			return err
		}
	}
	for _, m := range cfg.Mounts {
		rules, _ := redirect.Rules(m.Redirects)
		for _, rule := range rules {
			_, err := fmt.Fprintln(w, describe(m.Prefix, rule))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func describe(prefix string, rule *redirect.Rule) string {
	path := strings.TrimSuffix(prefix, "/") + rule.Source()
	return fmt.Sprintf(
		"%s -> %s (%s, %d)",
		path,
		rule.Evaluate(path).Location,
		rule.Target().Kind(),
		rule.StatusCode(),
	)
}

// ServeConfig configures the runtime built by [BuildRuntime].
type ServeConfig struct {
	Addr          config.Reader[string]
	RulesPath     string
	LogHandler    slog.Handler
	Registry      *prometheus.Registry
	ServerOptions []rthttp.ServerOption
}

// BuildRuntime returns a [waypoint.Builder] for an HTTP runtime serving
// the redirects in the rules file at sc.RulesPath.
func BuildRuntime(sc ServeConfig) waypoint.Builder[rthttp.Runtime] {
	logHandler := sc.LogHandler
	if logHandler == nil {
		logHandler = noop.LogHandler{}
	}
	log := slog.New(logHandler)
	readiness := &health.Binary{}

	handler := waypoint.BuilderFunc[http.Handler](func(ctx context.Context) (http.Handler, error) {
		cfg, err := ReadConfig(ctx, sc.RulesPath)
		if err != nil {
			return nil, err
		}

		opts := []HandlerOption{Readiness(readiness)}
		if sc.Registry != nil {
			opts = append(opts, Registry(sc.Registry))
		}
		h, err := NewHandler(cfg, opts...)
		if err != nil {
			return nil, err
		}

		log.InfoContext(
			ctx,
			"loaded rules",
			slog.String("path", sc.RulesPath),
			slog.Int("redirects", len(cfg.Redirects)),
			slog.Int("mounts", len(cfg.Mounts)),
		)
		return h, nil
	})

	opts := append([]rthttp.ServerOption{
		rthttp.LogHandler(logHandler),
		rthttp.Readiness(readiness),
	}, sc.ServerOptions...)

	return rthttp.Build(rthttp.BuildTCPListener(sc.Addr), handler, opts...)
}
