package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/xy-planning-network/trailhead/config"
	"github.com/xy-planning-network/trailhead/filter"
	"github.com/xy-planning-network/trailhead/http/middleware"
	"github.com/xy-planning-network/trailhead/http/resp"
	"github.com/xy-planning-network/trailhead/http/router"
	"github.com/xy-planning-network/trailhead/logger"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var envFiles []string
	var rulesPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a server that echoes every normalized request as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFiles...)
			if err != nil {
				return err
			}

			if rulesPath != "" {
				cfg.RulesFile = rulesPath
			}

			rules, err := cfg.Rules()
			if err != nil {
				return err
			}

			return serve(cmd.Context(), cfg, cfg.Logger(), rules)
		},
	}

	cmd.Flags().StringSliceVarP(&envFiles, "env-file", "e", nil, "Path to a .env file; repeatable")
	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "Path to a YAML rules file, overriding "+config.RulesFileEnvVar)

	return cmd
}

// serve runs the web server until ctx is done or a shutdown signal arrives.
//
// These stop serve:
//
// - os.Interrupt
// - syscall.SIGHUP
// - syscall.SIGQUIT
// - syscall.SIGTERM
func serve(ctx context.Context, cfg config.Config, ls logger.Logger, rules filter.Rules) error {
	if ctx == nil {
		ctx = context.Background()
	}

	reg := prometheus.NewRegistry()
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      newHandler(cfg, ls, rules, reg),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		ls.Info(fmt.Sprintf("running web server at %s", srv.Addr), nil)
		serverErr <- srv.ListenAndServe()
	}()

	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM)
	defer stop()

	select {
	case <-signalCtx.Done():
		ls.Info("received shutdown signal", nil)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("could not listen: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	ls.Info("shutting down web server", nil)
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("could not shutdown: %w", err)
	}

	ls.Info("web server shutdown successfully", nil)
	return nil
}

// newHandler routes /metrics to the Prometheus gatherer and everything under /echo
// through request normalization to handleEcho.
func newHandler(cfg config.Config, ls logger.Logger, rules filter.Rules, reg *prometheus.Registry) http.Handler {
	m := middleware.NewMetrics(reg)

	var vs *middleware.Visitors
	if cfg.RateLimit > 0 {
		vs = middleware.NewVisitors(float64(cfg.RateLimit), cfg.RateBurst)
	}

	rt := router.New(cfg.Env)
	rt.OnEveryRequest(
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		m.Instrument(),
		middleware.LogRequest(ls),
		middleware.RateLimit(vs),
	)

	rt.HandleNotFound(http.NotFoundHandler())
	rt.Handle(router.Route{Path: "/metrics", Methods: []string{http.MethodGet}, Handler: m.Handler(reg)})

	echo := handleEcho(resp.NewResponder(resp.WithLogger(ls)))
	rt.HandleRoutes(
		[]router.Route{
			{Path: "/echo", Handler: echo},
			{Path: "/echo/{rest:.*}", Handler: echo},
		},
		middleware.Normalize(ls, m, rules, cfg.RequestOptions()...),
	)

	return handlers.RecoveryHandler()(handlers.ProxyHeaders(rt))
}

// handleEcho writes the normalized request as JSON under "data".
// Requests with invalid fields are answered 422, listing them under "errors".
func handleEcho(d *resp.Responder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nr, err := d.Request(r.Context())
		if err != nil {
			d.Err(w, r, err)
			return
		}

		_ = d.Json(w, r, resp.Data(nr.Snapshot()), resp.Validated(nr))
	}
}
