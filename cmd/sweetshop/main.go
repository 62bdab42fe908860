package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/erazemk/sweetshop/internal/client"
	"github.com/erazemk/sweetshop/internal/config"
	"github.com/erazemk/sweetshop/internal/logging"
	"github.com/erazemk/sweetshop/internal/web"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("sweetshop", flag.ContinueOnError)

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")

	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "")
	fs.StringVar(&cfg.APIURL, "u", cfg.APIURL, "")

	fs.DurationVar(&cfg.APITimeout, "timeout", cfg.APITimeout, "")
	fs.DurationVar(&cfg.APITimeout, "t", cfg.APITimeout, "")

	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	fs.BoolVar(&cfg.SecureCookies, "secure-cookies", cfg.SecureCookies, "")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "")

	fs.Usage = func() {
		fmt.Fprintf(os.Stdout, `Usage: sweetshop [flags]

Flags:
  -a, -addr <host:port>   listen address (default: %s)
  -u, -api <url>          sweet shop API base URL (default: %s)
  -t, -timeout <dur>      timeout for each API call (default: %s)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -secure-cookies         mark the session cookie Secure (serve over HTTPS)
  -debug                  log at debug level
  -h, -help               show this help and exit

Every flag can also be set with a SWEETSHOP_* environment variable or in .env.
`, config.Defaults.Addr, config.Defaults.APIURL, config.Defaults.APITimeout)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	closeLog, err := logging.Setup(cfg.LogPath, cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	apiClient := client.New(cfg.APIURL)
	apiClient.HTTP.Timeout = cfg.APITimeout
	apiClient.Metrics = client.NewMetrics(reg)

	router, err := web.NewRouter(apiClient, web.Options{
		SecureCookies: cfg.SecureCookies,
		Gatherer:      reg,
	})
	if err != nil {
		slog.Error("failed to set up web router", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.LoggingMiddleware(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "api", cfg.APIURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
