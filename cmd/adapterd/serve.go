package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"adapterd/internal/config"
	"adapterd/internal/httpapi"
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		addr            string
		preload         bool
		corsOrigins     string
		generateTimeout int64
		maxBodyBytes    int64
	)
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP daemon",
		Example: "  adapterd serve --model ~/models/codellama-7b.Q4_K_M.gguf --adapters-dir ~/adapters --preload",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") || cfg.Addr == "" {
				cfg.Addr = addr
			}
			if origins := splitCSV(corsOrigins); len(origins) > 0 {
				cfg.CORSOrigins = origins
			}
			if cfg, err = config.Validate(cfg); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, preload, generateTimeout, maxBodyBytes)
		},
	}
	defaultAddr := ":8080"
	if v := os.Getenv("ADAPTERD_ADDR"); v != "" {
		defaultAddr = v
	}
	f := cmd.Flags()
	f.StringVar(&addr, "addr", defaultAddr, "HTTP listen address, e.g. :8080 (defaults ADAPTERD_ADDR)")
	f.BoolVar(&preload, "preload", false, "Load the base model and configured preload checkpoints before serving")
	f.StringVar(&corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins (empty disables CORS)")
	f.Int64Var(&generateTimeout, "generate-timeout", 0, "Seconds a /generate request may wait for a model (0=no limit)")
	f.Int64Var(&maxBodyBytes, "max-body-bytes", 1<<20, "Maximum JSON request body size")
	return cmd
}

func serve(parent context.Context, cfg config.Config, preload bool, generateTimeout, maxBodyBytes int64) error {
	if parent == nil {
		parent = context.Background()
	}
	log := newLogger(cfg.LogLevel, false)
	httpapi.SetLogger(log)
	if cfg.LogLevel != "" {
		httpapi.SetDefaultLogLevel(cfg.LogLevel)
	}
	httpapi.SetDefaultBrand(cfg.DefaultBrand)
	httpapi.SetGenerateTimeoutSeconds(generateTimeout)
	httpapi.SetMaxBodyBytes(maxBodyBytes)
	if len(cfg.CORSOrigins) > 0 {
		httpapi.SetCORSOptions(true, cfg.CORSOrigins, nil, nil)
	}

	svc, err := config.NewService(cfg, log, httpapi.NewMetricsPublisher(prometheus.DefaultRegisterer))
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Warn().Err(err).Msg("close service")
		}
	}()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	httpapi.SetBaseContext(ctx)

	if preload {
		start := time.Now()
		if err := svc.Preload(ctx); err != nil {
			return err
		}
		log.Info().Dur("dur", time.Since(start)).Msg("preload complete")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("model", cfg.ModelPath).Str("adapters_dir", cfg.AdaptersDir).Msg("adapterd listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	// Graceful shutdown (Ctrl+C / SIGTERM)
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
