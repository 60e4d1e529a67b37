package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"inferd/internal/config"
	"inferd/internal/httpapi"
	"inferd/internal/llama"
	"inferd/internal/manager"
	"inferd/internal/registry"
)

func serveCmd() *cobra.Command {
	var (
		cfgPath       string
		addr          string
		modelsDir     string
		memoryLimitMB int
		maxPoolSize   int
		contextTTLSec int
		sweepSec      int
		drainSec      int
		batchWorkers  int
		logLevel      string
		corsOrigins   []string
		preload       []string
		genTimeoutSec int64
		maxBodyBytes  int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the inference daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.Config
			if cfgPath != "" {
				loaded, err := config.Load(cfgPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			// Explicit flags override file values; flag defaults fill the rest.
			flags := cmd.Flags()
			if flags.Changed("addr") || cfg.Addr == "" {
				cfg.Addr = addr
			}
			if flags.Changed("models-dir") || cfg.ModelsDir == "" {
				cfg.ModelsDir = modelsDir
			}
			if flags.Changed("memory-limit-mb") || cfg.MemoryLimitMB == 0 {
				cfg.MemoryLimitMB = memoryLimitMB
			}
			if flags.Changed("max-pool-size") || cfg.MaxPoolSize == 0 {
				cfg.MaxPoolSize = maxPoolSize
			}
			if flags.Changed("context-ttl") || cfg.ContextTTLSeconds == 0 {
				cfg.ContextTTLSeconds = contextTTLSec
			}
			if flags.Changed("sweep-interval") || cfg.SweepIntervalSeconds == 0 {
				cfg.SweepIntervalSeconds = sweepSec
			}
			if flags.Changed("drain-timeout") || cfg.DrainTimeoutSeconds == 0 {
				cfg.DrainTimeoutSeconds = drainSec
			}
			if flags.Changed("batch-workers") || cfg.BatchWorkers == 0 {
				cfg.BatchWorkers = batchWorkers
			}
			if flags.Changed("log-level") || cfg.LogLevel == "" {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("cors-origins") || len(cfg.CORSOrigins) == 0 {
				cfg.CORSOrigins = corsOrigins
			}
			if flags.Changed("preload") || len(cfg.Preload) == 0 {
				cfg.Preload = preload
			}
			return runServe(cfg, genTimeoutSec, maxBodyBytes)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfgPath, "config", "c", "", "Config file (.yaml, .json or .toml)")
	f.StringVar(&addr, "addr", ":8080", "HTTP listen address")
	f.StringVar(&modelsDir, "models-dir", "~/models/llm", "Directory to scan for *.gguf model files")
	f.IntVar(&memoryLimitMB, "memory-limit-mb", 0, "Estimated model memory budget in MB (0=unlimited)")
	f.IntVar(&maxPoolSize, "max-pool-size", 0, "Max inference contexts per model (0=default)")
	f.IntVar(&contextTTLSec, "context-ttl", 0, "Idle context expiry in seconds (0=default)")
	f.IntVar(&sweepSec, "sweep-interval", 0, "Background cleanup period in seconds (0=default)")
	f.IntVar(&drainSec, "drain-timeout", 0, "Unload drain timeout in seconds (0=default)")
	f.IntVar(&batchWorkers, "batch-workers", 0, "Batch queue worker count (0=default)")
	f.StringVar(&logLevel, "log-level", "info", "Log level: trace|debug|info|warn|error|disabled")
	f.StringSliceVar(&corsOrigins, "cors-origins", nil, "Allowed CORS origins (enables CORS when set)")
	f.StringSliceVar(&preload, "preload", nil, "Model files to load at startup")
	f.Int64Var(&genTimeoutSec, "generate-timeout", 0, "Per-request generation timeout in seconds (0=none)")
	f.Int64Var(&maxBodyBytes, "max-body-bytes", 0, "Max JSON request body size in bytes (0=1MiB)")
	return cmd
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

func runServe(cfg config.Config, genTimeoutSec, maxBody int64) error {
	logger := newLogger(cfg.LogLevel)

	// Canceled on shutdown so in-flight generation stops with the daemon.
	baseCtx, baseCancel := context.WithCancel(context.Background())
	defer baseCancel()

	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Backend:       llama.NewBackend(),
		Publisher:     logPublisher{log: logger},
		MemoryLimitMB: cfg.MemoryLimitMB,
		MaxPoolSize:   cfg.MaxPoolSize,
		ContextTTL:    time.Duration(cfg.ContextTTLSeconds) * time.Second,
		SweepInterval: time.Duration(cfg.SweepIntervalSeconds) * time.Second,
		DrainTimeout:  time.Duration(cfg.DrainTimeoutSeconds) * time.Second,
		BatchWorkers:  cfg.BatchWorkers,
	})

	if report := mgr.SanityCheck(); report.BackendAvailable {
		logger.Info().Int("devices", report.Devices).Msg("native runtime initialized")
	} else {
		logger.Warn().Str("error", report.Error).Msg("native runtime unavailable; inference endpoints will fail")
	}

	prometheus.MustRegister(httpapi.NewManagerCollector(mgr))

	httpapi.SetLogger(logger)
	httpapi.SetModelsDir(cfg.ModelsDir)
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetMaxBodyBytes(maxBody)
	httpapi.SetGenerateTimeoutSeconds(genTimeoutSec)
	if len(cfg.CORSOrigins) > 0 {
		httpapi.SetCORSOptions(true, cfg.CORSOrigins,
			[]string{"GET", "POST", "DELETE", "OPTIONS"},
			[]string{"Content-Type", "X-Log-Level"})
	}

	preloadModels(logger, mgr, cfg)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("models_dir", cfg.ModelsDir).Msg("inferd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		baseCancel()
		if cerr := mgr.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("manager close")
		}
		return err
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown")
	}
	baseCancel()
	if err := mgr.Close(); err != nil {
		logger.Warn().Err(err).Msg("manager close")
	}
	return nil
}

func preloadModels(logger zerolog.Logger, mgr *manager.Manager, cfg config.Config) {
	for _, ref := range cfg.Preload {
		path, err := registry.Resolve(cfg.ModelsDir, ref)
		if err != nil {
			logger.Warn().Str("model", ref).Err(err).Msg("preload skipped")
			continue
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err := mgr.LoadModel(name, manager.ModelConfig{Path: path}); err != nil {
			logger.Warn().Str("model", name).Err(err).Msg("preload failed")
			continue
		}
		logger.Info().Str("model", name).Str("path", path).Msg("preloaded")
	}
}
