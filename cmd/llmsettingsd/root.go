package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"llmsettings/internal/config"
	"llmsettings/internal/httpapi"
	"llmsettings/internal/modellist"
	"llmsettings/pkg/types"
)

// rootOptions holds persistent flag values. Empty means "not given".
type rootOptions struct {
	configPath string
	envFile    string
	addr       string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "llmsettingsd",
		Short:         "Language model provider settings service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (.yaml, .yml, .json or .toml)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Optional dotenv file loaded before LLMSETTINGS_* overrides")
	root.PersistentFlags().StringVar(&opts.addr, "addr", "", "HTTP listen address, e.g. :8080")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error")

	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP API (default)",
		Example: "  llmsettingsd serve --config llmsettings.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	providersCmd := &cobra.Command{
		Use:   "providers",
		Short: "Print the stored provider configuration as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProviders(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	fetchCmd := &cobra.Command{
		Use:     "fetch <provider>",
		Short:   "Fetch a provider's remote model list once and store it",
		Example: "  llmsettingsd fetch ollama",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), opts, types.ProviderKey(args[0]), cmd.OutOrStdout())
		},
	}
	root.AddCommand(serveCmd, providersCmd, fetchCmd)
	return root
}

// loadConfig resolves configuration: dotenv file, config file, LLMSETTINGS_*
// environment, then flags, then defaults.
func loadConfig(opts *rootOptions) (config.Config, error) {
	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, fmt.Errorf("load %s: %w", opts.envFile, err)
		}
	}
	var cfg config.Config
	if opts.configPath != "" {
		c, err := config.Load(opts.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("env overrides: %w", err)
	}
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// configureHTTP applies cfg to the httpapi package settings.
func configureHTTP(ctx context.Context, cfg config.Config, logger zerolog.Logger) {
	httpapi.SetLogger(logger)
	httpapi.SetDefaultLogLevel(httpLogLevel(cfg.LogLevel))
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	requestTimeout, _ := cfg.RequestTimeoutDuration()
	httpapi.SetRequestTimeout(requestTimeout)
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders)
	httpapi.SetBaseContext(ctx)
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	configureHTTP(ctx, cfg, logger)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(a.service()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("store", cfg.Store.Driver).Msg("llmsettingsd listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	a.Start()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

func runProviders(ctx context.Context, opts *rootOptions, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	p, err := openPersister(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer closeQuietly(p)
	tree, err := p.Load(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(types.ProvidersResponse{Providers: tree.LanguageModel})
}

func runFetch(ctx context.Context, opts *rootOptions, provider types.ProviderKey, out io.Writer) error {
	if !types.IsKnownProvider(provider) {
		return fmt.Errorf("unknown provider: %s", provider)
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	res := a.cache.Revalidate(ctx, provider, true)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res.Data); err != nil {
		return err
	}
	if res.State == modellist.StateFailed {
		return res.Err
	}
	return nil
}

// httpLogLevel maps the process log level to the request log level.
func httpLogLevel(level string) string {
	switch level {
	case "debug", "trace":
		return "debug"
	case "warn", "error", "fatal", "panic":
		return "error"
	case "disabled":
		return "off"
	default:
		return "info"
	}
}
