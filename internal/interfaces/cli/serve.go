package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/patent-radar/internal/config"
	"github.com/turtacn/patent-radar/internal/infrastructure/database/postgres"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/patent-radar/internal/infrastructure/monitoring/prometheus"
	httpiface "github.com/turtacn/patent-radar/internal/interfaces/http"
	"github.com/turtacn/patent-radar/internal/interfaces/http/handlers"
	"github.com/turtacn/patent-radar/internal/interfaces/http/middleware"
)

// NewServeCmd builds the API server command.
func NewServeCmd(opts *RootOptions) *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the patradar API server",
		Long: "serve loads configuration, connects every backing store, runs pending\n" +
			"database migrations, and serves the HTTP API until interrupted.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts, skipMigrations)
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not run database migrations on startup")
	return cmd
}

// loadServerConfig loads configuration for server-side commands: the
// --config flag first, then well-known paths, then the environment.
func loadServerConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}

	searchPaths := []string{"./patradar.yaml"}
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".patradar", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/patradar/config.yaml")

	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return config.Load(p)
		}
	}
	return config.LoadFromEnv()
}

func runServe(cmd *cobra.Command, opts *RootOptions, skipMigrations bool) error {
	cfg, err := loadServerConfig(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	logger = logger.Named("serve")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !skipMigrations {
		if err := postgres.RunMigrations(cfg.Postgres.DSN(), cfg.Postgres.MigrationsPath); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
	}

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close()

	svcs, err := buildServices(b)
	if err != nil {
		return err
	}

	collector, err := prometheus.NewMetricsCollector(cfg.Metrics, logger)
	if err != nil {
		return err
	}
	appMetrics := prometheus.NewAppMetrics(collector)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{})
	defer rateLimiter.Stop()

	corsCfg := middleware.DefaultCORSConfig()
	router := httpiface.NewRouter(httpiface.RouterConfig{
		Mode:      cfg.Server.Mode,
		Search:    handlers.NewSearchHandler(svcs.search),
		Patents:   handlers.NewPatentHandler(svcs.patents),
		Lifecycle: handlers.NewLifecycleHandler(svcs.lifecycle),
		Analytics: handlers.NewAnalyticsHandler(svcs.analytics),
		Citations: handlers.NewCitationHandler(svcs.citations),
		Health: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"postgres": func(ctx context.Context) error { return b.pool.Ping(ctx) },
			"redis":    func(ctx context.Context) error { return b.redis.Ping(ctx).Err() },
		}),
		RateLimiter: rateLimiter,
		CORS:        &corsCfg,
		Logger:      logger,
		Metrics:     collector,
		App:         appMetrics,
	})

	server := httpiface.NewServer(httpiface.ServerConfig{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	return server.Shutdown(context.Background())
}
