package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jengzang/citibike-dashboard-go/internal/api"
	"github.com/jengzang/citibike-dashboard-go/internal/config"
	"github.com/jengzang/citibike-dashboard-go/internal/database"
	"github.com/jengzang/citibike-dashboard-go/internal/dataset"
	"github.com/jengzang/citibike-dashboard-go/internal/handler"
	"github.com/jengzang/citibike-dashboard-go/internal/logging"
	"github.com/jengzang/citibike-dashboard-go/internal/metrics"
	"github.com/jengzang/citibike-dashboard-go/internal/middleware"
	"github.com/jengzang/citibike-dashboard-go/internal/service"
	"github.com/jengzang/citibike-dashboard-go/internal/spatial"
	"github.com/jengzang/citibike-dashboard-go/internal/views"
)

func serveCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd.Flags(), map[string]string{
				"http_addr":      "addr",
				"data_source":    "source",
				"csv_path":       "csv",
				"db_path":        "db",
				"map_asset_path": "map",
				"top_n":          "top-n",
				"log_level":      "log-level",
			})
			if err != nil {
				return err
			}

			logger := logging.New(os.Stdout, cfg.AppEnv, cfg.SlogLevel(), appName)
			slog.SetDefault(logger)
			return runServer(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().String("addr", ":8080", "HTTP listen address")
	cmd.Flags().String("source", "csv", "Trip data source: csv or sqlite")
	cmd.Flags().String("csv", "", "Path to the trip CSV file")
	cmd.Flags().String("db", "", "Path to the SQLite database written by import")
	cmd.Flags().String("map", "", "Path to the pre-rendered Kepler.gl map HTML")
	cmd.Flags().Int("top-n", 10, "Number of stations in the top stations chart")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn or error")
	return cmd
}

func runServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := views.LoadTemplates(); err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	src, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	svc := service.NewDashboardService(src, dataset.NewCache(m, logger), service.DashboardConfig{
		MapAssetPath:  cfg.MapAssetPath,
		DefaultCenter: spatial.Coordinate{Lat: cfg.CenterLat, Lng: cfg.CenterLng},
		TopN:          cfg.TopN,
		RollingWindow: cfg.RollingWindow,
	}, m, logger)

	// Warm the cache; a broken dataset is reported per request, not fatal here.
	if ds, err := svc.Dataset(ctx); err != nil {
		logger.Warn("dataset not loaded at startup", "path", cfg.SourcePath(), "error", err)
	} else {
		logger.Info("dataset ready", "rows", ds.Len())
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
		defer limiter.Stop()
	}
	if cfg.JWTSecret == "" {
		logger.Warn("jwt_secret is empty, admin API disabled")
	}

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.SetupRouter(api.Handlers{
		Dashboard:  handler.NewDashboardHandler(svc, cfg.AppTitle, logger),
		Aggregates: handler.NewAggregateHandler(svc),
		Admin:      handler.NewAdminHandler(svc, logger),
		Health:     handler.NewHealthHandler(),
	}, api.RouterOptions{
		Logger:      logger,
		Metrics:     m,
		RateLimiter: limiter,
		JWTSecret:   []byte(cfg.JWTSecret),
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.Handler(router),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", "addr", cfg.HTTPAddr, "source", cfg.DataSource)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openSource returns the configured trip source and a function releasing it
func openSource(ctx context.Context, cfg *config.Config) (dataset.Source, func(), error) {
	if cfg.DataSource != "sqlite" {
		return dataset.NewCSVSource(cfg.CSVPath), func() {}, nil
	}

	if _, err := os.Stat(cfg.DBPath); err != nil {
		return nil, nil, &dataset.SourceNotFoundError{Path: cfg.DBPath, Err: err}
	}
	db, err := database.Open(ctx, database.Config{Path: cfg.DBPath, MaxOpenConns: 4})
	if err != nil {
		return nil, nil, err
	}
	if err := database.NewMigrationManager(db).RunMigrations(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return dataset.NewSQLiteSource(cfg.DBPath, db), func() { db.Close() }, nil
}
