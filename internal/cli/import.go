package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jengzang/citibike-dashboard-go/internal/database"
	"github.com/jengzang/citibike-dashboard-go/internal/dataset"
	"github.com/jengzang/citibike-dashboard-go/internal/logging"
	"github.com/jengzang/citibike-dashboard-go/internal/repository"
)

func importCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a trip CSV into the SQLite database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd.Flags(), map[string]string{
				"csv_path":  "csv",
				"db_path":   "db",
				"log_level": "log-level",
			})
			if err != nil {
				return err
			}

			logger := logging.New(os.Stderr, cfg.AppEnv, cfg.SlogLevel(), appName)
			slog.SetDefault(logger)

			n, err := ImportCSV(cmd.Context(), cfg.CSVPath, cfg.DBPath, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d trips into %s\n", n, cfg.DBPath)
			return nil
		},
	}

	cmd.Flags().String("csv", "", "Path to the trip CSV file")
	cmd.Flags().String("db", "", "Path to the SQLite database to write")
	cmd.Flags().String("log-level", "info", "Log level: debug, info, warn or error")
	return cmd
}

// ImportCSV parses csvPath and replaces the trips stored in dbPath
func ImportCSV(ctx context.Context, csvPath, dbPath string, logger *slog.Logger) (int64, error) {
	start := time.Now()

	ds, err := dataset.NewCSVSource(csvPath).Load(ctx)
	if err != nil {
		return 0, err
	}

	db, err := database.Open(ctx, database.Config{Path: dbPath, MaxOpenConns: 1})
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := database.NewMigrationManager(db).RunMigrations(ctx); err != nil {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}

	n, err := repository.NewTripRepository(db).ReplaceAll(ctx, ds)
	if err != nil {
		return 0, err
	}
	if err := database.Checkpoint(ctx, db); err != nil {
		return 0, err
	}

	logger.Info("import finished", "csv", csvPath, "db", dbPath, "rows", n, "elapsed", time.Since(start))
	return n, nil
}
