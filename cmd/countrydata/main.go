// Command countrydata builds the static country reference artifacts.
//
// Usage:
//
//	countrydata build [--force] [--pretty] [--sort-by-name]
//	countrydata fetch [--force]
//	countrydata clean
//	countrydata load
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/albapepper/countrydata/internal/config"
	"github.com/albapepper/countrydata/internal/db"
	"github.com/albapepper/countrydata/internal/fetch"
	"github.com/albapepper/countrydata/internal/pipeline"
	"github.com/albapepper/countrydata/internal/seed"
)

var logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo}))

// flags shared by every command; zero values mean "use config".
var (
	dataDir   string
	outputDir string
	m49Path   string
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:           "countrydata",
		Short:         "Build country, territory and region reference data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Staging directory (default $COUNTRYDATA_DATA_DIR or ./data)")
	root.PersistentFlags().StringVar(&outputDir, "output-dir", "", "Output directory (default: data dir)")
	root.PersistentFlags().StringVar(&m49Path, "m49", "", "Path to the UN M49 CSV (default <data-dir>/un-m49.csv)")

	root.AddCommand(buildCmd())
	root.AddCommand(fetchCmd())
	root.AddCommand(cleanCmd())
	root.AddCommand(loadCmd())

	if err := root.Execute(); err != nil {
		logger.Error("countrydata failed", "error", err)
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// build command
// --------------------------------------------------------------------------

func buildCmd() *cobra.Command {
	var force, pretty, sortByName bool
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Download sources and write territory-names, country-list and regions JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config) error {
				cfg.Force = force
				cfg.Pretty = cfg.Pretty || pretty
				cfg.SortByName = sortByName

				start := time.Now()
				result, err := pipeline.Run(ctx, cfg, fetch.NewFromConfig(cfg, logger), logger)
				if err != nil {
					return err
				}
				logger.Info("Build finished",
					"duration", time.Since(start).Round(time.Millisecond),
					"summary", result.Summary(),
					"countries", result.Paths.Countries,
					"regions", result.Paths.Regions)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Re-download sources even if staged")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent JSON output")
	cmd.Flags().BoolVar(&sortByName, "sort-by-name", false, "Sort the country list by display name instead of source order")
	return cmd
}

// --------------------------------------------------------------------------
// fetch command
// --------------------------------------------------------------------------

func fetchCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Only stage the upstream sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config) error {
				paths, err := fetch.NewFromConfig(cfg, logger).FetchAll(ctx, cfg.Resources, force)
				if err != nil {
					return err
				}
				logger.Info("Sources staged", "count", len(paths), "dir", cfg.DataDir)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Re-download sources even if staged")
	return cmd
}

// --------------------------------------------------------------------------
// clean command
// --------------------------------------------------------------------------

func cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove staged source files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config) error {
				removed, err := fetch.Clean(cfg.DataDir, cfg.StagingSuffix)
				if err != nil {
					return err
				}
				logger.Info("Staged files removed", "count", removed, "dir", cfg.DataDir)
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// load command
// --------------------------------------------------------------------------

func loadCmd() *cobra.Command {
	var sortByName bool
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Build from staged sources and upsert countries and regions into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config) error {
				cfg.SortByName = sortByName
				ds, err := pipeline.Build(cfg, pipeline.StagedPaths(cfg), logger)
				if err != nil {
					return err
				}

				pool, err := db.New(ctx, cfg)
				if err != nil {
					return fmt.Errorf("connect to database: %w", err)
				}
				defer pool.Close()

				start := time.Now()
				result := seed.Load(ctx, pool, ds.Countries, ds.Regions, logger)
				logger.Info("Load finished",
					"duration", time.Since(start).Round(time.Millisecond),
					"summary", result.Summary())
				if len(result.Errors) > 0 {
					for _, e := range result.Errors {
						logger.Error("load error", "error", e)
					}
					return fmt.Errorf("load failed with %d errors", len(result.Errors))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&sortByName, "sort-by-name", false, "Store list positions in display-name order")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// run handles config loading, flag overrides, logger level and context
// cancellation.
func run(fn func(ctx context.Context, cfg *config.Config) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(cfg)

	logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	return fn(ctx, cfg)
}

func applyFlags(cfg *config.Config) {
	if dataDir != "" {
		if cfg.OutputDir == cfg.DataDir {
			cfg.OutputDir = dataDir
		}
		if os.Getenv("COUNTRYDATA_M49_PATH") == "" {
			cfg.M49Path = filepath.Join(dataDir, "un-m49.csv")
		}
		cfg.DataDir = dataDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if m49Path != "" {
		cfg.M49Path = m49Path
	}
}
