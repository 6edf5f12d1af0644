// Command etl is the nfldw warehouse pipeline CLI.
//
// Usage:
//
//	nfldw-etl schema apply
//	nfldw-etl run --season 2025
//	nfldw-etl extract --season 2025 --force
//	nfldw-etl transform --season 2025
//	nfldw-etl load --season 2025 --full --with-raw
//	nfldw-etl backfill --from 2020 --to 2025 --workers 2
//	nfldw-etl dimdate --from 2015 --to 2030
//	nfldw-etl status
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/statmill/nfldw/internal/config"
	"github.com/statmill/nfldw/internal/db"
	"github.com/statmill/nfldw/internal/etl"
	"github.com/statmill/nfldw/internal/schema"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "nfldw-etl",
		Short: "NFL statistics warehouse pipeline CLI",
	}

	root.AddCommand(schemaCmd())
	root.AddCommand(extractCmd())
	root.AddCommand(transformCmd())
	root.AddCommand(loadCmd())
	root.AddCommand(runCmd())
	root.AddCommand(backfillCmd())
	root.AddCommand(dimdateCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(pruneCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultSeason() int {
	return config.CurrentSeason(time.Now())
}

// --------------------------------------------------------------------------
// schema command
// --------------------------------------------------------------------------

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the warehouse schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "apply",
		Short: "Create all warehouse tables (idempotent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if err := schema.Apply(ctx, pool.Pool); err != nil {
					return err
				}
				logger.Info("Schema applied", "tables", len(schema.Tables()))
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "verify",
		Short: "Check that every declared table exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				if err := schema.Verify(ctx, pool.Pool); err != nil {
					return err
				}
				logger.Info("Schema verified", "tables", len(schema.Tables()))
				return nil
			})
		},
	})
	return cmd
}

// --------------------------------------------------------------------------
// Stage commands
// --------------------------------------------------------------------------

func extractCmd() *cobra.Command {
	var season int
	var force bool
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Download raw nflverse datasets for a season",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(func(ctx context.Context, cfg *config.Config) error {
				p := etl.New(cfg, nil, logger)
				start := time.Now()
				if err := p.Extract(ctx, season, force); err != nil {
					return err
				}
				logger.Info("Extract finished", "season", season,
					"duration", time.Since(start).Round(time.Second))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", defaultSeason(), "Season year")
	cmd.Flags().BoolVar(&force, "force", false, "Re-download existing raw files")
	return cmd
}

func transformCmd() *cobra.Command {
	var season int
	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Transform raw files into dimension and fact sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(func(ctx context.Context, cfg *config.Config) error {
				p := etl.New(cfg, nil, logger)
				start := time.Now()
				summary, err := p.Transform(season)
				if err != nil {
					return err
				}
				logger.Info("Transform finished", "season", season,
					"duration", time.Since(start).Round(time.Second), "summary", summary)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", defaultSeason(), "Season year")
	return cmd
}

func loadCmd() *cobra.Command {
	var season int
	var opts etl.LoadOptions
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Stage transformed sets and upsert into the warehouse",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				p := etl.New(cfg, pool.Pool, logger)
				result := p.Load(ctx, season, opts)
				return reportResult(result)
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", defaultSeason(), "Season year")
	addLoadFlags(cmd, &opts)
	return cmd
}

func runCmd() *cobra.Command {
	var season int
	var opts etl.RunOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Full pipeline: extract, transform, load",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				p := etl.New(cfg, pool.Pool, logger)
				result := p.Run(ctx, season, opts)
				return reportResult(result)
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", defaultSeason(), "Season year")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Re-download existing raw files")
	addLoadFlags(cmd, &opts.LoadOptions)
	return cmd
}

func backfillCmd() *cobra.Command {
	var from, to, workers int
	var opts etl.RunOptions
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Run the full pipeline over a season range",
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == 0 || to == 0 {
				return fmt.Errorf("--from and --to are required")
			}
			if from > to {
				return fmt.Errorf("--from must not exceed --to")
			}
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				p := etl.New(cfg, pool.Pool, logger)
				result := p.Backfill(ctx, from, to, workers, opts)
				return reportResult(result)
			})
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "First season year (inclusive)")
	cmd.Flags().IntVar(&to, "to", 0, "Last season year (inclusive)")
	cmd.Flags().IntVar(&workers, "workers", 2, "Concurrent extract/transform workers")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Re-download existing raw files")
	cmd.Flags().BoolVar(&opts.WithRaw, "with-raw", false, "Also land raw play-by-play in stg_pbp_raw")
	cmd.Flags().BoolVar(&opts.SkipInjuries, "skip-injuries", false, "Skip the injury log")
	return cmd
}

func addLoadFlags(cmd *cobra.Command, opts *etl.LoadOptions) {
	cmd.Flags().BoolVar(&opts.Full, "full", false, "Ignore the incremental watermark")
	cmd.Flags().BoolVar(&opts.WithRaw, "with-raw", false, "Also land raw play-by-play in stg_pbp_raw")
	cmd.Flags().BoolVar(&opts.SkipInjuries, "skip-injuries", false, "Skip the injury log")
}

// --------------------------------------------------------------------------
// dimdate command
// --------------------------------------------------------------------------

func dimdateCmd() *cobra.Command {
	var from, to int
	cmd := &cobra.Command{
		Use:   "dimdate",
		Short: "Bulk-generate the calendar dimension for a year range",
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == 0 || to == 0 {
				return fmt.Errorf("--from and --to are required")
			}
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				n, err := etl.EnsureDates(ctx, pool.Pool, from, to)
				if err != nil {
					return err
				}
				logger.Info("Calendar generated", "from", from, "to", to, "inserted", n)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "First calendar year (inclusive)")
	cmd.Flags().IntVar(&to, "to", 0, "Last calendar year (inclusive)")
	return cmd
}

// --------------------------------------------------------------------------
// status + prune commands
// --------------------------------------------------------------------------

func statusCmd() *cobra.Command {
	var season int
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show pipeline run state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				states, err := etl.ListRunStates(ctx, pool.Pool)
				if err != nil {
					return err
				}
				if len(states) == 0 {
					fmt.Println("no pipeline runs recorded")
				}
				for _, rs := range states {
					gameDate, lastSeason := "-", "-"
					if rs.LastGameDate != nil {
						gameDate = rs.LastGameDate.Format("2006-01-02")
					}
					if rs.LastSeason != nil {
						lastSeason = fmt.Sprintf("%d", *rs.LastSeason)
					}
					fmt.Printf("%-10s last_run=%s last_game_date=%s season=%s\n",
						rs.Pipeline, rs.LastRunAt.Format(time.RFC3339), gameDate, lastSeason)
				}
				if season > 0 {
					loaded, err := etl.SeasonLoaded(ctx, pool.Pool, season)
					if err != nil {
						return err
					}
					fmt.Printf("season %d facts loaded: %t\n", season, loaded)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Also check whether a season's facts are loaded")
	return cmd
}

func pruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove staged rows and raw files past retention",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				p := etl.New(cfg, pool.Pool, logger)
				rows, files := p.Prune(ctx)
				logger.Info("Prune finished", "staged_rows", rows, "raw_files", files)
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// withPool handles config loading, DB connection, and context cancellation.
func withPool(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	return withConfig(func(ctx context.Context, cfg *config.Config) error {
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()
		return fn(ctx, cfg, pool)
	})
}

// withConfig handles config loading and context cancellation for commands
// that never touch the database.
func withConfig(fn func(ctx context.Context, cfg *config.Config) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return fn(ctx, cfg)
}

// reportResult logs collected errors and fails the command if any were
// recorded — cron and CI must see partial failures in the exit code.
func reportResult(result etl.Result) error {
	for _, e := range result.Errors {
		logger.Error("pipeline error", "error", e)
	}
	logger.Info("Pipeline finished",
		"duration", result.Duration.Round(time.Second), "summary", result.Summary())
	if len(result.Errors) > 0 {
		return fmt.Errorf("pipeline completed with %d error(s), first: %s",
			len(result.Errors), result.Errors[0])
	}
	return nil
}
