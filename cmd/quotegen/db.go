package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/locvowork/quotes_service/internal/bootstrap"
	"github.com/locvowork/quotes_service/internal/config"
	"github.com/locvowork/quotes_service/internal/database"
	"github.com/locvowork/quotes_service/internal/logger"
	"github.com/spf13/cobra"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the quotes database",
	}
	cmd.AddCommand(newDBInitCmd(), newSeedConditionsCmd(), newResetSequenceCmd(), newExportCatalogCmd())
	return cmd
}

// withDB loads the environment config, connects and runs fn.
func withDB(fn func(ctx context.Context, db *sql.DB) error) error {
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	logger.InitLogging(config.DefaultEnvConfig.LOG_FILE_PATH, config.DefaultEnvConfig.LOG_LEVEL)

	ctx := context.Background()
	db, err := bootstrap.OpenDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, db)
}

func newDBInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the numbering and conditions tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, db *sql.DB) error {
				// OpenDatabase already ensured the schema.
				fmt.Fprintln(cmd.OutOrStdout(), "schema ready")
				return nil
			})
		},
	}
}

func newSeedConditionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-conditions [conditions.yaml]",
		Short: "Upsert special conditions from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open conditions file: %w", err)
			}
			defer f.Close()

			conds, err := database.LoadConditions(f)
			if err != nil {
				return err
			}
			return withDB(func(ctx context.Context, db *sql.DB) error {
				n, err := database.NewDataSeeder(db).SeedConditions(ctx, conds)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d conditions seeded\n", n)
				return nil
			})
		},
	}
}

func newResetSequenceCmd() *cobra.Command {
	var year, value int
	cmd := &cobra.Command{
		Use:   "reset-sequence",
		Short: "Set the last issued quote number of a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if value < 0 {
				return fmt.Errorf("--value must be >= 0, got %d", value)
			}
			return withDB(func(ctx context.Context, db *sql.DB) error {
				if err := database.NewDataSeeder(db).ResetSequence(ctx, year, value); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "sequence %d reset to %03d\n", year, value)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&year, "year", time.Now().Year(), "Year of the sequence")
	cmd.Flags().IntVar(&value, "value", 0, "Last issued number; the next quote gets value+1")
	return cmd
}

func newExportCatalogCmd() *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export conditions and quote sequences to a workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(ctx context.Context, db *sql.DB) error {
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("failed to create output: %w", err)
				}
				defer f.Close()
				if err := database.NewDataSeeder(db).ExportCatalog(ctx, f); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "catalog written to %s\n", outputPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "catalogo.xlsx", "Output file path")
	return cmd
}
