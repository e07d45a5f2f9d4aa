package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/01moynul/tenantdesk-golang/internal/config"
	"github.com/01moynul/tenantdesk-golang/internal/database"
	"github.com/01moynul/tenantdesk-golang/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "seed",
		Short:         "Create, reset and populate the tenantdesk database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newResetCmd(), newSampleCmd(), newLoadCmd())
	return root
}

// env is what every subcommand needs: a migrated database and a logger.
type env struct {
	cfg *config.Config
	db  *gorm.DB
	log *zap.Logger
}

func (e *env) close() {
	if err := database.Close(e.db); err != nil {
		e.log.Warn("Failed to close database", zap.Error(err))
	}
	_ = e.log.Sync()
}

func openEnv() (*env, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat, "tenantdesk-seed")
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	db, err := database.OpenDB(cfg.Database, zlog)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, cfg.Database.ForeignKeys); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &env{cfg: cfg, db: db, log: zlog}, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create every table and constraint",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()
			e.log.Info("Schema is up to date", zap.String("driver", e.cfg.Database.Driver))
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and recreate every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset deletes all data; pass --yes to confirm")
			}
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()
			if err := database.Reset(e.db, e.cfg.Database.ForeignKeys); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			e.log.Info("Database reset", zap.String("driver", e.cfg.Database.Driver))
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm dropping all data")
	return cmd
}

func newSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Insert one shop with a customer, a product, three variants and an order",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()
			return seedSample(cmd.Context(), e.db, e.log)
		},
	}
}

func newLoadCmd() *cobra.Command {
	var opts loadOptions
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a directory of data_*.json files",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()
			return runLoad(cmd.Context(), e.db, e.log, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", "", "Directory containing data_*.json files (required)")
	cmd.Flags().IntVar(&opts.productBatch, "product-batch", 30, "Products per batch")
	cmd.Flags().IntVar(&opts.variantBatch, "variant-batch", 50, "Variants per batch")
	cmd.Flags().IntVar(&opts.orderBatch, "order-batch", 500, "Orders per batch")
	cmd.Flags().IntVar(&opts.lineItemBatch, "line-item-batch", 1000, "Line items per batch")
	cmd.Flags().BoolVar(&opts.atomic, "atomic", false, "Roll back a whole entity file if any batch fails")
	cmd.Flags().BoolVar(&opts.deriveSlugs, "derive-slugs", false, "Build missing product slugs from titles")

	_ = cmd.MarkFlagRequired("dir")
	return cmd
}
