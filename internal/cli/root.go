// Package cli implements daisyctl, the maintenance command line.
package cli

import (
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"daisy/internal/config"
	"daisy/internal/database"
	"daisy/internal/pkg/logger"
)

// env is shared by every subcommand. It is filled lazily so --help works
// without a database.
type env struct {
	envFile string
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
}

func (e *env) open() error {
	if e.db != nil {
		return nil
	}
	if e.envFile != "" {
		if err := godotenv.Load(e.envFile); err != nil {
			return fmt.Errorf("load %s: %w", e.envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if e.log == nil {
		if e.log, err = logger.New(cfg.AppEnv, cfg.LogLevel); err != nil {
			return err
		}
	}
	db, err := database.Connect(cfg.DatabaseURL, e.log.Named("db"))
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	e.cfg, e.db = cfg, db
	return nil
}

func (e *env) close() {
	if e.db != nil {
		if sqlDB, err := e.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		e.db = nil
	}
	if e.log != nil {
		_ = e.log.Sync()
	}
}

// NewRootCommand builds the daisyctl command tree. log may be nil, in which
// case one is built from the loaded config.
func NewRootCommand(log *zap.Logger, out io.Writer) *cobra.Command {
	e := &env{log: log}

	root := &cobra.Command{
		Use:           "daisyctl",
		Short:         "Maintenance commands for the daisy API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&e.envFile, "env-file", "", "dotenv file to load before reading the environment")

	mediaCmd := &cobra.Command{
		Use:   "media",
		Short: "Manage stored media files",
	}
	mediaCmd.AddCommand(newSweepCommand(e))

	root.AddCommand(
		newMigrateCommand(e),
		newSeedCommand(e),
		newCreateAdminCommand(e),
		mediaCmd,
	)
	return root
}

func newMigrateCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.open(); err != nil {
				return err
			}
			defer e.close()
			if err := database.Migrate(e.db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			e.log.Info("schema migrated", zap.Int("models", len(database.Models())))
			fmt.Fprintln(cmd.OutOrStdout(), "migrated")
			return nil
		},
	}
}
