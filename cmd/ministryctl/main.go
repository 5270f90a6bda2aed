// Command ministryctl administers the ministry database: schema migrations,
// admin accounts, seed data and the OpenFGA bootstrap.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"ministry/internal/config"
	"ministry/internal/database"
	"ministry/internal/logger"
	"ministry/internal/repository"
)

// App holds what the subcommands share. Connections are opened lazily so
// commands that do not need the database never dial it.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
}

func (a *App) repository() (*repository.DatabaseRepository, error) {
	if a.db == nil {
		db, err := database.NewPostgresDatabase(a.cfg.Database)
		if err != nil {
			return nil, err
		}
		a.db = db
	}
	return repository.NewDatabaseRepository(a.db), nil
}

func (a *App) close() {
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.logger.Error("Failed to close database", "error", err)
		}
	}
}

func main() {
	app := &App{}
	var envFile string

	rootCmd := &cobra.Command{
		Use:          "ministryctl",
		Short:        "Administer the parish ministry service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			app.cfg = cfg
			app.logger = logger.New(cfg)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.close()
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load before reading the environment")

	rootCmd.AddCommand(migrateCmd(app))
	rootCmd.AddCommand(createAdminCmd(app))
	rootCmd.AddCommand(seedCmd(app))
	rootCmd.AddCommand(fgaCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
