package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ministry/internal/database"
)

func optionalSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("steps must be a non-negative number, got %q", args[0])
	}
	return n, nil
}

func migrateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the SQL schema migrations",
	}

	withMigrator := func(fn func(m *database.Migrator, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			m, err := database.NewMigrator(app.cfg.Database.URL())
			if err != nil {
				return err
			}
			defer func() {
				if err := m.Close(); err != nil {
					app.logger.Error("Failed to close migrator", "error", err)
				}
			}()
			return fn(m, args)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up [n]",
		Short: "Apply n pending migrations, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: withMigrator(func(m *database.Migrator, args []string) error {
			n, err := optionalSteps(args)
			if err != nil {
				return err
			}
			return m.Up(n)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down [n]",
		Short: "Roll back n migrations, one by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: withMigrator(func(m *database.Migrator, args []string) error {
			n, err := optionalSteps(args)
			if err != nil {
				return err
			}
			return m.Down(n)
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(m *database.Migrator, args []string) error {
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			fmt.Printf("version %d (dirty: %t)\n", v, dirty)
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: withMigrator(func(m *database.Migrator, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("version must be a number: %w", err)
			}
			return m.Force(v)
		}),
	})

	return cmd
}
