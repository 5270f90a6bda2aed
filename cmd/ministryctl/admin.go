package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ministry/internal/service"
	"ministry/internal/validator"
)

func createAdminCmd(app *App) *cobra.Command {
	var req service.RegisterRequest

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an active admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validator.New().Validate(req); err != nil {
				return err
			}
			repo, err := app.repository()
			if err != nil {
				return err
			}


			clock := service.NewClock(app.cfg.Location())
			auth := service.NewAuthService(repo, nil, nil, validator.New(), app.granter(), nil, nil, app.logger, clock)
			admin, err := auth.CreateAdmin(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}

			fmt.Printf("Admin created: %s <%s> (%s)\n", admin.Name, admin.Email, admin.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Login email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Initial password")
	for _, flag := range []string{"name", "email", "password"} {
		_ = cmd.MarkFlagRequired(flag)
	}
	return cmd
}
