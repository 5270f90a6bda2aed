package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ministry/internal/openfga"
	"ministry/internal/service"
)

func (a *App) openfgaClient() (*openfga.Client, error) {
	client, err := openfga.NewClient(a.cfg.OpenFGA, a.logger)
	if err != nil {
		return nil, err
	}
	if !client.IsEnabled() {
		return nil, openfga.ErrDisabled
	}
	return client, nil
}

func (a *App) authorization() (*openfga.AuthorizationService, error) {
	client, err := a.openfgaClient()
	if err != nil {
		return nil, err
	}
	return openfga.NewAuthorizationService(client), nil
}

// granter returns nil when OpenFGA is off so admins are created without a tuple.
func (a *App) granter() service.AdminGranter {
	authz, err := a.authorization()
	if err != nil {
		if !errors.Is(err, openfga.ErrDisabled) {
			a.logger.Warn("OpenFGA unavailable, skipping admin grants", "error", err)
		}
		return nil
	}
	return authz
}

func fgaCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fga",
		Short: "Bootstrap OpenFGA for the admin guard",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "write-model",
		Short: "Write the parish authorization model to the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.openfgaClient()
			if err != nil {
				return err
			}
			id, err := client.WriteAuthorizationModel(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Authorization model written: %s\nSet OPENFGA_AUTHORIZATION_MODEL_ID=%s\n", id, id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "grant-admin <adminID>",
		Short: "Grant the parish admin relation to an existing admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adminID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("admin id must be a uuid: %w", err)
			}
			repo, err := app.repository()
			if err != nil {
				return err
			}
			admin, err := repo.GetAdminByID(cmd.Context(), adminID)
			if err != nil {
				return err
			}
			authz, err := app.authorization()
			if err != nil {
				return err
			}
			if err := authz.GrantParishAdmin(cmd.Context(), admin.ID); err != nil {
				return err
			}
			fmt.Printf("Granted parish admin to %s <%s>\n", admin.Name, admin.Email)
			return nil
		},
	})

	return cmd
}
