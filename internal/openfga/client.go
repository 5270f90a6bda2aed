package openfga

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/openfga/go-sdk/client"
	"github.com/openfga/go-sdk/credentials"

	"ministry/internal/config"
)

// Client wraps the OpenFGA SDK client. A disabled client allows every check.
type Client struct {
	fga    *client.OpenFgaClient
	config config.OpenFGAConfig
	logger *slog.Logger
}

func NewClient(cfg config.OpenFGAConfig, logger *slog.Logger) (*Client, error) {
	if !cfg.Enabled {
		logger.Info("OpenFGA is disabled")
		return &Client{config: cfg, logger: logger}, nil
	}

	clientCfg := &client.ClientConfiguration{
		ApiUrl:               cfg.APIURL,
		StoreId:              cfg.StoreID,
		AuthorizationModelId: cfg.AuthorizationModelID,
	}
	if cfg.APIToken != "" {
		clientCfg.Credentials = &credentials.Credentials{
			Method: credentials.CredentialsMethodApiToken,
			Config: &credentials.Config{ApiToken: cfg.APIToken},
		}
	}

	fgaClient, err := client.NewSdkClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenFGA client: %w", err)
	}

	logger.Info("OpenFGA client initialized", "store_id", cfg.StoreID, "model_id", cfg.AuthorizationModelID)
	return &Client{fga: fgaClient, config: cfg, logger: logger}, nil
}

func (c *Client) IsEnabled() bool {
	return c.config.Enabled && c.fga != nil
}

// VerifyConnection checks that the configured store is reachable.
func (c *Client) VerifyConnection(ctx context.Context) error {
	if !c.IsEnabled() {
		return nil
	}
	store, err := c.fga.GetStore(ctx).Execute()
	if err != nil {
		return fmt.Errorf("failed to get store: %w", err)
	}
	if store.Id != c.config.StoreID {
		return fmt.Errorf("store ID mismatch: expected %s, got %s", c.config.StoreID, store.Id)
	}
	return nil
}

func (c *Client) CheckPermission(ctx context.Context, user, relation, object string) (bool, error) {
	if !c.IsEnabled() {
		return true, nil
	}

	data, err := c.fga.Check(ctx).Body(client.ClientCheckRequest{
		User:     user,
		Relation: relation,
		Object:   object,
	}).Execute()
	if err != nil {
		c.logger.ErrorContext(ctx, "OpenFGA check failed", "user", user, "relation", relation, "object", object, "error", err)
		return false, err
	}

	allowed := data.GetAllowed()
	c.logger.DebugContext(ctx, "OpenFGA check completed", "user", user, "relation", relation, "object", object, "allowed", allowed)
	return allowed, nil
}

func (c *Client) WriteTuple(ctx context.Context, user, relation, object string) error {
	if !c.IsEnabled() {
		return nil
	}
	_, err := c.fga.Write(ctx).Body(client.ClientWriteRequest{
		Writes: []client.ClientTupleKey{{User: user, Relation: relation, Object: object}},
	}).Execute()
	if err != nil {
		c.logger.ErrorContext(ctx, "OpenFGA write failed", "user", user, "relation", relation, "object", object, "error", err)
		return err
	}
	return nil
}

func (c *Client) DeleteTuple(ctx context.Context, user, relation, object string) error {
	if !c.IsEnabled() {
		return nil
	}
	_, err := c.fga.Write(ctx).Body(client.ClientWriteRequest{
		Deletes: []client.ClientTupleKeyWithoutCondition{{User: user, Relation: relation, Object: object}},
	}).Execute()
	if err != nil {
		c.logger.ErrorContext(ctx, "OpenFGA delete failed", "user", user, "relation", relation, "object", object, "error", err)
		return err
	}
	return nil
}

// WriteAuthorizationModel uploads AuthorizationModel to the configured store
// and returns the new model id.
func (c *Client) WriteAuthorizationModel(ctx context.Context) (string, error) {
	if !c.IsEnabled() {
		return "", ErrDisabled
	}
	var body client.ClientWriteAuthorizationModelRequest
	if err := json.Unmarshal([]byte(AuthorizationModel), &body); err != nil {
		return "", fmt.Errorf("failed to parse authorization model: %w", err)
	}
	resp, err := c.fga.WriteAuthorizationModel(ctx).Body(body).Execute()
	if err != nil {
		return "", fmt.Errorf("failed to write authorization model: %w", err)
	}
	return resp.GetAuthorizationModelId(), nil
}
