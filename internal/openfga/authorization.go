package openfga

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrDisabled = errors.New("openfga is disabled")

const (
	parishObject  = "ministry:parish"
	adminRelation = "admin"
)

// AuthorizationModel grants the admin relation on the single parish object.
const AuthorizationModel = `{
  "schema_version": "1.1",
  "type_definitions": [
    {"type": "user"},
    {
      "type": "ministry",
      "relations": {"admin": {"this": {}}},
      "metadata": {
        "relations": {
          "admin": {"directly_related_user_types": [{"type": "user"}]}
        }
      }
    }
  ]
}`

// Checker is the relationship check used by the HTTP admin guard.
type Checker interface {
	CheckPermission(ctx context.Context, user, relation, object string) (bool, error)
	WriteTuple(ctx context.Context, user, relation, object string) error
	DeleteTuple(ctx context.Context, user, relation, object string) error
}

type AuthorizationService struct {
	client Checker
}

func NewAuthorizationService(client Checker) *AuthorizationService {
	return &AuthorizationService{client: client}
}

func userRef(id uuid.UUID) string {
	return "user:" + id.String()
}

// IsParishAdmin confirms the admin relation for an authenticated admin.
func (s *AuthorizationService) IsParishAdmin(ctx context.Context, adminID uuid.UUID) (bool, error) {
	allowed, err := s.client.CheckPermission(ctx, userRef(adminID), adminRelation, parishObject)
	if err != nil {
		return false, fmt.Errorf("failed to check parish admin: %w", err)
	}
	return allowed, nil
}

func (s *AuthorizationService) GrantParishAdmin(ctx context.Context, adminID uuid.UUID) error {
	if err := s.client.WriteTuple(ctx, userRef(adminID), adminRelation, parishObject); err != nil {
		return fmt.Errorf("failed to grant parish admin: %w", err)
	}
	return nil
}

func (s *AuthorizationService) RevokeParishAdmin(ctx context.Context, adminID uuid.UUID) error {
	if err := s.client.DeleteTuple(ctx, userRef(adminID), adminRelation, parishObject); err != nil {
		return fmt.Errorf("failed to revoke parish admin: %w", err)
	}
	return nil
}
