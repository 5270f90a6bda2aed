package session

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const tokenKey = "token"

var ErrSessionNotFound = errors.New("session not found")

// Store keeps the identity token in the server side Fiber session so browser
// clients can authenticate with the session cookie alone.
type Store struct {
	sessions *session.Store
}

func NewStore(sessions *session.Store) *Store {
	return &Store{sessions: sessions}
}

func (s *Store) Save(c *fiber.Ctx, token string) error {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	// new session id on every login
	if err := sess.Regenerate(); err != nil {
		return fmt.Errorf("failed to regenerate session: %w", err)
	}
	sess.Set(tokenKey, token)
	if err := sess.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *Store) Token(c *fiber.Ctx) (string, error) {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return "", fmt.Errorf("failed to get session: %w", err)
	}
	token, ok := sess.Get(tokenKey).(string)
	if !ok || token == "" {
		return "", ErrSessionNotFound
	}
	return token, nil
}

func (s *Store) Destroy(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if err := sess.Destroy(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}
