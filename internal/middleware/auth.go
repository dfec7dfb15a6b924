package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"

	"brandwatch/internal/db"
	"brandwatch/internal/handlers"
	"brandwatch/internal/models"
)

// UserLookup finds a signed-in user by OIDC subject.
type UserLookup interface {
	GetUserBySub(ctx context.Context, sub string) (*models.User, error)
}

// AuthMiddleware loads the session user into c.Locals("user").
type AuthMiddleware struct {
	users UserLookup
}

// NewAuthMiddleware creates a new auth middleware instance.
func NewAuthMiddleware(users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{users: users}
}

// RequireAuth rejects requests without a signed-in user with 401.
func (m *AuthMiddleware) RequireAuth(c fiber.Ctx) error {
	user, err := m.load(c)
	if err != nil {
		return err
	}
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}
	return c.Next()
}

// RequireAuthForWrites lets safe methods through and requires a user for the rest.
func (m *AuthMiddleware) RequireAuthForWrites(c fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
		return m.OptionalAuth(c)
	}
	return m.RequireAuth(c)
}

// OptionalAuth loads the user if signed in but never rejects the request.
func (m *AuthMiddleware) OptionalAuth(c fiber.Ctx) error {
	if _, err := m.load(c); err != nil {
		return err
	}
	return c.Next()
}

func (m *AuthMiddleware) load(c fiber.Ctx) (*models.User, error) {
	sess := session.FromContext(c)
	if sess == nil {
		return nil, nil
	}

	sub, _ := sess.Get(handlers.SessionUserSub).(string)
	if sub == "" {
		return nil, nil
	}

	user, err := m.users.GetUserBySub(c.Context(), sub)
	if errors.Is(err, db.ErrUserNotFound) {
		if err := sess.Destroy(); err != nil {
			slog.Warn("failed to destroy stale session", "error", err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.Locals("user", user)
	return user, nil
}
