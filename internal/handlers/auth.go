package handlers

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"golang.org/x/oauth2"

	"brandwatch/internal/config"
	"brandwatch/internal/models"
)

// Session keys.
const (
	SessionUserSub  = "user_sub"
	sessionState    = "oauth_state"
	sessionReturnTo = "return_to"
)

// UserStore persists signed-in users.
type UserStore interface {
	UpsertUser(ctx context.Context, user *models.User) error
}

// AuthHandler handles the OIDC sign-in flow for the dashboard.
type AuthHandler struct {
	provider     *oidc.Provider
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
	users        UserStore
	cfg          *config.Config
}

// NewAuthHandler discovers the OIDC provider and creates an auth handler.
func NewAuthHandler(ctx context.Context, cfg *config.Config, users UserStore) (*AuthHandler, error) {
	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, err
	}

	return &AuthHandler{
		provider: provider,
		oauth2Config: oauth2.Config{
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.OIDCClientID}),
		users:    users,
		cfg:      cfg,
	}, nil
}

// Login starts the OIDC flow. ?return_to names a same-site path to land on afterwards.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}

	state := generateState()
	sess.Set(sessionState, state)
	if returnTo := c.Query("return_to"); isLocalPath(returnTo) {
		sess.Set(sessionReturnTo, returnTo)
	}

	return c.Redirect().To(h.oauth2Config.AuthCodeURL(state))
}

// Callback completes the OIDC flow and stores the user in the session.
func (h *AuthHandler) Callback(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}

	saved, _ := sess.Get(sessionState).(string)
	if saved == "" || saved != c.Query("state") {
		return fiber.NewError(fiber.StatusBadRequest, "invalid state")
	}
	sess.Delete(sessionState)

	token, err := h.oauth2Config.Exchange(c.Context(), c.Query("code"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to exchange code")
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "missing id_token")
	}
	idToken, err := h.verifier.Verify(c.Context(), rawIDToken)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id_token")
	}

	claims := map[string]any{}
	if err := idToken.Claims(&claims); err != nil {
		return err
	}

	// Some providers keep email and name out of the ID token.
	if info, err := h.provider.UserInfo(c.Context(), oauth2.StaticTokenSource(token)); err == nil {
		var extra map[string]any
		if err := info.Claims(&extra); err == nil {
			for k, v := range extra {
				claims[k] = v
			}
		}
	} else {
		slog.Warn("failed to fetch userinfo", "error", err)
	}

	user := &models.User{}
	user.Sub, _ = claims["sub"].(string)
	user.Email, _ = claims["email"].(string)
	user.Name, _ = claims["name"].(string)
	user.Picture, _ = claims["picture"].(string)
	if err := h.users.UpsertUser(c.Context(), user); err != nil {
		return err
	}
	slog.Info("user signed in", "sub", user.Sub, "email", user.Email)

	sess.Set(SessionUserSub, user.Sub)

	redirect := "/"
	if returnTo, ok := sess.Get(sessionReturnTo).(string); ok && returnTo != "" {
		redirect = returnTo
		sess.Delete(sessionReturnTo)
	}
	return c.Redirect().To(redirect)
}

// Logout clears the session.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	if sess := session.FromContext(c); sess != nil {
		if err := sess.Destroy(); err != nil {
			slog.Warn("failed to destroy session", "error", err)
		}
	}
	return c.Redirect().To("/")
}

// isLocalPath accepts absolute paths on this site and rejects anything
// that could redirect off-site.
func isLocalPath(p string) bool {
	if p == "" || p[0] != '/' || (len(p) > 1 && (p[1] == '/' || p[1] == '\\')) {
		return false
	}
	u, err := url.Parse(p)
	return err == nil && u.Host == "" && u.Scheme == ""
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
