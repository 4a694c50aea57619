// Package middleware provides the HTTP middleware chain: credential gates,
// rate limiting, logging, metrics and tracing.
package middleware

import (
	"context"
	"errors"
	"strings"

	"navega/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ErrNoCredential is returned by BearerToken when the request carries no token.
var ErrNoCredential = errors.New("no bearer credential")

// TokenVerifier resolves an access token into the principal it was issued to.
type TokenVerifier interface {
	VerifyAccess(token string) (*models.Principal, error)
}

// UserLookup reports whether an account still exists.
type UserLookup func(ctx context.Context, userID uint) (bool, error)

// BearerToken extracts the token from "Authorization: Bearer <token>". For
// websocket upgrades, which cannot set headers from browsers, the token query
// parameter is accepted as well.
func BearerToken(c *fiber.Ctx) (string, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		if token := c.Query("token"); token != "" && c.Get(fiber.HeaderUpgrade) != "" {
			return token, nil
		}
		return "", ErrNoCredential
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("invalid authorization header format")
	}
	return strings.TrimSpace(token), nil
}

// SetPrincipal attaches p to the request locals and user context.
func SetPrincipal(c *fiber.Ctx, p *models.Principal) {
	c.Locals("userID", p.UserID)
	c.Locals("role", p.Role)
	c.Locals("principal", p)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, p.UserID))
}

// PrincipalFrom returns the principal attached by AuthRequired or
// OptionalAuth, or nil for anonymous requests.
func PrincipalFrom(c *fiber.Ctx) *models.Principal {
	p, _ := c.Locals("principal").(*models.Principal)
	return p
}

// AuthRequired rejects requests without a credential (403) or with an
// invalid one (401).
func AuthRequired(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := BearerToken(c)
		if errors.Is(err, ErrNoCredential) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Se requiere un token para la autenticación."))
		}
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError("Token inválido."))
		}

		principal, err := v.VerifyAccess(token)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError("Token inválido."))
		}

		SetPrincipal(c, principal)
		return c.Next()
	}
}

// OptionalAuth attaches the principal when the request carries a valid
// credential for an account that still exists. Every other request continues
// anonymously.
func OptionalAuth(v TokenVerifier, exists UserLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := BearerToken(c)
		if err != nil {
			return c.Next()
		}
		principal, err := v.VerifyAccess(token)
		if err != nil {
			return c.Next()
		}
		if exists != nil {
			ok, lookupErr := exists(c.UserContext(), principal.UserID)
			if lookupErr != nil {
				Logger.WarnContext(c.UserContext(), "optional auth user lookup failed", "error", lookupErr.Error())
				return c.Next()
			}
			if !ok {
				return c.Next()
			}
		}
		SetPrincipal(c, principal)
		return c.Next()
	}
}
