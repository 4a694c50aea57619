package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"navega/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]*models.Principal

func (s stubVerifier) VerifyAccess(token string) (*models.Principal, error) {
	if p, ok := s[token]; ok {
		return p, nil
	}
	return nil, errors.New("bad token")
}

var verifier = stubVerifier{
	"good":  {UserID: 7, Role: models.RoleUser},
	"admin": {UserID: 1, Role: models.RoleAdministrator},
}

func whoAmI(c *fiber.Ctx) error {
	p := PrincipalFrom(c)
	if p == nil {
		return c.JSON(fiber.Map{"anonymous": true})
	}
	uid, _ := c.UserContext().Value(UserIDKey).(uint)
	return c.JSON(fiber.Map{"id": p.UserID, "ctxID": uid, "role": p.Role})
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	app.Get("/test", AuthRequired(verifier), whoAmI)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedCode   string
	}{
		{"Happy Path", "Bearer good", http.StatusOK, ""},
		{"Lowercase scheme", "bearer good", http.StatusOK, ""},
		{"Missing Header", "", http.StatusForbidden, models.CodeForbidden},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, models.CodeUnauthorized},
		{"Empty Bearer", "Bearer ", http.StatusUnauthorized, models.CodeUnauthorized},
		{"Unknown Token", "Bearer forged", http.StatusUnauthorized, models.CodeUnauthorized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, float64(7), body["id"])
				assert.Equal(t, float64(7), body["ctxID"])
			} else {
				assert.Equal(t, tt.expectedCode, body["code"])
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	deleted := uint(1)
	exists := func(_ context.Context, id uint) (bool, error) {
		return id != deleted, nil
	}

	app := fiber.New()
	app.Get("/test", OptionalAuth(verifier, exists), whoAmI)

	tests := []struct {
		name      string
		header    string
		anonymous bool
	}{
		{"no header", "", true},
		{"invalid token", "Bearer forged", true},
		{"valid token", "Bearer good", false},
		{"valid token for removed account", "Bearer admin", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.anonymous, body["anonymous"] == true)
		})
	}
}

func TestBearerToken_WebSocketQuery(t *testing.T) {
	app := fiber.New()
	app.Get("/ws", func(c *fiber.Ctx) error {
		token, err := BearerToken(c)
		if err != nil {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.SendString(token)
	})

	req := httptest.NewRequest(http.MethodGet, "/ws?token=abc", nil)
	req.Header.Set("Upgrade", "websocket")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Plain requests must use the header.
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ws?token=abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
