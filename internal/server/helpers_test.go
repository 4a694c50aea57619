package server

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"navega/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	tests := map[string]string{
		"id":            "ID",
		"postId":        "post ID",
		"commentId":     "comment ID",
		"userAccountId": "user account ID",
		"slug":          "slug",
	}
	for in, want := range tests {
		assert.Equal(t, want, humanizeParam(in), in)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.NewValidationError("x"), http.StatusBadRequest},
		{models.NewUnauthorizedError("x"), http.StatusUnauthorized},
		{models.NewForbiddenError("x"), http.StatusForbidden},
		{models.NewNotFoundError("Post", 1), http.StatusNotFound},
		{models.NewConflictError("x"), http.StatusConflict},
		{models.NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

// render runs fn inside a throwaway route and returns the JSON it wrote.
func render(t *testing.T, target string, fn func(c *fiber.Ctx) any) string {
	t.Helper()
	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error { return c.JSON(fn(c)) })
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"", `{"Limit":0,"Offset":0}`},
		{"?limit=10&offset=5", `{"Limit":10,"Offset":5}`},
		{"?limit=500", `{"Limit":100,"Offset":0}`},
		{"?limit=-3&offset=-1", `{"Limit":0,"Offset":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := render(t, "/x"+tt.query, func(c *fiber.Ctx) any { return parsePagination(c) })
			assert.JSONEq(t, tt.want, got)
		})
	}
}

func TestDeviceHint(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		body   string
		expect string
	}{
		{"body wins", "?deviceId=q", "b", "b"},
		{"named query", "?deviceId=q", "", "q"},
		{"bare query", "?abc123", "", "abc123"},
		{"escaped bare query", "?dev%20one", "", "dev one"},
		{"other params only", "?limit=2", "", ""},
		{"nothing", "", "  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, "/x"+tt.query, func(c *fiber.Ctx) any { return deviceHint(c, tt.body) })
			assert.JSONEq(t, `"`+tt.expect+`"`, got)
		})
	}
}
