package server

import (
	"fmt"
	"net/http"
	"testing"

	"navega/internal/models"
	"navega/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandlers_CRUD(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.seedUser(t, "Root", "root@example.com", models.RoleAdministrator)

	status, body := ts.do(t, http.MethodPost, "/api/users", adminToken, map[string]string{
		"name": "Luis", "email": "luis@example.com", "password": "marinero1", "role": "administrator",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.NotContains(t, string(body), "password")
	created := decode[models.User](t, body)
	assert.Equal(t, models.RoleAdministrator, created.Role)

	status, _ = ts.do(t, http.MethodPost, "/api/users", adminToken, map[string]string{
		"name": "Luis", "email": "luis@example.com", "password": "marinero1",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = ts.do(t, http.MethodPost, "/api/users", adminToken, map[string]string{
		"name": "Eva", "email": "eva@example.com", "password": "marinera1", "role": "captain",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = ts.do(t, http.MethodGet, "/api/users?limit=1", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	page := decode[service.UsersPage](t, body)
	assert.Equal(t, int64(2), page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Users, 1)
	assert.Equal(t, "luis@example.com", page.Users[0].Email)

	target := fmt.Sprintf("/api/users/%d", created.ID)
	status, body = ts.do(t, http.MethodPut, target, adminToken, map[string]string{"name": "Luis M.", "role": "user"})
	require.Equal(t, http.StatusOK, status, string(body))
	updated := decode[models.User](t, body)
	assert.Equal(t, "Luis M.", updated.Name)
	assert.Equal(t, "luis@example.com", updated.Email)
	assert.Equal(t, models.RoleUser, updated.Role)

	status, _ = ts.do(t, http.MethodPut, target, adminToken, map[string]string{"email": "root@example.com"})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = ts.do(t, http.MethodPut, "/api/users/999", adminToken, map[string]string{"name": "X"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = ts.do(t, http.MethodDelete, target, adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = ts.do(t, http.MethodDelete, target, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestUserHandlers_DeletedAuthorKeepsIdentifyCount(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.seedUser(t, "Root", "root@example.com", models.RoleAdministrator)
	fan, fanToken := ts.seedUser(t, "Fan", "fan@example.com", models.RoleUser)

	_, body := ts.do(t, http.MethodPost, "/api/posts", "", map[string]string{"message": "hola", "deviceId": "dev"})
	post := decode[postView](t, body)
	status, _ := ts.do(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/identify", post.ID), fanToken, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", fan.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, status)

	_, body = ts.do(t, http.MethodGet, "/api/posts", "", nil)
	posts := decode[[]postView](t, body)
	require.Len(t, posts, 1)
	assert.Equal(t, 1, posts[0].IdentifiesCount)

	var rows int64
	require.NoError(t, ts.db.Model(&models.PostIdentify{}).Where("post_id = ?", post.ID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)
}
