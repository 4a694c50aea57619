package service

import (
	"context"
	"testing"

	"navega/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService() (*UserService, *memUserRepo) {
	users := newMemUserRepo()
	return NewUserService(users).WithBcryptCost(bcrypt.MinCost), users
}

func TestUserService_CreateUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("administrator with hashed password", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestUserService()
		user, err := svc.CreateUser(ctx, CreateUserInput{
			Name: "Root", Email: "root@example.com", Password: "supersecreto", Role: "administrator",
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdministrator, user.Role)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("supersecreto")))
	})

	t.Run("role defaults to user", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestUserService()
		user, err := svc.CreateUser(ctx, CreateUserInput{Name: "Ana", Email: "ana@example.com", Password: "marinera1"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, user.Role)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestUserService()
		_, err := svc.CreateUser(ctx, CreateUserInput{Name: "Ana", Email: "ana@example.com", Password: "marinera1"})
		require.NoError(t, err)
		_, err = svc.CreateUser(ctx, CreateUserInput{Name: "Ana", Email: "ana@example.com", Password: "marinera1"})
		assertCode(t, err, models.CodeConflict)
	})

	tests := []struct {
		name string
		in   CreateUserInput
	}{
		{"missing fields", CreateUserInput{Name: "Ana"}},
		{"invalid role", CreateUserInput{Name: "Ana", Email: "ana@example.com", Password: "marinera1", Role: "captain"}},
		{"invalid email", CreateUserInput{Name: "Ana", Email: "ana", Password: "marinera1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, _ := newTestUserService()
			_, err := svc.CreateUser(ctx, tt.in)
			assertCode(t, err, models.CodeValidation)
		})
	}
}

func TestUserService_UpdateUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, users := newTestUserService()

	ana, err := svc.CreateUser(ctx, CreateUserInput{Name: "Ana", Email: "ana@example.com", Password: "marinera1"})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, CreateUserInput{Name: "Luis", Email: "luis@example.com", Password: "marinero1"})
	require.NoError(t, err)
	oldHash := users.users[ana.ID].Password

	updated, err := svc.UpdateUser(ctx, UpdateUserInput{ID: ana.ID, Role: "administrator"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", updated.Name)
	assert.Equal(t, models.RoleAdministrator, updated.Role)
	assert.Equal(t, oldHash, updated.Password)

	updated, err = svc.UpdateUser(ctx, UpdateUserInput{ID: ana.ID, Password: "nuevaclave1"})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("nuevaclave1")))

	_, err = svc.UpdateUser(ctx, UpdateUserInput{ID: ana.ID, Email: "luis@example.com"})
	assertCode(t, err, models.CodeConflict)

	_, err = svc.UpdateUser(ctx, UpdateUserInput{ID: 999, Name: "X"})
	assertCode(t, err, models.CodeNotFound)

	_, err = svc.UpdateUser(ctx, UpdateUserInput{ID: ana.ID, Role: "root"})
	assertCode(t, err, models.CodeValidation)
}

func TestUserService_ListAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestUserService()
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := svc.CreateUser(ctx, CreateUserInput{Name: "N", Email: email, Password: "marinera1"})
		require.NoError(t, err)
	}

	page, err := svc.ListUsers(ctx, PageRequest{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Users, 2)
	assert.Equal(t, "c@example.com", page.Users[0].Email)

	require.NoError(t, svc.DeleteUser(ctx, page.Users[0].ID))
	assertCode(t, svc.DeleteUser(ctx, page.Users[0].ID), models.CodeNotFound)
}
