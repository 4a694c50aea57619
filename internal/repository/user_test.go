package repository

import (
	"context"
	"regexp"
	"testing"

	"navega/internal/cache"
	"navega/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)

	tests := []struct {
		name         string
		userID       uint
		mockBehavior func()
		expectedCode string
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "name", "email", "role"}).
					AddRow(1, "Marina", "marina@example.com", "administrator")
				mock.ExpectQuery(query).WithArgs(1, 1).WillReturnRows(rows)
			},
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(query).WithArgs(99, 1).WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedCode: models.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.expectedCode != "" {
				assert.True(t, models.IsCode(err, tt.expectedCode))
			} else if assert.NoError(t, err) {
				assert.Equal(t, "Marina", user.Name)
				assert.True(t, user.IsAdmin())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_CreateDuplicateEmail(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Name: "A", Email: "a@x.com", Password: "h"}))
	err := repo.Create(ctx, &models.User{Name: "B", Email: "a@x.com", Password: "h"})
	assert.True(t, models.IsCode(err, models.CodeConflict))

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUserRepository_DefaultsRoleToUser(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)

	u := &models.User{Name: "A", Email: "a@x.com", Password: "h"}
	require.NoError(t, repo.Create(context.Background(), u))

	got, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, got.Role)
}

func TestUserRepository_GetByEmailMissing(t *testing.T) {
	db := setupSQLiteDB(t)
	user, err := NewUserRepository(db).GetByEmail(context.Background(), "nobody@x.com")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserRepository_DeleteAndExists(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := createUser(t, db, "A", "a@x.com", models.RoleUser)

	ok, err := repo.Exists(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.Delete(ctx, u.ID))
	ok, err = repo.Exists(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.True(t, models.IsCode(repo.Delete(ctx, u.ID), models.CodeNotFound))
}

func TestUserRepository_List(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		createUser(t, db, email, email, models.RoleUser)
	}

	users, total, err := repo.List(context.Background(), Page{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 2)
	assert.Equal(t, "c@x.com", users[0].Email)

	users, _, err = repo.List(context.Background(), Page{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a@x.com", users[0].Email)
}

func TestUserRepository_GetRoleCachesAndInvalidates(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = cache.Close() })

	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := createUser(t, db, "A", "a@x.com", models.RoleUser)

	role, err := repo.GetRole(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, role)
	assert.True(t, mr.Exists(cache.UserRoleKey(u.ID)))

	u.Role = models.RoleAdministrator
	require.NoError(t, repo.Update(ctx, u))
	assert.False(t, mr.Exists(cache.UserRoleKey(u.ID)))

	role, err = repo.GetRole(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdministrator, role)

	_, err = repo.GetRole(ctx, 999)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
