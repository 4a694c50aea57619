package repository

import (
	"testing"

	"navega/internal/database"
	"navega/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLiteDB returns a migrated in-memory database. A single connection
// keeps every statement on the same in-memory schema.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: email, Password: "hash", Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createPost(t *testing.T, db *gorm.DB, message string, who models.Identity, nickname string) *models.Post {
	t.Helper()
	p := &models.Post{Message: message, Author: models.NewAuthor(who, nickname)}
	require.NoError(t, NewPostRepository(db).Create(t.Context(), p))
	return p
}

func createComment(t *testing.T, db *gorm.DB, postID uint, message string, who models.Identity, nickname string) *models.Comment {
	t.Helper()
	c := &models.Comment{PostID: postID, Message: message, Author: models.NewAuthor(who, nickname)}
	require.NoError(t, NewCommentRepository(db).Create(t.Context(), c))
	return c
}
