package database

import "navega/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters for AutoMigrate: referenced tables come first.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Result{},
		&models.Post{},
		&models.Comment{},
		&models.PostIdentify{},
		&models.CommentIdentify{},
	}
}
