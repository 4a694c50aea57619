// Package bootstrap wires the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"navega/internal/cache"
	"navega/internal/config"
	"navega/internal/database"
	"navega/internal/models"
	"navega/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// ApplySchema runs the configured schema policy after connecting.
	ApplySchema bool
	// DemoData seeds a small demo data set into an empty development database.
	DemoData bool
}

// InitRuntime connects to DB and Redis and ensures the development root
// administrator.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if opts.ApplySchema {
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return nil, nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevRootAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	if opts.DemoData && !cfg.IsProduction() {
		if err := seedIfEmpty(db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

func seedIfEmpty(db *gorm.DB) error {
	var posts int64
	if err := db.Model(&models.Post{}).Count(&posts).Error; err != nil {
		return err
	}
	if posts > 0 {
		return nil
	}
	_, err := seed.Seed(db, seed.Config{NumUsers: 10, NumResults: 60, NumPosts: 15})
	return err
}

func ensureDevRootAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	name := strings.TrimSpace(cfg.DevRootName)
	if name == "" {
		name = "Capitán Navega"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@navega.local"
	}
	password := cfg.DevRootPassword
	if password == "" {
		return fmt.Errorf("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		var root models.User
		findErr := tx.Where("email = ?", email).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				Name:     name,
				Email:    email,
				Password: string(hashedPassword),
				Role:     models.RoleAdministrator,
			}
			return tx.Create(&root).Error
		case findErr != nil:
			return findErr
		default:
			updates := map[string]any{"role": models.RoleAdministrator}
			if cfg.DevRootForceCredentials {
				updates["name"] = name
				updates["password"] = string(hashedPassword)
			}
			return tx.Model(&models.User{}).Where("id = ?", root.ID).Updates(updates).Error
		}
	}); err != nil {
		return err
	}

	log.Printf("development root admin bootstrap ensured (%s)", email)
	return nil
}
