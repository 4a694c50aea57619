//go:build integration

package seed

import (
	"net/url"
	"os"
	"strings"
	"testing"

	"navega/internal/config"
	"navega/internal/database"
	"navega/internal/models"
)

func parseDatabaseURLToConfig(dsn string) (*config.Config, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}
	password := ""
	if u.User != nil {
		password, _ = u.User.Password()
	}
	port := u.Port()
	if port == "" {
		port = "5432"
	}
	cfg := &config.Config{
		DBHost:       u.Hostname(),
		DBPort:       port,
		DBUser:       u.User.Username(),
		DBPassword:   password,
		DBName:       strings.TrimPrefix(u.Path, "/"),
		DBSSLMode:    "disable",
		Env:          "test",
		DBSchemaMode: "auto",
	}
	return cfg, nil
}

func TestIntegration_SeedPostgres(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration seed test")
	}
	cfg, err := parseDatabaseURLToConfig(dsn)
	if err != nil {
		t.Fatalf("failed parse dsn: %v", err)
	}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{SkipReplica: true})
	if err != nil {
		t.Fatalf("db connect failed: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	if _, err := Seed(db, Config{NumUsers: 10, NumResults: 50, NumPosts: 10, ShouldClean: true, Options: Options{SkipBcrypt: true}}); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	var cnt int64
	if err := db.Model(&models.Post{}).Count(&cnt).Error; err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if cnt != 10 {
		t.Fatalf("expected 10 seeded posts, got %d", cnt)
	}
}
