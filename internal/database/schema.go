package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"navega/internal/config"
	"navega/internal/middleware"

	"gorm.io/gorm"
)

// Schema modes selected by DB_SCHEMA_MODE.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaPlan is what ApplySchema will do for a configuration.
type SchemaPlan struct {
	Mode    string
	Env     string
	RunSQL  bool
	RunAuto bool
}

// SchemaStatus describes a plan against a live database.
type SchemaStatus struct {
	SchemaPlan
	AppliedVersions   []int
	PendingMigrations []Migration
	// MissingTables lists persistent tables that do not exist yet.
	MissingTables []string
}

func isProdLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "staging", "stage":
		return true
	}
	return false
}

// PlanSchema resolves DB_SCHEMA_MODE for cfg. Hybrid mode runs the SQL
// migrations everywhere and AutoMigrate only outside production-like
// environments; auto mode is refused there unless explicitly allowed.
func PlanSchema(cfg *config.Config) (SchemaPlan, error) {
	plan := SchemaPlan{Mode: strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode)), Env: cfg.Env}
	if plan.Mode == "" {
		plan.Mode = SchemaModeHybrid
	}
	prodLike := isProdLikeEnv(cfg.Env)

	switch plan.Mode {
	case SchemaModeSQL:
		plan.RunSQL = true
	case SchemaModeAuto:
		if prodLike && !cfg.DBAutoMigrateAllowDestructive {
			return plan, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		plan.RunAuto = true
	case SchemaModeHybrid:
		plan.RunSQL = true
		plan.RunAuto = !prodLike
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.Mode)
	}
	return plan, nil
}

// AutoMigrate creates or updates every persistent table through GORM.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema executes the plan for cfg.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return err
	}
	log := middleware.Logger.With(slog.String("mode", plan.Mode), slog.String("env", plan.Env))

	if plan.RunSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}
	if plan.RunAuto {
		if plan.Mode == SchemaModeAuto && cfg.DBAutoMigrateAllowDestructive {
			log.Warn("auto-migrating with DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true")
		}
		log.Info("running GORM AutoMigrate")
		if err := AutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}
	return nil
}

// GetSchemaStatus reports the plan, the SQL migration state and any
// persistent table that is still missing.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{SchemaPlan: plan, MissingTables: missingTables(db.WithContext(ctx))}

	if plan.RunSQL {
		applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
		if err != nil {
			return nil, err
		}
		status.AppliedVersions = applied
		status.PendingMigrations = pendingMigrations(applied, GetMigrations())
	}
	return status, nil
}

func missingTables(db *gorm.DB) []string {
	var missing []string
	for _, model := range PersistentModels() {
		if db.Migrator().HasTable(model) {
			continue
		}
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err == nil {
			missing = append(missing, stmt.Schema.Table)
		}
	}
	return missing
}
