package database

import (
	"context"
	"fmt"
	"log/slog"

	"adminhub/internal/config"
	"adminhub/internal/middleware"

	"gorm.io/gorm"
)

// SchemaStatus is what `migrate status` reports.
type SchemaStatus struct {
	Policy            config.SchemaPolicy
	Environment       string
	AppliedVersions   []int
	PendingMigrations []Migration
	Drift             []MigrationDrift
}

// ApplySchema runs SQL migrations and/or AutoMigrate according to
// cfg.Schema().
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	policy, err := cfg.Schema()
	if err != nil {
		return err
	}

	if policy.RunSQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}

	if policy.RunAuto {
		if policy.Mode == config.SchemaModeAuto && cfg.DBAutoMigrateAllowDestructive {
			middleware.Logger.Warn("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true set for DB_SCHEMA_MODE=auto; review schema diffs before production deployment")
		}
		middleware.Logger.Info("Running GORM AutoMigrate", slog.String("mode", policy.Mode), slog.String("env", cfg.Env))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	return nil
}

// GetSchemaStatus reports the policy plus applied, pending and drifted
// migrations without changing anything.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	policy, err := cfg.Schema()
	if err != nil {
		return nil, err
	}
	set, err := EmbeddedMigrations()
	if err != nil {
		return nil, err
	}
	return schemaStatus(ctx, NewMigrator(db, set), policy, cfg.Env)
}

func schemaStatus(ctx context.Context, m *Migrator, policy config.SchemaPolicy, env string) (*SchemaStatus, error) {
	status := &SchemaStatus{Policy: policy, Environment: env}

	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	done := make(map[int]bool, len(applied))
	for _, row := range applied {
		done[row.Version] = true
		status.AppliedVersions = append(status.AppliedVersions, row.Version)
	}
	for _, mig := range m.set.All() {
		if !done[mig.Version] {
			status.PendingMigrations = append(status.PendingMigrations, mig)
		}
	}
	status.Drift = m.Drift(applied)
	return status, nil
}
