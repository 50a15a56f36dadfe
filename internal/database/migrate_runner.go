package database

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"adminhub/internal/middleware"

	"gorm.io/gorm"
)

// MigrationLog records an applied migration in migration_logs.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255;not null"`
	Checksum  string    `gorm:"size:64"`
	AppliedAt time.Time `gorm:"autoCreateTime;index"`
}

func (MigrationLog) TableName() string {
	return "migration_logs"
}

// MigrationDrift is an applied migration whose up script changed after it ran.
type MigrationDrift struct {
	Version  int
	Name     string
	Recorded string
	Current  string
}

// Migrator applies a MigrationSet and tracks it in migration_logs.
type Migrator struct {
	db  *gorm.DB
	set *MigrationSet
}

func NewMigrator(db *gorm.DB, set *MigrationSet) *Migrator {
	return &Migrator{db: db, set: set}
}

// Applied returns the migration_logs rows in version order. A database that
// never ran a migration has none.
func (m *Migrator) Applied(ctx context.Context) ([]MigrationLog, error) {
	db := m.db.WithContext(ctx)
	if !db.Migrator().HasTable(&MigrationLog{}) {
		return nil, nil
	}
	var logs []MigrationLog
	if err := db.Order("version ASC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("read migration_logs: %w", err)
	}
	return logs, nil
}

// Drift compares recorded checksums with the current scripts and logs every
// mismatch. Rows recorded without a checksum are not reported.
func (m *Migrator) Drift(applied []MigrationLog) []MigrationDrift {
	var drift []MigrationDrift
	for _, row := range applied {
		mig, ok := m.set.Find(row.Version)
		if !ok || row.Checksum == "" || row.Checksum == mig.Checksum {
			continue
		}
		drift = append(drift, MigrationDrift{
			Version:  row.Version,
			Name:     mig.Name,
			Recorded: row.Checksum,
			Current:  mig.Checksum,
		})
		middleware.Logger.Warn("Migration changed after it was applied",
			slog.String("migration", mig.String()),
			slog.String("recorded_checksum", row.Checksum),
			slog.String("current_checksum", mig.Checksum),
		)
	}
	return drift
}

// Up applies every pending migration, each in its own transaction, and
// returns how many ran. It refuses to run when migration_logs holds versions
// this binary does not know.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	db := m.db.WithContext(ctx)
	if err := db.AutoMigrate(&MigrationLog{}); err != nil {
		return 0, fmt.Errorf("ensure migration_logs: %w", err)
	}

	applied, err := m.Applied(ctx)
	if err != nil {
		return 0, err
	}
	if err := validateAppliedVersions(applied, m.set); err != nil {
		return 0, err
	}
	m.Drift(applied)

	done := make(map[int]bool, len(applied))
	for _, row := range applied {
		done[row.Version] = true
		if row.Checksum == "" {
			if mig, ok := m.set.Find(row.Version); ok {
				if err := db.Model(&MigrationLog{}).Where("version = ?", row.Version).Update("checksum", mig.Checksum).Error; err != nil {
					return 0, fmt.Errorf("record checksum for %s: %w", mig, err)
				}
			}
		}
	}

	ran := 0
	for _, mig := range m.set.All() {
		if done[mig.Version] {
			continue
		}
		middleware.Logger.Info("Applying migration", slog.String("migration", mig.String()))
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Exec(mig.UpScript).Error; err != nil {
				return err
			}
			return tx.Create(&MigrationLog{Version: mig.Version, Name: mig.Name, Checksum: mig.Checksum}).Error
		})
		if err != nil {
			return ran, fmt.Errorf("apply migration %s: %w", mig, err)
		}
		ran++
	}
	return ran, nil
}

// Down runs the down script for an applied version and forgets it.
func (m *Migrator) Down(ctx context.Context, version int) error {
	mig, ok := m.set.Find(version)
	if !ok {
		return fmt.Errorf("migration version %d not found", version)
	}

	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	found := false
	for _, row := range applied {
		if row.Version == version {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("migration %d has not been applied", version)
	}

	middleware.Logger.Info("Rolling back migration", slog.String("migration", mig.String()))
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(mig.DownScript).Error; err != nil {
			return fmt.Errorf("rollback %s: %w", mig, err)
		}
		return tx.Where("version = ?", version).Delete(&MigrationLog{}).Error
	})
}

// RunMigrations applies the embedded admin hub migrations.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	set, err := EmbeddedMigrations()
	if err != nil {
		return err
	}
	ran, err := NewMigrator(db, set).Up(ctx)
	if err != nil {
		return err
	}
	middleware.Logger.Info("SQL migrations complete", slog.Int("applied", ran))
	return nil
}

// RollbackMigration reverts one embedded migration by version.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	set, err := EmbeddedMigrations()
	if err != nil {
		return err
	}
	return NewMigrator(db, set).Down(ctx, version)
}

func validateAppliedVersions(applied []MigrationLog, set *MigrationSet) error {
	var unknown []int
	for _, row := range applied {
		if _, ok := set.Find(row.Version); !ok {
			unknown = append(unknown, row.Version)
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	sort.Ints(unknown)
	parts := make([]string, 0, len(unknown))
	for _, version := range unknown {
		parts = append(parts, fmt.Sprintf("%06d", version))
	}
	return fmt.Errorf("migration_logs contains unknown versions not present in code: %s", strings.Join(parts, ", "))
}
