package database

import (
	"context"
	"testing"
	"testing/fstest"

	"adminhub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testMigrationFS() fstest.MapFS {
	return fstest.MapFS{
		"m/000001_tips.up.sql":        {Data: []byte("CREATE TABLE tips (id INTEGER PRIMARY KEY, body TEXT)")},
		"m/000001_tips.down.sql":      {Data: []byte("DROP TABLE tips")},
		"m/000002_tip_flags.up.sql":   {Data: []byte("CREATE TABLE tip_flags (id INTEGER PRIMARY KEY, tip_id INTEGER)")},
		"m/000002_tip_flags.down.sql": {Data: []byte("DROP TABLE tip_flags")},
		"m/README.md":                 {Data: []byte("not a migration")},
	}
}

func newMigrationDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestEmbeddedMigrations(t *testing.T) {
	set, err := EmbeddedMigrations()
	require.NoError(t, err)

	m, ok := set.Find(1)
	require.True(t, ok)
	assert.Equal(t, "init", m.Name)
	assert.Contains(t, m.UpScript, "CREATE TABLE IF NOT EXISTS event_posts")
	assert.Contains(t, m.DownScript, "DROP TABLE IF EXISTS event_posts")
	assert.Equal(t, "000001_init", m.String())
	assert.Len(t, m.Checksum, 64)
}

func TestLoadMigrations_Rejects(t *testing.T) {
	t.Run("duplicate version", func(t *testing.T) {
		fsys := testMigrationFS()
		fsys["m/000002_other.up.sql"] = &fstest.MapFile{Data: []byte("SELECT 1")}
		fsys["m/000002_other.down.sql"] = &fstest.MapFile{Data: []byte("SELECT 1")}
		_, err := LoadMigrations(fsys, "m")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "000002")
	})

	t.Run("missing down script", func(t *testing.T) {
		fsys := testMigrationFS()
		delete(fsys, "m/000002_tip_flags.down.sql")
		_, err := LoadMigrations(fsys, "m")
		assert.ErrorContains(t, err, "no down script")
	})

	t.Run("bad name", func(t *testing.T) {
		fsys := testMigrationFS()
		fsys["m/first.up.sql"] = &fstest.MapFile{Data: []byte("SELECT 1")}
		_, err := LoadMigrations(fsys, "m")
		assert.Error(t, err)
	})
}

func TestMigrator_UpIsIdempotent(t *testing.T) {
	ctx := context.Background()
	set, err := LoadMigrations(testMigrationFS(), "m")
	require.NoError(t, err)
	db := newMigrationDB(t)
	m := NewMigrator(db, set)

	ran, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ran)
	assert.True(t, db.Migrator().HasTable("tip_flags"))

	ran, err = m.Up(ctx)
	require.NoError(t, err)
	assert.Zero(t, ran)

	applied, err := m.Applied(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 2)
	first, _ := set.Find(1)
	assert.Equal(t, first.Checksum, applied[0].Checksum)
}

func TestMigrator_ReportsDrift(t *testing.T) {
	ctx := context.Background()
	fsys := testMigrationFS()
	set, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	db := newMigrationDB(t)
	_, err = NewMigrator(db, set).Up(ctx)
	require.NoError(t, err)

	fsys["m/000001_tips.up.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE tips (id INTEGER PRIMARY KEY, body TEXT, city TEXT)")}
	edited, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)

	status, err := schemaStatus(ctx, NewMigrator(db, edited), config.SchemaPolicy{Mode: config.SchemaModeSQL, RunSQL: true}, "development")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, status.AppliedVersions)
	assert.Empty(t, status.PendingMigrations)
	require.Len(t, status.Drift, 1)
	assert.Equal(t, 1, status.Drift[0].Version)
	assert.NotEqual(t, status.Drift[0].Recorded, status.Drift[0].Current)
}

func TestMigrator_DownAndPending(t *testing.T) {
	ctx := context.Background()
	set, err := LoadMigrations(testMigrationFS(), "m")
	require.NoError(t, err)
	db := newMigrationDB(t)
	m := NewMigrator(db, set)
	_, err = m.Up(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Down(ctx, 2))
	assert.False(t, db.Migrator().HasTable("tip_flags"))
	assert.ErrorContains(t, m.Down(ctx, 2), "has not been applied")
	assert.ErrorContains(t, m.Down(ctx, 9), "not found")

	status, err := schemaStatus(ctx, m, config.SchemaPolicy{Mode: config.SchemaModeSQL, RunSQL: true}, "development")
	require.NoError(t, err)
	require.Len(t, status.PendingMigrations, 1)
	assert.Equal(t, "000002_tip_flags", status.PendingMigrations[0].String())
}

func TestMigrator_UnknownAppliedVersion(t *testing.T) {
	ctx := context.Background()
	set, err := LoadMigrations(testMigrationFS(), "m")
	require.NoError(t, err)
	db := newMigrationDB(t)
	require.NoError(t, db.AutoMigrate(&MigrationLog{}))
	require.NoError(t, db.Create(&MigrationLog{Version: 42, Name: "from_a_newer_build"}).Error)

	_, err = NewMigrator(db, set).Up(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000042")
	assert.False(t, db.Migrator().HasTable("tips"))
}
