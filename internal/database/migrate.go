package database

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Migration is one versioned NNNNNN_name.up.sql/.down.sql pair.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
	// Checksum is the hex sha256 of UpScript, recorded when applied.
	Checksum string
}

func (m Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

// MigrationSet is an ordered, validated list of migrations.
type MigrationSet struct {
	list []Migration
}

//go:embed migrations/*.sql
var migrationFS embed.FS

// EmbeddedMigrations returns the admin hub schema migrations compiled into
// the binary. The set is parsed once.
var EmbeddedMigrations = sync.OnceValues(func() (*MigrationSet, error) {
	return LoadMigrations(migrationFS, "migrations")
})

// LoadMigrations reads every *.up.sql in dir. Each needs a matching down file
// and a unique numeric version prefix.
func LoadMigrations(fsys fs.FS, dir string) (*MigrationSet, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	seen := make(map[int]string)
	set := &MigrationSet{}
	for _, entry := range entries {
		file := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(file, ".up.sql") {
			continue
		}

		base := strings.TrimSuffix(file, ".up.sql")
		prefix, name, ok := strings.Cut(base, "_")
		if !ok || name == "" {
			return nil, fmt.Errorf("migration %s: want NNNNNN_name.up.sql", file)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("migration %s: invalid version %q", file, prefix)
		}
		if other, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration version %06d declared by %s and %s", version, other, file)
		}
		seen[version] = file

		up, err := fs.ReadFile(fsys, path.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		down, err := fs.ReadFile(fsys, path.Join(dir, base+".down.sql"))
		if err != nil {
			return nil, fmt.Errorf("migration %s has no down script: %w", base, err)
		}

		sum := sha256.Sum256(up)
		set.list = append(set.list, Migration{
			Version:    version,
			Name:       name,
			UpScript:   string(up),
			DownScript: string(down),
			Checksum:   hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(set.list, func(i, j int) bool { return set.list[i].Version < set.list[j].Version })
	return set, nil
}

// All returns the migrations in version order.
func (s *MigrationSet) All() []Migration {
	return append([]Migration(nil), s.list...)
}

// Find returns the migration with the given version.
func (s *MigrationSet) Find(version int) (Migration, bool) {
	i := sort.Search(len(s.list), func(i int) bool { return s.list[i].Version >= version })
	if i < len(s.list) && s.list[i].Version == version {
		return s.list[i], true
	}
	return Migration{}, false
}
