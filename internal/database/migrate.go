package database

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
)

// Migration is one NNNNNN_name.up.sql / .down.sql pair.
type Migration struct {
	Version    int
	Name       string
	UpScript   string
	DownScript string
}

func (m Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

//go:embed migrations/*.sql
var migrationFS embed.FS

var migrations = mustLoadMigrations(migrationFS)

// EmbeddedMigrations returns the migrations compiled into the binary, oldest first.
func EmbeddedMigrations() []Migration {
	return slices.Clone(migrations)
}

func mustLoadMigrations(fsys fs.FS) []Migration {
	set, err := loadMigrations(fsys, "migrations")
	if err != nil {
		panic(err)
	}
	return set
}

// loadMigrations reads up/down pairs from dir. Every up script needs a down
// script and a numeric version prefix.
func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	upFiles, err := fs.Glob(fsys, path.Join(dir, "*.up.sql"))
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}

	set := make([]Migration, 0, len(upFiles))
	for _, upFile := range upFiles {
		base := strings.TrimSuffix(path.Base(upFile), ".up.sql")
		prefix, name, ok := strings.Cut(base, "_")
		if !ok || name == "" {
			return nil, fmt.Errorf("migration %s: expected NNNNNN_name.up.sql", upFile)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("migration %s: non-numeric version %q", upFile, prefix)
		}

		up, err := fs.ReadFile(fsys, upFile)
		if err != nil {
			return nil, err
		}
		down, err := fs.ReadFile(fsys, path.Join(dir, base+".down.sql"))
		if err != nil {
			return nil, fmt.Errorf("migration %s: missing down script: %w", base, err)
		}

		set = append(set, Migration{Version: version, Name: name, UpScript: string(up), DownScript: string(down)})
	}

	slices.SortFunc(set, func(a, b Migration) int { return a.Version - b.Version })
	return set, nil
}
