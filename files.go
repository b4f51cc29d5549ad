package auth

import (
	"embed"
	"io/fs"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the migration files for this package. Postgres
// migrations live at the root, sqlite ones under sqlite/.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// SQLiteMigrationsFS returns the sqlite migrations rooted at their directory.
func SQLiteMigrationsFS() (fs.FS, error) {
	return fs.Sub(migrationsFS, "data/sql/migrations/sqlite")
}
