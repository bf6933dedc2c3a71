// Package pkgcache persists per-package configuration records, keyed by
// package directory, between builds. The driver refreshes the record of the
// project it builds; no caller reads a record in place of loading sable.yaml.
// The cache is a small sqlite database under the project's cache dir; it
// is a collaborator of the driver only — the resolver core never sees it.
package pkgcache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// PackageInfo is one cached package-config record.
type PackageInfo struct {
	// Dir is the package directory, the cache key.
	Dir string

	Name       string
	Backend    string
	Includes   []string
	SourceHash string

	// EntryID tags the cache entry; a fresh one is stamped on every Put.
	EntryID string

	UpdatedAt time.Time
}

type Cache struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS packages (
    dir         TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    backend     TEXT NOT NULL DEFAULT 'c',
    includes    TEXT NOT NULL DEFAULT '',
    source_hash TEXT NOT NULL DEFAULT '',
    entry_id    TEXT NOT NULL,
    updated_at  TIMESTAMP NOT NULL
);
`

// Open creates or opens the cache database under dir.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "pkgcache.db"))
	if err != nil {
		return nil, fmt.Errorf("opening package cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing package cache: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// Get returns the cached record for a package dir.
func (c *Cache) Get(dir string) (*PackageInfo, bool) {
	row := c.db.QueryRow(
		`SELECT name, backend, includes, source_hash, entry_id, updated_at FROM packages WHERE dir = ?`, dir)
	info := &PackageInfo{Dir: dir}
	var includes string
	if err := row.Scan(&info.Name, &info.Backend, &includes, &info.SourceHash, &info.EntryID, &info.UpdatedAt); err != nil {
		return nil, false
	}
	if includes != "" {
		info.Includes = strings.Split(includes, "\n")
	}
	return info, true
}

// Put upserts a record, stamping a fresh entry id.
func (c *Cache) Put(info *PackageInfo) error {
	info.EntryID = uuid.NewString()
	info.UpdatedAt = time.Now().UTC()
	_, err := c.db.Exec(
		`INSERT INTO packages (dir, name, backend, includes, source_hash, entry_id, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(dir) DO UPDATE SET
		   name = excluded.name, backend = excluded.backend, includes = excluded.includes,
		   source_hash = excluded.source_hash, entry_id = excluded.entry_id, updated_at = excluded.updated_at`,
		info.Dir, info.Name, info.Backend, strings.Join(info.Includes, "\n"),
		info.SourceHash, info.EntryID, info.UpdatedAt)
	if err != nil {
		return fmt.Errorf("caching package %s: %w", info.Dir, err)
	}
	return nil
}

// Invalidate drops a package record.
func (c *Cache) Invalidate(dir string) error {
	_, err := c.db.Exec(`DELETE FROM packages WHERE dir = ?`, dir)
	return err
}
