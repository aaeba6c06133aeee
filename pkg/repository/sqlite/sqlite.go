package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	_ "modernc.org/sqlite"

	"github.com/secmon-lab/relnote/pkg/domain/interfaces"
	"github.com/secmon-lab/relnote/pkg/utils/safe"
)

const currentVersion = 1

// Store is the SQLite-backed repository directory and dedup ledger.
type Store struct {
	db *sql.DB
}

var _ interfaces.Store = (*Store)(nil)

// Open opens (or creates) the database at path and runs migrations. Use
// ":memory:" for tests.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	} else {
		dsn = ":memory:?_pragma=foreign_keys(ON)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "opening database", goerr.V("path", path))
	}

	// modernc sqlite is not safe for concurrent writers over one file
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "pinging database", goerr.V("path", path))
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (x *Store) Close() error {
	return x.db.Close()
}

func (x *Store) migrate() error {
	var version int
	if err := x.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return goerr.Wrap(err, "reading user_version")
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := x.migrateV1(); err != nil {
			return err
		}
	}

	if _, err := x.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion)); err != nil {
		return goerr.Wrap(err, "setting user_version")
	}

	return nil
}

func (x *Store) migrateV1() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS repositories (
			full_name TEXT PRIMARY KEY,
			repo_id INTEGER NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			private INTEGER NOT NULL DEFAULT 0,
			fork INTEGER NOT NULL DEFAULT 0,
			archived INTEGER NOT NULL DEFAULT 0,
			disabled INTEGER NOT NULL DEFAULT 0,
			default_branch TEXT NOT NULL DEFAULT '',
			html_url TEXT NOT NULL DEFAULT '',
			profile TEXT NOT NULL DEFAULT '',
			chat_id TEXT NOT NULL DEFAULT '',
			hook_id INTEGER,
			hook_status TEXT NOT NULL DEFAULT 'pending',
			hook_synced_at TEXT,
			created_at TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL DEFAULT '',
			pushed_at TEXT NOT NULL DEFAULT '',
			discovered_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_repositories_hook_status ON repositories(hook_status)`,
		`CREATE TABLE IF NOT EXISTS processed_releases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			release_id INTEGER NOT NULL,
			repo_full_name TEXT NOT NULL,
			tag_name TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL,
			processed_at TEXT NOT NULL,
			UNIQUE(release_id, repo_full_name)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_processed_releases_repo ON processed_releases(repo_full_name)`,
	}

	tx, err := x.db.Begin()
	if err != nil {
		return goerr.Wrap(err, "beginning migration transaction")
	}
	defer safe.Rollback(tx)

	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return goerr.Wrap(err, "executing migration statement")
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "committing migration")
	}
	return nil
}
