package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dtnitsch/linkslug/pkg/db/migrations"
	_ "modernc.org/sqlite"
)

const DefaultDBName = "linkslug.db"

type DB struct {
	*sql.DB
	path string
}

// openDB opens a SQLite database at the given path
func openDB(dbPath string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases
	// from splitting across pool connections.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = sqlDB.Close() // Close error less important than PRAGMA error
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if dbPath != ":memory:" {
		if _, err := sqlDB.Exec("PRAGMA journal_mode = WAL"); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to enable WAL: %w", err)
		}
	}

	return sqlDB, nil
}

// Open opens or creates the SQLite database at path and applies pending
// migrations. An empty path puts the database next to the binary.
func Open(path string) (*DB, error) {
	if path == "" {
		execPath, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable path: %w", err)
		}
		path = filepath.Join(filepath.Dir(execPath), DefaultDBName)
	}

	sqlDB, err := openDB(path)
	if err != nil {
		return nil, err
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	if err := db.InitSchema(); err != nil {
		_ = db.Close() // Close error less important than schema error
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// InitSchema brings the schema up to the latest migration.
func (db *DB) InitSchema() error {
	return migrations.Run(db.DB)
}
