// Package store provides storage backends for the DrillLine event journal.
//
// This file implements the SQLite-backed journal.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/CallForge/DrillLine/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteJournal appends transition records to a SQLite database file.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal creates a new SQLite journal with the given DSN.
// The DSN is a file path to the database file; its directory is created if
// missing.
func NewSQLiteJournal(opts ...Option) (*SQLiteJournal, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteJournal invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteJournal DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

// Append inserts one transition record.
func (s *SQLiteJournal) Append(t models.Transition) error {
	fields, err := encodeFields(t.Fields)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO transitions (event, sid, sender, recipient, fields, time) VALUES (?, ?, ?, ?, ?, ?)`,
		t.Event, t.Call.SID, t.Call.From, t.Call.To, fields, t.Time,
	)
	if err != nil {
		slog.Error("SQLiteJournal Append failed", "error", err, "event", t.Event)
		return fmt.Errorf("failed to insert transition %s: %w", t.Event, err)
	}
	return nil
}

// Recent returns up to limit of the most recent transition records.
func (s *SQLiteJournal) Recent(limit int) ([]models.Transition, error) {
	rows, err := s.db.Query(
		`SELECT event, sid, sender, recipient, fields, time FROM transitions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		slog.Error("SQLiteJournal Recent query failed", "error", err)
		return nil, fmt.Errorf("failed to query transitions: %w", err)
	}
	defer rows.Close()
	return scanTransitions(rows)
}

// Close closes the underlying database.
func (s *SQLiteJournal) Close() error {
	return s.db.Close()
}

// encodeFields serializes step-specific fields for the nullable fields column.
func encodeFields(fields map[string]any) (interface{}, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transition fields: %w", err)
	}
	return string(b), nil
}

// scanTransitions reads transition rows into models.
func scanTransitions(rows *sql.Rows) ([]models.Transition, error) {
	var out []models.Transition
	for rows.Next() {
		var t models.Transition
		var fields sql.NullString
		if err := rows.Scan(&t.Event, &t.Call.SID, &t.Call.From, &t.Call.To, &fields, &t.Time); err != nil {
			return nil, fmt.Errorf("failed to scan transition row: %w", err)
		}
		if fields.Valid && fields.String != "" {
			if err := json.Unmarshal([]byte(fields.String), &t.Fields); err != nil {
				return nil, fmt.Errorf("failed to decode transition fields: %w", err)
			}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transition rows: %w", err)
	}
	return out, nil
}
