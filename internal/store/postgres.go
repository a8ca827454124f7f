// Package store provides storage backends for the DrillLine event journal.
//
// This file implements the PostgreSQL-backed journal.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/CallForge/DrillLine/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresJournal appends transition records to a PostgreSQL database.
type PostgresJournal struct {
	db *sql.DB
}

// NewPostgresJournal creates a new Postgres journal based on provided options.
func NewPostgresJournal(opts ...Option) (*PostgresJournal, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresJournal invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresJournal DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &PostgresJournal{db: db}, nil
}

// Append inserts one transition record.
func (s *PostgresJournal) Append(t models.Transition) error {
	fields, err := encodeFields(t.Fields)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO transitions (event, sid, sender, recipient, fields, time) VALUES ($1, $2, $3, $4, $5, $6)`,
		t.Event, t.Call.SID, t.Call.From, t.Call.To, fields, t.Time,
	)
	if err != nil {
		slog.Error("PostgresJournal Append failed", "error", err, "event", t.Event)
		return fmt.Errorf("failed to insert transition %s: %w", t.Event, err)
	}
	return nil
}

// Recent returns up to limit of the most recent transition records.
func (s *PostgresJournal) Recent(limit int) ([]models.Transition, error) {
	rows, err := s.db.Query(
		`SELECT event, sid, sender, recipient, fields, time FROM transitions ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		slog.Error("PostgresJournal Recent query failed", "error", err)
		return nil, fmt.Errorf("failed to query transitions: %w", err)
	}
	defer rows.Close()
	return scanTransitions(rows)
}

// Close closes the underlying database.
func (s *PostgresJournal) Close() error {
	return s.db.Close()
}
