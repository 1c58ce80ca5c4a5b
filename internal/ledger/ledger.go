// Package ledger records the outcome of every run in a sqlite database.
package ledger

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/chrissnell/stormtide/pkg/migrate"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationTable = "ledger_migrations"

// ErrNotFound is returned when no run has the requested id.
var ErrNotFound = errors.New("run not found")

// Entry is one recorded run.
type Entry struct {
	ID         string
	OutputName string
	StartedAt  time.Time
	FinishedAt time.Time
	SeaCode    int
	AirCode    int
	StormCode  int
	// Detail carries the first failure message, if any.
	Detail string
}

// Ledger is a handle on the run database.
type Ledger struct {
	db   *sql.DB
	path string
}

// Open opens or creates the ledger at path and brings its schema up to date.
func Open(ctx context.Context, path string, logger *zap.SugaredLogger) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	m := migrate.NewMigrator(db, migrate.NewFSProvider(migrationFS, "migrations", migrationTable), logger)
	if err := m.MigrateUp(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate ledger: %w", err)
	}

	return &Ledger{db: db, path: path}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record inserts a run.
func (l *Ledger) Record(ctx context.Context, e Entry) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO runs (id, output_name, started_at, finished_at, sea_code, air_code, storm_code, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OutputName, e.StartedAt.UnixMilli(), e.FinishedAt.UnixMilli(),
		e.SeaCode, e.AirCode, e.StormCode, e.Detail)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", e.ID, err)
	}
	return nil
}

// Get returns the run with the given id.
func (l *Ledger) Get(ctx context.Context, id string) (*Entry, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT id, output_name, started_at, finished_at, sea_code, air_code, storm_code, detail
		FROM runs WHERE id = ?`, id)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return e, nil
}

// Recent returns up to limit runs, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, output_name, started_at, finished_at, sea_code, air_code, storm_code, detail
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var e Entry
	var started, finished int64
	if err := s.Scan(&e.ID, &e.OutputName, &started, &finished,
		&e.SeaCode, &e.AirCode, &e.StormCode, &e.Detail); err != nil {
		return nil, err
	}
	e.StartedAt = time.UnixMilli(started).UTC()
	e.FinishedAt = time.UnixMilli(finished).UTC()
	return &e, nil
}
