// Package postgres хранит журнал в PostgreSQL через pgx (database/sql драйвер "pgx").
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"grantwatch/internal/observability"
	"grantwatch/internal/storage"
)

const createTable = `
CREATE TABLE IF NOT EXISTS seen (
	id         BIGSERIAL PRIMARY KEY,
	source     TEXT NOT NULL,
	url        TEXT NOT NULL UNIQUE,
	title      TEXT,
	created_at TEXT NOT NULL
)`

const uniqueViolation = "23505"

type Ledger struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

var _ storage.Ledger = (*Ledger)(nil)

func Open(ctx context.Context, dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Ledger, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to connect to database: %w", storage.ErrLedgerUnavailable, err)
	}

	l := &Ledger{db: db, commandTimeout: commandTimeout, logger: logger}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %w", storage.ErrLedgerUnavailable, err)
	}

	if err := l.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", storage.ErrLedgerUnavailable, err)
	}

	return l, nil
}

func (l *Ledger) ensureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, l.commandTimeout)
	defer cancel()

	if _, err := l.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table seen: %w", err)
	}
	return nil
}

func (l *Ledger) RecordIfNew(ctx context.Context, rec storage.SeenRecord) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.commandTimeout)
	defer cancel()

	result, err := l.db.ExecContext(ctx,
		`INSERT INTO seen (source, url, title, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (url) DO NOTHING`,
		rec.Source, rec.URL, rec.Title, storage.FormatTime(rec.CreatedAt),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert seen record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func (l *Ledger) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, l.commandTimeout)
	defer cancel()

	var count int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seen`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}
	return count, nil
}

func (l *Ledger) Recent(ctx context.Context, limit int) ([]storage.SeenRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, l.commandTimeout)
	defer cancel()

	rows, err := l.db.QueryContext(ctx,
		`SELECT source, url, COALESCE(title, ''), created_at FROM seen ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query database: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []storage.SeenRecord
	for rows.Next() {
		var (
			rec       storage.SeenRecord
			createdAt string
		)
		if err := rows.Scan(&rec.Source, &rec.URL, &rec.Title, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if t, err := storage.ParseTime(createdAt); err == nil {
			rec.CreatedAt = t
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (l *Ledger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}
