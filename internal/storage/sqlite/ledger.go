// Package sqlite хранит журнал просмотренных ссылок в локальном файле SQLite
// (драйвер modernc.org/sqlite, без cgo).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"grantwatch/internal/observability"
	"grantwatch/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS seen(
	id         INTEGER PRIMARY KEY,
	source     TEXT NOT NULL,
	url        TEXT NOT NULL UNIQUE,
	title      TEXT,
	created_at TEXT NOT NULL
)`

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

type Ledger struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

var _ storage.Ledger = (*Ledger)(nil)

// Open открывает (или создаёт) файл журнала и схему. Идемпотентна.
func Open(ctx context.Context, path string, commandTimeout time.Duration, logger *observability.Logger) (*Ledger, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("%w: mkdir: %w", storage.ErrLedgerUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", storage.ErrLedgerUnavailable, path, err)
	}
	// Одно соединение: прагмы действуют на всё время жизни, записи сериализуются
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	for _, p := range append(pragmas, schema) {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: %s: %w", storage.ErrLedgerUnavailable, path, err)
		}
	}

	return &Ledger{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
	}, nil
}

// RecordIfNew вставляет запись; конфликт по url означает «уже видели»
func (l *Ledger) RecordIfNew(ctx context.Context, rec storage.SeenRecord) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.commandTimeout)
	defer cancel()

	result, err := l.db.ExecContext(ctx,
		`INSERT INTO seen(source, url, title, created_at) VALUES(?, ?, ?, ?)
		 ON CONFLICT(url) DO NOTHING`,
		rec.Source, rec.URL, rec.Title, storage.FormatTime(rec.CreatedAt),
	)
	if err != nil {
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
		`SELECT source, url, COALESCE(title, ''), created_at FROM seen ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query database: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			l.logger.Error("Failed to close rows", "error", err.Error())
		}
	}()

	var records []storage.SeenRecord
	for rows.Next() {
		var (
			rec       storage.SeenRecord
			createdAt string
		)
		if err := rows.Scan(&rec.Source, &rec.URL, &rec.Title, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan seen record: %w", err)
		}
		if rec.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
			l.logger.Warn("Unparsable created_at", "url", rec.URL, "created_at", createdAt)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close закрывает соединение с БД
func (l *Ledger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}
