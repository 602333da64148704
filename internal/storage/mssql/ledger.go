package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf16"

	mssql "github.com/microsoft/go-mssqldb"

	"grantwatch/internal/observability"
	"grantwatch/internal/storage"
)

const createTable = `
IF OBJECT_ID(N'dbo.seen', N'U') IS NULL
CREATE TABLE dbo.seen (
	[id]         BIGINT IDENTITY(1,1) PRIMARY KEY,
	[source]     NVARCHAR(400) NOT NULL,
	[url]        NVARCHAR(850) NOT NULL CONSTRAINT UQ_seen_url UNIQUE,
	[title]      NVARCHAR(MAX) NULL,
	[created_at] NVARCHAR(40)  NOT NULL
);`

// maxURLLen: длина NVARCHAR колонки url в UTF-16 единицах.
// 850 символов укладываются в предел ключа индекса (1700 байт).
const maxURLLen = 850

// Коды нарушения уникального ключа / индекса SQL Server
const (
	errUniqueConstraint = 2627
	errUniqueIndex      = 2601
)

type Ledger struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

var _ storage.Ledger = (*Ledger)(nil)

func Open(ctx context.Context, dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Ledger, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %w", storage.ErrLedgerUnavailable, err)
	}

	l := newLedger(db, commandTimeout, logger)

	// Тестируем соединение
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

func newLedger(db *sql.DB, commandTimeout time.Duration, logger *observability.Logger) *Ledger {
	return &Ledger{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
	}
}

func (l *Ledger) ensureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, l.commandTimeout)
	defer cancel()

	if _, err := l.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table seen: %w", err)
	}
	return nil
}

// RecordIfNew вставляет запись, только если такого URL ещё нет.
// UPDLOCK+HOLDLOCK держат диапазон ключа до конца оператора, так что
// параллельные вставки одного URL не проходят обе.
func (l *Ledger) RecordIfNew(ctx context.Context, rec storage.SeenRecord) (bool, error) {
	if n := utf16Len(rec.URL); n > maxURLLen {
		return false, fmt.Errorf("%w: %d > %d characters", storage.ErrURLTooLong, n, maxURLLen)
	}

	ctx, cancel := context.WithTimeout(ctx, l.commandTimeout)
	defer cancel()

	query := `
		INSERT INTO dbo.seen ([source], [url], [title], [created_at])
		SELECT @Source, @URL, @Title, @CreatedAt
		WHERE NOT EXISTS (
			SELECT 1 FROM dbo.seen WITH (UPDLOCK, HOLDLOCK) WHERE [url] = @URL
		);
	`

	result, err := l.db.ExecContext(ctx, query,
		sql.Named("Source", rec.Source),
		sql.Named("URL", rec.URL),
		sql.Named("Title", rec.Title),
		sql.Named("CreatedAt", storage.FormatTime(rec.CreatedAt)),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to execute insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// Count получает количество записей в журнале
func (l *Ledger) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, l.commandTimeout)
	defer cancel()

	var count int
	err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM dbo.seen`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to query database: %w", err)
	}

	return count, nil
}

// Recent получает последние добавленные записи
func (l *Ledger) Recent(ctx context.Context, limit int) ([]storage.SeenRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, l.commandTimeout)
	defer cancel()

	query := `SELECT TOP (@Limit) [source], [url], ISNULL([title], N''), [created_at] FROM dbo.seen ORDER BY [id] DESC`

	rows, err := l.db.QueryContext(ctx, query, sql.Named("Limit", limit))
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
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if t, err := storage.ParseTime(createdAt); err == nil {
			rec.CreatedAt = t
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

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func isDuplicateKey(err error) bool {
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return msErr.Number == errUniqueConstraint || msErr.Number == errUniqueIndex
	}
	return false
}
