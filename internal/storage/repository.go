package storage

import (
	"context"
	"errors"
	"time"
)

// ErrLedgerUnavailable оборачивает любую ошибку открытия журнала.
// Без журнала дедупликация невозможна, поэтому запуск прерывается.
var ErrLedgerUnavailable = errors.New("ledger unavailable")

// ErrURLTooLong: URL длиннее, чем позволяет схема журнала.
// Относится к одной ссылке, а не ко всему источнику.
var ErrURLTooLong = errors.New("url too long for ledger")

// TimeLayout: формат created_at (ISO-8601, UTC)
const TimeLayout = time.RFC3339Nano

// SeenRecord: запись журнала, создаётся один раз при первом появлении URL
// и больше не изменяется. URL уникален глобально, а не в пределах источника.
type SeenRecord struct {
	Source    string
	URL       string
	Title     string
	CreatedAt time.Time
}

// Ledger интерфейс журнала просмотренных ссылок
type Ledger interface {
	// RecordIfNew атомарно вставляет запись; false, если URL уже есть в журнале.
	// Нарушение уникальности ошибкой не считается.
	RecordIfNew(ctx context.Context, rec SeenRecord) (bool, error)

	// Count возвращает число записей
	Count(ctx context.Context) (int, error)

	// Recent возвращает последние записи, новые первыми
	Recent(ctx context.Context, limit int) ([]SeenRecord, error)

	Close() error
}

// FormatTime приводит время к строковому виду колонки created_at
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime разбирает значение created_at
func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}
