// Package redis хранит журнал в хэше Redis (поле: URL, значение: JSON записи).
// Порядок добавления ведётся в отдельном sorted set.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"grantwatch/internal/observability"
	"grantwatch/internal/storage"
)

const (
	seenKey   = "grantwatch:seen"
	recentKey = "grantwatch:seen:recent"
)

// recordScript: HSETNX и ZADD в одном атомарном шаге
var recordScript = redis.NewScript(`
if redis.call('HSETNX', KEYS[1], ARGV[1], ARGV[2]) == 1 then
	redis.call('ZADD', KEYS[2], ARGV[3], ARGV[1])
	return 1
end
return 0
`)

type entry struct {
	Source    string `json:"source"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

type Ledger struct {
	client         *redis.Client
	commandTimeout time.Duration
	logger         *observability.Logger
}

var _ storage.Ledger = (*Ledger)(nil)

// Open подключается по URL вида redis://:password@host:6379/0
func Open(ctx context.Context, dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Ledger, error) {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid redis url: %w", storage.ErrLedgerUnavailable, err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping failed: %w", storage.ErrLedgerUnavailable, err)
	}

	return &Ledger{client: client, commandTimeout: commandTimeout, logger: logger}, nil
}

func (l *Ledger) RecordIfNew(ctx context.Context, rec storage.SeenRecord) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, l.commandTimeout)
	defer cancel()

	payload, err := json.Marshal(entry{
		Source:    rec.Source,
		Title:     rec.Title,
		CreatedAt: storage.FormatTime(rec.CreatedAt),
	})
	if err != nil {
		return false, fmt.Errorf("failed to encode seen record: %w", err)
	}

	inserted, err := recordScript.Run(ctx, l.client,
		[]string{seenKey, recentKey},
		rec.URL, payload, rec.CreatedAt.UnixNano(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to record seen url: %w", err)
	}

	return inserted == 1, nil
}

func (l *Ledger) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, l.commandTimeout)
	defer cancel()

	n, err := l.client.HLen(ctx, seenKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count seen urls: %w", err)
	}
	return int(n), nil
}

func (l *Ledger) Recent(ctx context.Context, limit int) ([]storage.SeenRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, l.commandTimeout)
	defer cancel()

	urls, err := l.client.ZRevRange(ctx, recentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read recent urls: %w", err)
	}
	if len(urls) == 0 {
		return nil, nil
	}

	values, err := l.client.HMGet(ctx, seenKey, urls...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read seen records: %w", err)
	}

	records := make([]storage.SeenRecord, 0, len(urls))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var e entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			l.logger.Warn("Corrupted seen record", "url", urls[i], "error", err.Error())
			continue
		}
		rec := storage.SeenRecord{Source: e.Source, URL: urls[i], Title: e.Title}
		if t, err := storage.ParseTime(e.CreatedAt); err == nil {
			rec.CreatedAt = t
		}
		records = append(records, rec)
	}
	return records, nil
}

func (l *Ledger) Close() error {
	return l.client.Close()
}
