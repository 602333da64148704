package app

import (
	"context"
	"fmt"

	"grantwatch/internal/config"
	"grantwatch/internal/observability"
	"grantwatch/internal/storage"
	"grantwatch/internal/storage/mssql"
	"grantwatch/internal/storage/postgres"
	"grantwatch/internal/storage/redis"
	"grantwatch/internal/storage/sqlite"
)

// OpenLedger открывает журнал выбранного драйвера.
// Любая ошибка здесь фатальна для запуска.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *observability.Logger) (storage.Ledger, error) {
	timeout := cfg.GetCommandTimeout()

	switch cfg.Storage.Driver {
	case "sqlite":
		return sqlite.Open(ctx, cfg.Storage.DSN, timeout, logger)
	case "mssql":
		return mssql.Open(ctx, cfg.Storage.DSN, timeout, logger)
	case "postgres":
		return postgres.Open(ctx, cfg.Storage.DSN, timeout, logger)
	case "redis":
		return redis.Open(ctx, cfg.Storage.DSN, timeout, logger)
	default:
		return nil, fmt.Errorf("%w: unsupported storage driver %q", storage.ErrLedgerUnavailable, cfg.Storage.Driver)
	}
}
