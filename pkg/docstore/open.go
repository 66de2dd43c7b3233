package docstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/farmledger/pkg/config"
	"github.com/angelmondragon/farmledger/pkg/db"
	"github.com/angelmondragon/farmledger/pkg/logger"
	"github.com/angelmondragon/farmledger/pkg/migrate"
	"github.com/angelmondragon/farmledger/pkg/redis"
)

// Open builds the backend selected by cfg.Store.Backend. The returned closer releases
// any connection the backend opened.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (Store, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(cfg.Store.Backend) {
	case config.StoreBackendMemory, "":
		return NewMemory(), noop, nil
	case config.StoreBackendRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap redis: %w", err)
		}
		store, err := NewRedis(client, cfg.Store.KeyPrefix)
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return store, client.Close, nil
	case config.StoreBackendSQL:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, noop, fmt.Errorf("bootstrap database: %w", err)
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		store, err := NewSQL(client.DB())
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return store, client.Close, nil
	}
	return nil, noop, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
}
