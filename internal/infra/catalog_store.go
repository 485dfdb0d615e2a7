package infra

import (
	"context"
	"fmt"
	"log/slog"

	"towquote/internal/config"
	"towquote/internal/modules/catalog"
)

// CatalogStore is a catalog backend that can also be seeded.
type CatalogStore interface {
	catalog.Source
	catalog.Publisher
}

// NewCatalogStore connects the backend named by cfg.Catalog.Source. The
// returned closer releases the connection and is never nil.
func NewCatalogStore(ctx context.Context, cfg config.Config) (CatalogStore, func(), error) {
	noop := func() {}
	switch cfg.Catalog.Source {
	case config.SourceFile:
		return catalog.NewFileSource(cfg.Catalog.DataDir), noop, nil
	case config.SourcePostgres:
		pool, err := NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, noop, err
		}
		return catalog.NewPostgresSource(pool), pool.Close, nil
	case config.SourceRedis:
		client, err := NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return nil, noop, err
		}
		return catalog.NewRedisSource(client, cfg.Redis.Prefix), func() { _ = client.Close() }, nil
	case config.SourceMongo:
		client, err := NewMongo(ctx, cfg.Mongo.URI)
		if err != nil {
			return nil, noop, err
		}
		closer := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				slog.Warn("mongo disconnect", "err", err)
			}
		}
		return catalog.NewMongoSource(client, cfg.Mongo.Database, cfg.Mongo.Collection), closer, nil
	default:
		return nil, noop, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
}
