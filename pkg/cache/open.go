package cache

import (
	"context"

	"github.com/matzehuels/mro/pkg/config"
	errs "github.com/matzehuels/mro/pkg/errors"
)

// Open creates the backend named by cfg.Backend. Network backends are
// pinged, with retries, before Open returns.
func Open(ctx context.Context, cfg config.Cache) (Cache, error) {
	switch cfg.Backend {
	case config.BackendNull:
		return NewNullCache(), nil

	case config.BackendFile, "":
		dir := cfg.Dir
		if dir == "" {
			d, err := config.DefaultCacheDir()
			if err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "cache directory")
			}
			dir = d
		}
		c, err := NewFileCache(dir)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "cache directory %s", dir)
		}
		return c, nil

	case config.BackendRedis:
		c := NewRedisCache(RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := RetryWithBackoff(ctx, func() error { return Retryable(c.Ping(ctx)) }); err != nil {
			_ = c.Close()
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "redis cache at %s", cfg.Redis.Addr)
		}
		return c, nil

	case config.BackendMongo:
		var c *MongoCache
		err := RetryWithBackoff(ctx, func() error {
			var err error
			c, err = NewMongoCache(ctx, MongoOptions{
				URI:        cfg.Mongo.URI,
				Database:   cfg.Mongo.Database,
				Collection: cfg.Mongo.Collection,
			})
			return err
		})
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "mongo cache")
		}
		return c, nil
	}
	return nil, errs.New(errs.ErrCodeInvalidInput, "unknown cache backend %q", cfg.Backend)
}

// KeyerFor returns the keyer for cfg, scoped when a prefix is set.
func KeyerFor(cfg config.Cache) Keyer {
	if cfg.Prefix == "" {
		return NewDefaultKeyer()
	}
	return NewScopedKeyer(NewDefaultKeyer(), cfg.Prefix)
}
