package artifact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mangarchive/internal/logging"
)

// Producer creates an artifact's content on a cache miss.
type Producer func(ctx context.Context) ([]byte, error)

// Cache runs producers only for keys that are not yet present in the store.
type Cache struct {
	store  Store
	logger *slog.Logger
}

// NewCache wraps store.
func NewCache(store Store, logger *slog.Logger) *Cache {
	return &Cache{store: store, logger: logging.NewComponentLogger(logger, "artifact")}
}

// Store returns the backing store.
func (c *Cache) Store() Store { return c.store }

// EnsureBytes returns the content stored at key, producing and persisting it
// first when absent. The boolean reports a cache hit.
func (c *Cache) EnsureBytes(ctx context.Context, key string, produce Producer) ([]byte, bool, error) {
	exists, err := c.store.Exists(key)
	if err != nil {
		return nil, false, fmt.Errorf("check %s: %w", key, err)
	}
	if exists {
		data, err := c.store.Read(key)
		if err != nil {
			return nil, true, fmt.Errorf("read %s: %w", key, err)
		}
		c.logHit(ctx, key)
		return data, true, nil
	}
	data, err := c.produce(ctx, key, produce)
	if err != nil {
		return nil, false, err
	}
	return data, false, nil
}

// EnsurePresent guarantees key exists without reading it back on a hit.
func (c *Cache) EnsurePresent(ctx context.Context, key string, produce Producer) (bool, error) {
	exists, err := c.store.Exists(key)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", key, err)
	}
	if exists {
		c.logHit(ctx, key)
		return true, nil
	}
	if _, err := c.produce(ctx, key, produce); err != nil {
		return false, err
	}
	return false, nil
}

// EnsureDir guarantees the directory key exists.
func (c *Cache) EnsureDir(ctx context.Context, key string) (bool, error) {
	exists, err := c.store.Exists(key)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", key, err)
	}
	if exists {
		c.logHit(ctx, key)
		return true, nil
	}
	if err := c.store.MkdirAll(key); err != nil {
		return false, fmt.Errorf("create %s: %w", key, err)
	}
	logging.WithContext(ctx, c.logger).Debug("artifact stored", logging.String("path", c.store.Path(key)))
	return false, nil
}

func (c *Cache) produce(ctx context.Context, key string, produce Producer) ([]byte, error) {
	if produce == nil {
		return nil, errors.New("artifact producer is nil")
	}
	data, err := produce(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store.Write(key, data); err != nil {
		return nil, fmt.Errorf("write %s: %w", key, err)
	}
	logging.WithContext(ctx, c.logger).Debug("artifact stored",
		logging.String("path", c.store.Path(key)),
		logging.Int("bytes", len(data)),
	)
	return data, nil
}

func (c *Cache) logHit(ctx context.Context, key string) {
	logging.WithContext(ctx, c.logger).Debug("artifact cached", logging.String("path", c.store.Path(key)))
}
