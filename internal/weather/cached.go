package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kisansarathi/internal/cache"
	"kisansarathi/pkg/types"

	"github.com/sirupsen/logrus"
)

type Source interface {
	Current(ctx context.Context, loc types.Location) (*types.Weather, error)
}

type Store interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Cached serves recent lookups from the store. Nearby coordinates share an
// entry: keys are rounded to two decimal places (about 1 km).
type Cached struct {
	logger *logrus.Logger
	source Source
	store  Store
	ttl    time.Duration
}

func NewCached(logger *logrus.Logger, source Source, store Store, ttl time.Duration) *Cached {
	return &Cached{logger: logger, source: source, store: store, ttl: ttl}
}

func CacheKey(loc types.Location) string {
	return fmt.Sprintf("weather:%.2f:%.2f", loc.Lat, loc.Lon)
}

func (c *Cached) Current(ctx context.Context, loc types.Location) (*types.Weather, error) {
	key := CacheKey(loc)

	var hit types.Weather
	err := c.store.GetJSON(ctx, key, &hit)
	switch {
	case err == nil:
		return &hit, nil
	case !errors.Is(err, cache.ErrMiss):
		c.logger.WithError(err).WithField("key", key).Warn("weather cache read failed")
	}

	w, err := c.source.Current(ctx, loc)
	if err != nil {
		return nil, err
	}

	if err := c.store.SetJSON(ctx, key, w, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("weather cache write failed")
	}

	return w, nil
}
