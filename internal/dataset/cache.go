package dataset

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jengzang/citibike-dashboard-go/internal/metrics"
	"github.com/jengzang/citibike-dashboard-go/internal/models"
)

// Cache memoizes loaded datasets by source key (path plus modification time).
// Entries never expire; they are replaced when the source changes or dropped by Invalidate.
type Cache struct {
	store   *cache.Cache
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewCache creates an empty dataset cache. m may be nil.
func NewCache(m *metrics.Metrics, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:   cache.New(cache.NoExpiration, 0),
		metrics: m,
		logger:  logger,
	}
}

// Get returns the dataset for src, loading it on a miss
func (c *Cache) Get(ctx context.Context, src Source) (*models.Dataset, error) {
	key, err := src.Key()
	if err != nil {
		c.metrics.ObserveDatasetLoad(loadOutcome(err), 0, 0)
		return nil, err
	}

	if cached, found := c.store.Get(key); found {
		c.metrics.ObserveCacheLookup(true)
		return cached.(*models.Dataset), nil
	}
	c.metrics.ObserveCacheLookup(false)

	start := time.Now()
	ds, err := src.Load(ctx)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveDatasetLoad(loadOutcome(err), 0, elapsed)
		return nil, err
	}
	c.metrics.ObserveDatasetLoad(metrics.OutcomeSuccess, ds.Len(), elapsed)

	c.evictOlderVersions(key)
	c.store.Set(key, ds, cache.NoExpiration)
	c.logger.Info("dataset loaded",
		"source", ds.Source,
		"rows", ds.Len(),
		"has_trip_count", ds.HasTripCount,
		"has_temperature", ds.HasTemperature,
		"duration", elapsed,
	)
	return ds, nil
}

// Invalidate drops every cached dataset
func (c *Cache) Invalidate() int {
	n := c.store.ItemCount()
	c.store.Flush()
	c.logger.Info("dataset cache cleared", "entries", n)
	return n
}

// Len returns the number of cached datasets
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

// evictOlderVersions removes entries for the same path with a different modification time
func (c *Cache) evictOlderVersions(key string) {
	at := strings.LastIndex(key, "@")
	if at < 0 {
		return
	}
	prefix := key[:at+1]
	for k := range c.store.Items() {
		if k != key && strings.HasPrefix(k, prefix) {
			c.store.Delete(k)
		}
	}
}

func loadOutcome(err error) string {
	var notFound *SourceNotFoundError
	var format *DataFormatError
	switch {
	case errors.As(err, &notFound):
		return metrics.OutcomeNotFound
	case errors.As(err, &format):
		return metrics.OutcomeFormatError
	default:
		return metrics.OutcomeError
	}
}
