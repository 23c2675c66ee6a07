// Package boltcache keeps holiday calendars in a BoltDB file so the holiday
// service is asked at most once per TTL for a given year.
package boltcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/haydenhayden/projectzen/holiday"
	"github.com/haydenhayden/projectzen/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var holidaysBucket = []byte("holidays")

var (
	hits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "holiday_cache_hits",
		Help: "Number of holiday calendars served from the cache",
	})
	misses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "holiday_cache_misses",
		Help: "Number of holiday calendars missing or expired in the cache",
	})
)

type entry struct {
	Fetched  time.Time        `json:"fetched"`
	Calendar holiday.Calendar `json:"calendar"`
}

// Cache is a holiday.Source in front of another one.
type Cache struct {
	db       *bolt.DB
	delegate holiday.Source
	ttl      time.Duration
	now      func() time.Time
}

// New creates the bucket if needed. The db stays owned by the caller.
func New(db *bolt.DB, delegate holiday.Source, ttl time.Duration) (*Cache, error) {
	if err := db.Update(func(tx *bolt.Tx) (err error) {
		_, err = tx.CreateBucketIfNotExists(holidaysBucket)
		return
	}); err != nil {
		return nil, err
	}
	return &Cache{db: db, delegate: delegate, ttl: ttl, now: time.Now}, nil
}

func key(year int, weekends bool) []byte {
	w := "N"
	if weekends {
		w = "Y"
	}
	return []byte(fmt.Sprintf("%04d/%s", year, w))
}

func (c *Cache) Holidays(ctx context.Context, year int, weekends bool) (holiday.Calendar, error) {
	logger := logging.From(ctx).Named("holidaycache")
	if cal, found := c.lookup(logger, year, weekends); found {
		hits.Inc()
		return cal, nil
	}
	misses.Inc()
	return c.Refresh(ctx, year, weekends)
}

// Refresh fetches from the delegate and stores the result. Failures are not stored.
func (c *Cache) Refresh(ctx context.Context, year int, weekends bool) (holiday.Calendar, error) {
	cal, err := c.delegate.Holidays(ctx, year, weekends)
	if err != nil {
		return cal, err
	}
	encoded, err := json.Marshal(entry{Fetched: c.now(), Calendar: cal})
	if err != nil {
		return cal, err
	}
	if err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(holidaysBucket).Put(key(year, weekends), encoded)
	}); err != nil {
		logging.From(ctx).Warn("Failed to cache holidays", zap.Int("year", year), zap.Error(err))
	}
	return cal, nil
}

func (c *Cache) lookup(logger *zap.Logger, year int, weekends bool) (cal holiday.Calendar, found bool) {
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(holidaysBucket).Get(key(year, weekends))
		if v == nil {
			return nil
		}
		var e entry
		if err := json.Unmarshal(v, &e); err != nil {
			return err
		}
		if c.ttl > 0 && c.now().Sub(e.Fetched) > c.ttl {
			return nil
		}
		cal, found = e.Calendar, true
		return nil
	})
	if err != nil {
		logger.Warn("Dropping unreadable cache entry", zap.Int("year", year), zap.Error(err))
		return holiday.Calendar{}, false
	}
	return
}
