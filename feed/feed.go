// Package feed runs the request pipeline: query the database and the holiday
// service, build the milestone events and split them around excluded days.
package feed

import (
	"context"
	"time"

	"github.com/haydenhayden/projectzen/domain"
	"github.com/haydenhayden/projectzen/holiday"
	"github.com/haydenhayden/projectzen/logging"
	"github.com/haydenhayden/projectzen/milestone"
	"github.com/haydenhayden/projectzen/notion"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	builtCount = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "feed",
		Name:      "events_built_total",
		Help:      "Total number of milestone events built from database records",
	})
	segmentCount = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "feed",
		Name:      "segments_total",
		Help:      "Total number of events left after splitting around excluded days",
	})
)

// Database returns every record of a workspace database.
type Database interface {
	QueryDatabase(ctx context.Context, databaseID string) (notion.QueryResult, error)
}

type Service struct {
	db       Database
	holidays holiday.Source
}

func NewService(db Database, holidays holiday.Source) *Service {
	return &Service{db: db, holidays: holidays}
}

// Database passes the raw query result through.
func (s *Service) Database(ctx context.Context, databaseID string) (notion.QueryResult, error) {
	return s.db.QueryDatabase(ctx, databaseID)
}

// Holidays returns the special days of a year.
func (s *Service) Holidays(ctx context.Context, year int, weekends bool) (holiday.Calendar, error) {
	return s.holidays.Holidays(ctx, year, weekends)
}

// Events returns the milestone events of the database with the days excluded by
// profile in year removed. The two upstream calls run concurrently, either
// failure fails the whole call.
func (s *Service) Events(ctx context.Context, databaseID string, profile holiday.Profile, year int) ([]domain.Event, error) {
	logger, ctx := logging.FromWithNameAndFields(ctx, "feed",
		zap.String("database", databaseID),
		zap.Stringer("profile", profile),
		zap.Int("year", year))
	start := time.Now()

	var (
		result   notion.QueryResult
		excluded domain.ExclusionSet
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		result, err = s.db.QueryDatabase(gctx, databaseID)
		return
	})
	g.Go(func() (err error) {
		excluded, err = profile.Exclusions(gctx, s.holidays, year)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pages := result.Pages()
	events := milestone.Build(pages)
	split := domain.Split(events, excluded.Predicate())
	builtCount.Add(float64(len(events)))
	segmentCount.Add(float64(len(split)))
	logger.Debug("Feed built",
		zap.Int("records", len(pages)),
		zap.Int("events", len(events)),
		zap.Int("segments", len(split)),
		zap.Int("excluded", len(excluded)),
		zap.Duration("duration", time.Since(start)))
	return split, nil
}
