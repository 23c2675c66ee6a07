package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/haydenhayden/projectzen/config"
	"github.com/haydenhayden/projectzen/consts"
	"github.com/haydenhayden/projectzen/discovery"
	"github.com/haydenhayden/projectzen/feed"
	"github.com/haydenhayden/projectzen/holiday"
	"github.com/haydenhayden/projectzen/holiday/boltcache"
	"github.com/haydenhayden/projectzen/ics"
	"github.com/haydenhayden/projectzen/logging"
	"github.com/haydenhayden/projectzen/notion"
	"github.com/haydenhayden/projectzen/rest"
	"github.com/kleinnic74/fflags"
	"github.com/robfig/cron/v3"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

var (
	prefetchFlag  = fflags.Define("holiday.prefetch")
	discoveryFlag = fflags.Define("discovery.mdns")
)

type App struct {
	cfg *config.Config

	db        *bolt.DB
	holidays  *boltcache.Cache
	feed      *feed.Service
	peers     *discovery.Controller
	scheduler *cron.Cron
	router    *mux.Router

	icsProfile holiday.Profile
	now        func() time.Time
	jobs       sync.WaitGroup

	shutdownHandlers shutdownHandlers
}

type shutdownHandler func(context.Context, *App)

type shutdownHandlers struct {
	h []shutdownHandler
}

func (hdls *shutdownHandlers) Add(h shutdownHandler) {
	hdls.h = append(hdls.h, h)
}

func (hdls shutdownHandlers) Execute(ctx context.Context, a *App) {
	for i := len(hdls.h) - 1; i >= 0; i-- {
		hdls.h[i](ctx, a)
	}
}

// New wires the feed pipeline and the HTTP routes. Close releases what New opened.
func New(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	logger, ctx := logging.SubFrom(ctx, "app")

	a := &App{
		cfg:    cfg,
		router: mux.NewRouter(),
		now:    time.Now,
	}
	defer func() {
		if err != nil {
			a.shutdownHandlers.Execute(ctx, a)
		}
	}()

	if a.icsProfile, err = holiday.ProfileByName(cfg.ICSExclusion); err != nil {
		return nil, err
	}

	logger.Info("Data directory", zap.String("dir", cfg.DataDir))
	if err = os.MkdirAll(cfg.DataDir, os.ModePerm); err != nil {
		return nil, err
	}
	a.db, err = bolt.Open(cfg.DatabasePath(), 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("Failed to initialize data store: %w", err)
	}
	a.shutdownHandlers.Add(func(ctx context.Context, a *App) {
		a.db.Close()
		logging.From(ctx).Info("Closed data store")
	})

	if a.holidays, err = boltcache.New(a.db, holiday.NewClient(cfg.Holiday), cfg.Holiday.CacheTTL); err != nil {
		return nil, fmt.Errorf("Failed to initialize holiday cache: %w", err)
	}
	a.feed = feed.NewService(notion.NewClient(cfg.Notion), a.holidays)

	if err = fflags.IfEnabled(prefetchFlag, func() error {
		a.scheduler = cron.New(cron.WithLocation(cfg.Location()))
		_, err := a.scheduler.AddFunc(cfg.Holiday.Prefetch, func() { a.prefetch(ctx) })
		return err
	}); err != nil {
		return nil, fmt.Errorf("Failed to schedule holiday prefetch: %w", err)
	}

	if err = fflags.IfEnabled(discoveryFlag, func() error {
		port, err := listenPort(cfg.Server.Listen)
		if err != nil {
			return err
		}
		a.peers = discovery.NewController(discovery.NewInstance(cfg.Server.Instance), port)
		rest.NewPeersAPI(a.peers).InitRoutes(a.router)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("Failed to initialize discovery: %w", err)
	}

	a.initRoutes()
	return a, nil
}

func (a *App) initRoutes() {
	opts := a.restOptions()

	rest.NewMetricsHandler().InitRoutes(a.router)
	rest.HealthHandler{}.InitRoutes(a.router)

	if consts.IsDevMode() {
		rest.NewLogsHandler().InitRoutes(a.router)
		rest.DebugHandler{}.InitRoutes(a.router)
	}

	rest.NewCalendarHandler(a.feed, opts).InitRoutes(a.router)
	rest.NewHolidaysHandler(a.feed, opts).InitRoutes(a.router)
}

func (a *App) restOptions() rest.Options {
	return rest.Options{
		DefaultDatabase: a.cfg.Notion.DatabaseID,
		ICSProfile:      a.icsProfile,
		CalendarName:    ics.DefaultName,
		Location:        a.cfg.Location(),
		Now:             func() time.Time { return a.now() },
	}
}

func (a *App) Feed() *feed.Service {
	return a.feed
}

func (a *App) Handler() http.Handler {
	return rest.WithMiddleWares(a.router, "rest")
}

// ExportICS writes the ICS feed of a database for the given year, the current
// year when year is 0.
func (a *App) ExportICS(ctx context.Context, w io.Writer, databaseID string, year int) error {
	if databaseID == "" {
		return notion.ErrMissingDatabaseID
	}
	today := a.Today()
	if year == 0 {
		year = today.Year()
	}
	events, err := a.feed.Events(ctx, databaseID, a.icsProfile, year)
	if err != nil {
		return err
	}
	return ics.Encode(w, ics.FromEvents(events), ics.Options{Name: ics.DefaultName, Stamp: today})
}

// Today is the start of the current day in the configured time zone.
func (a *App) Today() time.Time {
	loc := a.cfg.Location()
	now := a.now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
}

// prefetch refreshes both holiday variants of the current and the next year.
func (a *App) prefetch(ctx context.Context) {
	logger, ctx := logging.SubFrom(ctx, "prefetch")
	year := a.Today().Year()
	for _, y := range []int{year, year + 1} {
		for _, weekends := range []bool{true, false} {
			if _, err := a.holidays.Refresh(ctx, y, weekends); err != nil {
				logger.Warn("Holiday prefetch failed", zap.Int("year", y), zap.Bool("weekends", weekends), zap.Error(err))
				continue
			}
			logger.Debug("Holidays prefetched", zap.Int("year", y), zap.Bool("weekends", weekends))
		}
	}
}

// goPrefetch runs prefetch in the background. Close waits for it.
func (a *App) goPrefetch(ctx context.Context) {
	a.jobs.Add(1)
	go func() {
		defer a.jobs.Done()
		a.prefetch(ctx)
	}()
}

// Close waits for background jobs, then runs the shutdown handlers registered by New.
func (a *App) Close(ctx context.Context) {
	a.jobs.Wait()
	a.shutdownHandlers.Execute(ctx, a)
}

// Run serves HTTP until ctx is done, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	logger, ctx := logging.SubFrom(ctx, "app")
	defer a.Close(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if a.peers != nil {
		wg.Add(1)
		go func() {
			logger, ctx := logging.SubFrom(ctx, "discovery")
			if err := a.peers.ListenAndServe(ctx); err != nil {
				logger.Warn("mDNS discovery stopped", zap.Error(err))
			}
			logger.Info("DONE")
			wg.Done()
		}()
	}
	if a.scheduler != nil {
		a.scheduler.Start()
		a.goPrefetch(ctx)
	}

	server := http.Server{
		Addr:        a.cfg.Server.Listen,
		Handler:     a.Handler(),
		BaseContext: func(l net.Listener) context.Context { return ctx },
	}
	serverErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger, _ := logging.SubFrom(ctx, "http")
		logger.Info("Starting HTTP server...", zap.String("bindAddr", a.cfg.Server.Listen))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", zap.Error(err))
			serverErr <- err
		}
		logger.Info("DONE")
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-serverErr:
	}
	cancel()

	logger.Info("Stopping...")

	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
	}

	ctxShutdown, cancelServerShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelServerShutdown()
	if shutdownErr := server.Shutdown(ctxShutdown); shutdownErr != nil {
		logger.Error("Failed to shutdown HTTP server", zap.Error(shutdownErr))
	}

	wg.Wait()

	logger.Info("Terminated gracefully")
	return err
}

func listenPort(addr string) (int, error) {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	return strconv.Atoi(port)
}
