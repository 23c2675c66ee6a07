package holiday

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/haydenhayden/projectzen/config"
	"github.com/haydenhayden/projectzen/consts"
	"github.com/haydenhayden/projectzen/domain"
	"github.com/haydenhayden/projectzen/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// ErrUpstream is wrapped by every failure reported by the holiday service.
var ErrUpstream = errors.New("holiday service failed")

var (
	requestCount = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "holiday",
		Name:      "requests_total",
		Help:      "Total number of holiday requests sent",
	})
	errorCount = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "holiday",
		Name:      "errors_total",
		Help:      "Total number of failed holiday requests",
	})
)

// Source returns the special days of a year, with or without the weekends.
type Source interface {
	Holidays(ctx context.Context, year int, weekends bool) (Calendar, error)
}

// StatusError is returned for a non-2xx response.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: HTTP %d", ErrUpstream, e.Status)
}

func (e *StatusError) Unwrap() error {
	return ErrUpstream
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(cfg config.Holiday) *Client {
	return NewClientWithHTTP(&http.Client{Timeout: cfg.Timeout}, cfg)
}

func NewClientWithHTTP(client *http.Client, cfg config.Holiday) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = config.DefaultHolidayURL
	}
	return &Client{baseURL: base, client: client}
}

func week(weekends bool) string {
	if weekends {
		return "Y"
	}
	return "N"
}

// Holidays performs exactly one request, without retry.
func (c *Client) Holidays(ctx context.Context, year int, weekends bool) (cal Calendar, err error) {
	logger, ctx := logging.FromWithNameAndFields(ctx, "holiday", zap.Int("year", year), zap.Bool("weekends", weekends))
	requestCount.Inc()
	defer func() {
		if err != nil {
			errorCount.Inc()
			logger.Info("Holiday request failed", zap.Error(err))
		}
	}()
	endpoint := fmt.Sprintf("%s/year/%d?week=%s", c.baseURL, year, week(weekends))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return cal, err
	}
	req.Header.Set("User-Agent", consts.UserAgent())
	req.Header.Set("Accept", "application/json")
	start := time.Now()
	res, err := c.client.Do(req)
	if err != nil {
		return cal, fmt.Errorf("fetching holidays %d: %w", year, err)
	}
	defer res.Body.Close()
	logger.Debug("Holiday response",
		zap.String("url", endpoint),
		zap.Int("status", res.StatusCode),
		zap.Duration("duration", time.Since(start)))
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return cal, &StatusError{Status: res.StatusCode}
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return cal, fmt.Errorf("reading holidays %d: %w", year, err)
	}
	var body response
	if err := json.Unmarshal(data, &body); err != nil {
		return cal, fmt.Errorf("decoding holidays %d: %w", year, err)
	}
	if body.Code != 0 {
		return cal, fmt.Errorf("%w: code %d %s", ErrUpstream, body.Code, body.Message)
	}
	days, order, err := decodeDays(body.Holiday, year)
	if err != nil {
		return cal, fmt.Errorf("decoding holidays %d: %w", year, err)
	}
	cal = Calendar{Year: year, Weekends: weekends, Days: days, Order: order}
	if ce := logger.Check(zap.DebugLevel, "Rest days"); ce != nil {
		ce.Write(zap.Array("days", logging.Strings[domain.Date](cal.RestDays())))
	}
	return cal, nil
}
