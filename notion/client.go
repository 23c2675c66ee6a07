package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/haydenhayden/projectzen/config"
	"github.com/haydenhayden/projectzen/consts"
	"github.com/haydenhayden/projectzen/logging"
	"github.com/jomei/notionapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Version is the API version sent with every request.
const Version = "2022-06-28"

const (
	pageSize = 100
	// apiPrefix is the path prefix of every request built by notionapi.
	apiPrefix = "/v1"
)

var ErrMissingDatabaseID = errors.New("Notion database ID is required")

var (
	requestCount = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "notion",
		Name:      "requests_total",
		Help:      "Total number of database query requests sent",
	})
	errorCount = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "notion",
		Name:      "errors_total",
		Help:      "Total number of failed database query requests",
	})
)

// QueryResult is the list object of a database query with every page of
// results collected.
type QueryResult struct {
	Object     notionapi.ObjectType `json:"object"`
	Results    []notionapi.Page     `json:"results"`
	HasMore    bool                 `json:"has_more"`
	NextCursor *string              `json:"next_cursor"`
}

// Pages returns the results as records.
func (r QueryResult) Pages() []Page {
	pages := make([]Page, 0, len(r.Results))
	for _, p := range r.Results {
		pages = append(pages, PageOf(p))
	}
	return pages
}

type Client struct {
	api *notionapi.Client
}

func NewClient(cfg config.Notion) *Client {
	return NewClientWithHTTP(&http.Client{Timeout: cfg.Timeout}, cfg)
}

// NewClientWithHTTP sends the requests through client, redirected to cfg.BaseURL.
func NewClientWithHTTP(client *http.Client, cfg config.Notion) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = config.DefaultNotionURL
	}
	target, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		target, _ = url.Parse(config.DefaultNotionURL)
	}
	next := client.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	redirected := *client
	redirected.Transport = rebaseTransport{base: target, next: next}
	return &Client{
		api: notionapi.NewClient(notionapi.Token(cfg.Token),
			notionapi.WithHTTPClient(&redirected),
			notionapi.WithVersion(Version),
			notionapi.WithRetry(0)),
	}
}

// rebaseTransport moves requests to the configured API root and adds the user agent.
type rebaseTransport struct {
	base *url.URL
	next http.RoundTripper
}

func (t rebaseTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = t.base.Scheme
	out.URL.Host = t.base.Host
	out.URL.Path = t.base.Path + strings.TrimPrefix(req.URL.Path, apiPrefix)
	out.URL.RawPath = ""
	out.Host = ""
	out.Header.Set("User-Agent", consts.UserAgent())
	res, err := t.next.RoundTrip(out)
	if err == nil {
		logging.From(req.Context()).Debug("Query response", zap.Stringer("url", out.URL), zap.Int("status", res.StatusCode))
	}
	return res, err
}

// QueryDatabase returns every record of the database, following the pagination
// cursor until the last page.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string) (QueryResult, error) {
	if databaseID == "" {
		return QueryResult{}, ErrMissingDatabaseID
	}
	logger, ctx := logging.FromWithNameAndFields(ctx, "notion", zap.String("database", databaseID))
	start := time.Now()
	result := QueryResult{Object: notionapi.ObjectType("list"), Results: []notionapi.Page{}}
	var cursor notionapi.Cursor
	for {
		page, err := c.queryPage(ctx, databaseID, cursor)
		if err != nil {
			logger.Info("Database query failed", zap.Error(err))
			return QueryResult{}, err
		}
		result.Results = append(result.Results, page.Results...)
		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	logger.Debug("Database queried",
		zap.Int("records", len(result.Results)),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}

func (c *Client) queryPage(ctx context.Context, databaseID string, cursor notionapi.Cursor) (page *notionapi.DatabaseQueryResponse, err error) {
	requestCount.Inc()
	defer func() {
		if err != nil {
			errorCount.Inc()
		}
	}()
	page, err = c.api.Database.Query(ctx, notionapi.DatabaseID(databaseID), &notionapi.DatabaseQueryRequest{
		StartCursor: cursor,
		PageSize:    pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("querying database %s: %w", databaseID, err)
	}
	return page, nil
}
