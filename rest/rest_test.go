package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/gorilla/mux"
	"github.com/haydenhayden/projectzen/discovery"
	"github.com/haydenhayden/projectzen/domain"
	"github.com/haydenhayden/projectzen/holiday"
	"github.com/haydenhayden/projectzen/notion"
	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	router *mux.Router
	feed   *testFeed
)

func TestMain(m *testing.M) {
	feed = &testFeed{}
	router = mux.NewRouter()
	o := Options{
		DefaultDatabase: "db-default",
		Location:        time.UTC,
		Now:             func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) },
	}
	NewCalendarHandler(feed, o).InitRoutes(router)
	NewHolidaysHandler(feed, o).InitRoutes(router)
	HealthHandler{}.InitRoutes(router)
	NewPeersAPI(testPeers{}).InitRoutes(router)

	code := m.Run()
	os.Exit(code)
}

type call struct {
	database string
	profile  holiday.Profile
	year     int
}

type testFeed struct {
	calls []call
	err   error
}

func (f *testFeed) Database(_ context.Context, id string) (notion.QueryResult, error) {
	f.calls = append(f.calls, call{database: id})
	if f.err != nil {
		return notion.QueryResult{}, f.err
	}
	return notion.QueryResult{Object: "list", Results: []notionapi.Page{{Object: "page", ID: "p1"}}}, nil
}

func (f *testFeed) Events(_ context.Context, id string, profile holiday.Profile, year int) ([]domain.Event, error) {
	f.calls = append(f.calls, call{database: id, profile: profile, year: year})
	if f.err != nil {
		return nil, f.err
	}
	end := domain.MustParseDate("2024-06-07")
	e := domain.NewEvent("db_p1_开发", "开发 [Zen]", domain.Project{ID: id, Name: "Zen", URL: "https://www.notion.so/zen"}, domain.MustParseDate("2024-06-03"), &end)
	return []domain.Event{e}, nil
}

func (f *testFeed) Holidays(_ context.Context, year int, weekends bool) (holiday.Calendar, error) {
	if f.err != nil {
		return holiday.Calendar{}, f.err
	}
	days := map[string]holiday.Day{"2024-06-10": {Holiday: true, Name: "端午节", Wage: 3}}
	if weekends {
		days["2024-06-15"] = holiday.Day{Holiday: true, Name: "周六", Wage: 1}
	}
	return holiday.Calendar{Year: year, Weekends: weekends, Days: days}, nil
}

type testPeers struct{}

func (testPeers) Instance() discovery.Instance {
	return discovery.Instance{ID: "self", Name: "office"}
}

func (testPeers) GetPeers() []discovery.Peer {
	return []discovery.Peer{{Name: "lab", URL: "http://192.168.1.20:8080/api/ics"}}
}

func executeRequest(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func reset() {
	feed.calls = nil
	feed.err = nil
}

func checkResponseCode(t *testing.T, expected, actual int) {
	if expected != actual {
		t.Errorf("Bad response code: expected %d, got %d", expected, actual)
	}
}

func TestMissingDatabaseID(t *testing.T) {
	for _, path := range []string{"/api/database", "/api/ics", "/api/database?notionDatabaseId="} {
		t.Run(path, func(t *testing.T) {
			reset()
			req := httptest.NewRequest(http.MethodGet, path, nil)
			response := executeRequest(req)
			checkResponseCode(t, http.StatusBadRequest, response.Code)
			assert.JSONEq(t, `{"message":"Notion database ID is required"}`, response.Body.String())
			assert.Empty(t, feed.calls)
		})
	}
}

func TestGetDatabase(t *testing.T) {
	for _, path := range []string{"/api/database/db-1", "/api/database?notionDatabaseId=db-1"} {
		t.Run(path, func(t *testing.T) {
			reset()
			response := executeRequest(httptest.NewRequest(http.MethodGet, path, nil))
			checkResponseCode(t, http.StatusOK, response.Code)
			var body struct {
				Object  string `json:"object"`
				Results []struct {
					Object string `json:"object"`
					ID     string `json:"id"`
				} `json:"results"`
				HasMore    bool    `json:"has_more"`
				NextCursor *string `json:"next_cursor"`
			}
			require.NoError(t, json.Unmarshal(response.Body.Bytes(), &body))
			assert.Equal(t, "list", body.Object)
			require.Len(t, body.Results, 1)
			assert.Equal(t, "page", body.Results[0].Object)
			assert.Equal(t, "p1", body.Results[0].ID)
			assert.False(t, body.HasMore)
			assert.Nil(t, body.NextCursor)
			assert.Equal(t, []call{{database: "db-1"}}, feed.calls)
		})
	}
}

func TestUpstreamFailure(t *testing.T) {
	for _, path := range []string{"/api/database/db-1", "/api/ics/db-1", "/api/events", "/api/holidays"} {
		t.Run(path, func(t *testing.T) {
			reset()
			feed.err = errors.New("upstream unavailable")
			response := executeRequest(httptest.NewRequest(http.MethodGet, path, nil))
			checkResponseCode(t, http.StatusInternalServerError, response.Code)
			assert.JSONEq(t, `{"message":"upstream unavailable"}`, response.Body.String())
		})
	}
}

func TestGetICS(t *testing.T) {
	reset()
	response := executeRequest(httptest.NewRequest(http.MethodGet, "/api/ics?notionDatabaseId=db-1", nil))
	checkResponseCode(t, http.StatusOK, response.Code)
	assert.Equal(t, "text/calendar", response.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="calendar.ics"`, response.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, response.Header().Get("ETag"))
	assert.Equal(t, []call{{database: "db-1", profile: holiday.RestDays, year: 2024}}, feed.calls)

	cal, err := ics.ParseCalendar(strings.NewReader(response.Body.String()))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "20240603", events[0].GetProperty(ics.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20240608", events[0].GetProperty(ics.ComponentPropertyDtEnd).Value)
}

func TestGetICSNotModified(t *testing.T) {
	reset()
	first := executeRequest(httptest.NewRequest(http.MethodGet, "/api/ics/db-1", nil))
	checkResponseCode(t, http.StatusOK, first.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/ics/db-1", nil)
	req.Header.Set("If-None-Match", first.Header().Get("ETag"))
	second := executeRequest(req)
	checkResponseCode(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.Bytes())
}

func TestGetICSYear(t *testing.T) {
	reset()
	response := executeRequest(httptest.NewRequest(http.MethodGet, "/api/ics/db-1?year=2025", nil))
	checkResponseCode(t, http.StatusOK, response.Code)
	assert.Equal(t, 2025, feed.calls[0].year)

	response = executeRequest(httptest.NewRequest(http.MethodGet, "/api/ics/db-1?year=soon", nil))
	checkResponseCode(t, http.StatusBadRequest, response.Code)
}

func TestGetEvents(t *testing.T) {
	data := []struct {
		path     string
		database string
	}{
		{"/api/events", "db-default"},
		{"/api/events/db-2", "db-2"},
		{"/api/events?notionDatabaseId=db-3", "db-3"},
	}
	for _, d := range data {
		t.Run(d.path, func(t *testing.T) {
			reset()
			response := executeRequest(httptest.NewRequest(http.MethodGet, d.path, nil))
			checkResponseCode(t, http.StatusOK, response.Code)
			assert.Equal(t, []call{{database: d.database, profile: holiday.RestDays, year: 2024}}, feed.calls)

			var events []map[string]interface{}
			require.NoError(t, json.Unmarshal(response.Body.Bytes(), &events))
			require.Len(t, events, 1)
			assert.Equal(t, "2024-06-03", events[0]["start"])
			assert.Equal(t, "2024-06-08", events[0]["end"])
			assert.Equal(t, true, events[0]["allDay"])
		})
	}
}

func TestGetHolidays(t *testing.T) {
	reset()
	response := executeRequest(httptest.NewRequest(http.MethodGet, "/api/holidays?year=2024&week=Y", nil))
	checkResponseCode(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `{
		"2024-06-10": {"holiday": true, "name": "端午节", "wage": 3},
		"2024-06-15": {"holiday": true, "name": "周六", "wage": 1}
	}`, response.Body.String())

	response = executeRequest(httptest.NewRequest(http.MethodGet, "/api/holidays", nil))
	checkResponseCode(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `{"2024-06-10": {"holiday": true, "name": "端午节", "wage": 3}}`, response.Body.String())

	response = executeRequest(httptest.NewRequest(http.MethodGet, "/api/holidays?week=maybe", nil))
	checkResponseCode(t, http.StatusBadRequest, response.Code)
}

func TestHealth(t *testing.T) {
	response := executeRequest(httptest.NewRequest(http.MethodGet, "/health", nil))
	checkResponseCode(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), `"status":"ok"`)
}

func TestPeers(t *testing.T) {
	response := executeRequest(httptest.NewRequest(http.MethodGet, "/api/peers", nil))
	checkResponseCode(t, http.StatusOK, response.Code)
	assert.JSONEq(t, `{"data":{"self":{"id":"self","name":"office"},"instances":[{"name":"lab","id":"","url":"http://192.168.1.20:8080/api/ics"}]}}`, response.Body.String())
}

func TestMiddlewares(t *testing.T) {
	handler := WithMiddleWares(router, "test")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "fixed")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "fixed", rr.Header().Get("X-Request-ID"))
}

func TestLogs(t *testing.T) {
	r := mux.NewRouter()
	NewLogsHandler().InitRoutes(r)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/logs?order=asc", nil))
	checkResponseCode(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
}
