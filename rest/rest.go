package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/haydenhayden/projectzen/domain"
	"github.com/haydenhayden/projectzen/holiday"
	"github.com/haydenhayden/projectzen/notion"
)

// Feed is the pipeline behind the calendar endpoints.
type Feed interface {
	Database(ctx context.Context, databaseID string) (notion.QueryResult, error)
	Events(ctx context.Context, databaseID string, profile holiday.Profile, year int) ([]domain.Event, error)
	Holidays(ctx context.Context, year int, weekends bool) (holiday.Calendar, error)
}

type Options struct {
	// DefaultDatabase is used by the UI endpoints when the request names no database.
	DefaultDatabase string
	// ICSProfile selects the days removed from ICS events.
	ICSProfile holiday.Profile
	CalendarName string
	// Location decides the current year and the DTSTAMP day.
	Location *time.Location
	Now      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.ICSProfile.Name == "" {
		o.ICSProfile = holiday.RestDays
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) today() time.Time {
	now := o.Now().In(o.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, o.Location)
}

const databaseIDParam = "notionDatabaseId"

var (
	errInvalidYear = errors.New("year must be a number between 1900 and 9999")
	errInvalidWeek = errors.New("week must be Y or N")
)

// databaseID reads the id from the path, then from the query string.
func databaseID(r *http.Request) string {
	if id := mux.Vars(r)["id"]; id != "" {
		return id
	}
	return r.URL.Query().Get(databaseIDParam)
}

func requestedYear(r *http.Request, o Options) (int, error) {
	v := r.URL.Query().Get("year")
	if v == "" {
		return o.today().Year(), nil
	}
	year, err := strconv.Atoi(v)
	if err != nil || year < 1900 || year > 9999 {
		return 0, errInvalidYear
	}
	return year, nil
}
