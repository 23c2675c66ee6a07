package holiday

import (
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"net/http"
	"testing"

	"github.com/haydenhayden/projectzen/config"
	"github.com/haydenhayden/projectzen/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const response2024 = `{"code":0,"holiday":{
	"10-01":{"holiday":true,"name":"国庆节","wage":3,"date":"2024-10-01"},
	"01-01":{"holiday":true,"name":"元旦","wage":3,"date":"2024-01-01"},
	"02-04":{"holiday":false,"name":"春节前补班","wage":1,"after":false,"target":"春节","date":"2024-02-04"},
	"06-08":{"holiday":true,"name":"周六","wage":1,"date":"2024-06-08"}
}}`

type RoundTripperFunc func(*http.Request) *http.Response

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func newTestClient(roundTripFunc RoundTripperFunc) *Client {
	return NewClientWithHTTP(&http.Client{Transport: roundTripFunc}, config.Holiday{BaseURL: "http://holiday.test/api/holiday"})
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       ioutil.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestHolidays(t *testing.T) {
	data := []struct {
		weekends bool
		week     string
	}{
		{true, "Y"},
		{false, "N"},
	}
	for _, d := range data {
		client := newTestClient(func(r *http.Request) *http.Response {
			assert.Equal(t, "/api/holiday/year/2024", r.URL.Path)
			assert.Equal(t, d.week, r.URL.Query().Get("week"))
			return respond(http.StatusOK, response2024)
		})
		cal, err := client.Holidays(context.Background(), 2024, d.weekends)
		require.NoError(t, err)
		assert.Equal(t, 2024, cal.Year)
		assert.Equal(t, d.weekends, cal.Weekends)
		assert.Equal(t, []string{"2024-10-01", "2024-01-01", "2024-02-04", "2024-06-08"}, cal.Order)
		assert.Equal(t, Day{Holiday: true, Name: "元旦", Wage: 3}, cal.Days["2024-01-01"])
	}
}

func TestHolidaysPrefixesRequestYear(t *testing.T) {
	client := newTestClient(func(r *http.Request) *http.Response {
		return respond(http.StatusOK, response2024)
	})
	cal, err := client.Holidays(context.Background(), 2031, true)
	require.NoError(t, err)
	_, ok := cal.Days["2031-01-01"]
	assert.True(t, ok)
}

func TestRestDays(t *testing.T) {
	client := newTestClient(func(r *http.Request) *http.Response {
		return respond(http.StatusOK, response2024)
	})
	cal, err := client.Holidays(context.Background(), 2024, true)
	require.NoError(t, err)

	rest := cal.RestDays()
	assert.Equal(t, []domain.Date{
		domain.MustParseDate("2024-10-01"),
		domain.MustParseDate("2024-01-01"),
		domain.MustParseDate("2024-06-08"),
	}, rest, "upstream order, working days left out")

	ex := cal.Exclusions()
	assert.True(t, ex.Contains(domain.MustParseDate("2024-06-08")))
	assert.False(t, ex.Contains(domain.MustParseDate("2024-02-04")))
	assert.Len(t, ex, 3)
}

func TestHolidaysEmpty(t *testing.T) {
	client := newTestClient(func(r *http.Request) *http.Response {
		return respond(http.StatusOK, `{"code":0,"holiday":null}`)
	})
	cal, err := client.Holidays(context.Background(), 2024, false)
	require.NoError(t, err)
	assert.Empty(t, cal.RestDays())
}

func TestHolidaysFailures(t *testing.T) {
	data := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `oops`},
		{"not found", http.StatusNotFound, `{}`},
		{"error code", http.StatusOK, `{"code":-1,"message":"bad year"}`},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			client := newTestClient(func(r *http.Request) *http.Response {
				return respond(d.status, d.body)
			})
			_, err := client.Holidays(context.Background(), 2024, true)
			assert.ErrorIs(t, err, ErrUpstream)
		})
	}
}

func TestHolidaysStatusError(t *testing.T) {
	client := newTestClient(func(r *http.Request) *http.Response {
		return respond(http.StatusTooManyRequests, ``)
	})
	_, err := client.Holidays(context.Background(), 2024, true)
	var status *StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, http.StatusTooManyRequests, status.Status)
}

func TestHolidaysMalformed(t *testing.T) {
	client := newTestClient(func(r *http.Request) *http.Response {
		return respond(http.StatusOK, `{"code":0,"holiday":["01-01"]}`)
	})
	_, err := client.Holidays(context.Background(), 2024, true)
	assert.Error(t, err)
}
