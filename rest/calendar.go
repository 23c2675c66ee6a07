package rest

import (
	"bytes"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/haydenhayden/projectzen/fullcalendar"
	"github.com/haydenhayden/projectzen/holiday"
	"github.com/haydenhayden/projectzen/ics"
	"github.com/haydenhayden/projectzen/logging"
	"github.com/haydenhayden/projectzen/notion"
	"go.uber.org/zap"
)

type CalendarHandler struct {
	feed Feed
	opts Options
}

func NewCalendarHandler(feed Feed, o Options) *CalendarHandler {
	return &CalendarHandler{feed: feed, opts: o.withDefaults()}
}

func (c *CalendarHandler) InitRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/database", c.getDatabase).Methods("GET")
	api.HandleFunc("/database/{id}", c.getDatabase).Methods("GET")
	api.HandleFunc("/ics", c.getICS).Methods("GET")
	api.HandleFunc("/ics/{id}", c.getICS).Methods("GET")
	api.HandleFunc("/events", c.getEvents).Methods("GET")
	api.HandleFunc("/events/{id}", c.getEvents).Methods("GET")
}

func (c *CalendarHandler) getDatabase(w http.ResponseWriter, r *http.Request) {
	responder := Respond(r)
	id := databaseID(r)
	if id == "" {
		responder.WithError(w, http.StatusBadRequest, notion.ErrMissingDatabaseID)
		return
	}
	result, err := c.feed.Database(r.Context(), id)
	if err != nil {
		responder.WithError(w, http.StatusInternalServerError, err)
		return
	}
	responder.WithJSON(w, http.StatusOK, result)
}

func (c *CalendarHandler) getICS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	responder := Respond(r)
	id := databaseID(r)
	if id == "" {
		responder.WithError(w, http.StatusBadRequest, notion.ErrMissingDatabaseID)
		return
	}
	year, err := requestedYear(r, c.opts)
	if err != nil {
		responder.WithError(w, http.StatusBadRequest, err)
		return
	}
	events, err := c.feed.Events(ctx, id, c.opts.ICSProfile, year)
	if err != nil {
		responder.WithError(w, http.StatusInternalServerError, err)
		return
	}
	var buf bytes.Buffer
	if err := ics.Encode(&buf, ics.FromEvents(events), ics.Options{
		Name:  c.opts.CalendarName,
		Stamp: c.opts.today(),
	}); err != nil {
		logging.From(ctx).Warn("ICS encoding failed", zap.String("database", id), zap.Error(err))
		responder.WithError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="calendar.ics"`)
	respondWithPayload(w, r, ics.ContentType, buf.Bytes())
}

func (c *CalendarHandler) getEvents(w http.ResponseWriter, r *http.Request) {
	responder := Respond(r)
	id := databaseID(r)
	if id == "" {
		id = c.opts.DefaultDatabase
	}
	if id == "" {
		responder.WithError(w, http.StatusBadRequest, notion.ErrMissingDatabaseID)
		return
	}
	year, err := requestedYear(r, c.opts)
	if err != nil {
		responder.WithError(w, http.StatusBadRequest, err)
		return
	}
	events, err := c.feed.Events(r.Context(), id, holiday.RestDays, year)
	if err != nil {
		responder.WithError(w, http.StatusInternalServerError, err)
		return
	}
	responder.WithJSON(w, http.StatusOK, fullcalendar.FromEvents(events))
}
