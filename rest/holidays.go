package rest

import (
	"net/http"

	"github.com/gorilla/mux"
)

type HolidaysHandler struct {
	feed Feed
	opts Options
}

func NewHolidaysHandler(feed Feed, o Options) *HolidaysHandler {
	return &HolidaysHandler{feed: feed, opts: o.withDefaults()}
}

func (h *HolidaysHandler) InitRoutes(r *mux.Router) {
	r.HandleFunc("/api/holidays", h.getHolidays).Methods("GET")
}

// getHolidays returns the special days of a year keyed YYYY-MM-DD, week=Y adds
// the weekends.
func (h *HolidaysHandler) getHolidays(w http.ResponseWriter, r *http.Request) {
	responder := Respond(r)
	year, err := requestedYear(r, h.opts)
	if err != nil {
		responder.WithError(w, http.StatusBadRequest, err)
		return
	}
	var weekends bool
	switch r.URL.Query().Get("week") {
	case "", "N", "n":
	case "Y", "y":
		weekends = true
	default:
		responder.WithError(w, http.StatusBadRequest, errInvalidWeek)
		return
	}
	cal, err := h.feed.Holidays(r.Context(), year, weekends)
	if err != nil {
		responder.WithError(w, http.StatusInternalServerError, err)
		return
	}
	responder.WithJSON(w, http.StatusOK, cal.Days)
}
