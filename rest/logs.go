package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/haydenhayden/projectzen/logging"
)

// logsHandler serves the in-memory log buffer, newest first unless order=asc.
type logsHandler struct{}

func NewLogsHandler() logsHandler {
	return logsHandler{}
}

func (l logsHandler) InitRoutes(r *mux.Router) {
	r.Handle("/logs", l).Methods("GET")
}

func (l logsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := logging.Dump(w, r.URL.Query().Get("order") != "asc"); err != nil {
		logging.From(r.Context()).Debug("Log dump interrupted")
	}
}
