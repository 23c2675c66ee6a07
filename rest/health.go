package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/haydenhayden/projectzen/consts"
)

type HealthHandler struct{}

func (h HealthHandler) InitRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.getHealth).Methods("GET")
}

func (h HealthHandler) getHealth(w http.ResponseWriter, r *http.Request) {
	Respond(r).WithJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"commit": consts.GitCommit,
	})
}
