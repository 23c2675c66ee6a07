package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/haydenhayden/projectzen/consts"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var buildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: consts.AppName + "_build_info",
	Help: "Build identity of the running server, always 1",
}, []string{"commit", "repo"})

type MetricsHandler struct {
	handler http.Handler
}

func NewMetricsHandler() *MetricsHandler {
	buildInfo.WithLabelValues(consts.GitCommit, consts.GitRepo).Set(1)
	return &MetricsHandler{
		handler: promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}),
	}
}

func (m *MetricsHandler) InitRoutes(r *mux.Router) {
	r.Handle("/metrics", m.handler).Methods("GET")
}
