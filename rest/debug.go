package rest

import (
	"fmt"
	"html"
	"net/http"
	"net/http/pprof"

	"github.com/gorilla/mux"
)

// DebugHandler exposes the route table and pprof, for dev mode only.
type DebugHandler struct{}

func (d DebugHandler) InitRoutes(router *mux.Router) {
	router.HandleFunc("/debug/mux", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/html")
		rw.WriteHeader(http.StatusOK)
		fmt.Fprintln(rw, "<html><head><title>Endpoints</title></head><body>")
		router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
			t, err := route.GetPathTemplate()
			if err != nil {
				return nil
			}
			methods, _ := route.GetMethods()
			t = html.EscapeString(t)
			fmt.Fprintf(rw, "<div><a href=\"%s\">%s</a> %v</div>\n", t, t, methods)
			return nil
		})
		fmt.Fprintln(rw, "</body></html>")
	}).Methods("GET")

	router.HandleFunc("/debug/pprof/", pprof.Index).Methods("GET")
	router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	router.HandleFunc("/debug/pprof/profile", pprof.Profile)
	router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	router.HandleFunc("/debug/pprof/trace", pprof.Trace)

	for _, name := range []string{"goroutine", "threadcreate", "heap", "allocs", "block", "mutex"} {
		router.Handle("/debug/pprof/"+name, pprof.Handler(name))
	}
}
