package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/mirrorcast/mirrorcast/server/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Mux is the relay's HTTP surface: the websocket signaling endpoint plus
// probes and metrics. The receiver UI is served elsewhere.
type Mux struct {
	handler *chi.Mux
}

func (mux *Mux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux.handler.ServeHTTP(w, r)
}

func NewMux(
	log logger.Logger,
	relay *Relay,
	prom PrometheusConfig,
) *Mux {
	log = log.WithNamespaceAppended("mux")

	handler := chi.NewRouter()

	log.Debug("Routes: /ws, /probes, /metrics", nil)

	handler.Route("/", func(router chi.Router) {
		router.Get("/probes/liveness", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
		})
		router.Get("/probes/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
		})
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			accessToken := r.Header.Get("Authorization")
			if strings.HasPrefix(accessToken, "Bearer ") {
				accessToken = accessToken[len("Bearer "):]
			} else {
				accessToken = r.FormValue("access_token")
			}

			if accessToken == "" || accessToken != prom.AccessToken {
				w.WriteHeader(http.StatusUnauthorized)

				return
			}

			promhttp.Handler().ServeHTTP(w, r)
		})

		router.Mount("/ws", relay.Handler())
	})

	return &Mux{
		handler: handler,
	}
}
