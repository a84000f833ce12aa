package httpserver

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes groups HTTP handlers.
type Routes struct {
	Submit     http.HandlerFunc
	Previous   http.HandlerFunc
	Calculator http.HandlerFunc
	Health     http.HandlerFunc
}

// NewRouter registers service endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.Submit != nil {
		mux.Handle("/api/calculator/submit", method(http.MethodPost, routes.Submit))
	}
	if routes.Previous != nil {
		mux.Handle("/api/calculator/previous", method(http.MethodGet, routes.Previous))
	}
	if routes.Calculator != nil {
		mux.Handle("/ws/calculator", method(http.MethodGet, routes.Calculator))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
