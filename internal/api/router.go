package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/pairsync/pairsync/internal/middleware"
	"github.com/pairsync/pairsync/internal/ws"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	Logger    *slog.Logger
	WSHandler *ws.Handler
}

// NewRouter creates the HTTP router. The whole protocol runs over one
// websocket endpoint; the only other route is the health check.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Logging must wrap recovery so the recovery handler can see whether
	// the connection was hijacked by a websocket upgrade.
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))

	r.HandleFunc("/ws", cfg.WSHandler.ServeWS).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
