package routes

import (
	"net/http"

	"camwatch/internal/handlers"
	"camwatch/internal/logger"
	"camwatch/internal/metrics"
	"camwatch/internal/services/websocket"
)

// SetupRoutes registers the viewer stream, metrics and operator log endpoints.
func SetupRoutes(hub *websocket.HubService, m *metrics.Metrics, logger *logger.Logger, logDir string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/view", handlers.ViewWebsocketHandler(hub, logger))
	mux.Handle("/metrics", m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Log endpoints
	for _, name := range []string{"info", "warning", "error"} {
		file := name + ".log"
		mux.HandleFunc("/logs/"+name, handlers.ShowLogHandler(logDir, file))
		mux.HandleFunc("/logs/"+name+"/clear", handlers.ClearLogHandler(logger, file))
	}

	return mux
}
