package api

import (
	"log/slog"
	"net/http"

	"github.com/straxovka-go/insbot/internal/models"
)

// rootHandler answers the hosting platform's liveness probe with plain OK.
func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Server.rootHandler: failed to write response", "error", err)
	}
}

// healthHandler reports service status and the number of tracked conversations.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"conversations": s.store.Count(),
	}))
}
