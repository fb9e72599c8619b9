package cluster

import (
	"encoding/json"
	"net/http"
)

// RegisterHealthHandler publica o liveness check em /health.
// É o alvo do check do Consul e serve de sonda para orquestradores.
func RegisterHealthHandler(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
}
