package leaderboard

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

// LeaderboardResponse é o corpo de GET /api/leaderboard.
type LeaderboardResponse struct {
	Players []Entry `json:"players"`
}

// RegisterHandlers configura a rota de consulta do leaderboard.
// Filtros: ?limit=N e ?successful=true.
func RegisterHandlers(mux *http.ServeMux, store *Store, log *zap.Logger) {
	mux.HandleFunc("GET /api/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		successful := r.URL.Query().Get("successful") == "true"

		players, err := store.TopPlayers(r.Context(), limit, successful)
		if err != nil {
			log.Error("leaderboard query failed", zap.Error(err))
			http.Error(w, `{"error": "internal server error"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(LeaderboardResponse{Players: players})
	})
}
