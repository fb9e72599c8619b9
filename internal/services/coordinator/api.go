package coordinator

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/GualterMM/PINAO-backend/internal/game/gameerr"
	"github.com/GualterMM/PINAO-backend/internal/game/sabotage"
	"github.com/GualterMM/PINAO-backend/internal/metrics"
)

// ============================================================================
// DTOs da API
// ============================================================================

// SendSabotageRequest é o corpo de POST /api/game-session/{id}/sabotage.
type SendSabotageRequest struct {
	Sabotage sabotage.Sabotage `json:"sabotage"`
}

// SendSabotageResponse devolve a fila resultante da submissão aceita.
type SendSabotageResponse struct {
	Payload []sabotage.Sabotage `json:"payload"`
}

// SessionsResponse lista as sessões vivas.
type SessionsResponse struct {
	Sessions []string `json:"sessions"`
}

type errorResponse struct {
	Error string       `json:"error"`
	Code  gameerr.Code `json:"code"`
}

// ============================================================================
// Handlers
// ============================================================================

// RegisterHandlers configura as rotas HTTP do coordenador.
func RegisterHandlers(mux *http.ServeMux, c *Coordinator, log *zap.Logger) {
	mux.HandleFunc("POST /api/game-session/{id}/sabotage", handleSendSabotage(c, log))
	mux.HandleFunc("GET /api/game-sessions", handleGetSessions(c))
}

// handleSendSabotage empurra uma sabotagem para a fila de uma sessão.
// Rejeições de regra de negócio voltam como erro de cliente; o handler
// nunca derruba a sessão alvo.
func handleSendSabotage(c *Coordinator, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.PathValue("id")

		var req SendSabotageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Sabotage.ID == "" {
			writeError(w, gameerr.Wrap(gameerr.ErrValidation, "sabotage with an id is required"))
			return
		}

		queue, err := c.PushToQueue(sessionID, req.Sabotage)
		if err != nil {
			metrics.SabotagesSubmitted.WithLabelValues(string(gameerr.ErrCode(err))).Inc()
			if gameerr.IsBusiness(err) {
				log.Warn("sabotage rejected",
					zap.String("sessionId", sessionID),
					zap.String("code", string(gameerr.ErrCode(err))),
				)
			} else {
				log.Error("sabotage push failed", zap.String("sessionId", sessionID), zap.Error(err))
			}
			writeError(w, err)
			return
		}

		metrics.SabotagesSubmitted.WithLabelValues("accepted").Inc()
		writeJSON(w, http.StatusCreated, SendSabotageResponse{Payload: queue})
	}
}

func handleGetSessions(c *Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, SessionsResponse{Sessions: c.SessionIDs()})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, gameerr.HTTPStatus(err), errorResponse{
		Error: err.Error(),
		Code:  gameerr.ErrCode(err),
	})
}
