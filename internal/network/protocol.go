// Package network implementa a camada WebSocket do PINAO: a conexão de
// jogo que dirige a máquina de estados da sessão e o fan-out para
// espectadores. O transporte (upgrade HTTP → WebSocket) vem do
// gorilla/websocket; daqui para dentro a conexão é só um canal
// bidirecional de mensagens JSON.
package network

import (
	"encoding/json"

	"github.com/GualterMM/PINAO-backend/internal/game/gameerr"
	"github.com/GualterMM/PINAO-backend/internal/game/sabotage"
	"github.com/GualterMM/PINAO-backend/internal/game/session"
)

// GameMessage é o único envelope trocado pelo protocolo, nas duas
// direções. Campos desconhecidos do cliente são ignorados; campos
// obrigatórios ausentes derrubam a mensagem, nunca a conexão.
type GameMessage struct {
	GameState  *session.GameState  `json:"gameState,omitempty"`
	Sabotages  *sabotage.Pools     `json:"sabotages,omitempty"`
	Statistics *session.Statistics `json:"statistics,omitempty"`
}

// ErrorMessage é o aviso único enviado antes de fechar uma conexão
// recusada (ex.: limite de sessões).
type ErrorMessage struct {
	Error string `json:"error"`
}

// ParseGameMessage decodifica e valida um envelope vindo do cliente.
// O schema é raso de propósito: status obrigatório e conhecido, ids de
// sabotagem presentes. O resto é tolerado para o protocolo permanecer
// forward-tolerant.
func ParseGameMessage(data []byte) (*GameMessage, error) {
	var msg GameMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, gameerr.Wrap(gameerr.ErrValidation, "malformed JSON")
	}

	if msg.GameState == nil {
		return nil, gameerr.Wrap(gameerr.ErrValidation, "gameState is required")
	}
	if !msg.GameState.Status.Valid() {
		return nil, gameerr.Wrap(gameerr.ErrValidation, "gameState.status must be one of setup|active|paused|over")
	}

	if msg.Sabotages != nil {
		for _, pool := range [][]sabotage.Sabotage{msg.Sabotages.Available, msg.Sabotages.Active, msg.Sabotages.Queue} {
			for _, s := range pool {
				if s.ID == "" {
					return nil, gameerr.Wrap(gameerr.ErrValidation, "sabotage entries require an id")
				}
			}
		}
	}

	if msg.Statistics != nil && msg.Statistics.Player.Name == "" {
		return nil, gameerr.Wrap(gameerr.ErrValidation, "statistics.player.name is required")
	}

	return &msg, nil
}

// mustMarshal serializa uma mensagem de saída. As structs de saída são
// sempre serializáveis; erro aqui é bug de programação.
func mustMarshal(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
