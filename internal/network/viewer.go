package network

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GualterMM/PINAO-backend/internal/metrics"
	"github.com/GualterMM/PINAO-backend/internal/services/coordinator"
)

// ViewerService mantém os espectadores inscritos por id de sessão e
// espelha cada atualização aceita para todos eles. O ciclo de vida de um
// espectador é independente do da conexão de jogo: inscrever-se numa
// sessão que ainda não existe (ou que já fechou) é legal e apenas não
// recebe nada.
type ViewerService struct {
	coordinator *coordinator.Coordinator
	log         *zap.Logger

	mu      sync.Mutex
	viewers map[string]map[*Client]bool
}

// NewViewerService cria o serviço de espectadores sobre o registry dado.
func NewViewerService(c *coordinator.Coordinator, log *zap.Logger) *ViewerService {
	return &ViewerService{
		coordinator: c,
		log:         log,
		viewers:     make(map[string]map[*Client]bool),
	}
}

// HandleConnection assume uma conexão de espectador para a sessão dada e
// roda até o fechamento. Espectadores não enviam nada que o servidor
// escute; o readLoop existe para detectar o fechamento e manter o
// ping/pong.
func (v *ViewerService) HandleConnection(conn *websocket.Conn, sessionID string) {
	client := newClient(conn, v.log)

	v.add(sessionID, client)
	metrics.ConnectedViewers.Inc()
	v.log.Info("viewer connected", zap.String("sessionId", sessionID))

	go client.writeLoop()
	client.readLoop(func([]byte) {
		// Mensagens de espectador são ignoradas: o stream é só de saída.
	})

	v.remove(sessionID, client)
	client.close()
	metrics.ConnectedViewers.Dec()
	v.log.Info("viewer disconnected", zap.String("sessionId", sessionID))
}

func (v *ViewerService) add(sessionID string, client *Client) {
	v.mu.Lock()
	defer v.mu.Unlock()

	set, ok := v.viewers[sessionID]
	if !ok {
		set = make(map[*Client]bool)
		v.viewers[sessionID] = set
	}
	set[client] = true
}

// remove tira o espectador do set e apaga sets vazios, para o mapa não
// acumular sessões mortas.
func (v *ViewerService) remove(sessionID string, client *Client) {
	v.mu.Lock()
	defer v.mu.Unlock()

	set, ok := v.viewers[sessionID]
	if !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(v.viewers, sessionID)
	}
}

// ViewerCount devolve quantos espectadores uma sessão tem.
func (v *ViewerService) ViewerCount(sessionID string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.viewers[sessionID])
}

// Broadcast espelha o estado corrente da sessão para todos os
// espectadores dela. Os pools vêm do registry: o espectador sempre vê o
// estado resolvido do servidor, nunca os pools da mensagem que chegou.
// Entrega melhor-esforço: destinatário saturado é pulado, não aguardado.
func (v *ViewerService) Broadcast(sessionID string) {
	// Snapshot do set antes de iterar, para não segurar o lock durante
	// os envios nem brigar com connect/disconnect concorrentes.
	v.mu.Lock()
	set := v.viewers[sessionID]
	targets := make([]*Client, 0, len(set))
	for client := range set {
		targets = append(targets, client)
	}
	v.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	state, pools, err := v.coordinator.Snapshot(sessionID)
	if err != nil {
		// Sessão já revogada; espectadores simplesmente não recebem nada.
		return
	}

	// Projeção segura para espectador: estado + pools, sem estatísticas.
	payload := mustMarshal(GameMessage{GameState: &state, Sabotages: &pools})
	for _, client := range targets {
		client.trySend(payload)
	}
	metrics.BroadcastsTotal.Inc()
}
