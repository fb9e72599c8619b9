package network

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GualterMM/PINAO-backend/internal/game/gameerr"
	"github.com/GualterMM/PINAO-backend/internal/game/session"
	"github.com/GualterMM/PINAO-backend/internal/metrics"
	"github.com/GualterMM/PINAO-backend/internal/services/coordinator"
)

// StatsSink recebe as estatísticas terminais de uma sessão encerrada.
// A entrega é melhor-esforço e não pode bloquear o teardown da conexão.
type StatsSink interface {
	Submit(sessionID string, stats session.Statistics)
}

// UpdatePublisher espelha atualizações aceitas para um consumidor
// externo (ex.: relay NATS). Também melhor-esforço.
type UpdatePublisher interface {
	PublishUpdate(sessionID string, payload []byte)
}

// GameService gerencia as conexões de jogo: uma sessão por conexão,
// criada no aceite e revogada no fechamento. Cada conexão roda no seu
// próprio goroutine; o estado compartilhado fica no Coordinator, nunca
// aqui.
type GameService struct {
	coordinator *coordinator.Coordinator
	viewers     *ViewerService
	stats       StatsSink
	relay       UpdatePublisher // opcional, pode ser nil
	maxSessions int
	log         *zap.Logger

	mu      sync.Mutex
	clients map[string]*Client // id de sessão → conexão dona
}

// NewGameService liga o serviço às suas dependências. relay pode ser nil.
func NewGameService(c *coordinator.Coordinator, viewers *ViewerService, stats StatsSink, relay UpdatePublisher, maxSessions int, log *zap.Logger) *GameService {
	return &GameService{
		coordinator: c,
		viewers:     viewers,
		stats:       stats,
		relay:       relay,
		maxSessions: maxSessions,
		log:         log,
		clients:     make(map[string]*Client),
	}
}

// HandleConnection assume uma conexão de jogo recém-aceita e roda o
// loop dela até o fechamento. Deve ser chamada no goroutine do handler
// HTTP da conexão.
func (s *GameService) HandleConnection(conn *websocket.Conn) {
	client := newClient(conn, s.log)

	sessionID, ok := s.admit(client)
	if !ok {
		// Aviso único de capacidade e fecha. O registry não é tocado.
		go client.writeLoop()
		client.trySend(mustMarshal(ErrorMessage{Error: "Session limit reached"}))
		client.close()
		s.log.Info("game connection refused, session limit reached",
			zap.Int("limit", s.maxSessions))
		return
	}

	log := s.log.With(zap.String("sessionId", sessionID))
	go client.writeLoop()

	// O registro acontece antes de qualquer mensagem ser processada.
	s.coordinator.Register(sessionID)
	s.sendSetupMessage(client, sessionID)
	metrics.ActiveSessions.Inc()
	log.Info("game session established")

	client.readLoop(func(data []byte) {
		s.handleMessage(client, sessionID, log, data)
	})

	// Teardown: a revogação é a última operação para esta sessão.
	metrics.ActiveSessions.Dec()
	s.release(sessionID)
	client.close()
	s.coordinator.Revoke(sessionID)
	log.Info("game session closed")
}

// admit reserva uma vaga e um id de sessão novo, respeitando o teto de
// conexões vivas. Devolve ok=false com a casa cheia.
func (s *GameService) admit(client *Client) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.clients) >= s.maxSessions {
		return "", false
	}
	sessionID := uuid.NewString()
	s.clients[sessionID] = client
	return sessionID, true
}

func (s *GameService) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, sessionID)
}

// HasSession informa se existe conexão de jogo viva para o id.
func (s *GameService) HasSession(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.clients[sessionID]
	return ok
}

// sendSetupMessage manda a mensagem inicial com o id da sessão e o
// primeiro pool sorteado.
func (s *GameService) sendSetupMessage(client *Client, sessionID string) {
	state, pools, err := s.coordinator.Snapshot(sessionID)
	if err != nil {
		// Registro acabou de acontecer neste goroutine; não tem como falhar.
		s.log.Error("snapshot of fresh session failed", zap.String("sessionId", sessionID), zap.Error(err))
		return
	}
	client.trySend(mustMarshal(GameMessage{GameState: &state, Sabotages: &pools}))
}

// handleMessage processa uma mensagem de entrada da conexão dona da
// sessão. Falha de validação ou de regra é logada e a mensagem
// descartada; a conexão segue aberta esperando a próxima.
func (s *GameService) handleMessage(client *Client, sessionID string, log *zap.Logger, data []byte) {
	msg, err := ParseGameMessage(data)
	if err != nil {
		metrics.MessagesDropped.WithLabelValues("validation").Inc()
		log.Warn("dropping invalid game message", zap.Error(err))
		return
	}

	if err := s.coordinator.UpdateState(sessionID, *msg.GameState); err != nil {
		log.Warn("state update rejected", zap.String("code", string(gameerr.ErrCode(err))))
		return
	}

	switch msg.GameState.Status {
	case session.StatusSetup, session.StatusPaused:
		// Silêncio: nada a atuar fora de jogo ativo.

	case session.StatusOver:
		if msg.Statistics != nil {
			s.stats.Submit(sessionID, *msg.Statistics)
		}

	case session.StatusActive:
		s.actuate(client, sessionID, log, msg)
	}

	// Toda mensagem aceita é espelhada para os espectadores com os pools
	// resolvidos do servidor, nunca com os da mensagem.
	s.viewers.Broadcast(sessionID)
	if s.relay != nil {
		if state, pools, err := s.coordinator.Snapshot(sessionID); err == nil {
			s.relay.PublishUpdate(sessionID, mustMarshal(GameMessage{GameState: &state, Sabotages: &pools}))
		}
	}
}

// actuate aplica o protocolo do status "active": promove a fila quando o
// cliente sinaliza que pode receber sabotagem nova; senão o pool ativo
// reportado pelo cliente permanece autoritativo, para não atropelar um
// efeito em andamento com uma cópia velha do servidor.
func (s *GameService) actuate(client *Client, sessionID string, log *zap.Logger, msg *GameMessage) {
	_, pools, err := s.coordinator.Snapshot(sessionID)
	if err != nil {
		log.Warn("session vanished mid-message", zap.Error(err))
		return
	}

	if msg.GameState.CanReceiveSabotage && len(pools.Queue) > 0 {
		if err := s.coordinator.PromoteQueue(sessionID); err != nil {
			log.Error("queue promotion failed", zap.Error(err))
		}
	} else if msg.Sabotages != nil {
		if err := s.coordinator.MergeActivePool(sessionID, msg.Sabotages.Active); err != nil {
			log.Warn("active pool merge rejected", zap.Error(err))
		}
	}

	state, pools, err := s.coordinator.Snapshot(sessionID)
	if err != nil {
		return
	}
	client.trySend(mustMarshal(GameMessage{GameState: &state, Sabotages: &pools}))
}
