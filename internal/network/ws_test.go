package network

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GualterMM/PINAO-backend/internal/game/sabotage"
	"github.com/GualterMM/PINAO-backend/internal/game/session"
	"github.com/GualterMM/PINAO-backend/internal/services/coordinator"
)

// recordingSink captura as estatísticas entregues no fim da sessão.
type recordingSink struct {
	mu       sync.Mutex
	sessions []string
	stats    []session.Statistics
}

func (r *recordingSink) Submit(sessionID string, stats session.Statistics) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, sessionID)
	r.stats = append(r.stats, stats)
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func newTestStack(t *testing.T, maxSessions int) (*httptest.Server, *coordinator.Coordinator, *ViewerService, *recordingSink) {
	t.Helper()

	log := zap.NewNop()
	coord := coordinator.New(sabotage.NewDefaultCatalog(), sabotage.DefaultDrawSize, log)
	viewers := NewViewerService(coord, log)
	sink := &recordingSink{}
	game := NewGameService(coord, viewers, sink, nil, maxSessions, log)

	mux := http.NewServeMux()
	RegisterHandlers(mux, game, viewers, log)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, coord, viewers, sink
}

func dialWS(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) GameMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg GameMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func writeEnvelope(t *testing.T, conn *websocket.Conn, msg GameMessage) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func TestGameConnectionLifecycle(t *testing.T) {
	srv, coord, _, _ := newTestStack(t, 4)

	conn := dialWS(t, srv, "/ws/game")
	setup := readEnvelope(t, conn)

	require.NotNil(t, setup.GameState)
	assert.NotEmpty(t, setup.GameState.SessionID)
	assert.Equal(t, session.StatusSetup, setup.GameState.Status)
	require.NotNil(t, setup.Sabotages)
	assert.Len(t, setup.Sabotages.Available, sabotage.DefaultDrawSize)
	assert.Empty(t, setup.Sabotages.Active)
	assert.Empty(t, setup.Sabotages.Queue)
	assert.Equal(t, 1, coord.Count())

	// Fechar a conexão revoga a sessão do registry.
	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		return coord.Count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGameConnectionCapacityLimit(t *testing.T) {
	srv, coord, _, _ := newTestStack(t, 1)

	first := dialWS(t, srv, "/ws/game")
	readEnvelope(t, first)

	// Conexão acima do teto: aviso único de capacidade e o servidor fecha.
	second := dialWS(t, srv, "/ws/game")
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := second.ReadMessage()
	require.NoError(t, err)

	var refusal ErrorMessage
	require.NoError(t, json.Unmarshal(data, &refusal))
	assert.Equal(t, "Session limit reached", refusal.Error)

	_, _, err = second.ReadMessage()
	assert.Error(t, err, "refused connection must be closed by the server")

	// O registry nunca viu a conexão recusada.
	assert.Equal(t, 1, coord.Count())
}

func TestPromoteOnCanReceiveSabotage(t *testing.T) {
	srv, coord, _, _ := newTestStack(t, 4)

	conn := dialWS(t, srv, "/ws/game")
	setup := readEnvelope(t, conn)
	sessionID := setup.GameState.SessionID
	offered := setup.Sabotages.Available[0]
	initialVersion := setup.GameState.AvailablePoolVersion

	active := session.GameState{
		Status:               session.StatusActive,
		GameDuration:         300,
		CurrentDuration:      100,
		GraceDuration:        10,
		MaxSabotageLimit:     3,
		CurrentSabotageLimit: 1,
	}
	writeEnvelope(t, conn, GameMessage{GameState: &active})
	readEnvelope(t, conn)

	// Um espectador envia uma sabotagem do pool oferecido.
	_, err := coord.PushToQueue(sessionID, sabotage.Sabotage{
		ID:            offered.ID,
		PlayerName:    "bob",
		PlayerMessage: "boa sorte",
	})
	require.NoError(t, err)

	// O cliente sinaliza que pode receber: a fila inteira é promovida.
	ready := active
	ready.CanReceiveSabotage = true
	writeEnvelope(t, conn, GameMessage{GameState: &ready})
	reply := readEnvelope(t, conn)

	require.NotNil(t, reply.Sabotages)
	require.Len(t, reply.Sabotages.Active, 1)
	assert.Equal(t, offered.ID, reply.Sabotages.Active[0].ID)
	assert.Equal(t, "bob", reply.Sabotages.Active[0].PlayerName)
	assert.Empty(t, reply.Sabotages.Queue)
	assert.Len(t, reply.Sabotages.Available, sabotage.DefaultDrawSize)
	assert.Greater(t, reply.GameState.AvailablePoolVersion, initialVersion)
	assert.Equal(t, 2, reply.GameState.CurrentSabotageLimit)
}

func TestStatsHandoffOnOver(t *testing.T) {
	srv, _, _, sink := newTestStack(t, 4)

	conn := dialWS(t, srv, "/ws/game")
	setup := readEnvelope(t, conn)
	sessionID := setup.GameState.SessionID

	over := session.GameState{
		Status:          session.StatusOver,
		GameDuration:    300,
		CurrentDuration: 300,
	}
	writeEnvelope(t, conn, GameMessage{
		GameState: &over,
		Statistics: &session.Statistics{
			Player: session.PlayerStatistics{Name: "alice", Time: 280, Success: true, Points: 900, Kills: 12},
		},
	})

	require.Eventually(t, func() bool {
		return sink.count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, sessionID, sink.sessions[0])
	assert.Equal(t, "alice", sink.stats[0].Player.Name)
}

func TestInvalidMessageIsDroppedConnectionSurvives(t *testing.T) {
	srv, coord, _, _ := newTestStack(t, 4)

	conn := dialWS(t, srv, "/ws/game")
	setup := readEnvelope(t, conn)
	sessionID := setup.GameState.SessionID

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"gameState": {"status": "warming-up"}}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not even json`)))

	// Mensagem válida em seguida ainda é processada na mesma conexão.
	active := session.GameState{Status: session.StatusActive, GameDuration: 300, CurrentDuration: 50}
	writeEnvelope(t, conn, GameMessage{GameState: &active})
	reply := readEnvelope(t, conn)
	assert.Equal(t, session.StatusActive, reply.GameState.Status)

	got, _, err := coord.Snapshot(sessionID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusActive, got.Status)
}

func TestViewerReceivesServerResolvedPools(t *testing.T) {
	srv, _, viewers, _ := newTestStack(t, 4)

	game := dialWS(t, srv, "/ws/game")
	setup := readEnvelope(t, game)
	sessionID := setup.GameState.SessionID

	viewer := dialWS(t, srv, "/ws/view/"+sessionID)
	require.Eventually(t, func() bool {
		return viewers.ViewerCount(sessionID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// O cliente tenta reportar uma fila inventada; o espelho para os
	// espectadores usa os pools resolvidos do servidor, não os da mensagem.
	active := session.GameState{Status: session.StatusActive, GameDuration: 300, CurrentDuration: 50}
	forged := sabotage.NewPools()
	forged.Queue = append(forged.Queue, sabotage.Sabotage{ID: "phantom", PlayerName: "mallory"})
	writeEnvelope(t, game, GameMessage{GameState: &active, Sabotages: &forged})
	readEnvelope(t, game)

	mirrored := readEnvelope(t, viewer)
	require.NotNil(t, mirrored.GameState)
	assert.Equal(t, sessionID, mirrored.GameState.SessionID)
	assert.Equal(t, session.StatusActive, mirrored.GameState.Status)
	require.NotNil(t, mirrored.Sabotages)
	assert.Empty(t, mirrored.Sabotages.Queue)
	assert.Len(t, mirrored.Sabotages.Available, sabotage.DefaultDrawSize)
}

func TestViewerBeforeSessionGetsNothing(t *testing.T) {
	srv, _, viewers, _ := newTestStack(t, 4)

	ghost := dialWS(t, srv, "/ws/view/ghost-session")
	require.Eventually(t, func() bool {
		return viewers.ViewerCount("ghost-session") == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Broadcast para sessão inexistente falha em silêncio: nada chega.
	viewers.Broadcast("ghost-session")
	require.NoError(t, ghost.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := ghost.ReadMessage()
	assert.Error(t, err, "expected read timeout, viewer must receive nothing")
}

func TestViewerWithoutSessionIDIsRejected(t *testing.T) {
	srv, _, _, _ := newTestStack(t, 4)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/view/"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestViewerTeardownClearsSubscription(t *testing.T) {
	srv, _, viewers, _ := newTestStack(t, 4)

	game := dialWS(t, srv, "/ws/game")
	setup := readEnvelope(t, game)
	sessionID := setup.GameState.SessionID

	viewer := dialWS(t, srv, "/ws/view/"+sessionID)
	require.Eventually(t, func() bool {
		return viewers.ViewerCount(sessionID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, viewer.Close())
	assert.Eventually(t, func() bool {
		return viewers.ViewerCount(sessionID) == 0
	}, 2*time.Second, 10*time.Millisecond)
}
