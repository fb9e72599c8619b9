package session

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GualterMM/PINAO-backend/internal/game/gameerr"
	"github.com/GualterMM/PINAO-backend/internal/game/sabotage"
)

// activeSession monta uma sessão em "active" com um pool oferecido e
// espaço de sobra na duração, pronta para receber submissões.
func activeSession(t *testing.T, available []sabotage.Sabotage, limit int) *GameSession {
	t.Helper()
	g := New("s-1")
	g.SetState(GameState{
		Status:               StatusActive,
		GameDuration:         300,
		CurrentDuration:      60,
		GraceDuration:        30,
		MaxSabotageLimit:     5,
		CurrentSabotageLimit: limit,
	})
	g.SetAvailable(available)
	return g
}

func pool(ids ...string) []sabotage.Sabotage {
	return lo.Map(ids, func(id string, _ int) sabotage.Sabotage {
		return sabotage.Sabotage{ID: id, Name: id}
	})
}

func TestPushRejectsUnknownSabotageInAnyStatus(t *testing.T) {
	for _, status := range []Status{StatusSetup, StatusActive, StatusPaused, StatusOver} {
		g := New("s-1")
		g.SetState(GameState{Status: status, GameDuration: 300, CurrentDuration: 60})
		g.SetAvailable(pool("a", "b"))

		_, err := g.PushToQueue(sabotage.Sabotage{ID: "intruder"})
		assert.Equal(t, gameerr.CodeInvalidSabotage, gameerr.ErrCode(err), "status %s", status)
	}
}

func TestPushRejectsWhenNotActive(t *testing.T) {
	g := New("s-1")
	g.SetAvailable(pool("a"))

	_, err := g.PushToQueue(sabotage.Sabotage{ID: "a"})
	assert.Equal(t, gameerr.CodeSessionNotActive, gameerr.ErrCode(err))
}

func TestPushRejectsAfterGameDurationElapsed(t *testing.T) {
	g := activeSession(t, pool("a"), 3)
	g.SetState(GameState{
		Status:          StatusActive,
		GameDuration:    300,
		CurrentDuration: 300,
	})

	_, err := g.PushToQueue(sabotage.Sabotage{ID: "a"})
	assert.Equal(t, gameerr.CodeSessionEnded, gameerr.ErrCode(err))
	assert.True(t, g.IsOver())
}

func TestPushRejectsDuringGracePeriod(t *testing.T) {
	g := activeSession(t, pool("a"), 3)
	g.SetState(GameState{
		Status:          StatusActive,
		GameDuration:    300,
		CurrentDuration: 10,
		GraceDuration:   30,
	})

	_, err := g.PushToQueue(sabotage.Sabotage{ID: "a"})
	assert.Equal(t, gameerr.CodeGracePeriod, gameerr.ErrCode(err))
}

func TestPushQueueFullBoundary(t *testing.T) {
	g := activeSession(t, pool("a", "b", "c"), 2)

	// Até a capacidade, aceita.
	_, err := g.PushToQueue(sabotage.Sabotage{ID: "a", PlayerName: "p1"})
	require.NoError(t, err)
	queue, err := g.PushToQueue(sabotage.Sabotage{ID: "b", PlayerName: "p2"})
	require.NoError(t, err)
	require.Len(t, queue, 2)

	// Uma além da capacidade, rejeita.
	_, err = g.PushToQueue(sabotage.Sabotage{ID: "c", PlayerName: "p3"})
	assert.Equal(t, gameerr.CodeQueueFull, gameerr.ErrCode(err))
}

func TestPushRejectsDuplicateSubmitterUntilReset(t *testing.T) {
	g := activeSession(t, pool("a", "b"), 3)

	_, err := g.PushToQueue(sabotage.Sabotage{ID: "a", PlayerName: "mallory"})
	require.NoError(t, err)

	_, err = g.PushToQueue(sabotage.Sabotage{ID: "b", PlayerName: "mallory"})
	assert.Equal(t, gameerr.CodeDuplicateSubmission, gameerr.ErrCode(err))

	g.ResetQueue()

	_, err = g.PushToQueue(sabotage.Sabotage{ID: "b", PlayerName: "mallory"})
	assert.NoError(t, err, "after reset the same identity may submit again")
}

func TestPushMergesCatalogDefinitionWithAttribution(t *testing.T) {
	available := []sabotage.Sabotage{{ID: "blackout", Name: "Blackout", Duration: 6}}
	g := activeSession(t, available, 3)

	queue, err := g.PushToQueue(sabotage.Sabotage{
		ID:            "blackout",
		PlayerName:    "ziraldo",
		PlayerMessage: "gg",
	})
	require.NoError(t, err)
	require.Len(t, queue, 1)

	// A definição vem do pool oferecido, a autoria vem da submissão.
	assert.Equal(t, "Blackout", queue[0].Name)
	assert.Equal(t, 6.0, queue[0].Duration)
	assert.Equal(t, "ziraldo", queue[0].PlayerName)
	assert.Equal(t, "gg", queue[0].PlayerMessage)
}

func TestSetActiveSabotagesDropsInvalidCandidates(t *testing.T) {
	g := activeSession(t, pool("a", "b"), 3)

	active := g.SetActiveSabotages(pool("b", "intruder", "a"))

	ids := lo.Map(active, func(s sabotage.Sabotage, _ int) string { return s.ID })
	assert.Equal(t, []string{"b", "a"}, ids)
}

func TestSabotageLimitIsMonotonicAndCapped(t *testing.T) {
	g := New("s-1")
	g.SetState(GameState{Status: StatusActive, GameDuration: 300, MaxSabotageLimit: 3, CurrentSabotageLimit: 1})

	for i := 0; i < 10; i++ {
		before := g.State().CurrentSabotageLimit
		g.IncreaseSabotageLimit()
		after := g.State().CurrentSabotageLimit
		assert.GreaterOrEqual(t, after, before)
		assert.LessOrEqual(t, after, g.State().MaxSabotageLimit)
	}
	assert.Equal(t, 3, g.State().CurrentSabotageLimit)
}

func TestSetStateCannotLowerSabotageLimit(t *testing.T) {
	g := New("s-1")
	g.SetState(GameState{Status: StatusActive, GameDuration: 300, MaxSabotageLimit: 4, CurrentSabotageLimit: 3})

	g.SetState(GameState{Status: StatusActive, GameDuration: 300, MaxSabotageLimit: 4, CurrentSabotageLimit: 1})
	assert.Equal(t, 3, g.State().CurrentSabotageLimit)

	// Acima do teto, trava no teto.
	g.SetState(GameState{Status: StatusActive, GameDuration: 300, MaxSabotageLimit: 4, CurrentSabotageLimit: 9})
	assert.Equal(t, 4, g.State().CurrentSabotageLimit)
}

func TestSetStatePreservesServerOwnedFields(t *testing.T) {
	g := New("real-id")
	g.SetAvailable(pool("a"))
	version := g.State().AvailablePoolVersion

	g.SetState(GameState{SessionID: "spoofed", Status: StatusActive, GameDuration: 300, AvailablePoolVersion: 99})

	assert.Equal(t, "real-id", g.State().SessionID)
	assert.Equal(t, version, g.State().AvailablePoolVersion)
}

func TestOverIsTerminal(t *testing.T) {
	g := New("s-1")
	g.SetState(GameState{Status: StatusOver})

	g.SetState(GameState{Status: StatusActive, GameDuration: 300})
	assert.Equal(t, StatusOver, g.State().Status)
}

func TestSetAvailableBumpsPoolVersion(t *testing.T) {
	g := New("s-1")
	require.Zero(t, g.State().AvailablePoolVersion)

	g.SetAvailable(pool("a"))
	g.SetAvailable(pool("b"))
	assert.Equal(t, uint64(2), g.State().AvailablePoolVersion)
}
