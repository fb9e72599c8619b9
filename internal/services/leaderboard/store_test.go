package leaderboard

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GualterMM/PINAO-backend/internal/game/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "leaderboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestSaveAndQuery(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Entry{
		SessionID: "s-1", PlayerName: "alice", Score: 900, Kills: 12, Success: true, TimeAlive: 280,
	}))
	require.NoError(t, store.Save(ctx, Entry{
		SessionID: "s-2", PlayerName: "bob", Score: 1200, Kills: 7, Success: false, TimeAlive: 150,
	}))

	all, err := store.TopPlayers(ctx, 10, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "bob", all[0].PlayerName, "ordered by score desc")
	assert.Equal(t, "alice", all[1].PlayerName)
	assert.False(t, all[0].Timestamp.IsZero())

	winners, err := store.TopPlayers(ctx, 10, true)
	require.NoError(t, err)
	require.Len(t, winners, 1)
	assert.Equal(t, "alice", winners[0].PlayerName)
	assert.True(t, winners[0].Success)
}

func TestTopPlayersRespectsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Save(ctx, Entry{SessionID: "s", PlayerName: "p", Score: i}))
	}

	got, err := store.TopPlayers(ctx, 3, false)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestSaverPersistsInBackground(t *testing.T) {
	store := openTestStore(t)
	saver, err := NewSaver(store, zap.NewNop())
	require.NoError(t, err)
	defer saver.Close()

	saver.Submit("s-9", session.Statistics{
		Player: session.PlayerStatistics{
			Name: "carol", Points: 42, Kills: 3, Success: true, Time: 199.7,
		},
	})

	// O Submit é fire-and-forget; espera a escrita aparecer.
	require.Eventually(t, func() bool {
		got, err := store.TopPlayers(context.Background(), 1, false)
		return err == nil && len(got) == 1
	}, 2*time.Second, 20*time.Millisecond)

	got, err := store.TopPlayers(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, "carol", got[0].PlayerName)
	assert.Equal(t, int64(199), got[0].TimeAlive)
}
