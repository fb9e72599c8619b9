package leaderboard

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/GualterMM/PINAO-backend/internal/game/session"
)

const (
	saverWorkers = 4
	saveTimeout  = 5 * time.Second
)

// Saver grava estatísticas terminais em segundo plano, para o caminho de
// fechamento da conexão nunca bloquear no banco.
type Saver struct {
	store *Store
	pool  *ants.Pool
	log   *zap.Logger
}

// NewSaver monta o pool de workers sobre o store dado.
func NewSaver(store *Store, log *zap.Logger) (*Saver, error) {
	// Nonblocking: se o pool estiver cheio o Submit falha na hora em vez
	// de segurar o chamador; o fallback roda numa goroutine avulsa.
	pool, err := ants.NewPool(saverWorkers, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &Saver{store: store, pool: pool, log: log}, nil
}

// Submit agenda a persistência das estatísticas de uma sessão encerrada.
// Fire-and-forget: erro de persistência é logado e engolido.
func (s *Saver) Submit(sessionID string, stats session.Statistics) {
	entry := Entry{
		SessionID:  sessionID,
		PlayerName: stats.Player.Name,
		Score:      stats.Player.Points,
		Kills:      stats.Player.Kills,
		Success:    stats.Player.Success,
		TimeAlive:  int64(stats.Player.Time),
	}

	task := func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()

		if err := s.store.Save(ctx, entry); err != nil {
			s.log.Error("failed to persist player statistics",
				zap.String("sessionId", sessionID),
				zap.String("playerName", entry.PlayerName),
				zap.Error(err),
			)
			return
		}
		s.log.Info("player statistics persisted",
			zap.String("sessionId", sessionID),
			zap.String("playerName", entry.PlayerName),
			zap.Int("score", entry.Score),
		)
	}

	if err := s.pool.Submit(task); err != nil {
		s.log.Warn("stats worker pool saturated, saving out of band", zap.Error(err))
		go task()
	}
}

// Close libera o pool de workers.
func (s *Saver) Close() {
	s.pool.Release()
}
