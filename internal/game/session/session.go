// Package session implementa a GameSession: o estado mutável de um
// jogador e todas as regras de negócio sobre a fila de sabotagens.
// Nada fora deste pacote muda uma sessão a não ser pelos métodos dela;
// a exclusão mútua fica a cargo do registry que a guarda.
package session

import (
	"github.com/samber/lo"

	"github.com/GualterMM/PINAO-backend/internal/game/gameerr"
	"github.com/GualterMM/PINAO-backend/internal/game/sabotage"
)

// GameSession é a sessão isolada de um jogador.
type GameSession struct {
	state GameState
	pools sabotage.Pools
}

// New cria uma sessão em setup, com pools vazios.
func New(sessionID string) *GameSession {
	return &GameSession{
		state: GameState{
			SessionID: sessionID,
			Status:    StatusSetup,
		},
		pools: sabotage.NewPools(),
	}
}

// State devolve uma cópia do estado corrente.
func (g *GameSession) State() GameState {
	return g.state
}

// Pools devolve uma cópia dos pools correntes.
func (g *GameSession) Pools() sabotage.Pools {
	return g.pools.Clone()
}

// SetState substitui o estado pelo reportado na mensagem do cliente,
// preservando os invariantes que o cliente não pode violar:
//   - o sessionId e a versão do pool disponível são donos do servidor;
//   - currentSabotageLimit nunca decresce e nunca passa de
//     maxSabotageLimit ao longo da vida da sessão;
//   - não existe transição para fora de "over".
func (g *GameSession) SetState(next GameState) {
	if g.state.Status == StatusOver {
		return
	}

	next.SessionID = g.state.SessionID
	next.AvailablePoolVersion = g.state.AvailablePoolVersion

	if next.CurrentSabotageLimit < g.state.CurrentSabotageLimit {
		next.CurrentSabotageLimit = g.state.CurrentSabotageLimit
	}
	if next.MaxSabotageLimit < g.state.MaxSabotageLimit {
		next.MaxSabotageLimit = g.state.MaxSabotageLimit
	}
	if next.MaxSabotageLimit > 0 && next.CurrentSabotageLimit > next.MaxSabotageLimit {
		next.CurrentSabotageLimit = next.MaxSabotageLimit
	}

	g.state = next
}

// SetAvailable substitui o pool oferecido e avança a versão dele.
func (g *GameSession) SetAvailable(pool []sabotage.Sabotage) {
	g.pools.Available = append([]sabotage.Sabotage{}, pool...)
	g.state.AvailablePoolVersion++
}

// effectiveLimit é a capacidade corrente da fila. O cliente pode ainda
// não ter reportado limites durante o setup; nesse caso vale 1.
func (g *GameSession) effectiveLimit() int {
	if g.state.CurrentSabotageLimit <= 0 {
		return 1
	}
	return g.state.CurrentSabotageLimit
}

// PushToQueue valida e enfileira uma submissão de sabotagem.
// A submissão carrega o id escolhido e a atribuição de quem enviou; a
// definição é resolvida contra o pool disponível antes de aceitar.
// Devolve a fila atualizada.
func (g *GameSession) PushToQueue(sub sabotage.Sabotage) ([]sabotage.Sabotage, error) {
	// Id fora do pool oferecido é rejeitado em qualquer status.
	def, ok := sabotage.FindByID(g.pools.Available, sub.ID)
	if !ok {
		return nil, gameerr.ErrInvalidSabotage
	}

	if !g.IsActive() {
		return nil, gameerr.ErrSessionNotActive
	}
	if g.IsOver() {
		return nil, gameerr.ErrSessionEnded
	}
	if g.state.CurrentDuration < g.state.GraceDuration {
		return nil, gameerr.ErrGracePeriod
	}

	// Chave de deduplicação: identidade do remetente dentro da sessão.
	// Um mesmo espectador só volta a submeter depois da promoção da fila.
	if sub.PlayerName != "" {
		_, queued := lo.Find(g.pools.Queue, func(s sabotage.Sabotage) bool {
			return s.PlayerName == sub.PlayerName
		})
		if queued {
			return nil, gameerr.ErrDuplicateSubmission
		}
	}

	if len(g.pools.Queue) >= g.effectiveLimit() {
		return nil, gameerr.ErrQueueFull
	}

	g.pools.Queue = append(g.pools.Queue, def.WithAttribution(sub.PlayerName, sub.PlayerMessage))
	return append([]sabotage.Sabotage{}, g.pools.Queue...), nil
}

// ResetQueue limpa a fila incondicionalmente. Chamado depois que o
// conteúdo dela foi promovido para o pool ativo.
func (g *GameSession) ResetQueue() {
	g.pools.Queue = []sabotage.Sabotage{}
}

// SetActiveSabotages substitui o pool ativo pelos candidatos cujo id
// existe no pool disponível. Candidatos inválidos são descartados sem
// erro: este caminho roda na promoção interna, já validada.
func (g *GameSession) SetActiveSabotages(candidates []sabotage.Sabotage) []sabotage.Sabotage {
	g.pools.Active = sabotage.FilterByMembership(candidates, g.pools.Available)
	return append([]sabotage.Sabotage{}, g.pools.Active...)
}

// SetReportedActive substitui o pool ativo pelo reportado pelo cliente,
// sem filtro: efeitos em andamento podem ter vindo de um pool disponível
// já substituído, e a palavra do cliente sobre o que está em efeito é
// autoritativa fora da promoção.
func (g *GameSession) SetReportedActive(active []sabotage.Sabotage) {
	g.pools.Active = append([]sabotage.Sabotage{}, active...)
}

// IncreaseSabotageLimit sobe a capacidade da fila em 1, até o teto.
// No teto (ou sem teto reportado) é um no-op idempotente.
func (g *GameSession) IncreaseSabotageLimit() {
	if g.state.CurrentSabotageLimit < g.state.MaxSabotageLimit {
		g.state.CurrentSabotageLimit++
	}
}

// IsOver informa se a duração do jogo se esgotou. Duração não reportada
// conta como esgotada, igual ao comportamento do cliente original.
func (g *GameSession) IsOver() bool {
	return g.state.CurrentDuration >= g.state.GameDuration
}

// IsActive informa se a sessão está no status "active".
func (g *GameSession) IsActive() bool {
	return g.state.Status == StatusActive
}
