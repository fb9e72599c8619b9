// Package coordinator guarda o registry de sessões vivas: o único ponto
// de verdade consultado por todos os handlers de conexão e pela fronteira
// HTTP. Toda mutação de sessão passa por aqui; o mutex interno é a única
// exclusão necessária, já que cada GameSession só é tocada via registry.
package coordinator

import (
	"sync"

	"go.uber.org/zap"

	"github.com/GualterMM/PINAO-backend/internal/game/gameerr"
	"github.com/GualterMM/PINAO-backend/internal/game/sabotage"
	"github.com/GualterMM/PINAO-backend/internal/game/session"
)

// Coordinator é o registry de GameSessions por id de sessão.
type Coordinator struct {
	mu       sync.Mutex
	sessions map[string]*session.GameSession

	catalog  *sabotage.Catalog
	drawSize int
	log      *zap.Logger
}

// New cria o registry. drawSize é o tamanho do pool oferecido a cada
// sorteio; valores não positivos caem no padrão do catálogo.
func New(catalog *sabotage.Catalog, drawSize int, log *zap.Logger) *Coordinator {
	if drawSize <= 0 {
		drawSize = sabotage.DefaultDrawSize
	}
	return &Coordinator{
		sessions: make(map[string]*session.GameSession),
		catalog:  catalog,
		drawSize: drawSize,
		log:      log,
	}
}

// get centraliza o caminho de falha por sessão inexistente.
// Chamar somente com c.mu em posse.
func (c *Coordinator) get(id string) (*session.GameSession, error) {
	g, ok := c.sessions[id]
	if !ok {
		return nil, gameerr.ErrSessionNotFound
	}
	return g, nil
}

// Register cria a sessão se ela ainda não existe e sorteia o primeiro
// pool disponível. Registro repetido é um no-op: o primeiro escritor
// vence e o estado existente não é substituído.
func (c *Coordinator) Register(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.sessions[id]; ok {
		return
	}
	g := session.New(id)
	g.SetAvailable(c.catalog.Draw(c.drawSize))
	c.sessions[id] = g
}

// Revoke remove a sessão. Id desconhecido é um no-op.
func (c *Coordinator) Revoke(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, id)
}

// Snapshot devolve cópias do estado e dos pools da sessão, para montar
// mensagens de saída fora da seção crítica.
func (c *Coordinator) Snapshot(id string) (session.GameState, sabotage.Pools, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, err := c.get(id)
	if err != nil {
		return session.GameState{}, sabotage.Pools{}, err
	}
	return g.State(), g.Pools(), nil
}

// UpdateState aplica o GameState reportado pelo cliente à sessão.
func (c *Coordinator) UpdateState(id string, state session.GameState) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, err := c.get(id)
	if err != nil {
		return err
	}
	g.SetState(state)
	return nil
}

// PushToQueue valida e enfileira uma submissão vinda de um espectador.
// Devolve a fila atualizada.
func (c *Coordinator) PushToQueue(id string, sub sabotage.Sabotage) ([]sabotage.Sabotage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, err := c.get(id)
	if err != nil {
		return nil, err
	}
	return g.PushToQueue(sub)
}

// PromoteQueue move a fila para o pool ativo, limpa a fila, sorteia um
// pool disponível novo e recompensa a sessão subindo o limite em 1.
// É o caminho interno disparado quando o cliente sinaliza que pode
// receber uma sabotagem nova.
func (c *Coordinator) PromoteQueue(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, err := c.get(id)
	if err != nil {
		return err
	}

	promoted := g.SetActiveSabotages(g.Pools().Queue)
	g.ResetQueue()
	g.SetAvailable(c.catalog.Draw(c.drawSize))
	g.IncreaseSabotageLimit()

	c.log.Info("sabotage queue promoted",
		zap.String("sessionId", id),
		zap.Int("activated", len(promoted)),
	)
	return nil
}

// MergeActivePool aceita o pool ativo reportado pelo cliente como
// autoritativo. Efeitos em andamento vieram de sorteios anteriores, então
// aqui não há filtro por pertencimento ao pool disponível corrente.
func (c *Coordinator) MergeActivePool(id string, active []sabotage.Sabotage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, err := c.get(id)
	if err != nil {
		return err
	}
	g.SetReportedActive(active)
	return nil
}

// AdjustLimit sobe o limite corrente de sabotagens da sessão em 1,
// respeitando o teto. No teto é um no-op.
func (c *Coordinator) AdjustLimit(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, err := c.get(id)
	if err != nil {
		return err
	}
	g.IncreaseSabotageLimit()
	return nil
}

// IsOver delega para a sessão.
func (c *Coordinator) IsOver(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, err := c.get(id)
	if err != nil {
		return false, err
	}
	return g.IsOver(), nil
}

// IsActive delega para a sessão.
func (c *Coordinator) IsActive(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, err := c.get(id)
	if err != nil {
		return false, err
	}
	return g.IsActive(), nil
}

// SessionIDs enumera as sessões vivas, para a fronteira HTTP.
func (c *Coordinator) SessionIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.sessions))
	for id := range c.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Count devolve o número de sessões vivas.
func (c *Coordinator) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}
