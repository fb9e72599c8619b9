// Package sabotage define as sabotagens do PINAO: efeitos nomeados e
// temporizados que espectadores submetem contra o jogador, e os pools que
// cada sessão mantém sobre elas.
package sabotage

import "github.com/samber/lo"

// Sabotage é uma definição imutável depois de sorteada do catálogo.
// Os campos de atribuição (PlayerName/PlayerMessage) são preenchidos na
// submissão, nunca pelo catálogo.
type Sabotage struct {
	ID          string  `json:"id"`
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
	Multiplier  float64 `json:"multiplier,omitempty"`
	Duration    float64 `json:"duration,omitempty"`

	PlayerName    string `json:"playerName,omitempty"`
	PlayerMessage string `json:"playerMessage,omitempty"`
}

// WithAttribution devolve uma cópia da definição com a autoria anexada.
func (s Sabotage) WithAttribution(playerName, playerMessage string) Sabotage {
	s.PlayerName = playerName
	s.PlayerMessage = playerMessage
	return s
}

// Pools agrupa as três coleções ordenadas de uma sessão.
// As tags seguem o envelope de rede acordado com o cliente do jogo.
type Pools struct {
	Available []Sabotage `json:"availableSabotagePool"`
	Active    []Sabotage `json:"activeSabotagePool"`
	Queue     []Sabotage `json:"sabotageQueue"`
}

// NewPools cria pools vazios, com slices não-nil para serializar como [].
func NewPools() Pools {
	return Pools{
		Available: []Sabotage{},
		Active:    []Sabotage{},
		Queue:     []Sabotage{},
	}
}

// Clone devolve uma cópia profunda o suficiente para sair da seção
// crítica do registry: as slices são copiadas, os elementos são valores.
func (p Pools) Clone() Pools {
	return Pools{
		Available: append([]Sabotage{}, p.Available...),
		Active:    append([]Sabotage{}, p.Active...),
		Queue:     append([]Sabotage{}, p.Queue...),
	}
}

// FindByID procura uma sabotagem pelo id dentro de um pool.
func FindByID(pool []Sabotage, id string) (Sabotage, bool) {
	return lo.Find(pool, func(s Sabotage) bool { return s.ID == id })
}

// FilterByMembership mantém apenas os candidatos cujo id existe no pool de
// referência. Entradas inválidas são descartadas em silêncio; este é o
// caminho interno de promoção, já confiável.
func FilterByMembership(candidates, reference []Sabotage) []Sabotage {
	return lo.Filter(candidates, func(s Sabotage, _ int) bool {
		_, ok := FindByID(reference, s.ID)
		return ok
	})
}
