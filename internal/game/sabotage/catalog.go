package sabotage

import (
	"math/rand/v2"
	"sync"
)

// DefaultDrawSize é o tamanho padrão do pool oferecido ao jogador.
const DefaultDrawSize = 5

// Catalog é o conjunto estático de definições de sabotagem do jogo.
// Ele não guarda estado de sessão; só sorteia cópias das definições.
type Catalog struct {
	defs []Sabotage

	mu  sync.Mutex
	rng *rand.Rand
}

// NewCatalog cria um catálogo a partir das definições dadas.
// O seed é explícito para os testes poderem fixar o sorteio.
func NewCatalog(defs []Sabotage, seed uint64) *Catalog {
	return &Catalog{
		defs: append([]Sabotage{}, defs...),
		rng:  rand.New(rand.NewPCG(seed, seed>>1)),
	}
}

// NewDefaultCatalog cria o catálogo com as sabotagens base do PINAO.
func NewDefaultCatalog() *Catalog {
	return NewCatalog(defaultDefs, rand.Uint64())
}

// Size devolve o número de definições conhecidas.
func (c *Catalog) Size() int { return len(c.defs) }

// Draw sorteia até n definições distintas do catálogo.
// Se n cobrir o catálogo inteiro, devolve todas em ordem embaralhada.
func (c *Catalog) Draw(n int) []Sabotage {
	if n <= 0 {
		return []Sabotage{}
	}
	if n > len(c.defs) {
		n = len(c.defs)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Embaralha uma cópia dos índices e toma os n primeiros.
	// Mais simples que sortear com rejeição e o catálogo é pequeno.
	idx := c.rng.Perm(len(c.defs))
	drawn := make([]Sabotage, 0, n)
	for _, i := range idx[:n] {
		drawn = append(drawn, c.defs[i])
	}
	return drawn
}

// defaultDefs são as sabotagens base. Multiplier modula a intensidade do
// efeito no cliente; Duration é em segundos.
var defaultDefs = []Sabotage{
	{ID: "inverted-controls", Name: "Inverted Controls", Description: "Flips the player's movement axes", Multiplier: 1.0, Duration: 8},
	{ID: "blackout", Name: "Blackout", Description: "Dims the arena lights to near darkness", Multiplier: 1.0, Duration: 6},
	{ID: "enemy-frenzy", Name: "Enemy Frenzy", Description: "Enemies move and attack faster", Multiplier: 1.5, Duration: 10},
	{ID: "slippery-floor", Name: "Slippery Floor", Description: "Removes friction from the arena floor", Multiplier: 1.2, Duration: 8},
	{ID: "weapon-jam", Name: "Weapon Jam", Description: "Halves the player's fire rate", Multiplier: 0.5, Duration: 7},
	{ID: "shrink-ray", Name: "Shrink Ray", Description: "Shrinks the player's hitbox and reach", Multiplier: 0.7, Duration: 9},
	{ID: "mirror-world", Name: "Mirror World", Description: "Mirrors the whole screen horizontally", Multiplier: 1.0, Duration: 6},
	{ID: "heavy-gravity", Name: "Heavy Gravity", Description: "Doubles gravity, lowering every jump", Multiplier: 2.0, Duration: 8},
	{ID: "speed-demon", Name: "Speed Demon", Description: "Everything runs faster, including mistakes", Multiplier: 1.4, Duration: 10},
	{ID: "fog-of-war", Name: "Fog of War", Description: "A thick fog hides everything far away", Multiplier: 1.0, Duration: 12},
}
