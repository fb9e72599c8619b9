package session

import "github.com/GualterMM/PINAO-backend/internal/game/sabotage"

// Status é o estado da máquina de estados de uma sessão.
// Transições válidas: setup → active ⇄ paused → over. "over" é terminal.
type Status string

const (
	StatusSetup  Status = "setup"
	StatusActive Status = "active"
	StatusPaused Status = "paused"
	StatusOver   Status = "over"
)

// Valid informa se o status é um dos quatro conhecidos.
func (s Status) Valid() bool {
	switch s {
	case StatusSetup, StatusActive, StatusPaused, StatusOver:
		return true
	}
	return false
}

// GameState é o retrato do jogo reportado pelo cliente a cada mensagem.
// Durações em segundos. As tags seguem o envelope de rede do cliente.
type GameState struct {
	SessionID  string `json:"sessionId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
	Status     Status `json:"status"`

	GameDuration    float64 `json:"gameDuration,omitempty"`
	CurrentDuration float64 `json:"currentDuration,omitempty"`
	GraceDuration   float64 `json:"graceDuration,omitempty"`

	MaxSabotageLimit     int  `json:"maxSabotageLimit,omitempty"`
	CurrentSabotageLimit int  `json:"currentSabotageLimit,omitempty"`
	CanReceiveSabotage   bool `json:"canReceiveSabotage,omitempty"`

	// AvailablePoolVersion é dono do servidor: cresce a cada sorteio novo
	// do pool disponível, para o cliente detectar ofertas velhas.
	AvailablePoolVersion uint64 `json:"availableSabotagePoolVersion,omitempty"`

	Error string `json:"error,omitempty"`
}

// PlayerStatistics é o resumo terminal do jogador, anexado à mensagem
// final (status "over") e persistido no leaderboard.
type PlayerStatistics struct {
	Name    string  `json:"name"`
	Time    float64 `json:"time"`
	Success bool    `json:"success"`
	Points  int     `json:"points"`
	Kills   int     `json:"kills"`

	BestKillStreak      int    `json:"bestKillStreak,omitempty"`
	MostUsedWeapon      string `json:"mostUsedWeapon,omitempty"`
	SabotagesReceived   int    `json:"sabotagesReceived,omitempty"`
	BoostsReceived      int    `json:"boostsReceived,omitempty"`
	TimeBoostsReceived  int    `json:"timeBoostsReceived,omitempty"`
	WeaponsUpgradesMade int    `json:"weaponsUpgradesMade,omitempty"`
}

// UsedSabotage acumula o uso de uma sabotagem por um espectador.
type UsedSabotage struct {
	sabotage.Sabotage
	AmountUsed              int     `json:"amountUsed"`
	PlayerHPLostWhileActive float64 `json:"playerHpLostWhileActive"`
}

// SaboteurStatistics agrupa as sabotagens usadas por um espectador.
type SaboteurStatistics struct {
	Name      string         `json:"name"`
	Sabotages []UsedSabotage `json:"sabotages"`
}

// Statistics é o bloco terminal completo da sessão.
type Statistics struct {
	Player    PlayerStatistics     `json:"player"`
	Saboteurs []SaboteurStatistics `json:"saboteurs,omitempty"`
}
