// Package config carrega a configuração do processo a partir do ambiente,
// com um .env opcional para desenvolvimento.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config reúne todos os knobs do servidor.
type Config struct {
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	// MaxGameSessions é o teto de conexões de jogo simultâneas.
	MaxGameSessions  int `env:"MAX_GAME_SESSIONS" envDefault:"4"`
	SabotageDrawSize int `env:"SABOTAGE_DRAW_SIZE" envDefault:"5"`

	LeaderboardDBPath string `env:"LEADERBOARD_DB_PATH" envDefault:"leaderboard.db"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	DevMode  bool   `env:"DEV_MODE" envDefault:"false"`

	// Integrações opcionais: vazio desliga.
	ConsulAddr  string `env:"CONSUL_HTTP_ADDR"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"pinao-backend"`
	ServicePort int    `env:"SERVICE_PORT" envDefault:"8080"`
	NATSURL     string `env:"NATS_URL"`
}

// Load lê o .env (se existir) e resolve as variáveis de ambiente.
func Load() (*Config, error) {
	// Ausência de .env não é erro; em produção tudo vem do ambiente.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
