// Package leaderboard persiste as estatísticas terminais dos jogadores.
// É um colaborador externo do núcleo de coordenação: falha aqui é logada
// e nunca impede o teardown de uma sessão.
package leaderboard

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS player_stats (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT,
	player_name TEXT,
	score INTEGER,
	kills INTEGER,
	success INTEGER,
	time_alive INTEGER,
	timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// Entry é uma linha do leaderboard.
type Entry struct {
	SessionID  string    `json:"sessionId"`
	PlayerName string    `json:"playerName"`
	Score      int       `json:"score"`
	Kills      int       `json:"kills"`
	Success    bool      `json:"success"`
	TimeAlive  int64     `json:"timeAlive"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store guarda o leaderboard em SQLite.
type Store struct {
	db *sql.DB
}

// Open abre (ou cria) o banco no caminho dado e garante o schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("leaderboard db path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create player_stats table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close fecha o handle do banco.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save insere uma linha de estatísticas de fim de jogo.
func (s *Store) Save(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO player_stats (session_id, player_name, score, kills, success, time_alive)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.PlayerName, e.Score, e.Kills, boolToInt(e.Success), e.TimeAlive,
	)
	if err != nil {
		return fmt.Errorf("insert player stats: %w", err)
	}
	return nil
}

// TopPlayers devolve as melhores pontuações, opcionalmente só de
// partidas vencidas.
func (s *Store) TopPlayers(ctx context.Context, limit int, successfulOnly bool) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT session_id, player_name, score, kills, success, time_alive, timestamp
		FROM player_stats`
	if successfulOnly {
		query += ` WHERE success = 1`
	}
	query += ` ORDER BY score DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query player stats: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var success int
		if err := rows.Scan(&e.SessionID, &e.PlayerName, &e.Score, &e.Kills, &success, &e.TimeAlive, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan player stats: %w", err)
		}
		e.Success = success != 0
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
