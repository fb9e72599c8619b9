// Simulador de partida: conecta como cliente de jogo, joga uma sessão
// inteira contra o servidor e envia sabotagens pela API HTTP, como se um
// espectador estivesse assistindo. Útil para exercitar o backend sem o
// jogo de verdade rodando.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/GualterMM/PINAO-backend/internal/game/sabotage"
	"github.com/GualterMM/PINAO-backend/internal/game/session"
	"github.com/GualterMM/PINAO-backend/internal/network"
)

func main() {
	host := flag.String("host", "localhost:8080", "endereço do servidor")
	duration := flag.Float64("duration", 60, "duração simulada da partida em segundos")
	tick := flag.Duration("tick", 2*time.Second, "intervalo entre mensagens de estado")
	flag.Parse()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+*host+"/ws/game", nil)
	if err != nil {
		log.Println("Connection FAIL: could not reach server:", err)
		return
	}
	defer conn.Close()

	// --- Etapa 1: mensagem de setup ---
	// O servidor manda o id da sessão e o primeiro pool sorteado.
	setup, ok := readEnvelope(conn, "Setup")
	if !ok || setup.GameState == nil {
		return
	}
	sessionID := setup.GameState.SessionID
	log.Printf("Setup SUCCESS. Session %s, %d sabotages on offer.\n", sessionID, len(setup.Sabotages.Available))

	// --- Etapa 2: loop da partida ---
	// Simula o jogo reportando estado a cada tick e, de vez em quando,
	// um espectador mandando uma sabotagem do pool oferecido.
	state := session.GameState{
		Status:               session.StatusActive,
		GameDuration:         *duration,
		GraceDuration:        5,
		MaxSabotageLimit:     3,
		CurrentSabotageLimit: 1,
	}
	offered := setup.Sabotages.Available

	for state.CurrentDuration < state.GameDuration {
		state.CurrentDuration += tick.Seconds()
		// O jogo só aceita sabotagem nova quando nenhuma está rodando.
		state.CanReceiveSabotage = rand.IntN(3) == 0

		if err := conn.WriteJSON(network.GameMessage{GameState: &state}); err != nil {
			log.Println("FAIL: could not send game state:", err)
			return
		}
		reply, ok := readEnvelope(conn, "Game Loop")
		if !ok {
			return
		}
		if reply.Sabotages != nil {
			offered = reply.Sabotages.Available
			state.CurrentSabotageLimit = reply.GameState.CurrentSabotageLimit
			if n := len(reply.Sabotages.Active); n > 0 {
				log.Printf("Active sabotages: %d (limit %d)\n", n, state.CurrentSabotageLimit)
			}
		}

		// Espectador impaciente: uma chance em três de mandar sabotagem.
		if rand.IntN(3) == 0 && len(offered) > 0 {
			sendSabotage(*host, sessionID, offered[rand.IntN(len(offered))])
		}

		time.Sleep(*tick)
	}

	// --- Etapa 3: fim de jogo com estatísticas ---
	state.Status = session.StatusOver
	final := network.GameMessage{
		GameState: &state,
		Statistics: &session.Statistics{
			Player: session.PlayerStatistics{
				Name:    "simulator",
				Time:    state.CurrentDuration,
				Success: true,
				Points:  rand.IntN(1000),
				Kills:   rand.IntN(30),
			},
		},
	}
	if err := conn.WriteJSON(final); err != nil {
		log.Println("FAIL: could not send final statistics:", err)
		return
	}
	log.Println("Match over. Statistics delivered.")
}

// readEnvelope lê a próxima mensagem do servidor com um deadline
// agressivo. Devolve false se a conexão caiu ou o servidor demorou.
func readEnvelope(conn *websocket.Conn, context string) (network.GameMessage, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	var msg network.GameMessage
	if err := conn.ReadJSON(&msg); err != nil {
		log.Printf("FAIL during '%s': no server response in time: %v\n", context, err)
		return msg, false
	}
	return msg, true
}

// sendSabotage submete uma sabotagem pela mesma rota HTTP que o overlay
// dos espectadores usa. Rejeição de regra (fila cheia, duplicata) é
// esperada e apenas logada.
func sendSabotage(host, sessionID string, pick sabotage.Sabotage) {
	body, _ := json.Marshal(map[string]any{
		"sabotage": sabotage.Sabotage{
			ID:            pick.ID,
			PlayerName:    fmt.Sprintf("viewer-%d", rand.IntN(100)),
			PlayerMessage: "gl hf",
		},
	})

	url := fmt.Sprintf("http://%s/api/game-session/%s/sabotage", host, sessionID)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Println("FAIL: sabotage request did not go through:", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusCreated {
		log.Printf("Sabotage '%s' queued.\n", pick.ID)
	} else {
		log.Printf("Sabotage '%s' rejected with status %d.\n", pick.ID, resp.StatusCode)
	}
}
