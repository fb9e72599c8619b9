package network

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GualterMM/PINAO-backend/internal/metrics"
)

const (
	// Tempo para aguardar por uma escrita na conexão.
	writeWait = 10 * time.Second

	// Tempo máximo para aguardar por um pong do cliente.
	pongWait = 60 * time.Second

	// Frequência dos pings. Deve ser menor que pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Tamanho máximo de uma mensagem de entrada.
	maxMessageSize = 64 * 1024

	// Capacidade do buffer de saída de cada conexão.
	sendBufferSize = 64
)

// Client agrupa uma conexão WebSocket e o seu canal de saída.
// O buffer no canal 'send' evita que quem publica bloqueie atrás de um
// cliente lento; quando o buffer enche, a mensagem é descartada para
// aquele destinatário em vez de aguardada.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	log  *zap.Logger

	// mu protege send contra a corrida entre um broadcast que acabou de
	// fotografar este cliente e o teardown fechando o canal.
	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, log *zap.Logger) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		log:  log,
	}
}

// trySend entrega o payload ao writeLoop sem bloquear. Devolve false se
// o destinatário está saturado ou já foi desligado; o chamador apenas
// segue para o próximo destinatário.
func (c *Client) trySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		metrics.MessagesDropped.WithLabelValues("backpressure").Inc()
		return false
	}
}

// readLoop consome mensagens da conexão e as entrega ao handler, em
// ordem estrita de chegada. Retorna quando a conexão morre; a limpeza é
// responsabilidade do chamador, depois do retorno.
func (c *Client) readLoop(onMessage func(data []byte)) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	// Cada pong recebido renova o deadline de leitura e mantém a conexão viva.
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.Warn("unexpected connection error", zap.Error(err))
			}
			return
		}
		onMessage(data)
	}
}

// writeLoop bombeia o canal 'send' para a conexão e manda pings
// periódicos. Fechar o canal 'send' encerra o loop e a conexão.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close derruba o writeLoop (e com ele a conexão). Depois daqui todo
// trySend devolve false.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}
