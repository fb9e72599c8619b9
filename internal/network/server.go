package network

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// upgrader promove a conexão HTTP para WebSocket.
var upgrader = websocket.Upgrader{
	// CheckOrigin libera qualquer origem: o cliente do jogo e os overlays
	// de stream rodam em domínios próprios e não há autenticação aqui.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// RegisterHandlers configura as rotas WebSocket:
//
//	/ws/game      -> conexão do jogador, uma sessão por conexão
//	/ws/view/{id} -> inscrição de espectador na sessão {id}
func RegisterHandlers(mux *http.ServeMux, game *GameService, viewers *ViewerService, log *zap.Logger) {
	mux.HandleFunc("/ws/game", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("game upgrade failed", zap.Error(err))
			return
		}
		game.HandleConnection(conn)
	})

	mux.HandleFunc("/ws/view/", func(w http.ResponseWriter, r *http.Request) {
		// O último segmento do caminho é o id da sessão a observar.
		// Sem id não há inscrição: a conexão nem é promovida.
		sessionID := lastPathSegment(r.URL.Path)
		if sessionID == "" {
			http.NotFound(w, r)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("viewer upgrade failed", zap.Error(err))
			return
		}
		viewers.HandleConnection(conn, sessionID)
	})
}

func lastPathSegment(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}
