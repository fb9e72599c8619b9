// Package relay espelha as atualizações de sessão aceitas para um
// servidor NATS, para consumidores externos como overlays de stream.
// Integração opcional e melhor-esforço: publicar nunca bloqueia nem
// derruba o caminho do jogo.
package relay

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const subjectPrefix = "pinao.session."

// Relay publica atualizações num servidor NATS.
type Relay struct {
	nc  *nats.Conn
	log *zap.Logger
}

// Connect abre a conexão com o NATS, com retry exponencial limitado para
// sobreviver a uma ordem de subida de contêineres infeliz.
func Connect(ctx context.Context, url string, log *zap.Logger) (*Relay, error) {
	var nc *nats.Conn

	policy := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(30*time.Second),
	), ctx)

	err := backoff.Retry(func() error {
		var err error
		nc, err = nats.Connect(url, nats.Name("pinao-backend"))
		if err != nil {
			log.Warn("nats connect failed, retrying", zap.Error(err))
		}
		return err
	}, policy)
	if err != nil {
		return nil, err
	}

	log.Info("update relay connected", zap.String("url", url))
	return &Relay{nc: nc, log: log}, nil
}

// PublishUpdate publica o payload no subject da sessão. Erro é logado e
// engolido; o relay não participa da entrega ao jogador.
func (r *Relay) PublishUpdate(sessionID string, payload []byte) {
	if err := r.nc.Publish(subjectPrefix+sessionID, payload); err != nil {
		r.log.Warn("relay publish failed", zap.String("sessionId", sessionID), zap.Error(err))
	}
}

// Close descarrega o que estiver pendente e fecha a conexão.
func (r *Relay) Close() {
	if err := r.nc.Drain(); err != nil {
		r.log.Warn("relay drain failed", zap.Error(err))
	}
}
