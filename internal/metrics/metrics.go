// Package metrics expõe os contadores Prometheus do coordenador.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pinao"

var (
	// ActiveSessions conta as conexões de jogo vivas.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_game_sessions",
		Help:      "Number of live game connections.",
	})

	// ConnectedViewers conta os espectadores inscritos, todas as sessões.
	ConnectedViewers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connected_viewers",
		Help:      "Number of subscribed viewer connections.",
	})

	// SabotagesSubmitted conta submissões por resultado (código de
	// rejeição ou "accepted").
	SabotagesSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sabotages_submitted_total",
		Help:      "Sabotage submissions by outcome.",
	}, []string{"outcome"})

	// BroadcastsTotal conta atualizações espelhadas para espectadores.
	BroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "viewer_broadcasts_total",
		Help:      "Game updates mirrored to viewer subscriptions.",
	})

	// MessagesDropped conta mensagens de entrada descartadas na validação
	// e envios pulados por backpressure.
	MessagesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_dropped_total",
		Help:      "Messages dropped by reason.",
	}, []string{"reason"})
)

// RegisterHandler publica /metrics no mux dado.
func RegisterHandler(mux *http.ServeMux) {
	mux.Handle("GET /metrics", promhttp.Handler())
}
