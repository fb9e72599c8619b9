package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/GualterMM/PINAO-backend/internal/config"
	"github.com/GualterMM/PINAO-backend/internal/game/sabotage"
	"github.com/GualterMM/PINAO-backend/internal/logging"
	"github.com/GualterMM/PINAO-backend/internal/metrics"
	"github.com/GualterMM/PINAO-backend/internal/network"
	"github.com/GualterMM/PINAO-backend/internal/services/cluster"
	"github.com/GualterMM/PINAO-backend/internal/services/coordinator"
	"github.com/GualterMM/PINAO-backend/internal/services/leaderboard"
	"github.com/GualterMM/PINAO-backend/internal/services/relay"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.DevMode)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Persistência do leaderboard ---
	store, err := leaderboard.Open(cfg.LeaderboardDBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	saver, err := leaderboard.NewSaver(store, log)
	if err != nil {
		return err
	}
	defer saver.Close()

	// --- Núcleo de coordenação ---
	catalog := sabotage.NewDefaultCatalog()
	coord := coordinator.New(catalog, cfg.SabotageDrawSize, log)

	// --- Integrações opcionais ---
	var publisher network.UpdatePublisher
	if cfg.NATSURL != "" {
		r, err := relay.Connect(ctx, cfg.NATSURL, log)
		if err != nil {
			// O relay é espelho, não dependência: segue sem ele.
			log.Warn("update relay unavailable", zap.Error(err))
		} else {
			defer r.Close()
			publisher = r
		}
	}

	// --- Camada WebSocket ---
	viewers := network.NewViewerService(coord, log)
	game := network.NewGameService(coord, viewers, saver, publisher, cfg.MaxGameSessions, log)

	// --- Rotas ---
	mux := http.NewServeMux()
	network.RegisterHandlers(mux, game, viewers, log)
	coordinator.RegisterHandlers(mux, coord, log)
	leaderboard.RegisterHandlers(mux, store, log)
	cluster.RegisterHealthHandler(mux)
	metrics.RegisterHandler(mux)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	if cfg.ConsulAddr != "" {
		go func() {
			err := cluster.Register(ctx, cluster.Registration{
				ServiceName: cfg.ServiceName,
				ServicePort: cfg.ServicePort,
				ConsulAddr:  cfg.ConsulAddr,
			}, log)
			if err != nil {
				log.Warn("consul registration gave up", zap.Error(err))
			}
		}()
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening",
			zap.String("addr", cfg.ListenAddr),
			zap.Int("maxGameSessions", cfg.MaxGameSessions),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
