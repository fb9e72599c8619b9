// Package cluster registra o backend no Consul para descoberta de
// serviço. Integração opcional: sem CONSUL_HTTP_ADDR configurado o
// processo roda sozinho do mesmo jeito.
package cluster

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	consul "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

// Registration descreve como este processo se anuncia.
type Registration struct {
	ServiceName string
	ServicePort int
	ConsulAddr  string
}

// Register anuncia o serviço no agente Consul, com retry exponencial
// para tolerar o agente subindo depois do serviço. O health check aponta
// para o /health do próprio servidor HTTP.
func Register(ctx context.Context, reg Registration, log *zap.Logger) error {
	config := consul.DefaultConfig()
	config.Address = reg.ConsulAddr

	client, err := consul.NewClient(config)
	if err != nil {
		return fmt.Errorf("create consul client: %w", err)
	}

	// O hostname dá um id de serviço único por instância.
	hostname := os.Getenv("HOSTNAME")
	if hostname == "" {
		hostname, _ = os.Hostname()
	}

	registration := &consul.AgentServiceRegistration{
		ID:   fmt.Sprintf("%s-%s", reg.ServiceName, hostname),
		Name: reg.ServiceName,
		Port: reg.ServicePort,
		Check: &consul.AgentServiceCheck{
			HTTP:     fmt.Sprintf("http://%s:%d/health", hostname, reg.ServicePort),
			Timeout:  "5s",
			Interval: "10s",
			// Desregistra sozinho se ficar crítico por muito tempo.
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(time.Minute),
	), ctx)

	err = backoff.Retry(func() error {
		if err := client.Agent().ServiceRegister(registration); err != nil {
			log.Warn("consul registration failed, retrying", zap.Error(err))
			return err
		}
		return nil
	}, policy)
	if err != nil {
		return fmt.Errorf("register service in consul: %w", err)
	}

	log.Info("service registered in consul",
		zap.String("service", reg.ServiceName),
		zap.String("id", registration.ID),
	)
	return nil
}
