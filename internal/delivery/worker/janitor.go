// Package worker contains background deliveries that run on a schedule
// rather than in response to requests.
package worker

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"

	"gatekeeper/config"
	"gatekeeper/internal/delivery"
	"gatekeeper/internal/usecase"
)

type janitor struct {
	interval time.Duration
	recovery usecase.RecoveryTokenManager
	logger   *slog.Logger
	stop     chan struct{}
	done     chan struct{}
}

// JanitorParams holds dependencies for the purge janitor.
type JanitorParams struct {
	fx.In

	Lc       fx.Lifecycle
	Cfg      *config.Config
	Recovery usecase.RecoveryTokenManager
	Logger   *slog.Logger
}

// NewJanitor creates the background worker that periodically purges expired
// recovery consumption records. The records only block replay while the
// matching token can still validate, so anything past its expiry is garbage.
func NewJanitor(params JanitorParams) (delivery.Delivery, error) {
	j := &janitor{
		interval: params.Cfg.Auth.PurgeInterval,
		recovery: params.Recovery,
		logger:   params.Logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	params.Lc.Append(fx.Hook{
		OnStop: j.shutdown,
	})

	return j, nil
}

// Serve runs the purge loop until shutdown.
func (j *janitor) Serve(ctx context.Context) error {
	defer close(j.done)

	j.logger.Info("Starting recovery janitor", slog.Duration("interval", j.interval))
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := j.recovery.PurgeExpired(ctx); err != nil {
				j.logger.Error("Recovery purge failed", slog.Any("error", err))
			}
		case <-j.stop:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func (j *janitor) shutdown(ctx context.Context) error {
	j.logger.Info("Shutting down recovery janitor")
	close(j.stop)

	select {
	case <-j.done:
	case <-ctx.Done():
	}

	return nil
}
