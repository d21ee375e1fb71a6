package worker

// stale_session_cron.go
// Background goroutine that periodically reports cash sessions still open
// from a previous business day. Such a session blocks its drawer until an
// administrator closes it; the cron only makes it visible.

import (
	"context"
	"time"

	"deliverypdv/internal/model"

	"github.com/rs/zerolog/log"
)

const staleBatchSize = 50

type PendentesLister interface {
	PendentesDiaAnterior(ctx context.Context, limit int) ([]model.SessaoCaixa, error)
}

// StaleSessionCronConfig holds all dependencies for the cron goroutine.
type StaleSessionCronConfig struct {
	Caixa    PendentesLister
	Interval time.Duration
}

// StartStaleSessionCron ticks every Interval and logs prior-day sessions.
// It respects the context for graceful shutdown.
func StartStaleSessionCron(ctx context.Context, cfg StaleSessionCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("stale_session_cron: started")
		checkStaleSessions(ctx, cfg)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("stale_session_cron: shutting down")
				return
			case <-ticker.C:
				checkStaleSessions(ctx, cfg)
			}
		}
	}()
}

// checkStaleSessions returns how many pending sessions were reported.
func checkStaleSessions(ctx context.Context, cfg StaleSessionCronConfig) int {
	sessoes, err := cfg.Caixa.PendentesDiaAnterior(ctx, staleBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("stale_session_cron: failed to query open sessions")
		return 0
	}
	for i := range sessoes {
		s := &sessoes[i]
		log.Warn().
			Str("tenant_id", s.TenantID.String()).
			Str("sessao_id", s.ID.String()).
			Str("pdv_id", s.PDVID.String()).
			Time("aberto_em", s.AbertoEm).
			Msg("stale_session_cron: caixa aberto em dia anterior aguardando fechamento")
	}
	return len(sessoes)
}
