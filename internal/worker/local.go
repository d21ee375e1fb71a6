package worker

// local.go: in-process queue used when Redis is not configured.
// Jobs live in a buffered channel and are lost on restart.

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrQueueFull is returned when the in-process buffer has no room.
var ErrQueueFull = errors.New("fila de jobs cheia")

type LocalDispatcher struct {
	jobs chan Job
}

func NewLocalDispatcher(buffer int) *LocalDispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &LocalDispatcher{jobs: make(chan Job, buffer)}
}

func (d *LocalDispatcher) EnqueueCupom(_ context.Context, tenantID, vendaID uuid.UUID) error {
	return d.enqueue(JobCupom, CupomJobPayload{TenantID: tenantID.String(), VendaID: vendaID.String()})
}

func (d *LocalDispatcher) EnqueueFechamento(_ context.Context, tenantID, sessaoID uuid.UUID) error {
	return d.enqueue(JobFechamento, FechamentoJobPayload{TenantID: tenantID.String(), SessaoID: sessaoID.String()})
}

func (d *LocalDispatcher) enqueue(jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	select {
	case d.jobs <- Job{Type: jobType, Payload: data}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Start consumes the buffer with numWorkers goroutines until ctx is done.
// Jobs that exhaust their retries are logged and dropped.
func (d *LocalDispatcher) Start(ctx context.Context, numWorkers int, handlers map[string]Handler) {
	for i := 0; i < numWorkers; i++ {
		go func(id int) {
			for {
				select {
				case <-ctx.Done():
					log.Info().Msgf("local worker %d shutting down", id)
					return
				case job := <-d.jobs:
					if attempts, err := runJob(ctx, handlers, job); err != nil {
						log.Error().
							Err(err).
							Str("job_type", job.Type).
							Int("attempts", attempts).
							RawJSON("payload", job.Payload).
							Msg("job descartado após falhas")
					}
				}
			}
		}(i)
	}
	log.Info().Msgf("local worker pool started with %d workers", numWorkers)
}
