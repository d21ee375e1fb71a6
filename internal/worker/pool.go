package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"deliverypdv/internal/infra"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueCupom      = "jobs:cupom"
	QueueFechamento = "jobs:fechamento"

	JobCupom      = "cupom"
	JobFechamento = "fechamento"

	// MaxJobAttempts is how many times a handler runs before the job goes to the DLQ.
	MaxJobAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// CupomJobPayload asks for the receipt PDF of a sale.
type CupomJobPayload struct {
	TenantID string `json:"tenant_id"`
	VendaID  string `json:"venda_id"`
}

// FechamentoJobPayload asks for the closing report PDF of a session.
type FechamentoJobPayload struct {
	TenantID string `json:"tenant_id"`
	SessaoID string `json:"sessao_id"`
}

// Handler processes one job payload. A returned error triggers a retry.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
	cb  *infra.CircuitBreaker
}

func NewDispatcher(rdb *redis.Client, cb *infra.CircuitBreaker) *Dispatcher {
	return &Dispatcher{rdb: rdb, cb: cb}
}

func (d *Dispatcher) EnqueueCupom(ctx context.Context, tenantID, vendaID uuid.UUID) error {
	return d.enqueue(ctx, QueueCupom, JobCupom, CupomJobPayload{TenantID: tenantID.String(), VendaID: vendaID.String()})
}

func (d *Dispatcher) EnqueueFechamento(ctx context.Context, tenantID, sessaoID uuid.UUID) error {
	return d.enqueue(ctx, QueueFechamento, JobFechamento, FechamentoJobPayload{TenantID: tenantID.String(), SessaoID: sessaoID.String()})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	encoded, err := encodeJob(jobType, payload)
	if err != nil {
		return err
	}
	push := func() error { return d.rdb.LPush(ctx, queue, encoded).Err() }
	if d.cb == nil {
		return push()
	}
	return d.cb.Execute(push)
}

func encodeJob(jobType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Job{Type: jobType, Payload: data})
}

// StartWorkerPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP, so idle workers cost no CPU.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers map[string]Handler) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, handlers)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, handlers map[string]Handler) {
	queues := []string{QueueCupom, QueueFechamento}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers map[string]Handler, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}
	attempts, err := runJob(ctx, handlers, job)
	if err != nil {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), attempts)
	}
}

// runJob dispatches job to its handler with retries and returns the number of
// attempts made.
func runJob(ctx context.Context, handlers map[string]Handler, job Job) (int, error) {
	h, ok := handlers[job.Type]
	if !ok {
		log.Error().Str("type", job.Type).Msg("no handler for job type")
		return 0, fmt.Errorf("tipo de job desconhecido: %s", job.Type)
	}
	attempts := 0
	err := withRetry(ctx, MaxJobAttempts, func(attempt int) error {
		attempts = attempt + 1
		if err := h(ctx, job.Payload); err != nil {
			log.Warn().Err(err).Str("type", job.Type).Int("attempt", attempts).Msg("job attempt failed")
			return err
		}
		return nil
	})
	if err == nil {
		log.Debug().Str("type", job.Type).Int("attempts", attempts).Msg("job processed")
	}
	return attempts, err
}

// retryBase is the first backoff step; tests shorten it.
var retryBase = time.Second

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = base, 3 = 2*base.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * retryBase
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
