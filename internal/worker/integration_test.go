//go:build integration

package worker

// Run with: go test -tags integration ./internal/worker/... -v

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"deliverypdv/internal/infra"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisPool_ProcessaEEnviaParaDLQ(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(context.Background()) })
	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	vendaID := uuid.New()
	var cupons atomic.Int32
	handlers := map[string]Handler{
		JobCupom: func(_ context.Context, raw json.RawMessage) error {
			var p CupomJobPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return err
			}
			if p.VendaID == vendaID.String() {
				cupons.Add(1)
			}
			return nil
		},
		JobFechamento: func(context.Context, json.RawMessage) error {
			return errors.New("disco cheio")
		},
	}
	StartWorkerPool(ctx, rdb, 2, handlers)

	d := NewDispatcher(rdb, infra.NewCircuitBreaker(infra.DefaultCBConfig("redis-jobs")))
	require.NoError(t, d.EnqueueCupom(ctx, uuid.New(), vendaID))
	require.NoError(t, d.EnqueueFechamento(ctx, uuid.New(), uuid.New()))

	assert.Eventually(t, func() bool { return cupons.Load() == 1 }, 10*time.Second, 50*time.Millisecond)
	assert.Eventually(t, func() bool {
		n, err := DLQLengths(ctx, rdb)
		return err == nil && n[QueueFechamento] == 1
	}, 10*time.Second, 50*time.Millisecond)

	raw, err := rdb.LIndex(ctx, DLQPrefix+QueueFechamento, 0).Result()
	require.NoError(t, err)
	var entry DLQEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entry))
	assert.Equal(t, JobFechamento, entry.JobType)
	assert.Equal(t, MaxJobAttempts, entry.Attempts)
	assert.Equal(t, "disco cheio", entry.Reason)
}
