package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/ifb/ocorrencias-backend/internal/notify"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const DeliveryPollTimeout = 1 * time.Second

// listClient is the part of the Redis client the worker uses.
type listClient interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

type deliverer interface {
	Deliver(ctx context.Context, job *notify.Job) error
}

// DeliveryWorker drains the notification queue. A failed job goes back to the
// tail of the queue until it reaches maxAttempts, then to the dead queue.
type DeliveryWorker struct {
	rdb         listClient
	dispatcher  deliverer
	maxAttempts int
	log         zerolog.Logger
}

func NewDeliveryWorker(rdb listClient, dispatcher deliverer, maxAttempts int, log zerolog.Logger) *DeliveryWorker {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &DeliveryWorker{
		rdb:         rdb,
		dispatcher:  dispatcher,
		maxAttempts: maxAttempts,
		log:         log.With().Str("component", "delivery_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop
// ----------------------------------------------------------------

func (w *DeliveryWorker) Start(ctx context.Context) {
	w.log.Info().Msg("DeliveryWorker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("DeliveryWorker stopped")
			return

		default:
			item, err := w.rdb.BLPop(ctx, DeliveryPollTimeout, config.WorkerKey.DeliveryQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
					time.Sleep(DeliveryPollTimeout)
				}
				continue
			}

			if len(item) < 2 {
				continue
			}
			w.process(ctx, item[1])
		}
	}
}

// ----------------------------------------------------------------
// Single job
// ----------------------------------------------------------------

func (w *DeliveryWorker) process(ctx context.Context, raw string) {
	var job notify.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		w.log.Error().Err(err).Msg("Invalid JSON payload, moving to dead queue")
		w.rdb.RPush(ctx, config.WorkerKey.DeliveryDeadQueue, raw)
		return
	}

	err := w.dispatcher.Deliver(ctx, &job)
	if err == nil {
		w.log.Debug().Str("job_id", job.ID).Str("kind", string(job.Kind)).Msg("Delivered")
		return
	}

	job.Attempts++
	job.LastError = err.Error()
	queue := config.WorkerKey.DeliveryQueue
	if job.Attempts >= w.maxAttempts {
		queue = config.WorkerKey.DeliveryDeadQueue
		w.log.Error().Err(err).Str("job_id", job.ID).Int("attempts", job.Attempts).Msg("Delivery failed, giving up")
	} else {
		w.log.Warn().Err(err).Str("job_id", job.ID).Int("attempts", job.Attempts).Msg("Delivery failed, requeueing")
	}

	encoded, mErr := json.Marshal(&job)
	if mErr != nil {
		w.log.Error().Err(mErr).Str("job_id", job.ID).Msg("Failed to encode job")
		return
	}
	if pErr := w.rdb.RPush(ctx, queue, encoded).Err(); pErr != nil {
		w.log.Error().Err(pErr).Str("job_id", job.ID).Msg("Failed to requeue job")
	}
}
