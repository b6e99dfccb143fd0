package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/ifb/ocorrencias-backend/internal/notify"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memList struct {
	mu    sync.Mutex
	lists map[string][]string
}

func newMemList() *memList { return &memList{lists: map[string][]string{}} }

func (m *memList) BLPop(ctx context.Context, _ time.Duration, keys ...string) *redis.StringSliceCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		if items := m.lists[k]; len(items) > 0 {
			m.lists[k] = items[1:]
			return redis.NewStringSliceResult([]string{k, items[0]}, nil)
		}
	}
	if err := ctx.Err(); err != nil {
		return redis.NewStringSliceResult(nil, err)
	}
	time.Sleep(time.Millisecond)
	return redis.NewStringSliceResult(nil, redis.Nil)
}

func (m *memList) RPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range values {
		switch s := v.(type) {
		case []byte:
			m.lists[key] = append(m.lists[key], string(s))
		default:
			m.lists[key] = append(m.lists[key], fmt.Sprint(s))
		}
	}
	return redis.NewIntResult(int64(len(m.lists[key])), nil)
}

type stubDeliverer struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (d *stubDeliverer) Deliver(context.Context, *notify.Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	return d.err
}

func (d *stubDeliverer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func encodeJob(t *testing.T, job notify.Job) string {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return string(b)
}

func decodeJob(t *testing.T, raw string) notify.Job {
	t.Helper()
	var job notify.Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	return job
}

func TestDeliveryWorker_SuccessConsumesJob(t *testing.T) {
	rdb := newMemList()
	d := &stubDeliverer{}
	w := NewDeliveryWorker(rdb, d, 3, zerolog.Nop())

	w.process(context.Background(), encodeJob(t, notify.Job{ID: "j1", Kind: notify.JobSMS, Phone: "+5561999990000"}))

	assert.Equal(t, 1, d.calls)
	assert.Empty(t, rdb.lists[config.WorkerKey.DeliveryQueue])
	assert.Empty(t, rdb.lists[config.WorkerKey.DeliveryDeadQueue])
}

func TestDeliveryWorker_FailureRequeuesUntilDead(t *testing.T) {
	rdb := newMemList()
	d := &stubDeliverer{err: errors.New("smtp down")}
	w := NewDeliveryWorker(rdb, d, 2, zerolog.Nop())

	w.process(context.Background(), encodeJob(t, notify.Job{ID: "j1", Kind: notify.JobEmail}))
	require.Len(t, rdb.lists[config.WorkerKey.DeliveryQueue], 1)
	job := decodeJob(t, rdb.lists[config.WorkerKey.DeliveryQueue][0])
	assert.Equal(t, 1, job.Attempts)
	assert.Equal(t, "smtp down", job.LastError)

	raw := rdb.lists[config.WorkerKey.DeliveryQueue][0]
	rdb.lists[config.WorkerKey.DeliveryQueue] = nil
	w.process(context.Background(), raw)

	assert.Empty(t, rdb.lists[config.WorkerKey.DeliveryQueue])
	require.Len(t, rdb.lists[config.WorkerKey.DeliveryDeadQueue], 1)
	assert.Equal(t, 2, decodeJob(t, rdb.lists[config.WorkerKey.DeliveryDeadQueue][0]).Attempts)
}

func TestDeliveryWorker_InvalidPayloadGoesToDeadQueue(t *testing.T) {
	rdb := newMemList()
	d := &stubDeliverer{}
	w := NewDeliveryWorker(rdb, d, 3, zerolog.Nop())

	w.process(context.Background(), "{not json")

	assert.Zero(t, d.calls)
	assert.Equal(t, []string{"{not json"}, rdb.lists[config.WorkerKey.DeliveryDeadQueue])
}

func TestDeliveryWorker_StartDrainsQueueAndStops(t *testing.T) {
	rdb := newMemList()
	rdb.lists[config.WorkerKey.DeliveryQueue] = []string{
		encodeJob(t, notify.Job{ID: "a", Kind: notify.JobSMS}),
		encodeJob(t, notify.Job{ID: "b", Kind: notify.JobSMS}),
	}
	d := &stubDeliverer{}
	w := NewDeliveryWorker(rdb, d, 3, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		select {
		case <-done:
			return true
		default:
		}
		if d.count() == 2 {
			cancel()
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, d.count())
}
