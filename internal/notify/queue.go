package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ifb/ocorrencias-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// JobKind selects the delivery channel of a job.
type JobKind string

const (
	JobEmail JobKind = "email"
	JobSMS   JobKind = "sms"
)

// Job is one queued delivery.
type Job struct {
	ID        string    `json:"id"`
	Kind      JobKind   `json:"kind"`
	Email     *Email    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Body      string    `json:"body,omitempty"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"last_error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Enqueuer accepts deliveries for asynchronous processing.
type Enqueuer interface {
	EnqueueEmail(ctx context.Context, msg Email) error
	EnqueueSMS(ctx context.Context, phone, body string) error
}

// Queue pushes jobs to the Redis list drained by the delivery worker.
type Queue struct {
	rdb *redis.Client
}

func NewQueue(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb}
}

func (q *Queue) EnqueueEmail(ctx context.Context, msg Email) error {
	if len(msg.To) == 0 {
		return nil
	}
	return q.Push(ctx, &Job{Kind: JobEmail, Email: &msg})
}

func (q *Queue) EnqueueSMS(ctx context.Context, phone, body string) error {
	if phone == "" {
		return nil
	}
	return q.Push(ctx, &Job{Kind: JobSMS, Phone: phone, Body: body})
}

// Push appends job to the delivery queue, filling its id and timestamp.
func (q *Queue) Push(ctx context.Context, job *Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	return q.rdb.RPush(ctx, config.WorkerKey.DeliveryQueue, raw).Err()
}

// ErrUnknownJob is returned for a job kind the dispatcher cannot handle.
var ErrUnknownJob = errors.New("unknown delivery job")

// Dispatcher delivers a job through the matching channel.
type Dispatcher struct {
	mailer Mailer
	sms    SMSSender
}

func NewDispatcher(mailer Mailer, sms SMSSender) *Dispatcher {
	return &Dispatcher{mailer: mailer, sms: sms}
}

func (d *Dispatcher) Deliver(ctx context.Context, job *Job) error {
	switch job.Kind {
	case JobEmail:
		if job.Email == nil {
			return ErrUnknownJob
		}
		return d.mailer.Send(ctx, *job.Email)
	case JobSMS:
		if d.sms == nil {
			return ErrNoSMSProvider
		}
		return d.sms.Send(ctx, job.Phone, job.Body)
	}
	return fmt.Errorf("%w: %q", ErrUnknownJob, job.Kind)
}
