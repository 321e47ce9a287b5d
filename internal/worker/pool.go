package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	QueueEmail = "jobs:email"

	// MaxJobAttempts is how many times a job runs before going to the DLQ.
	MaxJobAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handler processes the payload of one job. A returned error is retried.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueEmail, "receipt_email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	size     int
	handlers map[string]Handler
	backoff  func(attempt int) time.Duration
}

func NewPool(rdb *redis.Client, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		rdb:      rdb,
		size:     size,
		handlers: make(map[string]Handler),
		backoff:  func(attempt int) time.Duration { return time.Duration(1<<uint(attempt-1)) * time.Second },
	}
}

// Handle registers h for queue.
func (p *Pool) Handle(queue string, h Handler) { p.handlers[queue] = h }

// Run blocks until ctx is cancelled and every worker has returned.
func (p *Pool) Run(ctx context.Context) error {
	queues := make([]string, 0, len(p.handlers))
	for q := range p.handlers {
		queues = append(queues, q)
	}
	if len(queues) == 0 {
		<-ctx.Done()
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.size; i++ {
		id := i
		g.Go(func() error {
			p.runWorker(ctx, id, queues)
			return nil
		})
	}
	log.Info().Int("workers", p.size).Strs("queues", queues).Msg("worker pool started")
	return g.Wait()
}

func (p *Pool) runWorker(ctx context.Context, id int, queues []string) {
	for {
		if ctx.Err() != nil {
			log.Debug().Int("worker", id).Msg("worker shutting down")
			return
		}
		// Blocking pop; waits up to 5s then loops to check ctx
		result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("BRPOP failed")
				sleepCtx(ctx, time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		p.process(ctx, result[0], result[1])
	}
}

// process runs one raw job with retries and parks it in the DLQ when every
// attempt fails.
func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		quoted, _ := json.Marshal(raw)
		SendToDLQ(ctx, p.rdb, queue, "unknown", quoted, "malformed job", 0)
		infra.JobsProcessedTotal.WithLabelValues(queue, "malformed").Inc()
		return
	}
	h, ok := p.handlers[queue]
	if !ok {
		log.Error().Str("queue", queue).Msg("no handler registered")
		return
	}

	attempts := 0
	err := withRetry(ctx, MaxJobAttempts, p.backoff, func(attempt int) error {
		attempts = attempt + 1
		return h.Process(ctx, job.Payload)
	})
	if err != nil && ctx.Err() != nil {
		// Shutdown interrupted the retries; hand the job back to the queue.
		if perr := p.rdb.LPush(context.Background(), queue, raw).Err(); perr != nil {
			log.Error().Err(perr).Str("queue", queue).Msg("requeue on shutdown failed")
		}
		return
	}
	if err != nil {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), attempts)
		infra.JobsProcessedTotal.WithLabelValues(queue, "dead").Inc()
		return
	}
	infra.JobsProcessedTotal.WithLabelValues(queue, "ok").Inc()
	log.Info().Str("type", job.Type).Str("queue", queue).Int("attempts", attempts).Msg("job processed")
}

// withRetry calls fn up to maxAttempts times, sleeping backoff(i) before
// attempt i (1-based retry count).
func withRetry(ctx context.Context, maxAttempts int, backoff func(int) time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff(i)):
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

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
