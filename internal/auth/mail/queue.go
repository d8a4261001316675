package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
	"github.com/aussiebroadwan/siteauth/internal/auth/metrics"
	"github.com/aussiebroadwan/siteauth/pkg/slogx"
)

// QueueOptions size a Queue. Zero values pick the defaults.
type QueueOptions struct {
	Workers     int
	Size        int
	SendTimeout time.Duration
}

type job struct {
	msg domain.Message
	log *slog.Logger
}

// Queue is a bounded in-memory Dispatcher drained by a fixed worker pool.
// Dispatch never blocks; a full queue drops the message with a warning.
type Queue struct {
	Mailer  Mailer
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	timeout time.Duration
	workers int
	jobs    chan job

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewQueue(m Mailer, logger *slog.Logger, mx *metrics.Metrics, opts QueueOptions) *Queue {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Size <= 0 {
		opts.Size = 256
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 30 * time.Second
	}
	return &Queue{
		Mailer:  m,
		Logger:  logger,
		Metrics: mx,
		timeout: opts.SendTimeout,
		workers: opts.Workers,
		jobs:    make(chan job, opts.Size),
	}
}

// Start launches the workers.
func (q *Queue) Start() {
	for range q.workers {
		q.wg.Add(1)
		go q.work()
	}
	q.Logger.Info("mail queue started", "workers", q.workers, "size", cap(q.jobs))
}

// Stop refuses new messages and blocks until everything queued is delivered.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	q.Logger.Info("mail queue stopped")
}

func (q *Queue) Dispatch(ctx context.Context, msg domain.Message) {
	log := loggerFrom(ctx, q.Logger)

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.stopped {
		log.Warn("mail queue stopped, dropping message", slog.String("kind", msg.Kind), slog.String("to", msg.To))
		q.Metrics.Mail(msg.Kind, "dropped")
		return
	}

	select {
	case q.jobs <- job{msg: msg, log: log}:
		q.Metrics.QueueDepth(len(q.jobs))
	default:
		log.Warn("mail queue full, dropping message", slog.String("kind", msg.Kind), slog.String("to", msg.To))
		q.Metrics.Mail(msg.Kind, "dropped")
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for j := range q.jobs {
		q.Metrics.QueueDepth(len(q.jobs))
		// The request that queued the message is gone by now.
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		deliver(ctx, q.Mailer, q.Metrics, j.log, j.msg)
		cancel()
	}
}

// loggerFrom prefers the request logger so queued deliveries keep the req_id.
func loggerFrom(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l := slogx.FromContext(ctx); l != slog.Default() || fallback == nil {
		return l
	}
	return fallback
}
