package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/memlane/core"
	"github.com/poiesic/memlane/enrichment"
	"github.com/poiesic/memlane/storage"
)

const (
	DefaultWorkers   = 2
	DefaultQueueSize = 64
)

// EnrichmentJob is one pending background enrichment.
// Quick is the placeholder stored at capture time; it is written back if the job fails.
type EnrichmentJob struct {
	ItemId    core.ID
	UserId    core.ID
	Text      string
	TitleHint string
	Quick     core.Enrichment
}

// Handle tracks a submitted job.
type Handle struct {
	ID     uuid.UUID
	ItemId core.ID

	done    chan struct{}
	outcome enrichment.Outcome
}

// Done is closed once the job's result has been written.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Outcome returns the enrichment outcome. Only meaningful after Done is closed.
func (h *Handle) Outcome() enrichment.Outcome {
	<-h.done
	return h.outcome
}

// SchedulerConfig configures a Scheduler. Zero values take the defaults.
type SchedulerConfig struct {
	Workers   int
	QueueSize int
	// OnComplete runs after each job's result is written.
	OnComplete func(userID core.ID)
	Logger     *slog.Logger
}

type task struct {
	job    EnrichmentJob
	handle *Handle
}

// Scheduler runs enrichment jobs in the background on a bounded worker pool.
// Submitters never block: when the queue is full the job is rejected.
type Scheduler struct {
	repo       storage.ItemRepository
	enricher   enrichment.Enricher
	pool       *ants.Pool
	queue      chan *task
	onComplete func(core.ID)
	logger     *slog.Logger

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
	dispatch chan struct{}
}

// NewScheduler creates a scheduler and starts its dispatcher.
func NewScheduler(repo storage.ItemRepository, enricher enrichment.Enricher, cfg SchedulerConfig) (*Scheduler, error) {
	if repo == nil {
		return nil, ErrItemRepositoryRequired
	}
	if enricher == nil {
		return nil, ErrEnricherRequired
	}
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = DefaultQueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "scheduler")

	pool, err := ants.NewPool(cfg.Workers, ants.WithLogger(poolLogger{logger}))
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		repo:       repo,
		enricher:   enricher,
		pool:       pool,
		queue:      make(chan *task, cfg.QueueSize),
		onComplete: cfg.OnComplete,
		logger:     logger,
		dispatch:   make(chan struct{}),
	}
	go s.run()
	return s, nil
}

// Submit enqueues a job. It returns ErrQueueFull when the queue is at capacity
// and ErrSchedulerClosed after Close. A job without a user or item panics.
func (s *Scheduler) Submit(job EnrichmentJob) (*Handle, error) {
	if job.UserId == 0 || job.ItemId == 0 {
		panic(fmt.Sprintf("ingestion: enrichment job needs user and item ids (user=%d item=%d)", job.UserId, job.ItemId))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrSchedulerClosed
	}

	h := &Handle{ID: uuid.New(), ItemId: job.ItemId, done: make(chan struct{})}
	s.inflight.Add(1)
	select {
	case s.queue <- &task{job: job, handle: h}:
		s.logger.Debug("enrichment job queued", "job", h.ID, "item", job.ItemId)
		return h, nil
	default:
		s.inflight.Done()
		s.logger.Warn("enrichment queue full, rejecting job", "item", job.ItemId)
		return nil, ErrQueueFull
	}
}

// Pending returns the number of jobs waiting for a worker.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// Close stops intake and waits for queued and running jobs to finish or for ctx to end.
func (s *Scheduler) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		<-s.dispatch
		s.inflight.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		s.pool.Release()
		return nil
	case <-ctx.Done():
		s.pool.Release()
		return ctx.Err()
	}
}

func (s *Scheduler) run() {
	defer close(s.dispatch)
	for t := range s.queue {
		// blocks while every worker is busy
		if err := s.pool.Submit(func() { s.execute(t) }); err != nil {
			s.logger.Error("error submitting enrichment job", "item", t.job.ItemId, "err", err)
			t.handle.outcome = enrichment.Outcome{Kind: enrichment.Failed, Result: t.job.Quick, Err: err}
			close(t.handle.done)
			s.inflight.Done()
		}
	}
}

func (s *Scheduler) execute(t *task) {
	defer s.inflight.Done()
	defer close(t.handle.done)

	job := t.job
	outcome := s.enrich(job)
	t.handle.outcome = outcome

	result, errText := outcome.Resolve(job.Quick)
	if _, err := s.repo.UpdateItemEnrichment(context.Background(), job.UserId, job.ItemId, result, errText); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Info("item removed before enrichment finished", "item", job.ItemId)
		} else {
			s.logger.Error("error writing enrichment", "item", job.ItemId, "err", err)
		}
	} else {
		s.logger.Debug("enrichment written", "job", t.handle.ID, "item", job.ItemId, "outcome", outcome.Kind, "reasons", outcome.Reasons)
	}

	if s.onComplete != nil {
		s.onComplete(job.UserId)
	}
}

// enrich runs the enricher, converting a panic into a Failed outcome.
func (s *Scheduler) enrich(job EnrichmentJob) (outcome enrichment.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("enricher panicked", "item", job.ItemId, "panic", r)
			outcome = enrichment.Outcome{
				Kind:   enrichment.Failed,
				Result: job.Quick,
				Err:    fmt.Errorf("%w: %v", ErrEnrichmentPanicked, r),
			}
		}
	}()
	return s.enricher.Enrich(context.Background(), job.Text, job.TitleHint)
}

// poolLogger routes ants' internal messages through slog.
type poolLogger struct {
	logger *slog.Logger
}

func (l poolLogger) Printf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}
