// Package service wires ingestion, the scoring pipeline, profile storage and
// the async analysis queue behind the operations the HTTP API and CLI use.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/dfspersona/internal/adapters/ingest"
	"github.com/okian/dfspersona/internal/adapters/mq/queue"
	"github.com/okian/dfspersona/internal/adapters/mq/worker"
	"github.com/okian/dfspersona/internal/adapters/repository"
	"github.com/okian/dfspersona/internal/domain/dedupe"
	"github.com/okian/dfspersona/internal/domain/model"
	"github.com/okian/dfspersona/internal/domain/pipeline"
	"github.com/okian/dfspersona/internal/domain/scoring"
	"github.com/okian/dfspersona/internal/domain/types"
	"github.com/okian/dfspersona/pkg/logger"
	"github.com/okian/dfspersona/pkg/metrics"
)

const (
	defaultWorkerCount    = 4
	defaultQueueSize      = 1024
	defaultDedupeSize     = 10_000
	defaultHalfLifeDays   = 90
	defaultShutdownWindow = 30 * time.Second
)

// Service implements the operations behind the HTTP API and the CLI.
type Service struct {
	mu sync.RWMutex

	parser   *ingest.Parser
	pipeline *pipeline.Pipeline
	store    repository.Store
	deduper  dedupe.Deduper
	queue    *queue.InMemoryQueue
	pool     *worker.Pool

	workerCount    int
	queueSize      int
	dedupeSize     int
	maxUploadBytes int64
	storeDriver    string
	storeDSN       string
	halfLifeDays   float64
	now            func() time.Time

	jobHistory int
	jobs       *jobLedger
	// submitMu makes recording a digest, registering its job and enqueueing
	// it one step, so concurrent identical uploads share a job.
	submitMu sync.Mutex

	started   bool
	ownsStore bool
	cancel    context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. Parse works right away; the other operations
// need Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    defaultWorkerCount,
		queueSize:      defaultQueueSize,
		dedupeSize:     defaultDedupeSize,
		jobHistory:     defaultJobHistory,
		maxUploadBytes: ingest.DefaultMaxBytes,
		storeDriver:    repository.DriverMemory,
		halfLifeDays:   defaultHalfLifeDays,
		now:            func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.jobs = newJobLedger(s.jobHistory)
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.parser = ingest.NewParser(
		ingest.WithMaxBytes(s.maxUploadBytes),
		ingest.WithLogger(s.logger.Named("ingest")),
	)
	s.pipeline = pipeline.New(
		pipeline.WithScorer(scoring.NewScorer(
			scoring.WithClock(s.now),
			scoring.WithRecencyHalfLife(s.halfLifeDays),
		)),
	)
	return s
}

// Start opens the store and starts the worker pool. It is idempotent.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting analysis service...")

	if s.store == nil {
		store, err := repository.Open(ctx, s.storeDriver, s.storeDSN,
			repository.WithLogger(s.logger.Named("repository")))
		if err != nil {
			return fmt.Errorf("open profile store: %w", err)
		}
		s.store = store
		s.ownsStore = true
	} else if err := s.store.Init(ctx); err != nil {
		return fmt.Errorf("init profile store: %w", err)
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s, worker.WithPoolLogger(s.logger.Named("worker")))

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("jobHistory", s.jobHistory),
		logger.String("store", s.storeDriver),
	)
	return nil
}

// Stop drains queued jobs, then closes the store. Workers still need the
// store while draining, so the pool shuts down before the lock is taken.
func (s *Service) Stop() {
	s.mu.RLock()
	started, pool := s.started, s.pool
	s.mu.RUnlock()
	if !started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownWindow)
	defer cancel()
	s.logger.Info(ctx, "stopping analysis service...")

	if err := pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.cancel()
	if err := s.store.Close(); err != nil {
		s.logger.Error(ctx, "closing profile store", logger.Error(err))
	}
	if s.ownsStore {
		s.store = nil
		s.ownsStore = false
	}
	s.started = false
	s.logger.Info(ctx, "analysis service stopped")
}

// Parse analyzes an upload without persisting it.
func (s *Service) Parse(ctx context.Context, filename string, body []byte) (types.Analysis, error) {
	a, _, err := s.analyze(ctx, filename, body)
	return a, err
}

// Analyze analyzes an upload and persists the resulting profile.
func (s *Service) Analyze(ctx context.Context, filename string, body []byte) (types.Analysis, error) {
	store, err := s.activeStore()
	if err != nil {
		return types.Analysis{}, err
	}
	a, res, err := s.analyze(ctx, filename, body)
	if err != nil {
		return types.Analysis{}, err
	}

	profile := s.buildProfile(a.Platform, res)
	if err := store.Save(ctx, &profile); err != nil {
		return types.Analysis{}, fmt.Errorf("save profile: %w", err)
	}
	a.ProfileID = &profile.ID
	s.logger.Info(ctx, "profile saved",
		logger.String("profile_id", profile.ID.String()),
		logger.String("primary", string(res.Personas.Primary())),
		logger.Int("entries", len(res.Entries)))
	return a, nil
}

// Submit queues an upload for async analysis. Resubmitting a body that is
// still remembered returns the original job with duplicate set.
func (s *Service) Submit(ctx context.Context, filename string, body []byte) (job types.Job, duplicate bool, err error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return types.Job{}, false, ErrNotStarted
	}
	if err := checkUpload(filename, body, s.maxUploadBytes); err != nil {
		metrics.RecordUpload(metrics.UploadRejected)
		return types.Job{}, false, err
	}

	digest := dedupe.Digest(body)

	s.submitMu.Lock()
	defer s.submitMu.Unlock()

	id, seen := s.deduper.SeenOrRecord(ctx, digest, uuid.NewString())
	if seen {
		if existing, ok := s.jobs.get(id); ok {
			metrics.RecordUpload(metrics.UploadDuplicate)
			s.logger.Debug(ctx, "duplicate upload", logger.String("job_id", id))
			return existing, true, nil
		}
		// The job record was evicted; treat the body as new.
		s.deduper.Forget(ctx, digest)
		id, _ = s.deduper.SeenOrRecord(ctx, digest, uuid.NewString())
	}

	submitted := s.now()
	job = types.Job{ID: id, Filename: filename, State: types.JobQueued, SubmittedAt: submitted}
	record := job
	s.jobs.put(&record)

	err = s.queue.Enqueue(ctx, queue.Job{
		ID:          id,
		Filename:    filename,
		Payload:     bytes.Clone(body),
		Digest:      digest,
		SubmittedAt: submitted,
	})
	if err != nil {
		s.deduper.Forget(ctx, digest)
		s.jobs.drop(id)
		metrics.RecordUpload(metrics.UploadRejected)
		if errors.Is(err, queue.ErrFull) || errors.Is(err, queue.ErrClosed) {
			return types.Job{}, false, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return types.Job{}, false, err
	}

	metrics.RecordUpload(metrics.UploadAccepted)
	return job, false, nil
}

// Process runs one queued job. It satisfies worker.Processor.
func (s *Service) Process(ctx context.Context, j queue.Job) error { //nolint:gocritic // jobs travel by value
	started := s.now()
	s.jobs.update(j.ID, func(job *types.Job) {
		job.State = types.JobProcessing
		job.StartedAt = &started
	})

	a, err := s.Analyze(ctx, j.Filename, j.Payload)
	finished := s.now()
	s.jobs.update(j.ID, func(job *types.Job) {
		job.FinishedAt = &finished
		if err != nil {
			job.State = types.JobFailed
			job.Error = err.Error()
			return
		}
		job.State = types.JobDone
		job.ProfileID = a.ProfileID
		job.Warnings = a.Warnings
	})
	return err
}

// Job returns a snapshot of an async job.
func (s *Service) Job(id string) (types.Job, error) {
	job, ok := s.jobs.get(id)
	if !ok {
		return types.Job{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return job, nil
}

// Profile returns a stored profile.
func (s *Service) Profile(ctx context.Context, id uuid.UUID) (model.UserProfile, error) {
	store, err := s.activeStore()
	if err != nil {
		return model.UserProfile{}, err
	}
	return store.Get(ctx, id)
}

// DeleteProfile removes a stored profile and reports whether it existed.
func (s *Service) DeleteProfile(ctx context.Context, id uuid.UUID) (bool, error) {
	store, err := s.activeStore()
	if err != nil {
		return false, err
	}
	return store.Delete(ctx, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		Started:     s.started,
		StoreDriver: s.storeDriver,
		Workers:     s.workerCount,
		QueueSize:   s.queueSize,
		DedupeSize:  s.dedupeSize,
		Jobs:        make(map[types.JobState]int),
	}
	if !s.started {
		return stats
	}

	stats.QueueLength = s.queue.Len()
	stats.Digests = s.deduper.Size()
	if n, err := s.store.Count(ctx); err == nil {
		stats.Profiles = n
		metrics.UpdateStoredProfiles(n)
	}
	stats.Jobs = s.jobs.countByState()

	metrics.UpdateQueue(stats.QueueLength, s.queueSize)
	metrics.UpdateDedupeSize(stats.Digests)
	return stats
}

func (s *Service) analyze(ctx context.Context, filename string, body []byte) (types.Analysis, pipeline.Result, error) {
	if err := checkUpload(filename, body, s.maxUploadBytes); err != nil {
		metrics.RecordAnalysis(metrics.AnalysisFailed)
		return types.Analysis{}, pipeline.Result{}, err
	}

	parsed, err := s.parser.Parse(ctx, bytes.NewReader(body))
	if err != nil {
		metrics.RecordAnalysis(metrics.AnalysisFailed)
		return types.Analysis{}, pipeline.Result{}, err
	}

	start := time.Now()
	res, err := s.pipeline.Run(parsed.Entries)
	metrics.RecordPipelineDuration(time.Since(start))
	if err != nil {
		if errors.Is(err, pipeline.ErrNoEntries) {
			metrics.RecordAnalysis(metrics.AnalysisNoEntries)
		} else {
			metrics.RecordAnalysis(metrics.AnalysisFailed)
		}
		return types.Analysis{}, pipeline.Result{}, err
	}

	metrics.RecordAnalysis(metrics.AnalysisSuccess)
	metrics.RecordPersona(string(res.Personas.Primary()), res.Personas.IsHybrid())

	a := types.NewAnalysis(parsed.Platform, res, parsed.Warnings)
	a.Filename = filename
	return a, res, nil
}

func (s *Service) buildProfile(platform model.Platform, res pipeline.Result) model.UserProfile { //nolint:gocritic // read once
	p := model.UserProfile{
		TotalEntries: len(res.Entries),
		Platforms:    []model.Platform{platform},
		Metrics:      res.Metrics,
		Personas:     res.Personas,
		Weights:      res.Weights,
		LastUpload:   s.now(),
		Confidence:   res.Metrics.ConfidenceScore,
	}
	for i, e := range res.Entries {
		if i == 0 || e.Date.Before(p.DateRangeStart) {
			p.DateRangeStart = e.Date
		}
		if i == 0 || e.Date.After(p.DateRangeEnd) {
			p.DateRangeEnd = e.Date
		}
	}
	return p
}

func (s *Service) activeStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// checkUpload rejects non-CSV names and oversized bodies before parsing.
func checkUpload(filename string, body []byte, limit int64) error {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return fmt.Errorf("%w: %q", ErrNotCSV, filename)
	}
	if int64(len(body)) > limit {
		return fmt.Errorf("%w: %d bytes, limit is %d", ingest.ErrFileTooLarge, len(body), limit)
	}
	return nil
}
