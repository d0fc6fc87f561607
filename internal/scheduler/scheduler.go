package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/triplet-forecast/internal/logger"
	"github.com/yourusername/triplet-forecast/internal/metrics"
	"github.com/yourusername/triplet-forecast/internal/service"
)

// BacktestJobName is the job registered by ScheduleBacktest
const BacktestJobName = "backtest"

// Job is one unit of scheduled work
type Job func(ctx context.Context) error

// JobStatus reports the last outcome of a job
type JobStatus struct {
	Name      string    `json:"name"`
	Spec      string    `json:"spec"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	Runs      int       `json:"runs"`
	Failures  int       `json:"failures"`
	Next      time.Time `json:"next,omitempty"`
}

type entry struct {
	id     cron.EntryID
	job    Job
	status JobStatus
}

// Scheduler runs periodic backtests and other jobs on cron expressions
type Scheduler struct {
	cron       *cron.Cron
	logger     *logrus.Logger
	audit      *logger.AuditLogger
	mu         sync.RWMutex
	isRunning  bool
	jobs       map[string]*entry
	jobTimeout time.Duration

	// ctx parents every cron-triggered run and is cancelled by Stop
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a new scheduler; jobTimeout bounds each run
func NewScheduler(log *logrus.Logger, jobTimeout time.Duration) *Scheduler {
	if log == nil {
		log = logrus.New()
	}
	if jobTimeout <= 0 {
		jobTimeout = time.Hour
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log))),
		),
		logger:     log,
		audit:      logger.NewAuditLogger(log),
		jobs:       make(map[string]*entry),
		jobTimeout: jobTimeout,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// ScheduleJob registers job under name on a standard 5-field cron spec
func (s *Scheduler) ScheduleJob(name, spec string, job Job) error {
	if job == nil {
		return fmt.Errorf("job %q has no function", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q is already scheduled", name)
	}

	id, err := s.cron.AddFunc(spec, func() {
		s.mu.RLock()
		parent := s.ctx
		s.mu.RUnlock()
		ctx, cancel := context.WithTimeout(parent, s.jobTimeout)
		defer cancel()
		_ = s.RunNow(ctx, name)
	})
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", name, err)
	}

	s.jobs[name] = &entry{id: id, job: job, status: JobStatus{Name: name, Spec: spec}}
	s.logger.WithFields(logrus.Fields{
		"job":  name,
		"spec": spec,
	}).Info("Scheduled job")
	return nil
}

// ScheduleBacktest re-runs the backtest for groupings on spec
func (s *Scheduler) ScheduleBacktest(svc *service.BacktestService, spec string, groupings []string) error {
	if svc == nil {
		return fmt.Errorf("backtest service is required")
	}
	return s.ScheduleJob(BacktestJobName, spec, func(ctx context.Context) error {
		outcome, err := svc.Run(ctx, groupings)
		if err != nil {
			return err
		}
		s.logger.WithFields(logrus.Fields{
			"runs":    len(outcome.Results),
			"skipped": len(outcome.Skipped),
			"best":    outcome.Aggregate.Best,
		}).Info("Scheduled backtest completed")
		return nil
	})
}

// RunNow executes a registered job immediately and records its outcome
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.RLock()
	e, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("job %q is not scheduled", name)
	}

	triggered := time.Now().UTC()
	s.logger.WithField("job", name).Info("Starting scheduled job")
	err := e.job(ctx)
	success := err == nil

	s.mu.Lock()
	e.status.LastRun = triggered
	e.status.Runs++
	if success {
		e.status.LastError = ""
	} else {
		e.status.Failures++
		e.status.LastError = err.Error()
	}
	s.mu.Unlock()

	metrics.RecordScheduledJob(name, success)
	s.audit.LogScheduledRun(name, triggered, success)
	if err != nil {
		s.logger.WithError(err).WithField("job", name).Error("Scheduled job failed")
		return fmt.Errorf("job %s: %w", name, err)
	}
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	if s.ctx.Err() != nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}
	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobs)).Info("Scheduler started")
	return nil
}

// Stop cancels running jobs and waits for them, giving up when ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	stopped := s.cron.Stop()
	s.cancel()
	s.mu.Unlock()

	select {
	case <-stopped.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the earliest upcoming run of any job
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}
	next := time.Time{}
	for _, e := range s.jobs {
		ce := s.cron.Entry(e.id)
		if ce.Valid() && (next.IsZero() || ce.Next.Before(next)) {
			next = ce.Next
		}
	}
	return next
}

// Status returns every job's last outcome, ordered by name
func (s *Scheduler) Status() []JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]JobStatus, 0, len(s.jobs))
	for _, e := range s.jobs {
		st := e.status
		if ce := s.cron.Entry(e.id); ce.Valid() {
			st.Next = ce.Next
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Check fails when the latest run of any job failed
func (s *Scheduler) Check(ctx context.Context) error {
	for _, st := range s.Status() {
		if st.LastError != "" {
			return fmt.Errorf("job %s failed at %s: %s", st.Name, st.LastRun.Format(time.RFC3339), st.LastError)
		}
	}
	return nil
}

// RemoveJob removes a scheduled job
func (s *Scheduler) RemoveJob(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot remove job while scheduler is running")
	}
	e, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("job %q is not scheduled", name)
	}
	s.cron.Remove(e.id)
	delete(s.jobs, name)
	s.logger.WithField("job", name).Info("Removed job")
	return nil
}
