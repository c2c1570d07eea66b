// Package scheduler runs periodic maintenance jobs such as the expiry scan.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/labstock/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// JobFunc is the work of one run.
type JobFunc func(ctx context.Context) error

// Job is a named function run every Interval. Runs of the same job never overlap.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Run      JobFunc
}

// JobStatus is a snapshot of a job's last run.
type JobStatus struct {
	Name        string        `json:"name"`
	Running     bool          `json:"running"`
	Runs        int64         `json:"runs"`
	Failures    int64         `json:"failures"`
	LastStarted time.Time     `json:"last_started,omitempty"`
	LastElapsed time.Duration `json:"last_elapsed"`
	LastError   string        `json:"last_error,omitempty"`
}

type jobState struct {
	job    Job
	mu     sync.Mutex
	status JobStatus
}

// Scheduler owns a set of interval jobs.
type Scheduler struct {
	runOnStart bool
	logger     *zap.Logger

	mu      sync.Mutex
	jobs    map[string]*jobState
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// New creates a scheduler from the scheduler section of the config.
func New(cfg config.SchedulerConfig, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		runOnStart: cfg.RunOnStart,
		logger:     logger.Named("scheduler"),
		jobs:       make(map[string]*jobState),
	}
}

// Register adds a job. Jobs registered after Start only run through RunNow.
func (s *Scheduler) Register(job Job) error {
	if job.Name == "" || job.Run == nil || job.Interval <= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidJob, job.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name] = &jobState{job: job, status: JobStatus{Name: job.Name}}
	return nil
}

// Start launches one ticker goroutine per job.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for _, st := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, st)
	}
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop cancels the loops and waits for running jobs, or returns when ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) loop(ctx context.Context, st *jobState) {
	defer s.wg.Done()

	if s.runOnStart {
		_ = s.execute(ctx, st)
	}
	ticker := time.NewTicker(st.job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.execute(ctx, st)
		}
	}
}

// RunNow runs the named job synchronously, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	st, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	return s.execute(ctx, st)
}

func (s *Scheduler) execute(ctx context.Context, st *jobState) error {
	st.mu.Lock()
	if st.status.Running {
		st.mu.Unlock()
		s.logger.Debug("Skipping overlapping run", zap.String("job", st.job.Name))
		return ErrJobRunning
	}
	st.status.Running = true
	st.status.LastStarted = time.Now()
	st.mu.Unlock()

	if st.job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, st.job.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := s.safeRun(ctx, st.job.Run)
	elapsed := time.Since(start)

	st.mu.Lock()
	st.status.Running = false
	st.status.Runs++
	st.status.LastElapsed = elapsed
	st.status.LastError = ""
	if err != nil {
		st.status.Failures++
		st.status.LastError = err.Error()
	}
	st.mu.Unlock()

	if err != nil {
		s.logger.Error("Job failed", zap.String("job", st.job.Name), zap.Duration("elapsed", elapsed), zap.Error(err))
		return err
	}
	s.logger.Debug("Job finished", zap.String("job", st.job.Name), zap.Duration("elapsed", elapsed))
	return nil
}

func (s *Scheduler) safeRun(ctx context.Context, fn JobFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return fn(ctx)
}

// Status returns a snapshot of every job.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	states := make([]*jobState, 0, len(s.jobs))
	for _, st := range s.jobs {
		states = append(states, st)
	}
	s.mu.Unlock()

	out := make([]JobStatus, 0, len(states))
	for _, st := range states {
		st.mu.Lock()
		out = append(out, st.status)
		st.mu.Unlock()
	}
	return out
}
