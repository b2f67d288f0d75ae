// Package schedule runs named periodic jobs bound to the application lifecycle.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/JaimeStill/zeroecho/pkg/lifecycle"
)

// Job is a unit of periodic work. The context is cancelled on shutdown.
type Job func(ctx context.Context)

// System registers cron jobs and starts them with the lifecycle.
type System interface {
	// Add registers job under spec. An empty spec disables the job.
	Add(name, spec string, job Job) error
	Jobs() []string
	Start(lc *lifecycle.Coordinator) error
}

type scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu   sync.Mutex
	ctx  context.Context
	jobs []string
}

// New creates a scheduler. Jobs run with overlapping runs of the same job skipped.
func New(logger *slog.Logger) System {
	return &scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger.With("system", "schedule"),
		ctx:    context.Background(),
	}
}

func (s *scheduler) Add(name, spec string, job Job) error {
	if spec == "" {
		s.logger.Info("job disabled", "job", name)
		return nil
	}

	_, err := s.cron.AddFunc(spec, func() {
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()

		s.logger.Debug("job started", "job", name)
		job(ctx)
		s.logger.Debug("job finished", "job", name)
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}

	s.mu.Lock()
	s.jobs = append(s.jobs, name)
	s.mu.Unlock()

	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

func (s *scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.jobs...)
}

func (s *scheduler) Start(lc *lifecycle.Coordinator) error {
	s.mu.Lock()
	s.ctx = lc.Context()
	s.mu.Unlock()

	lc.OnStartup(func() {
		s.cron.Start()
		s.logger.Info("scheduler started", "jobs", len(s.Jobs()))
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-s.cron.Stop().Done()
		s.logger.Info("scheduler stopped")
	})

	return nil
}
