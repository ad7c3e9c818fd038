package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Task is a unit of scheduled work.
type Task func(ctx context.Context) error

// Scheduler runs tasks on standard five-field cron expressions (descriptors
// such as @hourly and @every 30m are accepted too). A run that is still in
// progress when its next tick fires is skipped.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
}

// New creates a scheduler whose tasks run with ctx.
func New(ctx context.Context) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:  ctx,
	}
}

// Register adds task under name on the given cron expression.
func (s *Scheduler) Register(name, expr string, task Task) error {
	if _, err := s.cron.AddFunc(expr, func() { s.run(name, task) }); err != nil {
		return fmt.Errorf("register %s task: %w", name, err)
	}
	slog.Info("scheduled task registered", "task", name, "cron", expr)
	return nil
}

func (s *Scheduler) run(name string, task Task) {
	start := time.Now()
	slog.Info("running scheduled task", "task", name)
	if err := task(s.ctx); err != nil {
		slog.Error("scheduled task failed", "task", name, "error", err)
		return
	}
	slog.Info("scheduled task finished", "task", name, "elapsed", time.Since(start))
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("scheduler started")
}

// Stop stops the scheduler and waits for running tasks to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// Len is the number of registered tasks.
func (s *Scheduler) Len() int { return len(s.cron.Entries()) }
