// Package schedule registers recurring background tasks on robfig/cron.
//
// Usage:
//
//	schedule.Every(1).Minutes().Name("visualizer:purge").WithoutOverlapping().Run(purge)
//	schedule.Cron("0 3 * * *").Name("cache:sweep").Run(sweep)
//
//	// Start dispatching (call once at boot, after registration):
//	schedule.Start(ctx)
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shashiranjanraj/furnivision/pkg/logger"
)

// Task is the function signature for a scheduled task.
type Task func()

type entry struct {
	id        string
	spec      string
	task      Task
	noOverlap bool
}

// Schedule is a fluent builder for a single entry before it is registered.
type Schedule struct {
	e *entry
}

var (
	regMu   sync.Mutex
	entries []*entry
)

// parser accepts an optional seconds field and descriptors like @every 30s.
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// EveryMinute schedules the task to run every 60 seconds.
func EveryMinute() *Schedule { return Every(1).Minutes() }

// Every starts a fluent builder with n units.
func Every(n int) *freqBuilder { return &freqBuilder{n: n} }

// Hourly schedules the task at the top of every hour.
func Hourly() *Schedule { return Cron("@hourly") }

// Daily schedules the task at midnight.
func Daily() *Schedule { return Cron("@daily") }

// Cron schedules using a cron expression (5 or 6 fields, or a descriptor).
func Cron(expr string) *Schedule {
	return &Schedule{e: &entry{spec: expr}}
}

type freqBuilder struct{ n int }

func (f *freqBuilder) every(unit time.Duration) *Schedule {
	return Cron(fmt.Sprintf("@every %s", time.Duration(f.n)*unit))
}

func (f *freqBuilder) Seconds() *Schedule { return f.every(time.Second) }
func (f *freqBuilder) Minutes() *Schedule { return f.every(time.Minute) }
func (f *freqBuilder) Hours() *Schedule   { return f.every(time.Hour) }

// WithoutOverlapping skips a run while the previous one is still executing.
func (s *Schedule) WithoutOverlapping() *Schedule {
	s.e.noOverlap = true
	return s
}

// Name gives the entry a human-readable identifier for logging.
func (s *Schedule) Name(id string) *Schedule {
	s.e.id = id
	return s
}

// Run validates the expression and registers the task. Call Start to begin
// dispatching.
func (s *Schedule) Run(fn Task) error {
	if _, err := parser.Parse(s.e.spec); err != nil {
		return fmt.Errorf("schedule: %q: %w", s.e.spec, err)
	}
	s.e.task = fn

	regMu.Lock()
	defer regMu.Unlock()
	if s.e.id == "" {
		s.e.id = fmt.Sprintf("task-%d", len(entries)+1)
	}
	entries = append(entries, s.e)
	return nil
}

// Start builds a cron runner from the registered entries and runs it until
// ctx is cancelled. Running tasks are allowed to finish on shutdown.
func Start(ctx context.Context) *cron.Cron {
	log := cronLogger{}
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(log)))

	regMu.Lock()
	current := append([]*entry(nil), entries...)
	regMu.Unlock()

	for _, e := range current {
		e := e
		var job cron.Job = cron.FuncJob(func() {
			logger.Debug("schedule: running task", "id", e.id)
			e.task()
		})
		if e.noOverlap {
			job = cron.NewChain(cron.SkipIfStillRunning(log)).Then(job)
		}
		if _, err := c.AddJob(e.spec, job); err != nil {
			logger.Error("schedule: register failed", "id", e.id, "error", err)
		}
	}

	c.Start()
	logger.Info("schedule: scheduler started", "tasks", len(current))

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		logger.Info("schedule: scheduler stopped")
	}()
	return c
}

// List returns all currently registered entries (for CLI display).
func List() []string {
	regMu.Lock()
	defer regMu.Unlock()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprintf("%s  [%s]", e.id, e.spec))
	}
	return out
}

// Reset drops every registered entry (used by tests and re-boots).
func Reset() {
	regMu.Lock()
	entries = nil
	regMu.Unlock()
}

// cronLogger adapts the slog logger to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("schedule: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("schedule: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
