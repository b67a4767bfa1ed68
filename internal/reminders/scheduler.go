package reminders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wolfman30/waterbot/pkg/logging"
)

// Scheduler modes.
const (
	ModeThreshold = "threshold"
	ModeFixed     = "fixed"
)

const (
	hourlySpec    = "0 0 * * * *"
	keepAliveSpec = "0 */5 * * * *"

	defaultRunTimeout = 10 * time.Minute
)

// Runner executes reminder fan-outs. *Notifier implements it.
type Runner interface {
	RunHourly(ctx context.Context, now time.Time) (RunReport, error)
	RunReminder(ctx context.Context, r Reminder) (RunReport, error)
}

var _ Runner = (*Notifier)(nil)

// SchedulerConfig selects what gets registered with cron.
type SchedulerConfig struct {
	Mode       string
	Location   *time.Location
	KeepAlive  bool
	RunTimeout time.Duration
}

// Job is a registered cron entry.
type Job struct {
	Name string
	Spec string
}

// Scheduler drives a Runner from cron.
type Scheduler struct {
	cron     *cron.Cron
	runner   Runner
	cfg      SchedulerConfig
	logger   *logging.Logger
	now      func() time.Time
	jobs     []Job
	baseCtx  context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// NewScheduler registers the jobs for cfg.Mode. Nothing fires until Start.
func NewScheduler(runner Runner, cfg SchedulerConfig, logger *logging.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = defaultRunTimeout
	}

	cl := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(cfg.Location),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner: runner,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
	s.baseCtx, s.cancel = context.WithCancel(context.Background())

	switch cfg.Mode {
	case ModeThreshold, "":
		if err := s.add("hourly", hourlySpec, s.runHourly); err != nil {
			return nil, err
		}
	case ModeFixed:
		for _, r := range All {
			if err := s.add(r.Name, r.FixedSpec, func() { s.runReminder(r) }); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("reminders: unknown scheduler mode %q", cfg.Mode)
	}

	if cfg.KeepAlive {
		if err := s.add("keepalive", keepAliveSpec, func() { logger.Debug("keepalive") }); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Scheduler) add(name, spec string, fn func()) error {
	if _, err := s.cron.AddFunc(spec, fn); err != nil {
		return fmt.Errorf("reminders: register %s (%s): %w", name, spec, err)
	}
	s.jobs = append(s.jobs, Job{Name: name, Spec: spec})
	return nil
}

// Jobs lists the registered entries in registration order.
func (s *Scheduler) Jobs() []Job {
	return append([]Job(nil), s.jobs...)
}

// Start begins firing jobs and stops the scheduler when ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	s.logger.Info("reminder scheduler started", "mode", s.mode(), "jobs", len(s.jobs), "location", s.cfg.Location.String())

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.baseCtx.Done():
		}
	}()
}

// Stop cancels in-flight runs and waits for them to return. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		<-s.cron.Stop().Done()
		s.logger.Info("reminder scheduler stopped")
	})
}

func (s *Scheduler) mode() string {
	if s.cfg.Mode == "" {
		return ModeThreshold
	}
	return s.cfg.Mode
}

func (s *Scheduler) runHourly() {
	ctx, cancel := context.WithTimeout(s.baseCtx, s.cfg.RunTimeout)
	defer cancel()
	if _, err := s.runner.RunHourly(ctx, s.now()); err != nil {
		s.logger.Error("hourly reminder run failed", "error", err)
	}
}

func (s *Scheduler) runReminder(r Reminder) {
	ctx, cancel := context.WithTimeout(s.baseCtx, s.cfg.RunTimeout)
	defer cancel()
	if _, err := s.runner.RunReminder(ctx, r); err != nil {
		s.logger.Error("reminder run failed", "reminder", r.Name, "error", err)
	}
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	logger *logging.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
