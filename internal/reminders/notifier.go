package reminders

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wolfman30/waterbot/internal/messenger"
	"github.com/wolfman30/waterbot/internal/observability/metrics"
	"github.com/wolfman30/waterbot/internal/outbound"
	"github.com/wolfman30/waterbot/internal/users"
	"github.com/wolfman30/waterbot/pkg/logging"
)

const (
	defaultConcurrency = 4
	defaultSendTimeout = 15 * time.Second
)

// ActionExecutor delivers an ordered action sequence to one user.
type ActionExecutor interface {
	Execute(ctx context.Context, actions []outbound.Action) error
}

// RunReport summarizes one fan-out.
type RunReport struct {
	Attempted int `json:"attempted"`
	Sent      int `json:"sent"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

type counters struct {
	attempted, sent, skipped, failed atomic.Int64
}

func (c *counters) report() RunReport {
	return RunReport{
		Attempted: int(c.attempted.Load()),
		Sent:      int(c.sent.Load()),
		Skipped:   int(c.skipped.Load()),
		Failed:    int(c.failed.Load()),
	}
}

// NotifierConfig bounds the fan-out.
type NotifierConfig struct {
	Concurrency int
	SendTimeout time.Duration
}

// Notifier decides who gets which reminder and sends it.
type Notifier struct {
	store    users.Store
	profiles messenger.ProfileLookup
	executor ActionExecutor
	metrics  *metrics.BotMetrics
	logger   *logging.Logger
	cfg      NotifierConfig
}

// NewNotifier creates a notifier. metrics may be nil.
func NewNotifier(store users.Store, profiles messenger.ProfileLookup, executor ActionExecutor, m *metrics.BotMetrics, logger *logging.Logger, cfg NotifierConfig) *Notifier {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}
	return &Notifier{
		store:    store,
		profiles: profiles,
		executor: executor,
		metrics:  m,
		logger:   logger,
		cfg:      cfg,
	}
}

// RunHourly checks every user's local hour at now and sends the reminder due
// in that bucket. Users whose UTC offset cannot be resolved are skipped and
// counted as failed.
func (n *Notifier) RunHourly(ctx context.Context, now time.Time) (RunReport, error) {
	all, err := users.ListWithFrequencies(ctx, n.store)
	if err != nil {
		return RunReport{}, fmt.Errorf("reminders: list users: %w", err)
	}

	utc := now.UTC()
	utcHour := float64(utc.Hour()) + float64(utc.Minute())/60

	var c counters
	n.fanOut(ctx, len(all), func(ctx context.Context, i int) {
		u := all[i]
		profile, err := n.profiles.UserProfile(ctx, u.ID)
		if err != nil {
			c.failed.Add(1)
			n.metrics.ObserveReminder("hourly", "lookup_failed")
			n.logger.Warn("reminder profile lookup failed", "user_id", u.ID, "error", err)
			return
		}

		localHour := LocalHour(utcHour, profile.Timezone)
		reminder, ok := Select(u.Frequency, localHour)
		if !ok {
			c.skipped.Add(1)
			return
		}
		n.deliver(ctx, &c, reminder, u.ID, profile.DisplayName())
	})

	report := c.report()
	n.logger.Info("hourly reminder run finished",
		"utc_hour", utc.Hour(),
		"users", len(all),
		"attempted", report.Attempted,
		"sent", report.Sent,
		"failed", report.Failed,
	)
	return report, nil
}

// RunReminder sends r to every user with frequency >= r.MinFrequency,
// without timezone adjustment.
func (n *Notifier) RunReminder(ctx context.Context, r Reminder) (RunReport, error) {
	var (
		ids []string
		err error
	)
	if r.MinFrequency <= users.FrequencyUnset {
		ids, err = n.store.ListUsers(ctx)
	} else {
		ids, err = n.store.ListUsersWithFrequencyAtLeast(ctx, r.MinFrequency)
	}
	if err != nil {
		return RunReport{}, fmt.Errorf("reminders: list users for %s: %w", r.Name, err)
	}

	var c counters
	n.fanOut(ctx, len(ids), func(ctx context.Context, i int) {
		n.deliver(ctx, &c, r, ids[i], n.displayName(ctx, ids[i]))
	})

	report := c.report()
	n.logger.Info("reminder run finished",
		"reminder", r.Name,
		"users", len(ids),
		"sent", report.Sent,
		"failed", report.Failed,
	)
	return report, nil
}

// fanOut runs fn for indexes [0, count) with bounded concurrency. fn never
// returns an error so one user cannot cancel the rest.
func (n *Notifier) fanOut(ctx context.Context, count int, fn func(ctx context.Context, i int)) {
	var g errgroup.Group
	g.SetLimit(n.cfg.Concurrency)
	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			userCtx, cancel := context.WithTimeout(ctx, n.cfg.SendTimeout)
			defer cancel()
			fn(userCtx, i)
			return nil
		})
	}
	_ = g.Wait()
}

func (n *Notifier) deliver(ctx context.Context, c *counters, r Reminder, userID, name string) {
	c.attempted.Add(1)
	if err := n.executor.Execute(ctx, r.Actions(userID, name)); err != nil {
		c.failed.Add(1)
		n.metrics.ObserveReminder(r.Name, "failed")
		n.logger.Warn("reminder delivery failed", "reminder", r.Name, "user_id", userID, "error", err)
		return
	}
	c.sent.Add(1)
	n.metrics.ObserveReminder(r.Name, "sent")
}

func (n *Notifier) displayName(ctx context.Context, userID string) string {
	profile, err := n.profiles.UserProfile(ctx, userID)
	if err != nil {
		n.logger.Warn("reminder profile lookup failed", "user_id", userID, "error", err)
		return messenger.NamePlaceholder
	}
	return profile.DisplayName()
}
