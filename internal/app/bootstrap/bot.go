package bootstrap

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/waterbot/internal/config"
	"github.com/wolfman30/waterbot/internal/conversation"
	"github.com/wolfman30/waterbot/internal/messenger"
	"github.com/wolfman30/waterbot/internal/observability/metrics"
	"github.com/wolfman30/waterbot/internal/outbound"
	"github.com/wolfman30/waterbot/internal/reminders"
	"github.com/wolfman30/waterbot/internal/users"
	"github.com/wolfman30/waterbot/pkg/logging"
)

// Bot groups the collaborators shared by the webhook and the scheduler.
type Bot struct {
	Store    users.Store
	Client   *messenger.Client
	Profiles messenger.ProfileLookup
	Metrics  *metrics.BotMetrics
	Executor *outbound.Executor
	Engine   *conversation.Engine
	Notifier *reminders.Notifier
}

// BuildBot constructs the Messenger client, profile cache, conversation engine
// and reminder notifier. redisClient may be nil.
func BuildBot(cfg *appconfig.Config, store users.Store, redisClient *redis.Client, reg prometheus.Registerer, logger *logging.Logger) (*Bot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if store == nil {
		return nil, fmt.Errorf("bootstrap: user store is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	client := messenger.NewClient(cfg.MessengerPageAccessToken)
	client.SetGraphAPIBase(cfg.GraphAPIBase)
	client.SetTimeout(cfg.GraphAPITimeout)

	botMetrics := metrics.NewBotMetrics(reg)
	profiles := messenger.NewCachedProfiles(client, redisClient, cfg.ProfileCacheTTL, logger.With("component", "profiles"))
	executor := outbound.NewExecutor(client, botMetrics, logger.With("component", "outbound"))

	return &Bot{
		Store:    store,
		Client:   client,
		Profiles: profiles,
		Metrics:  botMetrics,
		Executor: executor,
		Engine:   conversation.NewEngine(store, profiles, executor, logger.With("component", "conversation")),
		Notifier: reminders.NewNotifier(store, profiles, executor, botMetrics, logger.With("component", "reminders"), reminders.NotifierConfig{
			Concurrency: cfg.ReminderConcurrency,
			SendTimeout: cfg.ReminderSendTimeout,
		}),
	}, nil
}

// WebhookHandler returns the /callback handler dispatching into the engine.
func (b *Bot) WebhookHandler(cfg *appconfig.Config, logger *logging.Logger) *messenger.WebhookHandler {
	h := messenger.NewWebhookHandler(cfg.MessengerVerifyToken, cfg.MessengerAppSecret, b.Engine, b.Metrics, logger.With("component", "webhook"))
	h.SetTimeout(cfg.WebhookTimeout)
	return h
}

// BuildScheduler returns the cron scheduler, or nil when scheduling is disabled.
func BuildScheduler(cfg *appconfig.Config, runner reminders.Runner, logger *logging.Logger) (*reminders.Scheduler, error) {
	if cfg == nil || !cfg.SchedulerEnabled {
		return nil, nil
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("bootstrap: scheduler timezone: %w", err)
	}
	return reminders.NewScheduler(runner, reminders.SchedulerConfig{
		Mode:       cfg.SchedulerMode,
		Location:   loc,
		KeepAlive:  cfg.KeepAliveEnabled,
		RunTimeout: cfg.ReminderRunTimeout,
	}, logger)
}
