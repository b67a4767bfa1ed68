package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/waterbot/cmd/mainconfig"
	"github.com/wolfman30/waterbot/internal/app/bootstrap"
	appconfig "github.com/wolfman30/waterbot/internal/config"
	"github.com/wolfman30/waterbot/internal/reminders"
	"github.com/wolfman30/waterbot/pkg/logging"
)

// eventDetail is the EventBridge rule input. An empty reminder runs the hourly check.
type eventDetail struct {
	Reminder string `json:"reminder"`
}

// loadConfig reads an optional .env before the environment, as cmd/api does.
func loadConfig() *appconfig.Config {
	_ = godotenv.Load()
	return appconfig.Load()
}

func main() {
	cfg := loadConfig()
	logger := logging.New(cfg.LogLevel).With("component", "reminder-lambda")

	ctx := context.Background()
	store, err := mainconfig.OpenUserStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open user store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	bot, err := bootstrap.BuildBot(cfg, store, redisClient, prometheus.NewRegistry(), logger)
	if err != nil {
		logger.Error("failed to build bot", "error", err)
		os.Exit(1)
	}

	lambda.Start(func(ctx context.Context, evt events.CloudWatchEvent) (reminders.RunReport, error) {
		return handle(ctx, bot.Notifier, evt, logger)
	})
}

func handle(ctx context.Context, runner reminders.Runner, evt events.CloudWatchEvent, logger *logging.Logger) (reminders.RunReport, error) {
	var detail eventDetail
	if raw := strings.TrimSpace(string(evt.Detail)); raw != "" && raw != "null" {
		if err := json.Unmarshal(evt.Detail, &detail); err != nil {
			return reminders.RunReport{}, fmt.Errorf("decode event detail: %w", err)
		}
	}

	now := evt.Time
	if now.IsZero() {
		now = time.Now()
	}

	if detail.Reminder == "" {
		logger.Info("running hourly reminders", "event_id", evt.ID, "time", now)
		return runner.RunHourly(ctx, now)
	}

	reminder, ok := reminders.Lookup(detail.Reminder)
	if !ok {
		return reminders.RunReport{}, fmt.Errorf("unknown reminder %q", detail.Reminder)
	}
	logger.Info("running reminder", "event_id", evt.ID, "reminder", reminder.Name)
	return runner.RunReminder(ctx, reminder)
}
