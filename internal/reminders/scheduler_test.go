package reminders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/waterbot/pkg/logging"
)

type fakeRunner struct {
	mu        sync.Mutex
	hourly    []time.Time
	reminders []string
}

func (f *fakeRunner) RunHourly(_ context.Context, now time.Time) (RunReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hourly = append(f.hourly, now)
	return RunReport{}, nil
}

func (f *fakeRunner) RunReminder(_ context.Context, r Reminder) (RunReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders = append(f.reminders, r.Name)
	return RunReport{}, nil
}

func TestNewSchedulerThresholdJobs(t *testing.T) {
	s, err := NewScheduler(&fakeRunner{}, SchedulerConfig{Mode: ModeThreshold, KeepAlive: true}, logging.New("error"))
	require.NoError(t, err)

	assert.Equal(t, []Job{
		{Name: "hourly", Spec: "0 0 * * * *"},
		{Name: "keepalive", Spec: "0 */5 * * * *"},
	}, s.Jobs())
}

func TestNewSchedulerFixedJobs(t *testing.T) {
	s, err := NewScheduler(&fakeRunner{}, SchedulerConfig{Mode: ModeFixed}, logging.New("error"))
	require.NoError(t, err)

	assert.Equal(t, []Job{
		{Name: "morning", Spec: "3 0 8 * * *"},
		{Name: "afternoon", Spec: "3 0 12 * * *"},
		{Name: "evening", Spec: "3 0 15 * * *"},
		{Name: "checkin", Spec: "3 0 17 * * *"},
	}, s.Jobs())
}

func TestNewSchedulerUnknownMode(t *testing.T) {
	_, err := NewScheduler(&fakeRunner{}, SchedulerConfig{Mode: "sometimes"}, logging.New("error"))
	assert.Error(t, err)
}

func TestSchedulerJobsCallRunner(t *testing.T) {
	runner := &fakeRunner{}
	s, err := NewScheduler(runner, SchedulerConfig{Mode: ModeThreshold}, logging.New("error"))
	require.NoError(t, err)
	fixed := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.runHourly()
	s.runReminder(Evening)

	assert.Equal(t, []time.Time{fixed}, runner.hourly)
	assert.Equal(t, []string{"evening"}, runner.reminders)
}

func TestSchedulerStartStop(t *testing.T) {
	s, err := NewScheduler(&fakeRunner{}, SchedulerConfig{KeepAlive: true}, logging.New("error"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()
	s.Stop()
	s.Stop()
}
