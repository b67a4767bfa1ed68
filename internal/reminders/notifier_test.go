package reminders

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/waterbot/internal/messenger"
	"github.com/wolfman30/waterbot/internal/outbound"
	"github.com/wolfman30/waterbot/internal/users"
	"github.com/wolfman30/waterbot/pkg/logging"
)

type fakeProfiles struct {
	offsets map[string]float64
	fail    map[string]bool
}

func (f fakeProfiles) UserProfile(_ context.Context, userID string) (*messenger.UserProfile, error) {
	if f.fail[userID] {
		return nil, errors.New("profile unavailable")
	}
	return &messenger.UserProfile{FirstName: "Name-" + userID, Timezone: f.offsets[userID]}, nil
}

type recordingExecutor struct {
	mu   sync.Mutex
	sent map[string][]string
	fail map[string]bool
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{sent: map[string][]string{}, fail: map[string]bool{}}
}

func (r *recordingExecutor) Execute(_ context.Context, actions []outbound.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := actions[0].Recipient()
	if r.fail[id] {
		return errors.New("send failed")
	}
	for _, a := range actions {
		if text, ok := a.(outbound.SendText); ok {
			r.sent[id] = append(r.sent[id], text.Text)
		}
	}
	return nil
}

func seedStore(t *testing.T, frequencies map[string]int) *users.MemoryStore {
	t.Helper()
	store := users.NewMemoryStore()
	for id, f := range frequencies {
		require.NoError(t, store.Save(context.Background(), id, f))
	}
	return store
}

func at(hour int) time.Time {
	return time.Date(2024, 5, 1, hour, 0, 0, 0, time.UTC)
}

func TestRunHourlyFrequencyTwoAtFourteen(t *testing.T) {
	store := seedStore(t, map[string]int{"U1": 2})
	profiles := fakeProfiles{offsets: map[string]float64{"U1": 2}}

	for _, tc := range []struct {
		utcHour int
		want    []string
	}{
		{8, []string{"Good morning Name-U1 :) don't forget drink water today"}},
		{12, []string{"Hey Name-U1 ;) don't forget drink water!"}},
		{16, nil},
		{18, []string{"So how many glasses of water have you drank today Name-U1?"}},
	} {
		exec := newRecordingExecutor()
		n := NewNotifier(store, profiles, exec, nil, logging.New("error"), NotifierConfig{})

		report, err := n.RunHourly(context.Background(), at(tc.utcHour))
		require.NoError(t, err)
		assert.Equal(t, tc.want, exec.sent["U1"], "utc hour %d", tc.utcHour)
		assert.Equal(t, len(tc.want), report.Sent)
	}
}

func TestRunHourlyIsolatesFailures(t *testing.T) {
	store := seedStore(t, map[string]int{"A": 1, "B": 1, "C": 1, "D": 0})
	profiles := fakeProfiles{
		offsets: map[string]float64{"A": 0, "B": 0, "C": 0, "D": 10},
		fail:    map[string]bool{"B": true},
	}
	exec := newRecordingExecutor()
	exec.fail["C"] = true

	n := NewNotifier(store, profiles, exec, nil, logging.New("error"), NotifierConfig{Concurrency: 2})
	report, err := n.RunHourly(context.Background(), at(10))
	require.NoError(t, err)

	assert.Equal(t, RunReport{Attempted: 3, Sent: 2, Skipped: 0, Failed: 2}, report)
	assert.Len(t, exec.sent["A"], 1)
	assert.Equal(t, []string{"So how many glasses of water have you drank today Name-D?"}, exec.sent["D"])
}

func TestRunHourlyCountsSkipped(t *testing.T) {
	store := seedStore(t, map[string]int{"A": 3, "B": 0})
	n := NewNotifier(store, fakeProfiles{}, newRecordingExecutor(), nil, logging.New("error"), NotifierConfig{})

	report, err := n.RunHourly(context.Background(), at(3))
	require.NoError(t, err)
	assert.Equal(t, RunReport{Skipped: 2}, report)
}

func TestRunReminderFansOutByTier(t *testing.T) {
	store := seedStore(t, map[string]int{"A": 1, "B": 2, "C": 3, "D": 0})

	tests := []struct {
		reminder Reminder
		want     []string
	}{
		{Morning, []string{"A", "B", "C"}},
		{Afternoon, []string{"B", "C"}},
		{Evening, []string{"C"}},
		{CheckIn, []string{"A", "B", "C", "D"}},
	}

	for _, tt := range tests {
		t.Run(tt.reminder.Name, func(t *testing.T) {
			exec := newRecordingExecutor()
			n := NewNotifier(store, fakeProfiles{}, exec, nil, logging.New("error"), NotifierConfig{Concurrency: 3})

			report, err := n.RunReminder(context.Background(), tt.reminder)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), report.Sent)

			var got []string
			for id := range exec.sent {
				got = append(got, id)
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestRunReminderUsesPlaceholderOnLookupFailure(t *testing.T) {
	store := seedStore(t, map[string]int{"A": 1})
	exec := newRecordingExecutor()
	n := NewNotifier(store, fakeProfiles{fail: map[string]bool{"A": true}}, exec, nil, logging.New("error"), NotifierConfig{})

	report, err := n.RunReminder(context.Background(), Morning)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, []string{"Good morning friend :) don't forget drink water today"}, exec.sent["A"])
}

type brokenStore struct{ users.Store }

func (brokenStore) ListUsers(context.Context) ([]string, error) {
	return nil, errors.New("db down")
}

func (brokenStore) ListUsersWithFrequencyAtLeast(context.Context, int) ([]string, error) {
	return nil, errors.New("db down")
}

func TestRunReturnsStoreErrors(t *testing.T) {
	n := NewNotifier(brokenStore{}, fakeProfiles{}, newRecordingExecutor(), nil, logging.New("error"), NotifierConfig{})

	_, err := n.RunHourly(context.Background(), at(10))
	assert.Error(t, err)
	_, err = n.RunReminder(context.Background(), Morning)
	assert.Error(t, err)
}
