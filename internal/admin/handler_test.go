package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/waterbot/internal/reminders"
	"github.com/wolfman30/waterbot/internal/users"
	"github.com/wolfman30/waterbot/pkg/logging"
)

type stubRunner struct {
	hourlyAt time.Time
	ran      string
	err      error
}

func (s *stubRunner) RunHourly(_ context.Context, now time.Time) (reminders.RunReport, error) {
	s.hourlyAt = now
	s.ran = "hourly"
	return reminders.RunReport{Attempted: 2, Sent: 2}, s.err
}

func (s *stubRunner) RunReminder(_ context.Context, r reminders.Reminder) (reminders.RunReport, error) {
	s.ran = r.Name
	return reminders.RunReport{Attempted: 1, Sent: 1}, s.err
}

func newTestRouter(t *testing.T, runner reminders.Runner) (http.Handler, *users.MemoryStore) {
	t.Helper()
	store := users.NewMemoryStore()
	h := NewHandler(store, runner, logging.New("error"))
	r := chi.NewRouter()
	r.Route("/admin", h.RegisterRoutes)
	return r, store
}

func TestListUsers(t *testing.T) {
	router, store := newTestRouter(t, &stubRunner{})
	require.NoError(t, store.Save(context.Background(), "U1", 2))
	require.NoError(t, store.Save(context.Background(), "U2", 0))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Users []users.User `json:"users"`
		Count int          `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
	assert.ElementsMatch(t, []users.User{{ID: "U1", Frequency: 2}, {ID: "U2", Frequency: 0}}, body.Users)
}

func TestSetFrequency(t *testing.T) {
	router, store := newTestRouter(t, &stubRunner{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/users/U9/frequency", strings.NewReader(`{"frequency":3}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	f, err := store.GetFrequency(context.Background(), "U9")
	require.NoError(t, err)
	assert.Equal(t, 3, f)
}

func TestSetFrequencyRejectsInvalid(t *testing.T) {
	router, _ := newTestRouter(t, &stubRunner{})

	for _, body := range []string{`{"frequency":7}`, `{}`, `not json`} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/users/U9/frequency", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestRunRemindersHourly(t *testing.T) {
	runner := &stubRunner{}
	router, _ := newTestRouter(t, runner)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/reminders/run", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hourly", runner.ran)
	assert.False(t, runner.hourlyAt.IsZero())

	var body struct {
		Reminder string              `json:"reminder"`
		Report   reminders.RunReport `json:"report"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, reminders.RunReport{Attempted: 2, Sent: 2}, body.Report)
}

func TestRunRemindersNamed(t *testing.T) {
	runner := &stubRunner{}
	router, _ := newTestRouter(t, runner)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/reminders/run?reminder=checkin", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "checkin", runner.ran)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/reminders/run?reminder=lunch", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunRemindersFailure(t *testing.T) {
	router, _ := newTestRouter(t, &stubRunner{err: errors.New("db down")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/reminders/run", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRunRemindersWithoutRunner(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/reminders/run", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
