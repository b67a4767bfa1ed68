package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/waterbot/internal/reminders"
	"github.com/wolfman30/waterbot/internal/users"
	"github.com/wolfman30/waterbot/pkg/logging"
)

// Handler exposes operator endpoints for users and reminder runs.
type Handler struct {
	store  users.Store
	runner reminders.Runner
	logger *logging.Logger
	now    func() time.Time
}

// NewHandler creates an admin HTTP handler.
func NewHandler(store users.Store, runner reminders.Runner, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, runner: runner, logger: logger, now: time.Now}
}

// RegisterRoutes mounts admin endpoints. Expected to be mounted under /admin.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/users", h.listUsers)
	r.Put("/users/{userID}/frequency", h.setFrequency)
	r.Post("/reminders/run", h.runReminders)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	all, err := users.ListWithFrequencies(r.Context(), h.store)
	if err != nil {
		h.logger.Error("admin handler: list users", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users": all,
		"count": len(all),
	})
}

func (h *Handler) setFrequency(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	var req struct {
		Frequency *int `json:"frequency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Frequency == nil {
		http.Error(w, "frequency is required", http.StatusBadRequest)
		return
	}

	if err := h.store.Save(r.Context(), userID, *req.Frequency); err != nil {
		if errors.Is(err, users.ErrInvalidFrequency) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("admin handler: save frequency", "user_id", userID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.logger.Info("admin handler: frequency set", "user_id", userID, "frequency", *req.Frequency)
	writeJSON(w, http.StatusOK, users.User{ID: userID, Frequency: *req.Frequency})
}

// runReminders triggers one fan-out: the named reminder when ?reminder= is
// given, otherwise the hourly threshold run.
func (h *Handler) runReminders(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		http.Error(w, "reminders not configured", http.StatusServiceUnavailable)
		return
	}

	name := r.URL.Query().Get("reminder")
	label := "hourly"
	var run func(ctx context.Context) (reminders.RunReport, error)
	if name == "" {
		run = func(ctx context.Context) (reminders.RunReport, error) { return h.runner.RunHourly(ctx, h.now()) }
	} else {
		reminder, ok := reminders.Lookup(name)
		if !ok {
			http.Error(w, "unknown reminder", http.StatusBadRequest)
			return
		}
		label = reminder.Name
		run = func(ctx context.Context) (reminders.RunReport, error) { return h.runner.RunReminder(ctx, reminder) }
	}

	report, err := run(r.Context())
	if err != nil {
		h.logger.Error("admin handler: run reminders", "reminder", label, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reminder": label,
		"report":   report,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
