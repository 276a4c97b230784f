package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/jbw9/HabitReminder/internal/store"
)

// AlertsHandler handles HTTP requests for alert history resources.
type AlertsHandler struct {
	store *store.Store
}

// NewAlertsHandler creates a new AlertsHandler with the given store.
func NewAlertsHandler(s *store.Store) *AlertsHandler {
	return &AlertsHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *AlertsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Parse the path to determine if this is a collection or item request
	// Expected paths: /api/alerts or /api/alerts/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/alerts")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		// Collection endpoint: /api/alerts
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	// Item endpoint: /api/alerts/{id}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.get(w, r, path)
}

// Response types

type alertResponse struct {
	ID        string  `json:"id"`
	HabitID   string  `json:"habit_id"`
	Severity  string  `json:"severity"`
	Message   string  `json:"message"`
	Metric    float64 `json:"metric"`
	CreatedAt string  `json:"created_at"`
}

type listAlertsResponse struct {
	Alerts []alertResponse `json:"alerts"`
}

// toAlertResponse converts a store.Alert to an alertResponse.
func toAlertResponse(a *store.Alert) alertResponse {
	return alertResponse{
		ID:        a.ID,
		HabitID:   a.HabitID,
		Severity:  a.Severity,
		Message:   a.Message,
		Metric:    a.Metric,
		CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// list handles GET /api/alerts and returns recent alerts, newest first.
// Optional query parameters: habit filters by habit id, limit caps the count.
func (h *AlertsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	var (
		alerts []*store.Alert
		err    error
	)
	if habitID := r.URL.Query().Get("habit"); habitID != "" {
		alerts, err = h.store.Alerts().ListByHabit(habitID, limit)
	} else {
		alerts, err = h.store.Alerts().ListRecent(limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list alerts")
		return
	}

	response := listAlertsResponse{
		Alerts: make([]alertResponse, 0, len(alerts)),
	}

	for _, a := range alerts {
		response.Alerts = append(response.Alerts, toAlertResponse(a))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/alerts/{id} and returns a single alert.
func (h *AlertsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	a, err := h.store.Alerts().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Alert not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get alert")
		return
	}

	writeJSON(w, http.StatusOK, toAlertResponse(a))
}
