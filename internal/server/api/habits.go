// Package api provides HTTP API handlers for the HabitReminder monitoring engine.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/jbw9/HabitReminder/internal/habit"
)

// HabitsHandler handles HTTP requests for habit detector resources.
type HabitsHandler struct {
	registry *habit.Registry
}

// NewHabitsHandler creates a new HabitsHandler backed by the given registry.
func NewHabitsHandler(reg *habit.Registry) *HabitsHandler {
	return &HabitsHandler{registry: reg}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *HabitsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Parse the path to determine the target habit and verb
	// Expected paths: /api/habits, /api/habits/{id}, /api/habits/{id}/{verb}
	path := strings.TrimPrefix(r.URL.Path, "/api/habits")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		// Collection endpoint: /api/habits
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := habit.ID(parts[0])

	if len(parts) == 1 {
		// Item endpoint: /api/habits/{id}
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.get(w, r, id)
		return
	}

	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	// Verb endpoint: /api/habits/{id}/{verb}
	switch parts[1] {
	case "enable", "disable", "reset":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.control(w, r, id, parts[1])
	case "config":
		switch r.Method {
		case http.MethodGet:
			h.getConfig(w, r, id)
		case http.MethodPut:
			h.updateConfig(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// Request and response types

type updateHabitRequest struct {
	Kind            *string  `json:"kind"`
	Threshold       *float64 `json:"threshold"`
	DebounceFrames  *int     `json:"debounce_frames"`
	EventFrames     *int     `json:"event_frames"`
	WindowSeconds   *int     `json:"window_seconds"`
	MaxEvents       *int     `json:"max_events"`
	MinEvents       *int     `json:"min_events"`
	IntervalMinutes *int     `json:"interval_minutes"`
	OvalRX          *float64 `json:"oval_rx"`
	OvalRY          *float64 `json:"oval_ry"`
	PostureWidth    *float64 `json:"posture_width"`
	PostureTilt     *float64 `json:"posture_tilt"`
	CooldownSeconds *int     `json:"cooldown_seconds"`
	Severity        *string  `json:"severity"`
	Message         *string  `json:"message"`
	Reset           bool     `json:"reset"`
}

type habitResponse struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	Enabled   bool    `json:"enabled"`
	Violating bool    `json:"violating"`
	Metric    float64 `json:"metric"`
	Detail    string  `json:"detail,omitempty"`
	Faults    uint64  `json:"faults,omitempty"`
}

type listHabitsResponse struct {
	Habits []habitResponse `json:"habits"`
}

type habitConfigResponse struct {
	ID              string  `json:"id"`
	Kind            string  `json:"kind"`
	Threshold       float64 `json:"threshold,omitempty"`
	DebounceFrames  int     `json:"debounce_frames,omitempty"`
	EventFrames     int     `json:"event_frames,omitempty"`
	WindowSeconds   int     `json:"window_seconds,omitempty"`
	MaxEvents       int     `json:"max_events,omitempty"`
	MinEvents       int     `json:"min_events,omitempty"`
	IntervalMinutes int     `json:"interval_minutes,omitempty"`
	OvalRX          float64 `json:"oval_rx,omitempty"`
	OvalRY          float64 `json:"oval_ry,omitempty"`
	PostureWidth    float64 `json:"posture_width,omitempty"`
	PostureTilt     float64 `json:"posture_tilt,omitempty"`
	CooldownSeconds int     `json:"cooldown_seconds"`
	Severity        string  `json:"severity"`
	Message         string  `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toHabitResponse converts a habit.Status to a habitResponse.
func toHabitResponse(st habit.Status) habitResponse {
	return habitResponse{
		ID:        string(st.ID),
		Kind:      string(st.Kind),
		Enabled:   st.Enabled,
		Violating: st.Violating,
		Metric:    st.Metric,
		Detail:    st.Detail,
		Faults:    st.Faults,
	}
}

// toConfigResponse converts a habit.Config to a habitConfigResponse.
func toConfigResponse(cfg habit.Config) habitConfigResponse {
	return habitConfigResponse{
		ID:              string(cfg.ID),
		Kind:            string(cfg.Kind),
		Threshold:       cfg.Threshold,
		DebounceFrames:  cfg.DebounceFrames,
		EventFrames:     cfg.EventFrames,
		WindowSeconds:   int(cfg.Window / time.Second),
		MaxEvents:       cfg.MaxEvents,
		MinEvents:       cfg.MinEvents,
		IntervalMinutes: int(cfg.Interval / time.Minute),
		OvalRX:          cfg.OvalRX,
		OvalRY:          cfg.OvalRY,
		PostureWidth:    cfg.PostureWidth,
		PostureTilt:     cfg.PostureTilt,
		CooldownSeconds: int(cfg.Cooldown / time.Second),
		Severity:        string(cfg.Severity),
		Message:         cfg.Message,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/habits and returns every habit in registration order.
func (h *HabitsHandler) list(w http.ResponseWriter, r *http.Request) {
	statuses := h.registry.Statuses()

	response := listHabitsResponse{
		Habits: make([]habitResponse, 0, len(statuses)),
	}

	for _, id := range h.registry.IDs() {
		response.Habits = append(response.Habits, toHabitResponse(statuses[id]))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/habits/{id} and returns a single habit's status.
func (h *HabitsHandler) get(w http.ResponseWriter, r *http.Request, id habit.ID) {
	st, ok := h.registry.Statuses()[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Habit not found")
		return
	}

	writeJSON(w, http.StatusOK, toHabitResponse(st))
}

// control handles POST /api/habits/{id}/enable, /disable and /reset.
func (h *HabitsHandler) control(w http.ResponseWriter, r *http.Request, id habit.ID, verb string) {
	var err error
	switch verb {
	case "enable":
		err = h.registry.Enable(id)
	case "disable":
		err = h.registry.Disable(id)
	case "reset":
		err = h.registry.Reset(id)
	}
	if err != nil {
		if errors.Is(err, habit.ErrUnknownHabit) {
			writeError(w, http.StatusNotFound, "Habit not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to "+verb+" habit")
		return
	}

	writeJSON(w, http.StatusOK, toHabitResponse(h.registry.Statuses()[id]))
}

// getConfig handles GET /api/habits/{id}/config and returns the current tuning.
func (h *HabitsHandler) getConfig(w http.ResponseWriter, r *http.Request, id habit.ID) {
	cfg, err := h.registry.Config(id)
	if err != nil {
		if errors.Is(err, habit.ErrUnknownHabit) {
			writeError(w, http.StatusNotFound, "Habit not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get habit config")
		return
	}

	writeJSON(w, http.StatusOK, toConfigResponse(cfg))
}

// updateConfig handles PUT /api/habits/{id}/config and retunes a habit.
// Absent fields keep their current values; the machine kind cannot change.
func (h *HabitsHandler) updateConfig(w http.ResponseWriter, r *http.Request, id habit.ID) {
	cfg, err := h.registry.Config(id)
	if err != nil {
		if errors.Is(err, habit.ErrUnknownHabit) {
			writeError(w, http.StatusNotFound, "Habit not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get habit config")
		return
	}

	var req updateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Update fields if provided
	if req.Kind != nil && *req.Kind != string(cfg.Kind) {
		writeError(w, http.StatusBadRequest, "Habit kind cannot change")
		return
	}
	if req.Threshold != nil {
		if *req.Threshold <= 0 {
			writeError(w, http.StatusBadRequest, "threshold must be positive")
			return
		}
		cfg.Threshold = *req.Threshold
	}
	if req.DebounceFrames != nil {
		if *req.DebounceFrames < 1 {
			writeError(w, http.StatusBadRequest, "debounce_frames must be at least 1")
			return
		}
		cfg.DebounceFrames = *req.DebounceFrames
	}
	if req.EventFrames != nil {
		if *req.EventFrames < 1 {
			writeError(w, http.StatusBadRequest, "event_frames must be at least 1")
			return
		}
		cfg.EventFrames = *req.EventFrames
	}
	if req.WindowSeconds != nil {
		if *req.WindowSeconds < 1 {
			writeError(w, http.StatusBadRequest, "window_seconds must be at least 1")
			return
		}
		cfg.Window = time.Duration(*req.WindowSeconds) * time.Second
	}
	if req.MaxEvents != nil {
		if *req.MaxEvents < 1 {
			writeError(w, http.StatusBadRequest, "max_events must be at least 1")
			return
		}
		cfg.MaxEvents = *req.MaxEvents
	}
	if req.MinEvents != nil {
		if *req.MinEvents < 1 {
			writeError(w, http.StatusBadRequest, "min_events must be at least 1")
			return
		}
		cfg.MinEvents = *req.MinEvents
	}
	if req.IntervalMinutes != nil {
		if *req.IntervalMinutes < 1 {
			writeError(w, http.StatusBadRequest, "interval_minutes must be at least 1")
			return
		}
		cfg.Interval = time.Duration(*req.IntervalMinutes) * time.Minute
	}
	if req.OvalRX != nil {
		if *req.OvalRX <= 0 {
			writeError(w, http.StatusBadRequest, "oval_rx must be positive")
			return
		}
		cfg.OvalRX = *req.OvalRX
	}
	if req.OvalRY != nil {
		if *req.OvalRY <= 0 {
			writeError(w, http.StatusBadRequest, "oval_ry must be positive")
			return
		}
		cfg.OvalRY = *req.OvalRY
	}
	if req.PostureWidth != nil {
		if *req.PostureWidth <= 0 {
			writeError(w, http.StatusBadRequest, "posture_width must be positive")
			return
		}
		cfg.PostureWidth = *req.PostureWidth
	}
	if req.PostureTilt != nil {
		if *req.PostureTilt <= 0 {
			writeError(w, http.StatusBadRequest, "posture_tilt must be positive")
			return
		}
		cfg.PostureTilt = *req.PostureTilt
	}
	if req.CooldownSeconds != nil {
		if *req.CooldownSeconds < 1 {
			writeError(w, http.StatusBadRequest, "cooldown_seconds must be at least 1")
			return
		}
		cfg.Cooldown = time.Duration(*req.CooldownSeconds) * time.Second
	}
	if req.Severity != nil {
		sev := habit.Severity(*req.Severity)
		if sev != habit.SeverityNormal && sev != habit.SeverityHigh {
			writeError(w, http.StatusBadRequest, "Invalid severity")
			return
		}
		cfg.Severity = sev
	}
	if req.Message != nil {
		cfg.Message = *req.Message
	}

	if err := h.registry.Reconfigure(id, cfg, req.Reset); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update habit config")
		return
	}

	writeJSON(w, http.StatusOK, toConfigResponse(cfg))
}
