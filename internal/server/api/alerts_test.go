package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jbw9/HabitReminder/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "habitreminder-api-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// insertAlert writes one alert row with the given id, habit and creation time.
func insertAlert(t *testing.T, s *store.Store, id, habitID string, createdAt time.Time) {
	t.Helper()

	err := s.Alerts().Insert(&store.Alert{
		ID:        id,
		HabitID:   habitID,
		Severity:  "normal",
		Message:   "test alert",
		Metric:    1.5,
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("failed to insert alert: %v", err)
	}
}

func TestAlertsHandler_List(t *testing.T) {
	s := newTestStore(t)
	handler := NewAlertsHandler(s)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	insertAlert(t, s, "alert-1", "mouth_breathing", base)
	insertAlert(t, s, "alert-2", "blink_rate", base.Add(time.Minute))
	insertAlert(t, s, "alert-3", "mouth_breathing", base.Add(2*time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/api/alerts", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var response listAlertsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(response.Alerts))
	}

	// Newest first
	if response.Alerts[0].ID != "alert-3" {
		t.Errorf("expected first alert 'alert-3', got %q", response.Alerts[0].ID)
	}

	if response.Alerts[0].CreatedAt != "2026-03-01T10:02:00Z" {
		t.Errorf("expected created_at '2026-03-01T10:02:00Z', got %q", response.Alerts[0].CreatedAt)
	}
}

func TestAlertsHandler_List_Limit(t *testing.T) {
	s := newTestStore(t)
	handler := NewAlertsHandler(s)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	insertAlert(t, s, "alert-1", "mouth_breathing", base)
	insertAlert(t, s, "alert-2", "blink_rate", base.Add(time.Minute))
	insertAlert(t, s, "alert-3", "mouth_breathing", base.Add(2*time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/api/alerts?limit=2", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listAlertsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Alerts) != 2 {
		t.Errorf("expected 2 alerts, got %d", len(response.Alerts))
	}
}

func TestAlertsHandler_List_HabitFilter(t *testing.T) {
	s := newTestStore(t)
	handler := NewAlertsHandler(s)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	insertAlert(t, s, "alert-1", "mouth_breathing", base)
	insertAlert(t, s, "alert-2", "blink_rate", base.Add(time.Minute))
	insertAlert(t, s, "alert-3", "mouth_breathing", base.Add(2*time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/api/alerts?habit=mouth_breathing", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listAlertsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(response.Alerts))
	}

	for _, a := range response.Alerts {
		if a.HabitID != "mouth_breathing" {
			t.Errorf("expected only mouth_breathing alerts, got %q", a.HabitID)
		}
	}
}

func TestAlertsHandler_List_InvalidLimit(t *testing.T) {
	s := newTestStore(t)
	handler := NewAlertsHandler(s)

	for _, raw := range []string{"abc", "0", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/api/alerts?limit="+raw, nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit %q: expected status %d, got %d", raw, http.StatusBadRequest, rec.Code)
		}
	}
}

func TestAlertsHandler_Get(t *testing.T) {
	s := newTestStore(t)
	handler := NewAlertsHandler(s)

	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	insertAlert(t, s, "alert-1", "blink_rate", created)

	req := httptest.NewRequest(http.MethodGet, "/api/alerts/alert-1", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response alertResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.ID != "alert-1" {
		t.Errorf("expected ID 'alert-1', got %q", response.ID)
	}

	if response.HabitID != "blink_rate" {
		t.Errorf("expected habit_id 'blink_rate', got %q", response.HabitID)
	}

	if response.Metric != 1.5 {
		t.Errorf("expected metric 1.5, got %f", response.Metric)
	}
}

func TestAlertsHandler_Get_NotFound(t *testing.T) {
	s := newTestStore(t)
	handler := NewAlertsHandler(s)

	req := httptest.NewRequest(http.MethodGet, "/api/alerts/non-existent", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestAlertsHandler_MethodNotAllowed(t *testing.T) {
	s := newTestStore(t)
	handler := NewAlertsHandler(s)

	req := httptest.NewRequest(http.MethodDelete, "/api/alerts", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
