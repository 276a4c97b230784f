package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Alert represents one delivered alert event in the history.
type Alert struct {
	ID        string
	HabitID   string
	Severity  string
	Message   string
	Metric    float64
	CreatedAt time.Time
}

// AlertRepository provides access to the alert history.
type AlertRepository struct {
	db *sql.DB
}

// Alerts returns the alert repository for this store.
func (s *Store) Alerts() *AlertRepository {
	return &AlertRepository{db: s.db}
}

// Insert appends one alert to the history.
func (r *AlertRepository) Insert(a *Alert) error {
	_, err := r.db.Exec(
		`INSERT INTO alerts (id, habit_id, severity, message, metric, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.HabitID, a.Severity, a.Message, a.Metric, a.CreatedAt,
	)
	return err
}

// GetByID retrieves an alert by its ID.
func (r *AlertRepository) GetByID(id string) (*Alert, error) {
	a := &Alert{}

	err := r.db.QueryRow(
		`SELECT id, habit_id, severity, message, metric, created_at
		 FROM alerts WHERE id = ?`,
		id,
	).Scan(&a.ID, &a.HabitID, &a.Severity, &a.Message, &a.Metric, &a.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return a, nil
}

// ListRecent retrieves the newest alerts, most recent first. A non-positive
// limit falls back to 50.
func (r *AlertRepository) ListRecent(limit int) ([]*Alert, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, habit_id, severity, message, metric, created_at
		 FROM alerts ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAlerts(rows)
}

// ListByHabit retrieves the newest alerts for one habit, most recent first.
func (r *AlertRepository) ListByHabit(habitID string, limit int) ([]*Alert, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, habit_id, severity, message, metric, created_at
		 FROM alerts WHERE habit_id = ? ORDER BY created_at DESC LIMIT ?`,
		habitID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAlerts(rows)
}

// CountSince counts alerts recorded at or after t.
func (r *AlertRepository) CountSince(t time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM alerts WHERE created_at >= ?`, t,
	).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteBefore prunes alerts recorded before t and reports how many rows
// were removed.
func (r *AlertRepository) DeleteBefore(t time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM alerts WHERE created_at < ?`, t)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func collectAlerts(rows *sql.Rows) ([]*Alert, error) {
	var alerts []*Alert
	for rows.Next() {
		a := &Alert{}
		err := rows.Scan(&a.ID, &a.HabitID, &a.Severity, &a.Message, &a.Metric, &a.CreatedAt)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return alerts, nil
}
