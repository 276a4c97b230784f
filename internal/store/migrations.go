package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Alerts table - one row per delivered alert event
		`CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			habit_id TEXT NOT NULL,
			severity TEXT NOT NULL CHECK(severity IN ('normal', 'high')),
			message TEXT NOT NULL,
			metric REAL NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL
		)`,

		// Indexes for the history and retention queries
		`CREATE INDEX IF NOT EXISTS idx_alerts_habit_id ON alerts(habit_id)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_created_at ON alerts(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
