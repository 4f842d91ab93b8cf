package sink

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"keydyn/internal/dynamics"
)

// SQLiteSink stores feature rows in a local SQLite database, one row
// per window sample, same columns as the CSV contract.
type SQLiteSink struct {
	db        *sql.DB
	sessionID int64
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS feature_windows (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id      INTEGER NOT NULL REFERENCES sessions(id),
    timestamp       TEXT NOT NULL,
    avg_dwell_time  REAL NOT NULL,
    avg_flight_time REAL NOT NULL,
    error_ratio     REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_feature_windows_session
    ON feature_windows(session_id);
`

// NewSQLiteSink opens (creating if needed) the database at path and
// starts a new session row for the incoming samples.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	res, err := db.Exec(`INSERT INTO sessions (started_at) VALUES (?)`,
		time.Now().Format(TimeLayout))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create session row: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("session id: %w", err)
	}
	return &SQLiteSink{db: db, sessionID: id}, nil
}

// Write inserts one feature row for the current session.
func (s *SQLiteSink) Write(sample dynamics.WindowSample) error {
	_, err := s.db.Exec(
		`INSERT INTO feature_windows (session_id, timestamp, avg_dwell_time, avg_flight_time, error_ratio)
		 VALUES (?, ?, ?, ?, ?)`,
		s.sessionID,
		sample.Timestamp.Format(TimeLayout),
		sample.AvgDwell,
		sample.AvgFlight,
		sample.ErrorRatio,
	)
	if err != nil {
		return fmt.Errorf("insert feature row: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// Samples reads back the rows of the current session in insertion
// order.
func (s *SQLiteSink) Samples() ([]dynamics.WindowSample, error) {
	rows, err := s.db.Query(
		`SELECT timestamp, avg_dwell_time, avg_flight_time, error_ratio
		 FROM feature_windows WHERE session_id = ? ORDER BY id`, s.sessionID)
	if err != nil {
		return nil, fmt.Errorf("query feature rows: %w", err)
	}
	defer rows.Close()

	var samples []dynamics.WindowSample
	for rows.Next() {
		var ts string
		var sample dynamics.WindowSample
		if err := rows.Scan(&ts, &sample.AvgDwell, &sample.AvgFlight, &sample.ErrorRatio); err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}
		t, err := time.ParseInLocation(TimeLayout, ts, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp: %w", err)
		}
		sample.Timestamp = t
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}
