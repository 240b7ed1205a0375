package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"joke-cli/internal/joke"
)

// SQLiteRecorder stores records in a feedback table. Row ids give the
// insertion order.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to ensure store dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one connection keeps :memory: databases coherent and serializes writes
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		category TEXT NOT NULL,
		rating INTEGER,
		comment TEXT,
		joke_id TEXT NOT NULL DEFAULT '',
		joke_text TEXT NOT NULL DEFAULT ''
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &SQLiteRecorder{db: db}, nil
}

func (r *SQLiteRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.db.Close()
}

func (r *SQLiteRecorder) Append(rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rating sql.NullInt64
	if rec.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*rec.Rating), Valid: true}
	}
	var comment sql.NullString
	if rec.Comment != nil {
		comment = sql.NullString{String: *rec.Comment, Valid: true}
	}
	_, err := r.db.Exec(
		`INSERT INTO feedback (created_at, category, rating, comment, joke_id, joke_text) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.Format(time.RFC3339Nano), string(rec.Category), rating, comment, rec.JokeID, rec.JokeText,
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) ReadAll() ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT created_at, category, rating, comment, joke_id, joke_text FROM feedback ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			ts, category string
			rating       sql.NullInt64
			comment      sql.NullString
			rec          Record
		)
		if err := rows.Scan(&ts, &category, &rating, &comment, &rec.JokeID, &rec.JokeText); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		if rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("%w: bad timestamp %q", ErrCorruptStore, ts)
		}
		rec.Category = joke.Category(category)
		if rating.Valid {
			rec.Rating = IntPtr(int(rating.Int64))
		}
		if comment.Valid {
			rec.Comment = StringPtr(comment.String)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return records, nil
}
