package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"joke-cli/internal/joke"
)

// FileRecorder keeps all records as one JSON array in a single file.
// It is not safe for concurrent writers in different processes.
type FileRecorder struct {
	path string
	mu   sync.Mutex
}

// legacyFile is the layout written by earlier versions of the tool.
type legacyFile struct {
	Entries []json.RawMessage `json:"feedback_entries"`
}

// legacyEntry is one record of the old layout. Its timestamps carry no zone.
type legacyEntry struct {
	JokeID      string        `json:"joke_id"`
	JokeText    string        `json:"joke_text"`
	Category    joke.Category `json:"category"`
	Rating      *int          `json:"rating"`
	Timestamp   string        `json:"timestamp"`
	UserComment *string       `json:"user_comment"`
}

var legacyLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"}

func parseLegacyTime(s string) (time.Time, error) {
	var err error
	for _, layout := range legacyLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func NewFileRecorder(path string) (*FileRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure store dir: %w", err)
	}
	return &FileRecorder{path: path}, nil
}

func (r *FileRecorder) Path() string { return r.path }

func (r *FileRecorder) Append(rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	records, err := r.loadUnlocked()
	if err != nil {
		return err
	}
	records = append(records, rec)
	return r.saveUnlocked(records)
}

func (r *FileRecorder) ReadAll() ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadUnlocked()
}

func (r *FileRecorder) loadUnlocked() ([]Record, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Record{}, nil
		}
		return nil, fmt.Errorf("open read: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []Record{}, nil
	}

	if data[0] == '{' {
		return decodeLegacy(data)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, r.path, err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

func decodeLegacy(data []byte) ([]Record, error) {
	var lf legacyFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	records := make([]Record, 0, len(lf.Entries))
	for _, raw := range lf.Entries {
		var le legacyEntry
		if err := json.Unmarshal(raw, &le); err != nil {
			// damaged entries were skipped by the old tool as well
			continue
		}
		ts, err := parseLegacyTime(le.Timestamp)
		if err != nil {
			continue
		}
		records = append(records, Record{
			Timestamp: ts,
			Category:  le.Category,
			Rating:    le.Rating,
			Comment:   le.UserComment,
			JokeID:    le.JokeID,
			JokeText:  le.JokeText,
		})
	}
	return records, nil
}

// saveUnlocked writes to a temp file in the same directory and renames it,
// so an interrupted write leaves the previous collection intact.
func (r *FileRecorder) saveUnlocked(records []Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("open write: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}
