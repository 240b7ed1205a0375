package storage

import (
	"errors"
	"time"

	"joke-cli/internal/joke"
)

// ErrCorruptStore is returned when a non-empty store cannot be parsed.
var ErrCorruptStore = errors.New("feedback store is corrupt")

// Record is one rating/comment for one joke-viewing event.
// Rating and Comment are nil when the user skipped them.
// Records are appended in chronological order and never mutated.
type Record struct {
	Timestamp time.Time     `json:"timestamp"`
	Category  joke.Category `json:"category"`
	Rating    *int          `json:"rating"`
	Comment   *string       `json:"comment"`
	JokeID    string        `json:"joke_id,omitempty"`
	JokeText  string        `json:"joke_text,omitempty"`
}

// Rated reports whether the record carries a usable 1-5 rating. Hand-edited
// files can hold anything, so out-of-range values count as skipped.
func (r Record) Rated() bool { return r.Rating != nil && *r.Rating >= 1 && *r.Rating <= 5 }

// Recorder abstracts persistence of feedback records.
// ReadAll returns records in insertion order and an empty slice, not an
// error, when nothing has been stored yet.
type Recorder interface {
	Append(rec Record) error
	ReadAll() ([]Record, error)
}

func IntPtr(v int) *int { return &v }

func StringPtr(s string) *string { return &s }
