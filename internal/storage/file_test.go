package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joke-cli/internal/joke"
)

func TestFileRecorder_AppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "joke_feedback.json")
	rec, err := NewFileRecorder(p)
	require.NoError(t, err)

	r1 := Record{Timestamp: time.Unix(1, 0).UTC(), Category: joke.Programming, Rating: IntPtr(4)}
	r2 := Record{Timestamp: time.Unix(2, 0).UTC(), Category: joke.Puns, Comment: StringPtr("meh")}

	require.NoError(t, rec.Append(r1))
	got, err := rec.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, joke.Programming, got[0].Category)
	assert.Equal(t, 4, *got[0].Rating)

	require.NoError(t, rec.Append(r2))
	got, err = rec.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, joke.Programming, got[0].Category, "insertion order")
	assert.Equal(t, joke.Puns, got[1].Category)
	assert.Nil(t, got[1].Rating)
	assert.Equal(t, "meh", *got[1].Comment)

	st, err := os.Stat(p)
	require.NoError(t, err)
	assert.NotZero(t, st.Size())

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(p), "*.tmp"))
	assert.Empty(t, leftovers)
}

func TestFileRecorder_MissingAndEmpty(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewFileRecorder(filepath.Join(dir, "absent.json"))
	require.NoError(t, err)
	got, err := rec.ReadAll()
	require.NoError(t, err)
	assert.Empty(t, got)

	p := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(p, []byte("  \n"), 0o644))
	rec, err = NewFileRecorder(p)
	require.NoError(t, err)
	got, err = rec.ReadAll()
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFileRecorder_NullRatingOnDisk(t *testing.T) {
	p := filepath.Join(t.TempDir(), "f.json")
	rec, err := NewFileRecorder(p)
	require.NoError(t, err)
	require.NoError(t, rec.Append(Record{Timestamp: time.Unix(5, 0).UTC(), Category: joke.Clean}))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"rating": null`)
	assert.Contains(t, string(data), `"comment": null`)
	assert.Contains(t, string(data), `"timestamp": "1970-01-01T00:00:05Z"`)
}

func TestFileRecorder_Corrupt(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(p, []byte(`[{"timestamp": 12`), 0o644))
	rec, err := NewFileRecorder(p)
	require.NoError(t, err)

	_, err = rec.ReadAll()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptStore))

	err = rec.Append(Record{Timestamp: time.Now(), Category: joke.General})
	assert.ErrorIs(t, err, ErrCorruptStore, "append must not overwrite a corrupt store")
	data, _ := os.ReadFile(p)
	assert.Equal(t, `[{"timestamp": 12`, string(data))
}

func TestFileRecorder_LegacyLayout(t *testing.T) {
	p := filepath.Join(t.TempDir(), "joke_feedback.json")
	legacy := `{
  "feedback_entries": [
    {"joke_id": "3f1c", "joke_text": "A pun", "category": "puns", "rating": 5,
     "timestamp": "2024-01-15T10:30:00.123456", "user_comment": "lol"},
    {"joke_id": "x", "category": "general", "rating": 2, "timestamp": "not a time"},
    {"joke_id": "4a2d", "joke_text": "Bugs", "category": "programming", "rating": 3,
     "timestamp": "2024-01-16T08:00:00", "user_comment": null}
  ],
  "stats": {"total_jokes": 3, "average_rating": 3.3, "category_stats": {}}
}`
	require.NoError(t, os.WriteFile(p, []byte(legacy), 0o644))
	rec, err := NewFileRecorder(p)
	require.NoError(t, err)

	got, err := rec.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, joke.Puns, got[0].Category)
	assert.Equal(t, "lol", *got[0].Comment)
	assert.Equal(t, 2024, got[0].Timestamp.Year())
	assert.Nil(t, got[1].Comment)

	require.NoError(t, rec.Append(Record{Timestamp: time.Now().UTC(), Category: joke.Clean, Rating: IntPtr(1)}))
	got, err = rec.ReadAll()
	require.NoError(t, err)
	assert.Len(t, got, 3)
	data, _ := os.ReadFile(p)
	assert.Equal(t, byte('['), data[0], "rewritten as an array")
}
