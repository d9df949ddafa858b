package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/edge-rag/internal/model"
)

func newTestNotesStore(t *testing.T) *NotesStore {
	t.Helper()
	s, err := NewNotesStore(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	return s
}

func TestNotesSaveAndGet(t *testing.T) {
	s := newTestNotesStore(t)
	ctx := context.Background()

	err := s.Save(ctx, []model.Note{
		{ID: "doc-1", Text: "The office opens at 9am."},
		{ID: "doc-2", Text: "Parking is free on weekends."},
	})
	require.NoError(t, err)

	note, err := s.GetByID(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, "The office opens at 9am.", note.Text)
}

func TestNotesGetMissing(t *testing.T) {
	s := newTestNotesStore(t)

	note, err := s.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, note)
}

func TestNotesSaveOverwrites(t *testing.T) {
	s := newTestNotesStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []model.Note{{ID: "doc-1", Text: "old"}}))
	require.NoError(t, s.Save(ctx, []model.Note{{ID: "doc-1", Text: "new"}}))

	note, err := s.GetByID(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, "new", note.Text)
}

func TestNotesSaveEmptyBatch(t *testing.T) {
	s := newTestNotesStore(t)
	assert.NoError(t, s.Save(context.Background(), nil))
}
