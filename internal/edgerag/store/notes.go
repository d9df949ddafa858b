package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kart-io/edge-rag/internal/model"
)

// NotesStore keeps a relational copy of ingested texts keyed by vector ID,
// so a vector match can be resolved back to its full text without touching
// the index.
type NotesStore struct {
	db *gorm.DB
}

// NewNotesStore opens (or creates) the sqlite database at path and ensures
// the notes table exists.
func NewNotesStore(path string) (*NotesStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open notes database: %w", err)
	}

	if err := db.AutoMigrate(&model.Note{}); err != nil {
		return nil, fmt.Errorf("failed to migrate notes table: %w", err)
	}

	return &NotesStore{db: db}, nil
}

// Save upserts a note row per item.
func (s *NotesStore) Save(ctx context.Context, notes []model.Note) error {
	if len(notes) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"text"}),
		}).
		Create(&notes).Error
	if err != nil {
		return fmt.Errorf("failed to save notes: %w", err)
	}
	return nil
}

// GetByID returns the note for a vector ID, or (nil, nil) when absent.
func (s *NotesStore) GetByID(ctx context.Context, id string) (*model.Note, error) {
	var note model.Note
	err := s.db.WithContext(ctx).First(&note, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load note %s: %w", id, err)
	}
	return &note, nil
}
