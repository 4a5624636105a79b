package history

import (
	"fmt"

	"gorm.io/gorm"
)

// Store persists merge run records.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open database handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the merge_runs table.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&Record{}); err != nil {
		return fmt.Errorf("failed to migrate merge history: %w", err)
	}
	return nil
}

// Save inserts a new run record.
func (s *Store) Save(record *Record) error {
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to save merge run: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []Record
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list merge runs: %w", err)
	}
	return records, nil
}
