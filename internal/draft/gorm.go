package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/printstudio/internal/content"
	"github.com/printstudio/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists drafts in the content_drafts table. Writes are
// single-row upserts on the unique (session_id, page_key) index.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore constructs a GormStore.
func NewGormStore(gdb *gorm.DB) *GormStore {
	return &GormStore{db: gdb, now: time.Now}
}

func (s *GormStore) Get(ctx context.Context, key Key) (*Draft, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	var row db.ContentDraft
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND page_key = ?", key.Session, key.Page).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load draft %s: %w", key, err)
	}

	doc, err := decodeDocument(row.PageKey, row.Body)
	if err != nil {
		return nil, err
	}
	return &Draft{Key: key, Document: doc, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt}, nil
}

func (s *GormStore) Put(ctx context.Context, key Key, doc content.Document) error {
	return s.PutAll(ctx, Entry{Key: key, Document: doc})
}

func (s *GormStore) PutAll(ctx context.Context, entries ...Entry) error {
	if err := validateEntries(entries); err != nil {
		return err
	}
	now := s.now()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			if err := upsertDraft(tx, entry, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertDraft(tx *gorm.DB, entry Entry, now time.Time) error {
	body, err := encodeDocument(entry.Document)
	if err != nil {
		return err
	}
	row := db.ContentDraft{
		SessionID: entry.Key.Session,
		PageKey:   entry.Key.Page,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "page_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"body":       body,
			"updated_at": now,
		}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("upsert draft %s: %w", entry.Key, err)
	}
	return nil
}

func (s *GormStore) Discard(ctx context.Context, key Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND page_key = ?", key.Session, key.Page).
		Delete(&db.ContentDraft{}).Error
	if err != nil {
		return fmt.Errorf("discard draft %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) Sweep(ctx context.Context, before time.Time) (int, error) {
	result := s.db.WithContext(ctx).Where("updated_at < ?", before).Delete(&db.ContentDraft{})
	if result.Error != nil {
		return 0, fmt.Errorf("sweep drafts: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}
