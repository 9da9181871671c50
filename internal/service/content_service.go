package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/printstudio/internal/content"
	"github.com/printstudio/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContentService reads and writes committed documents. Editing never writes
// here directly; only Publish does.
type ContentService struct {
	db *gorm.DB
}

// NewContentService returns a new ContentService instance.
func NewContentService(gdb *gorm.DB) *ContentService {
	return &ContentService{db: gdb}
}

// Seed stores the seed documents that are not committed yet.
func (s *ContentService) Seed(ctx context.Context, seed content.Seed) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := insertDocument(tx, content.SiteKey, seed.Site); err != nil {
			return err
		}
		for key, doc := range seed.Pages {
			if err := insertDocument(tx, key, doc); err != nil {
				return err
			}
		}
		return nil
	})
}

// Page returns the committed document of a page, or the empty instance when
// nothing is committed yet.
func (s *ContentService) Page(ctx context.Context, key string) (content.Document, error) {
	schema, err := content.PageSchema(key)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, schema)
}

// Settings returns the committed site settings document.
func (s *ContentService) Settings(ctx context.Context) (content.Document, error) {
	return s.load(ctx, content.SiteSchema())
}

func (s *ContentService) load(ctx context.Context, schema *content.Schema) (content.Document, error) {
	var row db.ContentDocument
	if err := s.db.WithContext(ctx).Where("key = ?", schema.Key).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return schema.Default(), nil
		}
		return nil, fmt.Errorf("load %s document: %w", schema.Key, err)
	}
	return schema.Unmarshal([]byte(row.Body))
}

// Commit replaces committed documents keyed by page key (or content.SiteKey)
// in one transaction.
func (s *ContentService) Commit(ctx context.Context, docs map[string]content.Document) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, doc := range docs {
			if err := upsertDocument(tx, key, doc); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertDocument(tx *gorm.DB, key string, doc content.Document) error {
	body, err := content.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", key, err)
	}
	row := db.ContentDocument{Key: key, Body: string(body)}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("seed %s document: %w", key, err)
	}
	return nil
}

func upsertDocument(tx *gorm.DB, key string, doc content.Document) error {
	body, err := content.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s document: %w", key, err)
	}
	row := db.ContentDocument{Key: key, Body: string(body)}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"body":       string(body),
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("commit %s document: %w", key, err)
	}
	return nil
}
