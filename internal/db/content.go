package db

import "time"

// ContentDocument is the committed, visitor-visible JSON of one page or of
// the site settings.
type ContentDocument struct {
	ID        uint   `gorm:"primaryKey"`
	Key       string `gorm:"size:64;uniqueIndex;not null"`
	Body      string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定自定义表名。
func (ContentDocument) TableName() string {
	return "content_documents"
}

// ContentDraft is the uncommitted document of one editor session for one
// page. (session_id, page_key) is unique so upserts are atomic per key.
type ContentDraft struct {
	ID        uint   `gorm:"primaryKey"`
	SessionID string `gorm:"size:64;not null;uniqueIndex:idx_content_drafts_key"`
	PageKey   string `gorm:"size:64;not null;uniqueIndex:idx_content_drafts_key"`
	Body      string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time `gorm:"index"`
}

// TableName 指定自定义表名。
func (ContentDraft) TableName() string {
	return "content_drafts"
}
