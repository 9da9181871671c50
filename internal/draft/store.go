// Package draft stores uncommitted, session-scoped content documents.
package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/printstudio/internal/content"
)

var (
	// ErrNotFound means no draft exists for the key; callers fall back to
	// the committed document.
	ErrNotFound = errors.New("draft not found")
	// ErrInvalidKey is returned when the session or page part of a key is empty.
	ErrInvalidKey = errors.New("draft key requires session and page")
)

// Key addresses one draft. Both parts are mandatory at every store call.
type Key struct {
	Session string
	Page    string
}

func (k Key) Validate() error {
	if strings.TrimSpace(k.Session) == "" || strings.TrimSpace(k.Page) == "" {
		return ErrInvalidKey
	}
	return nil
}

func (k Key) String() string {
	return k.Session + "/" + k.Page
}

// Draft is a stored document plus its lifecycle timestamps.
type Draft struct {
	Key       Key
	Document  content.Document
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Entry is one document to write in a batch.
type Entry struct {
	Key      Key
	Document content.Document
}

// Store is the draft storage contract. A Put is visible to the next Get on
// the same key, and PutAll writes every entry or none.
type Store interface {
	Get(ctx context.Context, key Key) (*Draft, error)
	Put(ctx context.Context, key Key, doc content.Document) error
	PutAll(ctx context.Context, entries ...Entry) error
	Discard(ctx context.Context, key Key) error
	// Sweep removes drafts last updated before the given time.
	Sweep(ctx context.Context, before time.Time) (int, error)
}

func validateEntries(entries []Entry) error {
	for _, entry := range entries {
		if err := entry.Key.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func encodeDocument(doc content.Document) (string, error) {
	data, err := content.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode draft: %w", err)
	}
	return string(data), nil
}

// decodeDocument restores a stored body, normalizing it when the page key has
// a known schema.
func decodeDocument(page, body string) (content.Document, error) {
	if page == content.SiteKey {
		return content.SiteSchema().Unmarshal([]byte(body))
	}
	if schema, err := content.PageSchema(page); err == nil {
		return schema.Unmarshal([]byte(body))
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return content.Document(raw), nil
}
