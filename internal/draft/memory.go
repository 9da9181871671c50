package draft

import (
	"context"
	"sync"
	"time"

	"github.com/printstudio/internal/content"
)

// MemoryStore keeps deep copies of drafts in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[Key]*Draft
	now    func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: map[Key]*Draft{}, now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, key Key) (*Draft, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.drafts[key]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *stored
	copied.Document = stored.Document.Clone()
	return &copied, nil
}

func (s *MemoryStore) Put(ctx context.Context, key Key, doc content.Document) error {
	return s.PutAll(ctx, Entry{Key: key, Document: doc})
}

func (s *MemoryStore) PutAll(_ context.Context, entries ...Entry) error {
	if err := validateEntries(entries); err != nil {
		return err
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range entries {
		stored, ok := s.drafts[entry.Key]
		if !ok {
			stored = &Draft{Key: entry.Key, CreatedAt: now}
			s.drafts[entry.Key] = stored
		}
		stored.Document = entry.Document.Clone()
		stored.UpdatedAt = now
	}
	return nil
}

func (s *MemoryStore) Discard(_ context.Context, key Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, key)
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, stored := range s.drafts {
		if stored.UpdatedAt.Before(before) {
			delete(s.drafts, key)
			removed++
		}
	}
	return removed, nil
}
