package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/printstudio/internal/content"
	"github.com/printstudio/internal/draft"
	"github.com/printstudio/internal/logger"
	"github.com/printstudio/internal/metrics"
)

// CommittedStore exposes the published documents.
type CommittedStore interface {
	Page(ctx context.Context, key string) (content.Document, error)
	Settings(ctx context.Context) (content.Document, error)
}

// Publisher writes documents to the committed store.
type Publisher interface {
	Commit(ctx context.Context, docs map[string]content.Document) error
}

// Resolved is a page document paired with the site document it renders with.
type Resolved struct {
	Page        content.Document
	Site        content.Document
	PageDraft   bool
	SiteDraft   bool
	SiteChanged bool
}

// PublishResult describes a publish call.
type PublishResult struct {
	Resolved
	Missing []string
}

// SyncService merges form submissions into session-scoped drafts. It is the
// only writer of drafts during editing.
type SyncService struct {
	drafts    draft.Store
	committed CommittedStore
	publisher Publisher
	locks     *keyedMutex
}

// NewSyncService constructs SyncService. publisher may be nil when publishing
// is not offered.
func NewSyncService(drafts draft.Store, committed CommittedStore, publisher Publisher) *SyncService {
	return &SyncService{
		drafts:    drafts,
		committed: committed,
		publisher: publisher,
		locks:     newKeyedMutex(),
	}
}

// Resolve returns the current draft of the page and the site for a session,
// falling back to the committed documents.
func (s *SyncService) Resolve(ctx context.Context, session, page string) (Resolved, error) {
	if _, err := content.PageSchema(page); err != nil {
		return Resolved{}, err
	}
	return s.resolve(ctx, session, page)
}

func (s *SyncService) resolve(ctx context.Context, session, page string) (Resolved, error) {
	var out Resolved
	var err error
	out.Page, out.PageDraft, err = s.base(ctx, draft.Key{Session: session, Page: page}, func() (content.Document, error) {
		return s.committed.Page(ctx, page)
	})
	if err != nil {
		return Resolved{}, err
	}
	out.Site, out.SiteDraft, err = s.base(ctx, draft.Key{Session: session, Page: content.SiteKey}, func() (content.Document, error) {
		return s.committed.Settings(ctx)
	})
	if err != nil {
		return Resolved{}, err
	}
	return out, nil
}

func (s *SyncService) base(ctx context.Context, key draft.Key, committed func() (content.Document, error)) (content.Document, bool, error) {
	stored, err := s.drafts.Get(ctx, key)
	if err == nil {
		return stored.Document, true, nil
	}
	if !errors.Is(err, draft.ErrNotFound) {
		return nil, false, fmt.Errorf("load draft %s: %w", key, err)
	}
	doc, err := committed()
	if err != nil {
		return nil, false, fmt.Errorf("load committed %s: %w", key.Page, err)
	}
	return doc, false, nil
}

// Sync merges a submission onto the session's draft (or the committed
// document) and stores the result. Site fields in the submission update the
// site draft in the same write; without them the site passes through. On
// any error nothing is stored.
func (s *SyncService) Sync(ctx context.Context, session, page string, form content.Form) (Resolved, error) {
	schema, err := content.PageSchema(page)
	if err != nil {
		metrics.SyncRequests.WithLabelValues(metrics.OutcomeUnknownPage).Inc()
		return Resolved{}, err
	}

	started := time.Now()
	unlock := s.locks.Lock(session)
	defer unlock()

	current, err := s.resolve(ctx, session, page)
	if err != nil {
		metrics.SyncRequests.WithLabelValues(metrics.OutcomeStoreFailure).Inc()
		return Resolved{}, err
	}

	result := Resolved{Page: schema.Merge(current.Page, form), Site: current.Site, PageDraft: true, SiteDraft: current.SiteDraft}
	entries := []draft.Entry{{Key: draft.Key{Session: session, Page: page}, Document: result.Page}}

	siteSchema := content.SiteSchema()
	if siteSchema.Touches(form) {
		result.Site = siteSchema.Merge(current.Site, form)
		result.SiteDraft = true
		result.SiteChanged = true
		entries = append(entries, draft.Entry{Key: draft.Key{Session: session, Page: content.SiteKey}, Document: result.Site})
	}

	if err := s.drafts.PutAll(ctx, entries...); err != nil {
		metrics.SyncRequests.WithLabelValues(metrics.OutcomeStoreFailure).Inc()
		logger.Errorf("[sync] store draft %s/%s: %v", session, page, err)
		return Resolved{}, fmt.Errorf("store draft: %w", err)
	}

	metrics.SyncRequests.WithLabelValues(metrics.OutcomeOK).Inc()
	metrics.SyncMergeDuration.Observe(time.Since(started).Seconds())
	logger.Debugf("[sync] merged %d field(s) into %s/%s", len(form), session, page)
	return result, nil
}

// Discard drops the session's page draft and site draft.
func (s *SyncService) Discard(ctx context.Context, session, page string) error {
	if _, err := content.PageSchema(page); err != nil {
		return err
	}
	unlock := s.locks.Lock(session)
	defer unlock()

	for _, key := range []draft.Key{{Session: session, Page: page}, {Session: session, Page: content.SiteKey}} {
		if err := s.drafts.Discard(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Publish commits the session's drafts for a page (and the site, if drafted)
// and then discards them.
func (s *SyncService) Publish(ctx context.Context, session, page string) (PublishResult, error) {
	schema, err := content.PageSchema(page)
	if err != nil {
		return PublishResult{}, err
	}
	if s.publisher == nil {
		return PublishResult{}, errors.New("publishing is not configured")
	}

	unlock := s.locks.Lock(session)
	defer unlock()

	current, err := s.resolve(ctx, session, page)
	if err != nil {
		return PublishResult{}, err
	}

	docs := map[string]content.Document{}
	if current.PageDraft {
		docs[page] = current.Page
	}
	if current.SiteDraft {
		docs[content.SiteKey] = current.Site
	}
	if len(docs) > 0 {
		if err := s.publisher.Commit(ctx, docs); err != nil {
			return PublishResult{}, fmt.Errorf("publish %s: %w", page, err)
		}
	}

	for key := range docs {
		if err := s.drafts.Discard(ctx, draft.Key{Session: session, Page: key}); err != nil {
			return PublishResult{}, err
		}
	}

	current.PageDraft = false
	current.SiteDraft = false
	return PublishResult{Resolved: current, Missing: schema.Missing(current.Page)}, nil
}
