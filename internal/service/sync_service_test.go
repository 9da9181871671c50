package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/printstudio/internal/content"
	"github.com/printstudio/internal/draft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCommitted struct {
	mu    sync.Mutex
	pages map[string]content.Document
	site  content.Document
	err   error
}

func newMemoryCommitted(t *testing.T) *memoryCommitted {
	t.Helper()
	seed, err := content.Defaults()
	require.NoError(t, err)
	return &memoryCommitted{pages: seed.Pages, site: seed.Site}
}

func (m *memoryCommitted) Page(_ context.Context, key string) (content.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := content.PageSchema(key); err != nil {
		return nil, err
	}
	return m.pages[key].Clone(), nil
}

func (m *memoryCommitted) Settings(context.Context) (content.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.site.Clone(), nil
}

func (m *memoryCommitted) Commit(_ context.Context, docs map[string]content.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for key, doc := range docs {
		if key == content.SiteKey {
			m.site = doc.Clone()
			continue
		}
		m.pages[key] = doc.Clone()
	}
	return nil
}

type failingStore struct {
	draft.Store
	failWrites bool
}

func (f *failingStore) PutAll(ctx context.Context, entries ...draft.Entry) error {
	if f.failWrites {
		return errors.New("disk full")
	}
	return f.Store.PutAll(ctx, entries...)
}

func TestSyncFallsBackToCommittedAndStoresDraft(t *testing.T) {
	committed := newMemoryCommitted(t)
	store := draft.NewMemoryStore()
	svc := NewSyncService(store, committed, committed)
	ctx := context.Background()

	result, err := svc.Sync(ctx, "s1", "home", content.Form{"hero_title": "Fresh"})
	require.NoError(t, err)

	assert.Equal(t, "Fresh", result.Page.Text("hero.title"))
	assert.Equal(t, committed.pages["home"].Text("hero.badge"), result.Page.Text("hero.badge"))
	assert.Empty(t, result.Page.Items("what_we_print.items"), "collections are rebuilt from the submission")
	assert.False(t, result.SiteChanged)
	assert.Equal(t, committed.site, result.Site)

	stored, err := store.Get(ctx, draft.Key{Session: "s1", Page: "home"})
	require.NoError(t, err)
	assert.Equal(t, result.Page, stored.Document)

	_, err = store.Get(ctx, draft.Key{Session: "s1", Page: content.SiteKey})
	assert.ErrorIs(t, err, draft.ErrNotFound)

	assert.Equal(t, "Print that feels as good as it looks", committed.pages["home"].Text("hero.title"), "committed document is never written")
}

func TestSyncBuildsOnExistingDraft(t *testing.T) {
	committed := newMemoryCommitted(t)
	svc := NewSyncService(draft.NewMemoryStore(), committed, committed)
	ctx := context.Background()

	_, err := svc.Sync(ctx, "s1", "home", content.Form{"hero_title": "One", "hero_badge": "B"})
	require.NoError(t, err)
	result, err := svc.Sync(ctx, "s1", "home", content.Form{"hero_title": "Two"})
	require.NoError(t, err)

	assert.Equal(t, "Two", result.Page.Text("hero.title"))
	assert.Equal(t, "B", result.Page.Text("hero.badge"))
}

func TestSyncSiteFields(t *testing.T) {
	committed := newMemoryCommitted(t)
	store := draft.NewMemoryStore()
	svc := NewSyncService(store, committed, committed)
	ctx := context.Background()

	result, err := svc.Sync(ctx, "s1", "contact", content.Form{
		"hero_title":                       "Hi",
		"site_name":                        "New Name",
		"site_footer_contact_line_0_label": "Call",
	})
	require.NoError(t, err)

	assert.True(t, result.SiteChanged)
	assert.Equal(t, "New Name", result.Site.Text("name"))
	assert.Equal(t, "Call", result.Site.Text("footer.contact.lines.0.label"))
	assert.Equal(t, committed.site.Text("tagline"), result.Site.Text("tagline"))

	stored, err := store.Get(ctx, draft.Key{Session: "s1", Page: content.SiteKey})
	require.NoError(t, err)
	assert.Equal(t, result.Site, stored.Document)

	other, err := svc.Sync(ctx, "s1", "home", content.Form{"hero_title": "x"})
	require.NoError(t, err)
	assert.Equal(t, "New Name", other.Site.Text("name"), "site draft is shared across pages of a session")
}

func TestSyncUnknownPage(t *testing.T) {
	committed := newMemoryCommitted(t)
	store := draft.NewMemoryStore()
	svc := NewSyncService(store, committed, committed)

	_, err := svc.Sync(context.Background(), "s1", "blog", content.Form{"hero_title": "x"})
	assert.ErrorIs(t, err, content.ErrUnknownPage)

	removed, _ := store.Sweep(context.Background(), maxTime())
	assert.Zero(t, removed, "nothing may be stored for an unknown page")
}

func TestSyncStoreFailureLeavesDraftUntouched(t *testing.T) {
	committed := newMemoryCommitted(t)
	store := &failingStore{Store: draft.NewMemoryStore()}
	svc := NewSyncService(store, committed, committed)
	ctx := context.Background()

	_, err := svc.Sync(ctx, "s1", "home", content.Form{"hero_title": "Good", "site_name": "Site"})
	require.NoError(t, err)
	before, err := store.Get(ctx, draft.Key{Session: "s1", Page: "home"})
	require.NoError(t, err)

	store.failWrites = true
	_, err = svc.Sync(ctx, "s1", "home", content.Form{"hero_title": "Bad", "site_name": "Broken"})
	require.Error(t, err)

	after, err := store.Get(ctx, draft.Key{Session: "s1", Page: "home"})
	require.NoError(t, err)
	assert.Equal(t, before.Document, after.Document)

	site, err := store.Get(ctx, draft.Key{Session: "s1", Page: content.SiteKey})
	require.NoError(t, err)
	assert.Equal(t, "Site", site.Document.Text("name"))
}

func TestSyncSessionsAreIsolated(t *testing.T) {
	committed := newMemoryCommitted(t)
	svc := NewSyncService(draft.NewMemoryStore(), committed, committed)
	ctx := context.Background()

	_, err := svc.Sync(ctx, "alice", "home", content.Form{"hero_title": "Alice"})
	require.NoError(t, err)

	bob, err := svc.Resolve(ctx, "bob", "home")
	require.NoError(t, err)
	assert.False(t, bob.PageDraft)
	assert.Equal(t, committed.pages["home"].Text("hero.title"), bob.Page.Text("hero.title"))
}

func TestSyncConcurrentEditsSameSession(t *testing.T) {
	committed := newMemoryCommitted(t)
	svc := NewSyncService(draft.NewMemoryStore(), committed, committed)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value := fmt.Sprintf("v%d", i)
			_, err := svc.Sync(ctx, "s1", "home", content.Form{
				"hero_title":                 value,
				"what_we_print_item_0_title": value,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	final, err := svc.Resolve(ctx, "s1", "home")
	require.NoError(t, err)
	assert.Equal(t, final.Page.Text("hero.title"), final.Page.Text("what_we_print.items.0.title"))
	assert.Zero(t, svc.locks.size())
}

func TestDiscardRestoresCommitted(t *testing.T) {
	committed := newMemoryCommitted(t)
	svc := NewSyncService(draft.NewMemoryStore(), committed, committed)
	ctx := context.Background()

	_, err := svc.Sync(ctx, "s1", "home", content.Form{"hero_title": "Draft", "site_name": "Draft site"})
	require.NoError(t, err)
	require.NoError(t, svc.Discard(ctx, "s1", "home"))

	resolved, err := svc.Resolve(ctx, "s1", "home")
	require.NoError(t, err)
	assert.False(t, resolved.PageDraft)
	assert.False(t, resolved.SiteDraft)
	assert.Equal(t, committed.site.Text("name"), resolved.Site.Text("name"))
}

func TestPublishPromotesDraft(t *testing.T) {
	committed := newMemoryCommitted(t)
	svc := NewSyncService(draft.NewMemoryStore(), committed, committed)
	ctx := context.Background()

	_, err := svc.Sync(ctx, "s1", "home", content.Form{"hero_title": "", "site_name": "Published"})
	require.NoError(t, err)

	result, err := svc.Publish(ctx, "s1", "home")
	require.NoError(t, err)

	assert.Equal(t, []string{"hero.title"}, result.Missing)
	assert.Equal(t, "Published", committed.site.Text("name"))
	assert.Equal(t, "", committed.pages["home"].Text("hero.title"))

	resolved, err := svc.Resolve(ctx, "s1", "home")
	require.NoError(t, err)
	assert.False(t, resolved.PageDraft)
}

func TestPublishFailureKeepsDraft(t *testing.T) {
	committed := newMemoryCommitted(t)
	svc := NewSyncService(draft.NewMemoryStore(), committed, committed)
	ctx := context.Background()

	_, err := svc.Sync(ctx, "s1", "home", content.Form{"hero_title": "Pending"})
	require.NoError(t, err)

	committed.err = errors.New("locked")
	_, err = svc.Publish(ctx, "s1", "home")
	require.Error(t, err)

	resolved, err := svc.Resolve(ctx, "s1", "home")
	require.NoError(t, err)
	assert.True(t, resolved.PageDraft)
	assert.Equal(t, "Pending", resolved.Page.Text("hero.title"))
}
