package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/printstudio/internal/content"
	"github.com/printstudio/internal/livesync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoTransport answers every sync with the page decoded from the form.
type echoTransport struct {
	mu    sync.Mutex
	forms []content.Form
}

func (e *echoTransport) Sync(_ context.Context, page string, form content.Form) (livesync.Result, error) {
	e.mu.Lock()
	e.forms = append(e.forms, form)
	e.mu.Unlock()
	schema, err := content.PageSchema(page)
	if err != nil {
		return livesync.Result{}, err
	}
	return livesync.Result{Page: schema.Merge(schema.Default(), form), Site: content.SiteSchema().Default()}, nil
}

func (e *echoTransport) synced() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.forms)
}

type editFixture struct {
	session   *editSession
	transport *echoTransport
	published []string
	formPath  string
	outPath   string
}

func newEditFixture(t *testing.T) *editFixture {
	t.Helper()
	schema, err := content.PageSchema("home")
	require.NoError(t, err)

	dir := t.TempDir()
	fx := &editFixture{
		transport: &echoTransport{},
		formPath:  filepath.Join(dir, "home.form"),
		outPath:   filepath.Join(dir, "home.html"),
	}
	current := livesync.Result{Page: schema.Default(), Site: content.SiteSchema().Default()}
	publish := func(_ context.Context, page string) (livesync.Result, error) {
		fx.published = append(fx.published, page)
		doc := schema.Default()
		doc["hero"].(content.Document)["title"] = "Published hero"
		return livesync.Result{Page: doc, Site: content.SiteSchema().Default()}, nil
	}
	fx.session = newEditSession(schema, fx.formPath, fx.outPath, current, publish)

	form := content.Form{
		"hero_title":                "Draft hero",
		"testimonials_item_0_quote": "Fast",
		"testimonials_item_1_quote": "Sharp",
		"testimonials_item_2_quote": "Cheap",
	}
	fx.session.controller = livesync.New(schema.Key, form, fx.transport, fx.session.accept,
		livesync.WithDelay(time.Hour),
		livesync.WithPreview(fx.session.preview),
	)
	t.Cleanup(fx.session.controller.Close)
	return fx
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestEditAddWritesFormAndPreview(t *testing.T) {
	fx := newEditFixture(t)

	require.NoError(t, fx.session.command(context.Background(), "add what_we_print_item title=Mugs description=Ceramic"))

	form := readFile(t, fx.formPath)
	assert.Contains(t, form, "what_we_print_item_0_title=Mugs")
	assert.Contains(t, form, "what_we_print_item_0_description=Ceramic")

	page := readFile(t, fx.outPath)
	assert.Contains(t, page, "Mugs")
	assert.Contains(t, page, "Draft hero")
	assert.Equal(t, 0, fx.transport.synced(), "preview must not wait for the server")
}

func TestEditAddToSiteCollection(t *testing.T) {
	fx := newEditFixture(t)

	require.NoError(t, fx.session.command(context.Background(), "add site_footer_contact_line label=Phone url=tel:+15550100"))

	assert.Contains(t, readFile(t, fx.formPath), "site_footer_contact_line_0_label=Phone")
	assert.Contains(t, readFile(t, fx.outPath), "tel:+15550100")
}

func TestEditRemoveRenumbers(t *testing.T) {
	fx := newEditFixture(t)

	require.NoError(t, fx.session.command(context.Background(), "remove testimonials_item 1"))

	form := fx.session.controller.Form()
	assert.Equal(t, "Fast", form["testimonials_item_0_quote"])
	assert.Equal(t, "Cheap", form["testimonials_item_1_quote"])
	_, ok := form["testimonials_item_2_quote"]
	assert.False(t, ok)

	saved := readFile(t, fx.formPath)
	assert.Contains(t, saved, "testimonials_item_1_quote=Cheap")
	assert.NotContains(t, saved, "Sharp")
	assert.NotContains(t, readFile(t, fx.outPath), "Sharp")
}

func TestEditRejectsBadCommands(t *testing.T) {
	fx := newEditFixture(t)
	ctx := context.Background()

	tests := []struct {
		line string
		want string
	}{
		{"add hero", "unknown collection"},
		{"add nope_item title=x", "unknown collection"},
		{"add testimonials_item quote", "expected field=value"},
		{"remove testimonials_item x", "bad index"},
		{"remove testimonials_item", "usage"},
		{"shout", "unknown command"},
	}
	for _, tt := range tests {
		err := fx.session.command(ctx, tt.line)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("%q: expected error containing %q, got %v", tt.line, tt.want, err)
		}
	}
	_, err := os.Stat(fx.formPath)
	assert.True(t, os.IsNotExist(err), "rejected commands must not touch the form file")
}

func TestEditPublishSyncsFirst(t *testing.T) {
	fx := newEditFixture(t)
	ctx := context.Background()

	fx.session.controller.Set("hero_title", "Latest hero")
	require.NoError(t, fx.session.command(ctx, "publish"))

	require.Equal(t, 1, fx.transport.synced(), "pending edit is synced before publishing")
	assert.Equal(t, "Latest hero", fx.transport.forms[0]["hero_title"])
	assert.Equal(t, []string{"home"}, fx.published)
	assert.Contains(t, readFile(t, fx.outPath), "Published hero")
}

func TestEditFlushSendsPendingEdit(t *testing.T) {
	fx := newEditFixture(t)

	fx.session.controller.Set("hero_title", "Flushed")
	require.NoError(t, fx.session.command(context.Background(), "flush"))
	fx.session.controller.Wait()

	assert.Equal(t, 1, fx.transport.synced())
	assert.Contains(t, readFile(t, fx.outPath), "Flushed")
}

func TestCollectionPrefixes(t *testing.T) {
	schema, err := content.PageSchema("home")
	require.NoError(t, err)

	got := collectionPrefixes(schema, content.SiteSchema())
	for _, name := range []string{"what_we_print_item", "why_choose_item", "testimonials_item", "site_footer_contact_line"} {
		assert.True(t, got[name], name)
	}
	assert.Len(t, got, 4)
}
