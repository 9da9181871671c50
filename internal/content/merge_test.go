package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *Schema {
	return NewSchema("test",
		Object("hero", Text("title"), Text("subtitle")),
		Collection("items", "item", Text("title"), Text("description")),
	)
}

func TestMergeHeroAndNewItem(t *testing.T) {
	s := testSchema()
	base := s.Normalize(map[string]any{"hero": map[string]any{"title": "Welcome"}})

	got := s.Merge(base, Form{"hero_title": "Welcome!", "item_0_title": "A"})

	assert.Equal(t, "Welcome!", got.Text("hero.title"))
	require.Len(t, got.Items("items"), 1)
	assert.Equal(t, Document{"title": "A", "description": ""}, got.Items("items")[0])
}

func TestMergeWithoutItemsClearsCollection(t *testing.T) {
	s := testSchema()
	base := s.Normalize(map[string]any{
		"items": []any{
			map[string]any{"title": "one"},
			map[string]any{"title": "two"},
		},
	})

	got := s.Merge(base, Form{"hero_title": "Hi"})

	assert.Empty(t, got.Items("items"))
	assert.Len(t, base.Items("items"), 2, "base must not be modified")
}

func TestMergeReplacesCollectionInSubmittedOrder(t *testing.T) {
	s := testSchema()
	base := s.Normalize(map[string]any{
		"items": []any{
			map[string]any{"title": "a", "description": "keep?"},
			map[string]any{"title": "b"},
			map[string]any{"title": "c"},
		},
	})

	got := s.Merge(base, Form{
		"item_1_title": "second",
		"item_0_title": "first",
	})

	items := got.Items("items")
	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].Text("title"))
	assert.Equal(t, "", items[0].Text("description"), "entries are replaced, not merged")
	assert.Equal(t, "second", items[1].Text("title"))
}

func TestMergeKeepsUntouchedScalars(t *testing.T) {
	s := testSchema()
	base := s.Normalize(map[string]any{"hero": map[string]any{"title": "T", "subtitle": "S"}})

	got := s.Merge(base, Form{"hero_subtitle": "new"})

	assert.Equal(t, "T", got.Text("hero.title"))
	assert.Equal(t, "new", got.Text("hero.subtitle"))
}

func TestMergeToleratesMalformedNames(t *testing.T) {
	s := testSchema()

	got := s.Merge(s.Default(), Form{
		"item_x_title":   "bad index",
		"item__title":    "empty index",
		"item_7_title":   "seven",
		"item_3_title":   "three",
		"item_3_unknown": "ignored",
		"item_2":         "no field",
		"nonsense":       "ignored",
		"hero_missing":   "ignored",
	})

	items := got.Items("items")
	require.Len(t, items, 2)
	assert.Equal(t, "three", items[0].Text("title"))
	assert.Equal(t, "seven", items[1].Text("title"))
	assert.Equal(t, "", got.Text("hero.title"))
}

func TestMergeIsDeterministic(t *testing.T) {
	s := testSchema()
	base := s.Default()
	form := Form{"item_1_title": "b", "item_01_title": "a", "hero_title": "x"}

	first := s.Merge(base, form)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, s.Merge(base, form))
	}
}

func TestMergeKeepsTextAsTyped(t *testing.T) {
	s := testSchema()

	for _, typed := range []string{
		"Sizes <A4 or bigger",
		"5 < 6 and x<y",
		"a &amp; b",
		"Tom & Jerry",
		"<b>Bold</b>",
	} {
		got := s.Merge(s.Default(), Form{"hero_title": "  " + typed + "  "})
		assert.Equal(t, typed, got.Text("hero.title"))
		assert.Equal(t, typed, s.Encode(got)["hero_title"])
	}
}

func TestMergeFiltersUnsafeURLs(t *testing.T) {
	s, err := PageSchema("home")
	require.NoError(t, err)

	for raw, want := range map[string]string{
		"/contact":                           "/contact",
		"#quote":                             "#quote",
		"https://inkwell.example/a?b=1&c=2":  "https://inkwell.example/a?b=1&c=2",
		"mailto:hello@inkwell.example":       "mailto:hello@inkwell.example",
		"tel:+15550100":                      "tel:+15550100",
		"  /store  ":                         "/store",
		"javascript:alert(document.cookie)":  "",
		"JavaScript:alert(1)":                "",
		"data:text/html;base64,PHNjcmlwdD4=": "",
		"vbscript:msgbox":                    "",
	} {
		got := s.Merge(s.Default(), Form{"hero_cta_link": raw, "hero_image": raw})
		assert.Equal(t, want, got.Text("hero.cta_link"), raw)
		assert.Equal(t, want, got.Text("hero.image"), raw)
	}
}

func TestMergePatchNestedObjects(t *testing.T) {
	s, err := PageSchema("services")
	require.NoError(t, err)
	base := s.Normalize(map[string]any{
		"process": map[string]any{
			"title": "How",
			"cta":   map[string]any{"title": "Go", "link": "/contact"},
		},
	})

	got := s.MergePatch(base, Document{"process": Document{"cta": Document{"title": "Start"}}})

	assert.Equal(t, "How", got.Text("process.title"))
	assert.Equal(t, "Start", got.Text("process.cta.title"))
	assert.Equal(t, "/contact", got.Text("process.cta.link"))
}

func TestSiteTouches(t *testing.T) {
	site := SiteSchema()

	assert.False(t, site.Touches(Form{"hero_title": "x"}))
	assert.True(t, site.Touches(Form{"site_name": "x"}))
	assert.True(t, site.Touches(Form{"site_footer_contact_line_0_label": "x"}))
}

func TestUnknownPage(t *testing.T) {
	_, err := PageSchema("blog")
	assert.ErrorIs(t, err, ErrUnknownPage)
}
