package render

import (
	"strings"
	"testing"

	"github.com/printstudio/internal/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// formOf collects what a browser would submit from the editor, skipping
// prototype templates.
func formOf(n *html.Node, form content.Form) {
	if isTemplate(n) {
		return
	}
	if n.Type == html.ElementNode {
		if name, ok := attr(n, "name"); ok {
			switch n.DataAtom {
			case atom.Textarea:
				form[name] = textOf(n)
			case atom.Input:
				if typ, _ := attr(n, "type"); typ == "checkbox" {
					if _, checked := attr(n, "checked"); checked {
						form[name] = "1"
					} else {
						form[name] = "0"
					}
				} else if typ != "file" {
					form[name], _ = attr(n, "value")
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		formOf(c, form)
	}
}

func TestEditorRoundTripsDocuments(t *testing.T) {
	s := seed(t)
	for _, key := range content.PageKeys() {
		schema, err := content.PageSchema(key)
		require.NoError(t, err)
		page := schema.Normalize(s.Pages[key])
		site := content.SiteSchema().Normalize(s.Site)

		form := content.Form{}
		formOf(Editor(schema, page, site), form)

		assert.Equal(t, schema.Encode(page), pageNames(form), key)
		assert.Equal(t, page, schema.DecodeDocument(form), key)
		assert.Equal(t, site, content.SiteSchema().DecodeDocument(form), key)
	}
}

// pageNames drops the site_ entries so the page encoding can be compared.
func pageNames(form content.Form) content.Form {
	out := content.Form{}
	for name, value := range form {
		if !strings.HasPrefix(name, content.SiteKey+"_") {
			out[name] = value
		}
	}
	return out
}

func TestEditorCollectionPrototype(t *testing.T) {
	schema, err := content.PageSchema("home")
	require.NoError(t, err)
	panel := Editor(schema, content.Document{}, content.Document{})

	editor := find(panel, func(n *html.Node) bool {
		v, ok := attr(n, "data-collection-editor")
		return ok && v == "what_we_print_item"
	})
	require.NotNil(t, editor)
	for c := editor.FirstChild; c != nil; c = c.NextSibling {
		_, isEntry := attr(c, "data-entry")
		assert.False(t, isEntry, "empty collection renders no entries")
	}

	proto := find(editor, byAttr("data-entry-prototype"))
	require.NotNil(t, proto)
	input := find(proto, byTag(atom.Input))
	name, _ := attr(input, "name")
	assert.Equal(t, "what_we_print_item___INDEX___title", name)
	assert.NotNil(t, find(editor, byAttr("data-add-entry")))
}

func TestEditorMarksFlagsAndRequired(t *testing.T) {
	schema, err := content.PageSchema("home")
	require.NoError(t, err)
	panel := Editor(schema, content.Document{}, content.Document{"flags": content.Document{"show_admin_border": true}})

	flag := find(panel, func(n *html.Node) bool {
		v, _ := attr(n, "name")
		return v == "site_flags_show_admin_border"
	})
	require.NotNil(t, flag)
	_, checked := attr(flag, "checked")
	assert.True(t, checked)

	title := find(panel, func(n *html.Node) bool {
		v, _ := attr(n, "name")
		return v == "hero_title"
	})
	require.NotNil(t, title)
	_, required := attr(title, "required")
	assert.True(t, required)
}
