package render

import (
	"strconv"
	"strings"

	"github.com/printstudio/internal/content"
	"golang.org/x/net/html"
)

// IndexPlaceholder stands in for the entry index inside a collection's
// prototype; scripts substitute the next free index when adding an entry.
const IndexPlaceholder = "__INDEX__"

// Editor builds the editing panel for a page and the site settings. Every
// input is named with its flat form name and holds the current value.
func Editor(pageSchema *content.Schema, page, site content.Document) *html.Node {
	panel := newElement("aside", "class", "live-editor", "data-live-editor", "", "data-page", pageSchema.Key)
	form := newElement("form", "data-editor-form", "", "autocomplete", "off")
	panel.AppendChild(form)

	sections := []struct {
		label  string
		name   string
		schema *content.Schema
		doc    content.Document
	}{
		{"Page", "page", pageSchema, page},
		{"Site", "site", content.SiteSchema(), site},
	}
	for _, s := range sections {
		fieldset := newElement("fieldset", "data-editor-section", s.name)
		fieldset.AppendChild(textElement("legend", s.label))
		appendFields(fieldset, s.schema.Fields, s.schema.Prefix, s.schema.Encode(s.doc), s.doc)
		form.AppendChild(fieldset)
	}

	actions := newElement("div", "class", "editor-actions")
	actions.AppendChild(textElement("span", "idle", "data-sync-status", ""))
	actions.AppendChild(textElement("button", "Publish", "type", "button", "data-publish", ""))
	actions.AppendChild(textElement("button", "Discard draft", "type", "button", "data-discard", ""))
	panel.AppendChild(actions)

	upload := newElement("form", "data-upload-form", "", "enctype", "multipart/form-data")
	upload.AppendChild(newElement("input", "type", "file", "name", "media", "accept", "image/png,image/jpeg,image/gif,image/webp"))
	panel.AppendChild(upload)
	return panel
}

func appendFields(parent *html.Node, fields []content.Field, prefix string, values content.Form, doc content.Document) {
	for _, f := range fields {
		name := content.FieldName(prefix, f.FormName())
		switch f.Kind {
		case content.KindObject:
			group := newElement("div", "class", "editor-group")
			group.AppendChild(textElement("h4", humanize(f.Name)))
			appendFields(group, f.Fields, name, values, doc.Object(f.Name))
			parent.AppendChild(group)
		case content.KindCollection:
			parent.AppendChild(collectionEditor(f, name, values, doc.Items(f.Name)))
		default:
			parent.AppendChild(inputField(f, name, values[name]))
		}
	}
}

func collectionEditor(f content.Field, name string, values content.Form, items []content.Document) *html.Node {
	wrap := newElement("div", "class", "editor-collection", "data-collection-editor", name)
	wrap.AppendChild(textElement("h4", humanize(f.Name)))
	for i, item := range items {
		wrap.AppendChild(entryEditor(f, content.ItemPrefix(name, i), strconv.Itoa(i), values, item))
	}

	proto := newElement("template", "data-entry-prototype", "")
	proto.AppendChild(entryEditor(f, name+"_"+IndexPlaceholder, IndexPlaceholder, content.Form{}, content.Document{}))
	wrap.AppendChild(proto)
	wrap.AppendChild(textElement("button", "Add "+humanize(f.FormName()), "type", "button", "data-add-entry", ""))
	return wrap
}

func entryEditor(f content.Field, prefix, index string, values content.Form, item content.Document) *html.Node {
	entry := newElement("div", "class", "editor-entry", "data-entry", "", "data-index", index)
	appendFields(entry, f.Fields, prefix, values, item)
	entry.AppendChild(textElement("button", "Remove", "type", "button", "data-remove-entry", ""))
	return entry
}

func inputField(f content.Field, name, value string) *html.Node {
	label := newElement("label", "class", "editor-field")
	label.AppendChild(textElement("span", humanize(f.Name)))

	var input *html.Node
	switch f.Kind {
	case content.KindLines:
		input = textElement("textarea", value, "name", name, "rows", "3")
	case content.KindFlag:
		input = newElement("input", "type", "checkbox", "name", name, "value", "1")
		if value == "1" {
			setAttr(input, "checked", "")
		}
	case content.KindImage:
		input = newElement("input", "type", "text", "name", name, "value", value, "data-upload-target", "")
	case content.KindURL:
		input = newElement("input", "type", "text", "inputmode", "url", "name", name, "value", value)
	default:
		input = newElement("input", "type", "text", "name", name, "value", value)
	}
	if f.Required {
		setAttr(input, "required", "")
	}
	label.AppendChild(input)
	return label
}

func textElement(tag, text string, attrs ...string) *html.Node {
	n := newElement(tag, attrs...)
	setText(n, text)
	return n
}

func humanize(name string) string {
	words := strings.ReplaceAll(name, "_", " ")
	if words == "" {
		return ""
	}
	return strings.ToUpper(words[:1]) + words[1:]
}
