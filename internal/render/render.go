// Package render writes content documents into HTML through data-* markers.
// The browser script in web/static/js/live-draft.js implements the same
// marker vocabulary against the live DOM.
package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/printstudio/internal/content"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Marker attributes. Paths are dotted document paths; "site." addresses the
// site document, anything else the page (or the current collection item).
const (
	AttrField      = "data-field"
	AttrHref       = "data-href"
	AttrImage      = "data-image"
	AttrImageAlt   = "data-image-alt"
	AttrLines      = "data-lines"
	AttrLineTag    = "data-line-tag"
	AttrCollection = "data-collection"
	AttrItem       = "data-collection-item"
	AttrHideEmpty  = "data-hide-empty"
	AttrFlagClass  = "data-flag-class"
	AttrTheme      = "data-theme"

	// AttrBindPrefix binds any attribute: data-attr-placeholder="path".
	AttrBindPrefix = "data-attr-"
)

// urlAttrs are bound attributes that a browser follows or loads.
var urlAttrs = map[string]bool{"href": true, "src": true, "action": true, "formaction": true, "poster": true}

type scope struct {
	page content.Document
	site content.Document
	item content.Document
}

func (s scope) resolve(path string) (content.Document, string) {
	if rest, ok := strings.CutPrefix(path, "site."); ok {
		return s.site, rest
	}
	if rest, ok := strings.CutPrefix(path, "page."); ok {
		return s.page, rest
	}
	if s.item != nil {
		return s.item, path
	}
	return s.page, path
}

func (s scope) text(path string) string {
	doc, rest := s.resolve(path)
	return doc.Text(rest)
}

func (s scope) value(path string) any {
	doc, rest := s.resolve(path)
	v, _ := doc.Lookup(rest)
	return v
}

// Apply writes page and site values into every marker under root. It
// replaces marker contents wholesale, so applying the same documents twice
// yields the same tree.
func Apply(root *html.Node, page, site content.Document) {
	if page == nil {
		page = content.Document{}
	}
	if site == nil {
		site = content.Document{}
	}
	apply(root, scope{page: page, site: site})
}

func apply(n *html.Node, sc scope) {
	if n.Type == html.ElementNode {
		if isTemplate(n) {
			return
		}
		applyAttributes(n, sc)
		if path, ok := attr(n, AttrCollection); ok {
			renderCollection(n, path, sc)
			return
		}
		if path, ok := attr(n, AttrField); ok {
			setText(n, sc.text(path))
			return
		}
		if path, ok := attr(n, AttrLines); ok {
			renderLines(n, path, sc)
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		apply(c, sc)
	}
}

func applyAttributes(n *html.Node, sc scope) {
	if path, ok := attr(n, AttrHref); ok {
		if href := content.SafeURL(sc.text(path)); href != "" {
			setAttr(n, "href", href)
		} else {
			removeAttr(n, "href")
		}
	}
	if path, ok := attr(n, AttrImage); ok {
		renderImage(n, path, sc)
	}
	if path, ok := attr(n, AttrHideEmpty); ok {
		setHidden(n, isEmpty(sc.value(path)))
	}
	if rule, ok := attr(n, AttrFlagClass); ok {
		if path, class, found := strings.Cut(rule, ":"); found && class != "" {
			doc, rest := sc.resolve(path)
			toggleClass(n, class, doc.Flag(rest))
		}
	}
	var bindings [][2]string
	for _, a := range n.Attr {
		if name, ok := strings.CutPrefix(a.Key, AttrBindPrefix); ok && name != "" && a.Namespace == "" {
			bindings = append(bindings, [2]string{name, a.Val})
		}
	}
	for _, b := range bindings {
		value := sc.text(b[1])
		if urlAttrs[b[0]] {
			value = content.SafeURL(value)
		}
		if value != "" {
			setAttr(n, b[0], value)
		} else {
			removeAttr(n, b[0])
		}
	}
	if path, ok := attr(n, AttrTheme); ok {
		doc, rest := sc.resolve(path)
		if style := themeStyle(doc.Object(rest)); style != "" {
			setAttr(n, "style", style)
		} else {
			removeAttr(n, "style")
		}
	}
}

// renderImage shows the container with its image when a source is set and
// hides the whole container otherwise.
func renderImage(n *html.Node, path string, sc scope) {
	src := content.SafeURL(sc.text(path))
	img := n
	if n.DataAtom != atom.Img {
		img = find(n, byTag(atom.Img))
	}

	if src == "" {
		setHidden(n, true)
		if img != nil {
			removeAttr(img, "src")
			setAttr(img, "alt", "")
		}
		return
	}
	setHidden(n, false)
	if img == nil {
		return
	}
	setAttr(img, "src", src)
	if altPath, ok := attr(n, AttrImageAlt); ok {
		setAttr(img, "alt", sc.text(altPath))
	}
}

func renderLines(n *html.Node, path string, sc scope) {
	tag, ok := attr(n, AttrLineTag)
	if !ok || tag == "" {
		tag = "li"
	}
	doc, rest := sc.resolve(path)
	removeChildren(n)
	for _, line := range doc.Lines(rest) {
		el := newElement(tag)
		setText(el, line)
		n.AppendChild(el)
	}
}

// renderCollection clears everything but the <template> prototype and
// rebuilds one clone of it per item, in order.
func renderCollection(n *html.Node, path string, sc scope) {
	var proto *html.Node
	var stale []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if proto == nil && isTemplate(c) {
			proto = c
			continue
		}
		stale = append(stale, c)
	}
	for _, c := range stale {
		n.RemoveChild(c)
	}
	if proto == nil {
		return
	}

	doc, rest := sc.resolve(path)
	for i, item := range doc.Items(rest) {
		itemScope := scope{page: sc.page, site: sc.site, item: item}
		for c := proto.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			clone := cloneNode(c)
			setAttr(clone, AttrItem, strconv.Itoa(i))
			apply(clone, itemScope)
			n.AppendChild(clone)
		}
	}
}

func isEmpty(v any) bool {
	switch value := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(value) == ""
	case []string:
		return len(value) == 0
	case []content.Document:
		return len(value) == 0
	case []any:
		return len(value) == 0
	case bool:
		return !value
	}
	return false
}

// themeStyle turns site colours into CSS custom properties, dropping values
// with characters a colour never needs.
func themeStyle(colors content.Document) string {
	keys := make([]string, 0, len(colors))
	for key := range colors {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		value := strings.TrimSpace(colors.Text(key))
		if value == "" || !safeCSSValue(value) {
			continue
		}
		parts = append(parts, "--color-"+strings.ReplaceAll(key, "_", "-")+": "+value)
	}
	return strings.Join(parts, "; ")
}

func safeCSSValue(value string) bool {
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("#(),.% ", r):
		default:
			return false
		}
	}
	return true
}
