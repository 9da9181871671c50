package render

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/printstudio/internal/content"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

//go:embed shells/*.html
var shellFS embed.FS

// Func renders one page's documents into a parsed shell.
type Func func(root *html.Node, page, site content.Document)

var pageRenderers = map[string]Func{
	"home":     Home,
	"services": Services,
	"contact":  Contact,
	"store":    Store,
}

// For returns the render function of a page key.
func For(key string) (Func, error) {
	fn, ok := pageRenderers[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", content.ErrUnknownPage, key)
	}
	return fn, nil
}

// Home fills the home shell. A call to action without a link points at the
// contact page.
func Home(root *html.Node, page, site content.Document) {
	view := page.Clone()
	if view == nil {
		view = content.Document{}
	}
	hero := view.Object("hero")
	if hero.Text("cta_text") != "" && strings.TrimSpace(hero.Text("cta_link")) == "" {
		hero["cta_link"] = "/contact"
		view["hero"] = hero
	}
	finish(root, view, site)
}

// Services fills the services shell with formatted bundle prices.
func Services(root *html.Node, page, site content.Document) {
	view := page.Clone()
	formatPrices(view, "bundles")
	finish(root, view, site)
}

// Contact fills the contact shell, deriving tel: and mailto: links. Form
// fields without a label are labelled from their name and default to text
// inputs.
func Contact(root *html.Node, page, site content.Document) {
	view := page.Clone()
	if view == nil {
		view = content.Document{}
	}
	studio := view.Object("studio")
	if strings.TrimSpace(studio.Text("phone_href")) == "" {
		studio["phone_href"] = telHref(studio.Text("phone"))
	}
	if email := strings.TrimSpace(studio.Text("email")); email != "" {
		studio["email_href"] = "mailto:" + email
	} else {
		studio["email_href"] = ""
	}
	view["studio"] = studio
	for _, field := range view.Items("form.fields") {
		if strings.TrimSpace(field.Text("label")) == "" {
			field["label"] = titleCase(strings.TrimSpace(field.Text("name")))
		}
		if strings.TrimSpace(field.Text("type")) == "" {
			field["type"] = "text"
		}
	}
	finish(root, view, site)
}

// Store fills the store shell with formatted product prices.
func Store(root *html.Node, page, site content.Document) {
	view := page.Clone()
	formatPrices(view, "products")
	finish(root, view, site)
}

func finish(root *html.Node, page, site content.Document) {
	Apply(root, page, site)
	if title := find(root, byTag(atom.Title)); title != nil {
		setText(title, Title(page, site))
	}
	if body := find(root, byTag(atom.Body)); body != nil {
		toggleClass(body, "admin-border", site.Flag("flags.show_admin_border"))
	}
}

// Title picks the document title: the page's meta title, then the site
// tagline, then the site name.
func Title(page, site content.Document) string {
	for _, candidate := range []string{page.Text("meta.title"), site.Text("tagline"), site.Text("name")} {
		if t := strings.TrimSpace(candidate); t != "" {
			return t
		}
	}
	return ""
}

func formatPrices(view content.Document, section string) {
	for _, item := range view.Items(section + ".items") {
		item["price"] = FormatPrice(item.Text("price"))
	}
}

// plainNumber matches decimal numbers only; live-draft.js uses the same
// pattern.
var plainNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// FormatPrice prefixes plain numbers with a dollar sign and leaves anything
// else ("from $40", "POA", "0x10") as written.
func FormatPrice(raw string) string {
	raw = strings.TrimSpace(raw)
	if plainNumber.MatchString(raw) {
		return "$" + raw
	}
	return raw
}

// titleCase upper-cases the first letter of every run of letters and
// lower-cases the rest: "full_name" becomes "Full_Name".
func titleCase(s string) string {
	var b strings.Builder
	inWord := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) && !inWord:
			b.WriteRune(unicode.ToUpper(r))
			inWord = true
		case unicode.IsLetter(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
			inWord = false
		}
	}
	return b.String()
}

func telHref(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		if r >= '0' && r <= '9' || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "tel:" + b.String()
}

// Shell parses the layout with the page fragment mounted in its main slot.
func Shell(key string) (*html.Node, error) {
	if _, err := For(key); err != nil {
		return nil, err
	}
	layout, err := shellFS.ReadFile("shells/layout.html")
	if err != nil {
		return nil, err
	}
	fragment, err := shellFS.ReadFile("shells/" + key + ".html")
	if err != nil {
		return nil, err
	}

	root, err := html.Parse(bytes.NewReader(layout))
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	slot := find(root, byAttr("data-slot"))
	if slot == nil {
		return nil, fmt.Errorf("layout has no main slot")
	}
	nodes, err := html.ParseFragment(bytes.NewReader(fragment), slot)
	if err != nil {
		return nil, fmt.Errorf("parse %s shell: %w", key, err)
	}
	for _, n := range nodes {
		slot.AppendChild(n)
	}
	if body := find(root, byTag(atom.Body)); body != nil {
		setAttr(body, "data-page", key)
	}
	return root, nil
}

// Options adds the editing surface to a rendered page.
type Options struct {
	// Editor is appended to <body> when set.
	Editor *html.Node
	// Scripts are appended to <body> as deferred script tags.
	Scripts []string
	// SyncURL is exposed to scripts as data-sync-url on <body>.
	SyncURL string
}

// Page renders a full HTML document for key.
func Page(w io.Writer, key string, page, site content.Document, opts Options) error {
	fn, err := For(key)
	if err != nil {
		return err
	}
	root, err := Shell(key)
	if err != nil {
		return err
	}
	fn(root, page, site)

	if body := find(root, byTag(atom.Body)); body != nil {
		if opts.SyncURL != "" {
			setAttr(body, "data-sync-url", opts.SyncURL)
		}
		if opts.Editor != nil {
			body.AppendChild(opts.Editor)
		}
		for _, src := range opts.Scripts {
			body.AppendChild(newElement("script", "src", src, "defer", ""))
		}
	}
	return html.Render(w, root)
}
