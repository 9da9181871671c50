package content

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// linkPolicy admits one <a href> whose URL is relative or uses a scheme a
// visitor's browser can follow safely.
var linkPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto", "tel")
	p.AllowRelativeURLs(true)
	return p
}()

// SafeURL returns the URL as bluemonday would publish it in a link, or ""
// when the policy rejects it (javascript:, data:, unparseable values).
func SafeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	sanitized := linkPolicy.Sanitize(`<a href="` + html.EscapeString(raw) + `"></a>`)

	z := html.NewTokenizer(strings.NewReader(sanitized))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			for _, a := range z.Token().Attr {
				if a.Key == "href" {
					return a.Val
				}
			}
		}
	}
}
