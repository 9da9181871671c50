// Package view holds the admin HTML templates.
package view

import (
	"embed"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the admin templates. The router installs them with
// SetHTMLTemplate.
func Templates() (*template.Template, error) {
	return template.New("admin").Funcs(template.FuncMap{
		"title": func(s string) string {
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}).ParseFS(templateFS, "templates/*.html")
}
