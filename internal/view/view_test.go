package view

import (
	"bytes"
	"strings"
	"testing"
)

func TestTemplatesRender(t *testing.T) {
	tmpl, err := Templates()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "login.html", map[string]any{"title": "Admin login", "error": "Wrong password", "next": "/store"})
	if err != nil {
		t.Fatalf("render login: %v", err)
	}
	if !strings.Contains(buf.String(), "Wrong password") || !strings.Contains(buf.String(), `value="/store"`) {
		t.Fatalf("unexpected login page: %s", buf.String())
	}

	buf.Reset()
	err = tmpl.ExecuteTemplate(&buf, "dashboard.html", map[string]any{
		"title":         "Dashboard",
		"passwordState": "default",
		"pages":         []struct{ Key, URL string; Draft bool }{{Key: "home", URL: "/", Draft: true}},
	})
	if err != nil {
		t.Fatalf("render dashboard: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, ">Home</a>") || !strings.Contains(out, "draft") || !strings.Contains(out, "default admin password") {
		t.Fatalf("unexpected dashboard: %s", out)
	}
}
