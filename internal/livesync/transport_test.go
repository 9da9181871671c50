package livesync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/printstudio/internal/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /admin/login", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/"})
		http.Redirect(w, r, "/", http.StatusFound)
	})
	mux.HandleFunc("POST /admin/api/pages/{page}/draft", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if cookie, err := r.Cookie("session"); err != nil || cookie.Value != "ok" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "login required"})
			return
		}
		if r.PathValue("page") != "home" {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unknown page"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"page": map[string]any{
				"hero":          map[string]any{"title": r.FormValue("hero_title")},
				"what_we_print": map[string]any{"items": []any{map[string]any{"title": "Cards", "bullets": []any{"Foil"}}}},
			},
			"site": map[string]any{"name": "Inkwell"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPTransportSync(t *testing.T) {
	srv := stubServer(t)
	transport, err := NewHTTPTransport(srv.URL+"/", nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = transport.Sync(ctx, "home", content.Form{"hero_title": "Hi"})
	var status *StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusUnauthorized, status.Code)
	assert.Equal(t, "login required", status.Message)

	require.ErrorIs(t, transport.Login(ctx, "wrong"), ErrLoginFailed)
	require.NoError(t, transport.Login(ctx, "secret"))

	res, err := transport.Sync(ctx, "home", content.Form{"hero_title": "Hi"})
	require.NoError(t, err)
	assert.Equal(t, "Hi", res.Page.Text("hero.title"))
	require.Len(t, res.Page.Items("what_we_print.items"), 1)
	assert.Equal(t, []string{"Foil"}, res.Page.Items("what_we_print.items")[0]["bullets"])
	assert.Equal(t, "Inkwell", res.Site.Text("name"))

	_, err = transport.Sync(ctx, "store", content.Form{})
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusNotFound, status.Code)
}

func TestNewHTTPTransportRejectsRelativeURL(t *testing.T) {
	_, err := NewHTTPTransport("localhost:8080", nil)
	assert.Error(t, err)
}
