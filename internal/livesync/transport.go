package livesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/printstudio/internal/content"
)

// ErrLoginFailed is returned when the server rejects the admin password.
var ErrLoginFailed = errors.New("livesync: login rejected")

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("livesync: server answered %d", e.Code)
	}
	return fmt.Sprintf("livesync: server answered %d: %s", e.Code, e.Message)
}

// Doer is the part of *http.Client the transport needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPTransport talks to the draft endpoints of a running server, keeping the
// admin session in a cookie jar.
type HTTPTransport struct {
	base   *url.URL
	client Doer
}

// NewHTTPTransport returns a transport for the server at baseURL. client may
// be nil, in which case a client with its own cookie jar is created.
func NewHTTPTransport(baseURL string, client Doer) (*HTTPTransport, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", baseURL)
	}
	if client == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		client = &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	return &HTTPTransport{base: base, client: client}, nil
}

func (t *HTTPTransport) endpoint(path string) string {
	return t.base.String() + path
}

// Login signs in with the admin password. A redirect means success; the
// login page answering again means the password was wrong.
func (t *HTTPTransport) Login(ctx context.Context, password string) error {
	body := url.Values{"password": {password}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint("/admin/login"), strings.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		return nil
	}
	return ErrLoginFailed
}

// Sync posts the form to the page's draft endpoint.
func (t *HTTPTransport) Sync(ctx context.Context, page string, form content.Form) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.draftURL(page), strings.NewReader(form.Values().Encode()))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return t.do(req, page)
}

// Resolve fetches the session's current page and site documents.
func (t *HTTPTransport) Resolve(ctx context.Context, page string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.draftURL(page), nil)
	if err != nil {
		return Result{}, err
	}
	return t.do(req, page)
}

// Publish promotes the session's drafts.
func (t *HTTPTransport) Publish(ctx context.Context, page string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint("/admin/api/pages/"+url.PathEscape(page)+"/publish"), nil)
	if err != nil {
		return Result{}, err
	}
	return t.do(req, page)
}

func (t *HTTPTransport) draftURL(page string) string {
	return t.endpoint("/admin/api/pages/" + url.PathEscape(page) + "/draft")
}

func (t *HTTPTransport) do(req *http.Request, page string) (Result, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := t.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &payload)
		return Result{}, &StatusError{Code: resp.StatusCode, Message: payload.Error}
	}

	var raw struct {
		Page map[string]any `json:"page"`
		Site map[string]any `json:"site"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}
	schema, err := content.PageSchema(page)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Page: schema.Normalize(raw.Page),
		Site: content.SiteSchema().Normalize(raw.Site),
	}, nil
}
