package ui

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"llmchat/internal/history"
	"llmchat/pkg/types"
)

type fakeGenerator struct {
	answer string
	err    error
	calls  []types.GenerateRequest
}

func (f *fakeGenerator) ModelName() string { return "fake.gguf" }
func (f *fakeGenerator) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

var errLoad = errors.New("model file missing")

func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

func newStore(t *testing.T) history.Store {
	t.Helper()
	s, err := history.NewSQLiteStore(filepath.Join(t.TempDir(), "ui.db"))
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// browser drives the front-end through a cookie-aware client that follows redirects.
type browser struct {
	t   *testing.T
	srv *httptest.Server
	hc  *http.Client
}

func newBrowser(t *testing.T, gen Generator, store history.Store, opts Options) *browser {
	t.Helper()
	if opts.SessionSecret == nil {
		opts.SessionSecret = []byte("0123456789abcdef0123456789abcdef")
	}
	s, err := New(gen, store, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	jar, _ := cookiejar.New(nil)
	return &browser{t: t, srv: srv, hc: &http.Client{Jar: jar}}
}

func (b *browser) get(path string) string {
	b.t.Helper()
	resp, err := b.hc.Get(b.srv.URL + path)
	if err != nil {
		b.t.Fatalf("GET %s: %v", path, err)
	}
	return b.read(resp)
}

func (b *browser) post(path string, form url.Values) string {
	b.t.Helper()
	resp, err := b.hc.PostForm(b.srv.URL+path, form)
	if err != nil {
		b.t.Fatalf("POST %s: %v", path, err)
	}
	return b.read(resp)
}

func (b *browser) read(resp *http.Response) string {
	b.t.Helper()
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		b.t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	return string(body)
}

func mustContain(t *testing.T, body string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(body, p) {
			t.Fatalf("expected %q in page:\n%s", p, body)
		}
	}
}
