package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"llmchat/internal/config"
	"llmchat/internal/httpapi"
	"llmchat/pkg/types"
)

type stubService struct{}

func (stubService) ModelName() string { return "tiny.gguf" }
func (stubService) Ready() bool       { return true }
func (stubService) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	return "echo: " + req.Prompt, nil
}

type stubFortune struct{}

func (stubFortune) Fortune() string { return "Good things ahead." }

func noEnv(string) (string, bool) { return "", false }

func execute(t *testing.T, lookup func(string) (string, bool), args ...string) (string, error) {
	t.Helper()
	root := buildRootCmdWith(lookup)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file", "", "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestClientDemo(t *testing.T) {
	srv := httptest.NewServer(httpapi.NewMux(stubService{}, stubFortune{}))
	defer srv.Close()
	out, err := execute(t, noEnv, "client", "demo", "--url", srv.URL+"/")
	if err != nil {
		t.Fatalf("demo: %v\n%s", err, out)
	}
	for _, want := range []string{
		"Health check:", `"status":"ok"`,
		"Model served by API: tiny.gguf",
		">>> Good things ahead.",
		"Response: echo: " + demoPrompt,
		"Model processing time:", "Total request time:",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestClientFallbacksWhenFieldsMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	out, err := execute(t, noEnv, "client", "model", "--url", srv.URL)
	if err != nil || !strings.Contains(out, "Model served by API: N/A") {
		t.Fatalf("model: err=%v out=%q", err, out)
	}
	out, err = execute(t, noEnv, "client", "fortune", "--url", srv.URL)
	if err != nil || !strings.Contains(out, ">>> Could not fetch fortune.") {
		t.Fatalf("fortune: err=%v out=%q", err, out)
	}
}

func TestClientGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	_, err := execute(t, noEnv, "client", "generate", "--url", srv.URL, "hello")
	if err == nil || !strings.Contains(err.Error(), "API error: 500 - boom") {
		t.Fatalf("expected API error, got %v", err)
	}
}

func TestClientURLFromConfigAndEnv(t *testing.T) {
	srv := httptest.NewServer(httpapi.NewMux(stubService{}, stubFortune{}))
	defer srv.Close()

	p := filepath.Join(t.TempDir(), "llmchat.yaml")
	if err := os.WriteFile(p, []byte("client:\n  base_url: "+srv.URL+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, noEnv, "--config", p, "client", "model")
	if err != nil || !strings.Contains(out, "tiny.gguf") {
		t.Fatalf("config url: err=%v out=%q", err, out)
	}

	env := func(k string) (string, bool) {
		if k == "LLMCHAT_API_URL" {
			return srv.URL, true
		}
		return "", false
	}
	out, err = execute(t, env, "client", "model")
	if err != nil || !strings.Contains(out, "tiny.gguf") {
		t.Fatalf("env url: err=%v out=%q", err, out)
	}
}

func TestClientRequiresSubcommand(t *testing.T) {
	if _, err := execute(t, noEnv, "client"); err == nil {
		t.Fatalf("expected error without subcommand")
	}
}

func TestBuildUI_SeedsHistoryAndDisablesChatWithoutModel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c := config.Default()
	c.History.DSN = filepath.Join(t.TempDir(), "chat_history.db")
	c.Model.Dir = t.TempDir()
	c.Model.Name = "missing.gguf"

	srv, cleanup, err := buildUI(ctx, c, zerolog.Nop())
	if err != nil {
		t.Fatalf("buildUI: %v", err)
	}
	defer cleanup()

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "chat-unavailable") {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}
