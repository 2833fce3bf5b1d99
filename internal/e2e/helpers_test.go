package e2e

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"llmchat/internal/client"
	"llmchat/internal/fortune"
	"llmchat/internal/httpapi"
	"llmchat/internal/pipeline"
	"llmchat/internal/registry"
)

// createTempModelsDir creates a temporary directory populated with empty .gguf files.
func createTempModelsDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte(""), 0o644); err != nil {
			t.Fatalf("write temp model %s: %v", n, err)
		}
	}
	return dir
}

// echoAdapter answers with the prompt after an optional delay.
type echoAdapter struct {
	delay time.Duration

	mu   sync.Mutex
	last pipeline.InferParams
}

func (a *echoAdapter) Start(string) (pipeline.InferSession, error) { return &echoSession{a: a}, nil }

func (a *echoAdapter) lastParams() pipeline.InferParams {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

type echoSession struct{ a *echoAdapter }

func (s *echoSession) Generate(ctx context.Context, prompt string, p pipeline.InferParams, onToken func(string) error) (pipeline.FinalResult, error) {
	s.a.mu.Lock()
	s.a.last = p
	s.a.mu.Unlock()
	if s.a.delay > 0 {
		select {
		case <-time.After(s.a.delay):
		case <-ctx.Done():
			return pipeline.FinalResult{}, ctx.Err()
		}
	}
	if onToken != nil {
		if err := onToken("echo: " + prompt); err != nil {
			return pipeline.FinalResult{}, err
		}
	}
	return pipeline.FinalResult{FinishReason: "stop"}, nil
}

func (s *echoSession) Close() error { return nil }

// newStack wires registry -> pipeline -> httpapi behind an httptest server and returns
// a client pointed at it. The pipeline load error, if any, is returned too.
func newStack(t *testing.T, dir string, cfg pipeline.Config) (*client.Client, *pipeline.Pipeline, error) {
	t.Helper()
	reg, err := registry.LoadDir(dir)
	if err != nil {
		t.Fatalf("scan models: %v", err)
	}
	cfg.Registry = reg
	p := pipeline.New(cfg)
	loadErr := p.Load(context.Background())
	t.Cleanup(func() { _ = p.Close() })

	srv := httptest.NewServer(httpapi.NewMux(p, fortune.New(7)))
	t.Cleanup(srv.Close)
	c := client.New(srv.URL+"/", client.WithTimeout(10*time.Second))
	t.Cleanup(c.Close)
	return c, p, loadErr
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}
