package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"llmchat/pkg/types"
)

// createModelFile creates an empty model file and returns its path.
func createModelFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("gguf"), 0o644); err != nil {
		t.Fatalf("create file: %v", err)
	}
	return p
}

// fakeAdapter is a lightweight in-memory adapter used for tests.
type fakeAdapter struct {
	mu         sync.Mutex
	startErr   error
	genErr     error
	tokens     []string
	final      FinalResult
	delay      time.Duration
	starts     int
	receivedMP string
	lastParams InferParams
	closed     bool
}

func (f *fakeAdapter) Start(modelPath string) (InferSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	f.receivedMP = modelPath
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &fakeSession{f: f}, nil
}

type fakeSession struct{ f *fakeAdapter }

func (s *fakeSession) Generate(ctx context.Context, prompt string, params InferParams, onToken func(string) error) (FinalResult, error) {
	s.f.mu.Lock()
	s.f.lastParams = params
	delay := s.f.delay
	s.f.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return FinalResult{}, ctx.Err()
		}
	}
	if s.f.genErr != nil {
		return FinalResult{}, s.f.genErr
	}
	for _, t := range s.f.tokens {
		if err := onToken(t); err != nil {
			return FinalResult{}, err
		}
	}
	return s.f.final, nil
}

func (s *fakeSession) Close() error {
	s.f.mu.Lock()
	s.f.closed = true
	s.f.mu.Unlock()
	return nil
}

// loaded returns a ready pipeline over a fake adapter.
func loaded(t *testing.T, fa *fakeAdapter, cfg Config) *Pipeline {
	t.Helper()
	dir := t.TempDir()
	path := createModelFile(t, dir, "m.gguf")
	cfg.ModelID = "m.gguf"
	cfg.Registry = []types.Model{{ID: "m.gguf", Name: "m", Path: path}}
	cfg.Adapter = fa
	p := New(cfg)
	if err := p.Load(testCtx(t)); err != nil {
		t.Fatalf("load: %v", err)
	}
	return p
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}
