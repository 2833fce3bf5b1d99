package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"llmchat/pkg/types"
)

func TestNewDefaults(t *testing.T) {
	p := New(Config{Adapter: &fakeAdapter{}})
	if p.cfg.MaxQueueDepth != defaultMaxQueueDepth || cap(p.queueCh) != defaultMaxQueueDepth {
		t.Fatalf("expected default queue depth %d, got %d", defaultMaxQueueDepth, p.cfg.MaxQueueDepth)
	}
	if p.cfg.MaxWait != defaultMaxWait {
		t.Fatalf("expected default maxWait=%v got %v", defaultMaxWait, p.cfg.MaxWait)
	}
	if p.Ready() {
		t.Fatalf("expected not ready before load")
	}
	if s := p.Snapshot(); s.State != StateUnloaded {
		t.Fatalf("state=%s", s.State)
	}
}

func TestLoadRunsOnce(t *testing.T) {
	fa := &fakeAdapter{}
	p := loaded(t, fa, Config{})
	if err := p.Load(testCtx(t)); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if fa.starts != 1 {
		t.Fatalf("expected one Start, got %d", fa.starts)
	}
	if !p.Ready() || p.ModelName() != "m.gguf" {
		t.Fatalf("ready=%v model=%q", p.Ready(), p.ModelName())
	}
	snap := p.Snapshot()
	if snap.State != StateReady || snap.LoadedAt.IsZero() || snap.ModelPath == "" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestLoadModelNotFound(t *testing.T) {
	p := New(Config{ModelID: "missing", Adapter: &fakeAdapter{}})
	err := p.Load(context.Background())
	if err == nil || !IsModelNotFound(err) {
		t.Fatalf("expected model not found error, got %v", err)
	}
	if p.Snapshot().State != StateError {
		t.Fatalf("expected error state")
	}
	// failure is sticky: no implicit rebuild
	if err2 := p.Load(context.Background()); err2 != err {
		t.Fatalf("expected same error on second load, got %v", err2)
	}
}

func TestLoadAdapterError(t *testing.T) {
	dir := t.TempDir()
	path := createModelFile(t, dir, "m.gguf")
	p := New(Config{ModelID: path, Adapter: &fakeAdapter{startErr: errors.New("boom")}})
	if err := p.Load(context.Background()); err == nil {
		t.Fatalf("expected start error")
	}
	if p.Ready() {
		t.Fatalf("expected not ready")
	}
	if s := p.Snapshot(); s.Err != "boom" {
		t.Fatalf("err=%q", s.Err)
	}
}

func TestStubAdapterIsDependencyUnavailable(t *testing.T) {
	if llamaBuilt {
		t.Skip("built with llama support")
	}
	dir := t.TempDir()
	path := createModelFile(t, dir, "m.gguf")
	p := New(Config{ModelID: path})
	err := p.Load(context.Background())
	if !IsDependencyUnavailable(err) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
}

func TestGenerateBeforeLoad(t *testing.T) {
	p := New(Config{Adapter: &fakeAdapter{}})
	if _, err := p.Generate(testCtx(t), types.DefaultGenerateRequest("x")); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}

func TestGenerateUsesFinalContent(t *testing.T) {
	fa := &fakeAdapter{tokens: []string{"a", "b"}, final: FinalResult{Content: "final"}}
	p := loaded(t, fa, Config{})
	out, err := p.Generate(testCtx(t), types.DefaultGenerateRequest("x"))
	if err != nil || out != "final" {
		t.Fatalf("out=%q err=%v", out, err)
	}
	if p.Snapshot().Generations != 1 {
		t.Fatalf("generation not counted")
	}
}

func TestGenerateFallsBackToTokens(t *testing.T) {
	fa := &fakeAdapter{tokens: []string{"Hel", "lo"}}
	p := loaded(t, fa, Config{})
	out, err := p.Generate(testCtx(t), types.DefaultGenerateRequest("x"))
	if err != nil || out != "Hello" {
		t.Fatalf("out=%q err=%v", out, err)
	}
}

func TestGenerateError(t *testing.T) {
	fa := &fakeAdapter{genErr: errors.New("gen")}
	p := loaded(t, fa, Config{})
	if _, err := p.Generate(testCtx(t), types.DefaultGenerateRequest("x")); err == nil {
		t.Fatalf("expected generate error")
	}
	// slots released after failure
	if s := p.Snapshot(); s.QueueLen != 0 || s.Inflight != 0 {
		t.Fatalf("slots leaked: %+v", s)
	}
}

func TestParamsMapping(t *testing.T) {
	fa := &fakeAdapter{final: FinalResult{Content: "x"}}
	p := loaded(t, fa, Config{})
	req := types.GenerateRequest{Prompt: "x", MaxNewTokens: 0, Temperature: 0.3, TopP: 0, DoSample: false}
	if _, err := p.Generate(testCtx(t), req); err != nil {
		t.Fatalf("generate: %v", err)
	}
	got := fa.lastParams
	if got.MaxTokens != types.DefaultMaxNewTokens || got.TopP != float32(types.DefaultTopP) || !got.Greedy || got.Temperature != float32(0.3) {
		t.Fatalf("unexpected params: %+v", got)
	}
}

func TestParamsMapping_ZeroTemperatureSamplingIsGreedy(t *testing.T) {
	fa := &fakeAdapter{final: FinalResult{Content: "x"}}
	p := loaded(t, fa, Config{})
	for _, temp := range []float64{0, -0.5} {
		req := types.GenerateRequest{Prompt: "x", MaxNewTokens: 8, Temperature: temp, TopP: 0.9, DoSample: true}
		if _, err := p.Generate(testCtx(t), req); err != nil {
			t.Fatalf("generate: %v", err)
		}
		if got := fa.lastParams; !got.Greedy || got.Temperature != 0 {
			t.Fatalf("temperature %v: unexpected params: %+v", temp, got)
		}
	}

	req := types.GenerateRequest{Prompt: "x", MaxNewTokens: 8, Temperature: 0.7, TopP: 0.9, DoSample: true}
	if _, err := p.Generate(testCtx(t), req); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got := fa.lastParams; got.Greedy || got.Temperature != float32(0.7) {
		t.Fatalf("unexpected params: %+v", got)
	}
}

func TestGenerateTooBusy(t *testing.T) {
	fa := &fakeAdapter{delay: 300 * time.Millisecond, final: FinalResult{Content: "slow"}}
	p := loaded(t, fa, Config{MaxQueueDepth: 1, MaxWait: 30 * time.Millisecond})
	done := make(chan error, 1)
	go func() {
		_, err := p.Generate(context.Background(), types.DefaultGenerateRequest("a"))
		done <- err
	}()
	time.Sleep(50 * time.Millisecond)
	_, err := p.Generate(context.Background(), types.DefaultGenerateRequest("b"))
	if !IsTooBusy(err) {
		t.Fatalf("expected too busy, got %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("first generate: %v", err)
	}
}

func TestGenerateCanceledContext(t *testing.T) {
	p := loaded(t, &fakeAdapter{}, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Generate(ctx, types.DefaultGenerateRequest("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestCloseReleasesSession(t *testing.T) {
	fa := &fakeAdapter{}
	p := loaded(t, fa, Config{})
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !fa.closed || p.Ready() {
		t.Fatalf("closed=%v ready=%v", fa.closed, p.Ready())
	}
	if _, err := p.Generate(testCtx(t), types.DefaultGenerateRequest("x")); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded after close, got %v", err)
	}
}
