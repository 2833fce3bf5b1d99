package logx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestConfigureLogLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	cases := map[string]zerolog.Level{
		"all":     zerolog.TraceLevel,
		"WARNING": zerolog.WarnLevel,
		"debug":   zerolog.DebugLevel,
		"none":    zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range cases {
		Configure(in)
		if got := zerolog.GlobalLevel(); got != want {
			t.Fatalf("Configure(%q) level=%s want %s", in, got, want)
		}
	}
}

func TestNew_WritesRotatingFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	p := filepath.Join(t.TempDir(), "llmchat.log")
	log, closer := New(Options{Level: "info", File: p, MaxSizeMB: 1, JSON: true})
	log.Info().Str("component", "test").Msg("hello file")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "hello file") || !strings.Contains(string(b), `"component":"test"`) {
		t.Fatalf("unexpected log file contents: %q", b)
	}
}

func TestNew_NoFileCloserIsNoop(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	_, closer := New(Options{Level: "error"})
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Fatalf("level=%s", zerolog.GlobalLevel())
	}
}
