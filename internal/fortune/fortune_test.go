package fortune

import "testing"

func TestFortuneFromList(t *testing.T) {
	tl := New(0)
	known := map[string]bool{}
	for _, f := range defaultFortunes {
		known[f] = true
	}
	for i := 0; i < 20; i++ {
		if f := tl.Fortune(); !known[f] {
			t.Fatalf("unknown fortune %q", f)
		}
	}
}

func TestSeededIsRepeatable(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 10; i++ {
		if fa, fb := a.Fortune(), b.Fortune(); fa != fb {
			t.Fatalf("pick %d differs: %q vs %q", i, fa, fb)
		}
	}
}

func TestNewWithCustomList(t *testing.T) {
	tl := NewWith(1, []string{"only"})
	if f := tl.Fortune(); f != "only" {
		t.Fatalf("fortune=%q", f)
	}
	if f := NewWith(1, nil).Fortune(); f == "" {
		t.Fatalf("expected fallback list")
	}
}
