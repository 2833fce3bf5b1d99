package scoring

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()
	if _, ok := stopwords["the"]; !ok {
		t.Fatalf("stopwords not loaded")
	}
}

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Hello, World!", []string{"hello", "world"}},
		{"GPT-2 rocks", []string{"gpt", "2", "rocks"}},
		{"AIについて", []string{"ai", "に", "つ", "い", "て"}},
		{"", nil},
	}
	for _, c := range cases {
		if got := Tokenize(c.in); !reflect.DeepEqual(got, c.want) {
			t.Fatalf("Tokenize(%q)=%v want %v", c.in, got, c.want)
		}
	}
}

func TestWordCount(t *testing.T) {
	if n := WordCount("one two  three"); n != 3 {
		t.Fatalf("count=%d", n)
	}
}

func TestRelevance(t *testing.T) {
	if r := Relevance("What is Go?", "Go is a language"); !almost(r, 1.0/2.0) {
		t.Fatalf("relevance=%v", r)
	}
	if r := Relevance("the of", "anything"); r != 0 {
		t.Fatalf("stopword-only question should score 0, got %v", r)
	}
}

func TestBLEU(t *testing.T) {
	s := "the quick brown fox jumps over the lazy dog"
	if b := BLEU(s, s); !almost(b, 1) {
		t.Fatalf("identical bleu=%v", b)
	}
	if b := BLEU(s, "completely unrelated words"); b != 0 {
		t.Fatalf("disjoint bleu=%v", b)
	}
	short := BLEU(s, "the quick brown fox")
	if short <= 0 || short >= 1 {
		t.Fatalf("short candidate bleu=%v", short)
	}
	if b := BLEU("", s); b != 0 {
		t.Fatalf("empty reference bleu=%v", b)
	}
}

func TestSimilarity(t *testing.T) {
	if s := Similarity("a b c", "a b c"); !almost(s, 1) {
		t.Fatalf("identical=%v", s)
	}
	if s := Similarity("a b", "c d"); s != 0 {
		t.Fatalf("disjoint=%v", s)
	}
	if s := Similarity("", "x"); s != 0 {
		t.Fatalf("empty=%v", s)
	}
}

func TestEvaluate(t *testing.T) {
	r := Evaluate("What is Go?", "Go is a language", "")
	if r.WordCount != 4 || r.BLEU != 0 || r.Similarity != 0 {
		t.Fatalf("unexpected result without reference: %+v", r)
	}
	r = Evaluate("What is Go?", "Go is a language", "Go is a language")
	if !almost(r.BLEU, 1) || !almost(r.Similarity, 1) {
		t.Fatalf("unexpected result with reference: %+v", r)
	}
}

func TestObserveGeneration(t *testing.T) {
	Init()
	before := testutil.ToFloat64(generationsTotal.WithLabelValues("error"))
	ObserveGeneration(time.Second, errors.New("x"))
	if got := testutil.ToFloat64(generationsTotal.WithLabelValues("error")); got != before+1 {
		t.Fatalf("error count=%v want %v", got, before+1)
	}
	ObserveFeedback("")
	if got := testutil.ToFloat64(feedbackTotal.WithLabelValues("unspecified")); got < 1 {
		t.Fatalf("feedback count=%v", got)
	}
}
