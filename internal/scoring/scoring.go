// Package scoring computes the lightweight answer metrics shown in the chat history:
// word count, question/answer relevance, and BLEU / cosine similarity against a
// reference answer when one is supplied.
package scoring

import (
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/samber/lo"
)

// Result is the set of metrics for one answer.
type Result struct {
	WordCount  int     `json:"word_count"`
	Relevance  float64 `json:"relevance"`
	BLEU       float64 `json:"bleu"`
	Similarity float64 `json:"similarity"`
}

var (
	initOnce  sync.Once
	stopwords map[string]struct{}
)

var stopwordList = []string{
	"a", "an", "the", "and", "or", "but", "if", "of", "to", "in", "on", "at", "by",
	"for", "with", "about", "as", "is", "are", "was", "were", "be", "been", "it",
	"its", "this", "that", "these", "those", "i", "you", "he", "she", "we", "they",
	"me", "my", "your", "our", "their", "what", "which", "who", "how", "do", "does",
	"did", "can", "could", "please", "tell",
	"の", "は", "が", "を", "に", "で", "と", "も", "へ", "や", "か", "な", "て", "た",
	"だ", "す", "ま", "し", "い", "る", "ね", "よ",
}

// Init prepares the stopword table and registers the chat collectors. It runs once;
// further calls are no-ops.
func Init() {
	initOnce.Do(func() {
		stopwords = make(map[string]struct{}, len(stopwordList))
		for _, w := range stopwordList {
			stopwords[w] = struct{}{}
		}
		registerCollectors()
	})
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}

// Tokenize lowercases s and splits it into words. CJK characters become one token each.
func Tokenize(s string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range strings.ToLower(s) {
		switch {
		case isCJK(r):
			flush()
			out = append(out, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return out
}

func contentTokens(s string) []string {
	Init()
	return lo.Filter(Tokenize(s), func(tok string, _ int) bool {
		_, stop := stopwords[tok]
		return !stop
	})
}

// WordCount returns the number of tokens in s.
func WordCount(s string) int { return len(Tokenize(s)) }

// Relevance is the Jaccard overlap of the content words of question and answer.
func Relevance(question, answer string) float64 {
	q := lo.Uniq(contentTokens(question))
	a := lo.Uniq(contentTokens(answer))
	if len(q) == 0 || len(a) == 0 {
		return 0
	}
	inA := make(map[string]struct{}, len(a))
	for _, t := range a {
		inA[t] = struct{}{}
	}
	shared := len(lo.Filter(q, func(t string, _ int) bool {
		_, ok := inA[t]
		return ok
	}))
	return float64(shared) / float64(len(q)+len(a)-shared)
}

func ngrams(toks []string, n int) map[string]int {
	if len(toks) < n {
		return nil
	}
	grams := make([]string, 0, len(toks)-n+1)
	for i := 0; i+n <= len(toks); i++ {
		grams = append(grams, strings.Join(toks[i:i+n], "\x00"))
	}
	return lo.CountValues(grams)
}

// BLEU is sentence-level BLEU-4 of candidate against reference with add-one smoothing
// for n > 1 and the standard brevity penalty.
func BLEU(reference, candidate string) float64 {
	ref, cand := Tokenize(reference), Tokenize(candidate)
	if len(ref) == 0 || len(cand) == 0 {
		return 0
	}
	logSum := 0.0
	for n := 1; n <= 4; n++ {
		refGrams := ngrams(ref, n)
		matches, total := 0, 0
		for g, c := range ngrams(cand, n) {
			total += c
			matches += min(c, refGrams[g])
		}
		var pn float64
		if n == 1 {
			if matches == 0 {
				return 0
			}
			pn = float64(matches) / float64(total)
		} else {
			pn = float64(matches+1) / float64(total+1)
		}
		logSum += math.Log(pn)
	}
	bp := 1.0
	if c, r := float64(len(cand)), float64(len(ref)); c < r {
		bp = math.Exp(1 - r/c)
	}
	return bp * math.Exp(logSum/4)
}

// Similarity is the cosine similarity of the term-frequency vectors of a and b.
func Similarity(a, b string) float64 {
	ta, tb := lo.CountValues(Tokenize(a)), lo.CountValues(Tokenize(b))
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	var dot, na, nb float64
	for t, ca := range ta {
		na += float64(ca * ca)
		dot += float64(ca * tb[t])
	}
	for _, cb := range tb {
		nb += float64(cb * cb)
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Evaluate scores answer for question. Reference-based metrics stay zero when
// reference is blank.
func Evaluate(question, answer, reference string) Result {
	r := Result{
		WordCount: WordCount(answer),
		Relevance: Relevance(question, answer),
	}
	if strings.TrimSpace(reference) != "" {
		r.BLEU = BLEU(reference, answer)
		r.Similarity = Similarity(reference, answer)
	}
	return r
}
