// Package seed provides the sample chat history used by the demo.
package seed

import (
	"context"
	"fmt"
	"time"

	"llmchat/internal/history"
	"llmchat/internal/scoring"
)

type sample struct {
	question, answer, reference string
	verdict                    history.Verdict
	responseTime               float64
}

var samples = []sample{
	{
		question:     "What is the capital of Japan?",
		answer:       "The capital of Japan is Tokyo.",
		reference:    "Tokyo is the capital of Japan.",
		verdict:      history.VerdictCorrect,
		responseTime: 1.2,
	},
	{
		question:     "Explain machine learning in one sentence.",
		answer:       "Machine learning lets computers learn patterns from data instead of following hand-written rules.",
		reference:    "Machine learning is a field of AI where systems learn from data to make predictions.",
		verdict:      history.VerdictPartial,
		responseTime: 2.4,
	},
	{
		question:     "How many planets are in the solar system?",
		answer:       "There are nine planets in the solar system.",
		reference:    "There are eight planets in the solar system.",
		verdict:      history.VerdictIncorrect,
		responseTime: 0.9,
	},
	{
		question:     "AIについて100文字で教えてください",
		answer:       "AIは人間の知的な振る舞いを計算機で実現する技術で、画像認識や翻訳、文章生成など幅広い分野で使われています。",
		reference:    "AIとは人間の知能を模倣する技術で、学習や推論を通じて様々なタスクをこなします。",
		verdict:      history.VerdictCorrect,
		responseTime: 3.1,
	},
}

// Records returns fresh copies of the sample records, scored, with creation times
// spaced one minute apart ending at now.
func Records(now time.Time) []history.Record {
	out := make([]history.Record, 0, len(samples))
	for i, s := range samples {
		res := scoring.Evaluate(s.question, s.answer, s.reference)
		out = append(out, history.Record{
			CreatedAt:     now.Add(-time.Duration(len(samples)-i) * time.Minute),
			Question:      s.question,
			Answer:        s.answer,
			ResponseTime:  s.responseTime,
			Feedback:      s.verdict,
			CorrectAnswer: s.reference,
			Scores: history.Scores{
				WordCount:  res.WordCount,
				Relevance:  res.Relevance,
				BLEU:       res.BLEU,
				Similarity: res.Similarity,
			},
		})
	}
	return out
}

// EnsureInitialData inserts the samples only when store is empty. It reports whether
// anything was inserted.
func EnsureInitialData(ctx context.Context, store history.Store) (bool, error) {
	n, err := store.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count history: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	return true, insert(ctx, store)
}

// Reset deletes all history and inserts the samples again.
func Reset(ctx context.Context, store history.Store) error {
	if err := store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return insert(ctx, store)
}

func insert(ctx context.Context, store history.Store) error {
	for _, r := range Records(time.Now()) {
		if err := store.Create(ctx, &r); err != nil {
			return fmt.Errorf("insert sample: %w", err)
		}
	}
	return nil
}
