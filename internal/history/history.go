// Package history persists chat exchanges (question, answer, timing, feedback and
// scores) for the history and sample-data views.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("history: record not found")

// Verdict is the user's judgement of an answer.
type Verdict string

const (
	VerdictNone      Verdict = ""
	VerdictCorrect   Verdict = "correct"
	VerdictPartial   Verdict = "partial"
	VerdictIncorrect Verdict = "incorrect"
)

// ParseVerdict accepts the verdict names; anything else is VerdictNone.
func ParseVerdict(s string) Verdict {
	switch v := Verdict(strings.ToLower(strings.TrimSpace(s))); v {
	case VerdictCorrect, VerdictPartial, VerdictIncorrect:
		return v
	default:
		return VerdictNone
	}
}

// Scores are the evaluation metrics stored alongside an answer.
type Scores struct {
	WordCount  int     `json:"word_count"`
	Relevance  float64 `json:"relevance"`
	BLEU       float64 `json:"bleu"`
	Similarity float64 `json:"similarity"`
}

// Record is one question/answer exchange.
type Record struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Question      string    `json:"question"`
	Answer        string    `json:"answer"`
	ResponseTime  float64   `json:"response_time"`
	Feedback      Verdict   `json:"feedback,omitempty"`
	CorrectAnswer string    `json:"correct_answer,omitempty"`
	Comment       string    `json:"comment,omitempty"`
	Scores        Scores    `json:"scores"`
}

// FeedbackUpdate replaces the feedback fields and scores of a record.
type FeedbackUpdate struct {
	Verdict       Verdict
	CorrectAnswer string
	Comment       string
	Scores        Scores
}

// Store is the persistence contract for chat history.
type Store interface {
	// Create assigns ID and CreatedAt when unset and stores rec.
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (Record, error)
	// List returns records newest first; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Record, error)
	Count(ctx context.Context) (int, error)
	UpdateFeedback(ctx context.Context, id string, fb FeedbackUpdate) error
	DeleteAll(ctx context.Context) error
	Close() error
}

// prepare fills the identity fields of a new record.
func prepare(rec *Record) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC().Truncate(time.Millisecond)
}

func (r *Record) apply(fb FeedbackUpdate) {
	r.Feedback = fb.Verdict
	r.CorrectAnswer = fb.CorrectAnswer
	r.Comment = fb.Comment
	r.Scores = fb.Scores
}

// Config selects and configures a backend.
type Config struct {
	// Driver is "sqlite" (default) or "redis".
	Driver string `json:"driver" yaml:"driver" toml:"driver"`
	// DSN is a sqlite file path / DSN, or a redis address or URL.
	DSN string `json:"dsn" yaml:"dsn" toml:"dsn"`
	// Prefix namespaces redis keys.
	Prefix string `json:"prefix" yaml:"prefix" toml:"prefix"`
}

// Open creates the store described by cfg, creating its schema if missing.
func Open(cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "sqlite":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "chat_history.db"
		}
		return NewSQLiteStore(dsn)
	case "redis":
		return NewRedisStore(cfg.DSN, cfg.Prefix)
	default:
		return nil, fmt.Errorf("history: unknown driver %q", cfg.Driver)
	}
}
