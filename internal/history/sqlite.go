package history

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS chat_history (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	response_time REAL NOT NULL DEFAULT 0,
	feedback TEXT NOT NULL DEFAULT '',
	correct_answer TEXT NOT NULL DEFAULT '',
	comment TEXT NOT NULL DEFAULT '',
	word_count INTEGER NOT NULL DEFAULT 0,
	relevance REAL NOT NULL DEFAULT 0,
	bleu REAL NOT NULL DEFAULT 0,
	similarity REAL NOT NULL DEFAULT 0
)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_history_created ON chat_history (created_at DESC)`,
}

const selectColumns = `id, created_at, question, answer, response_time, feedback,
	correct_answer, comment, word_count, relevance, bleu, similarity`

// SQLiteStore keeps history in a sqlite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens dsn and creates the schema if needed.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		// each pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, err
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, rec *Record) error {
	prepare(rec)
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `INSERT INTO chat_history (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.UnixMilli(), rec.Question, rec.Answer, rec.ResponseTime,
		string(rec.Feedback), rec.CorrectAnswer, rec.Comment,
		rec.Scores.WordCount, rec.Scores.Relevance, rec.Scores.BLEU, rec.Scores.Similarity)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		r        Record
		created  int64
		feedback string
	)
	err := row.Scan(&r.ID, &created, &r.Question, &r.Answer, &r.ResponseTime, &feedback,
		&r.CorrectAnswer, &r.Comment, &r.Scores.WordCount, &r.Scores.Relevance,
		&r.Scores.BLEU, &r.Scores.Similarity)
	if err != nil {
		return Record{}, err
	}
	r.CreatedAt = time.UnixMilli(created).UTC()
	r.Feedback = Verdict(feedback)
	return r, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := scanRecord(s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM chat_history WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return r, err
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = -1
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM chat_history
		ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chat_history`).Scan(&n)
	return n, err
}

func (s *SQLiteStore) UpdateFeedback(ctx context.Context, id string, fb FeedbackUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `UPDATE chat_history SET feedback = ?, correct_answer = ?,
		comment = ?, word_count = ?, relevance = ?, bleu = ?, similarity = ? WHERE id = ?`,
		string(fb.Verdict), fb.CorrectAnswer, fb.Comment, fb.Scores.WordCount,
		fb.Scores.Relevance, fb.Scores.BLEU, fb.Scores.Similarity, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM chat_history`)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
