// Package ui serves the chat front-end: a chat page backed by the local generation
// pipeline, a history browser, and sample-data management.
package ui

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"llmchat/internal/history"
	"llmchat/internal/httpapi"
	"llmchat/internal/scoring"
	"llmchat/internal/seed"
	"llmchat/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	sessionName = "llmchat"
	keyPage     = "page"
	keyLast     = "last"
	keyFlash    = "flash"
	keyError    = "error"
)

// Generator produces an answer for a prompt. The pipeline satisfies it.
type Generator interface {
	Generate(ctx context.Context, req types.GenerateRequest) (string, error)
	ModelName() string
}

// Options configures the front-end.
type Options struct {
	Title string
	// ModelName is shown when no generator is available.
	ModelName string
	// LoadErr is the startup failure of the generator, if any.
	LoadErr error
	// SessionSecret signs the session cookie. A random key is used when empty, so
	// sessions do not survive a restart.
	SessionSecret []byte
	HistoryLimit  int
	Logger        zerolog.Logger
}

// Server renders the pages. gen may be nil when the model failed to load.
type Server struct {
	gen      Generator
	store    history.Store
	sessions *sessions.CookieStore
	tmpl     *template.Template
	opts     Options
	log      zerolog.Logger
}

// New builds the front-end over an already constructed generator and store.
func New(gen Generator, store history.Store, opts Options) (*Server, error) {
	if store == nil {
		return nil, errors.New("ui: history store is required")
	}
	if opts.Title == "" {
		opts.Title = "LLM Chatbot"
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}
	if gen == nil && opts.LoadErr == nil {
		opts.LoadErr = errors.New("model not loaded")
	}
	secret := opts.SessionSecret
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
	}
	cs := sessions.NewCookieStore(secret)
	cs.Options = &sessions.Options{Path: "/", MaxAge: 7 * 24 * 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode}

	tmpl, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("ui: parse templates: %w", err)
	}
	return &Server{gen: gen, store: store, sessions: cs, tmpl: tmpl, opts: opts, log: opts.Logger}, nil
}

var templateFuncs = template.FuncMap{
	"score": func(f float64) string { return fmt.Sprintf("%.3f", f) },
	"secs":  func(f float64) string { return fmt.Sprintf("%.2fs", f) },
	"when":  func(t time.Time) string { return t.Local().Format("2006-01-02 15:04:05") },
}

// Handler returns the router of the front-end.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(httpapi.MetricsMiddleware)

	r.Get("/", s.handleIndex)
	r.Post("/page", s.handlePage)
	r.Post("/chat", s.handleChat)
	r.Post("/feedback", s.handleFeedback)
	r.Post("/data/seed", s.handleSeed)
	r.Post("/data/reset", s.handleReset)
	r.Post("/data/clear", s.handleClear)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	return r
}

func (s *Server) modelName() string {
	if s.gen != nil {
		return s.gen.ModelName()
	}
	return s.opts.ModelName
}

// session returns the cookie session. A cookie that no longer verifies yields a
// fresh session instead of an error.
func (s *Server) session(r *http.Request) *sessions.Session {
	sess, err := s.sessions.Get(r, sessionName)
	if err != nil {
		s.log.Debug().Err(err).Msg("discarding invalid session cookie")
	}
	return sess
}

// state converts the session into a ViewState and consumes pending banners.
func (s *Server) state(sess *sessions.Session) ViewState {
	v := NewViewState(s.opts.Title).WithModel(s.modelName(), s.opts.LoadErr)
	if name, ok := sess.Values[keyPage].(string); ok {
		if p, ok := ParsePage(name); ok {
			v = v.WithPage(p)
		}
	}
	if f := sess.Flashes(keyFlash); len(f) > 0 {
		v = v.WithFlash(fmt.Sprint(f[0]))
	}
	if f := sess.Flashes(keyError); len(f) > 0 {
		v = v.WithError(fmt.Sprint(f[0]))
	}
	return v
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := s.session(r)
	v := s.state(sess)

	var err error
	switch v.Page {
	case PageChat:
		if id, ok := sess.Values[keyLast].(string); ok && id != "" {
			rec, gerr := s.store.Get(ctx, id)
			switch {
			case gerr == nil:
				v.Last = &rec
			case errors.Is(gerr, history.ErrNotFound):
				delete(sess.Values, keyLast)
			default:
				err = gerr
			}
		}
	case PageHistory, PageData:
		if v.Count, err = s.store.Count(ctx); err == nil {
			v.Records, err = s.store.List(ctx, s.opts.HistoryLimit)
		}
	}
	if err != nil {
		s.log.Error().Err(err).Str("page", v.Page.String()).Msg("load page data")
		v = v.WithError("Could not read chat history: " + err.Error())
	}
	if serr := sess.Save(r, w); serr != nil {
		s.log.Warn().Err(serr).Msg("save session")
	}
	s.render(w, v)
}

func (s *Server) render(w http.ResponseWriter, v ViewState) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "layout.html", v); err != nil {
		s.log.Error().Err(err).Msg("render")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// redirect saves the session and returns to the index (post/redirect/get).
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	if err := sess.Save(r, w); err != nil {
		s.log.Warn().Err(err).Msg("save session")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	p, ok := ParsePage(r.FormValue("page"))
	if !ok {
		sess.AddFlash("Unknown page "+r.FormValue("page"), keyError)
	}
	sess.Values[keyPage] = p.String()
	s.redirect(w, r, sess)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	sess.Values[keyPage] = PageChat.String()
	question := strings.TrimSpace(r.FormValue("question"))
	switch {
	case s.gen == nil:
		sess.AddFlash("Chat is unavailable: the model failed to load.", keyError)
	case question == "":
		sess.AddFlash("Please enter a question.", keyError)
	default:
		rec, err := s.ask(r.Context(), question)
		if err != nil {
			sess.AddFlash("Generation failed: "+err.Error(), keyError)
			break
		}
		sess.Values[keyLast] = rec.ID
	}
	s.redirect(w, r, sess)
}

// ask runs one chat exchange: generate, time, score, persist.
func (s *Server) ask(ctx context.Context, question string) (history.Record, error) {
	start := time.Now()
	answer, err := s.gen.Generate(ctx, types.DefaultGenerateRequest(question))
	elapsed := time.Since(start)
	scoring.ObserveGeneration(elapsed, err)
	if err != nil {
		s.log.Error().Err(err).Dur("dur", elapsed).Msg("chat generate")
		return history.Record{}, err
	}
	res := scoring.Evaluate(question, answer, "")
	rec := history.Record{
		Question:     question,
		Answer:       answer,
		ResponseTime: elapsed.Seconds(),
		Scores:       history.Scores(res),
	}
	if err := s.store.Create(ctx, &rec); err != nil {
		return history.Record{}, fmt.Errorf("save answer: %w", err)
	}
	s.log.Info().Str("id", rec.ID).Dur("dur", elapsed).Int("words", res.WordCount).Msg("chat answered")
	return rec, nil
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := s.session(r)
	id := r.FormValue("id")
	verdict := history.ParseVerdict(r.FormValue("verdict"))
	rec, err := s.store.Get(ctx, id)
	switch {
	case err != nil:
		sess.AddFlash("Could not find that answer.", keyError)
	case verdict == history.VerdictNone:
		sess.AddFlash("Please choose correct, partial or incorrect.", keyError)
	default:
		correct := strings.TrimSpace(r.FormValue("correct_answer"))
		fb := history.FeedbackUpdate{
			Verdict:       verdict,
			CorrectAnswer: correct,
			Comment:       strings.TrimSpace(r.FormValue("comment")),
			Scores:        history.Scores(scoring.Evaluate(rec.Question, rec.Answer, correct)),
		}
		if err := s.store.UpdateFeedback(ctx, id, fb); err != nil {
			sess.AddFlash("Could not save feedback: "+err.Error(), keyError)
			break
		}
		scoring.ObserveFeedback(string(verdict))
		sess.AddFlash("Feedback saved.", keyFlash)
	}
	s.redirect(w, r, sess)
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	sess.Values[keyPage] = PageData.String()
	added, err := seed.EnsureInitialData(r.Context(), s.store)
	switch {
	case err != nil:
		sess.AddFlash("Could not add sample data: "+err.Error(), keyError)
	case added:
		sess.AddFlash("Sample data added.", keyFlash)
	default:
		sess.AddFlash("History is not empty; sample data was not added.", keyFlash)
	}
	s.redirect(w, r, sess)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	sess.Values[keyPage] = PageData.String()
	delete(sess.Values, keyLast)
	if err := seed.Reset(r.Context(), s.store); err != nil {
		sess.AddFlash("Could not reset data: "+err.Error(), keyError)
	} else {
		sess.AddFlash("History replaced with sample data.", keyFlash)
	}
	s.redirect(w, r, sess)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	sess.Values[keyPage] = PageData.String()
	delete(sess.Values, keyLast)
	if err := s.store.DeleteAll(r.Context()); err != nil {
		sess.AddFlash("Could not delete history: "+err.Error(), keyError)
	} else {
		sess.AddFlash("All history deleted.", keyFlash)
	}
	s.redirect(w, r, sess)
}
