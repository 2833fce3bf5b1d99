package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"llmchat/internal/pipeline"
	"llmchat/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ModelName() string
	Ready() bool
	Generate(ctx context.Context, req types.GenerateRequest) (string, error)
}

// Fortuner supplies the text behind GET /fortune.
type Fortuner interface {
	Fortune() string
}

// generateBody mirrors types.GenerateRequest with optional fields so that omitted
// sampling controls fall back to the defaults rather than to zero values.
type generateBody struct {
	Prompt       string   `json:"prompt"`
	MaxNewTokens *int     `json:"max_new_tokens"`
	Temperature  *float64 `json:"temperature"`
	TopP         *float64 `json:"top_p"`
	DoSample     *bool    `json:"do_sample"`
}

func (b generateBody) request() types.GenerateRequest {
	req := types.DefaultGenerateRequest(b.Prompt)
	if b.MaxNewTokens != nil && *b.MaxNewTokens != 0 {
		req.MaxNewTokens = *b.MaxNewTokens
	}
	if b.Temperature != nil {
		req.Temperature = *b.Temperature
	}
	if b.TopP != nil {
		req.TopP = *b.TopP
	}
	if b.DoSample != nil {
		req.DoSample = *b.DoSample
	}
	return req
}

func NewMux(svc Service, fortunes Fortuner) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	r.Use(MetricsMiddleware)

	r.Get("/health", healthHandler(svc))
	r.Get("/model", modelHandler(svc))
	r.Get("/fortune", fortuneHandler(fortunes))
	r.Post("/generate", generateHandler(svc))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// healthHandler godoc
// @Summary      Service health
// @Tags         service
// @Produce      json
// @Success      200  {object}  types.HealthResponse
// @Router       /health [get]
func healthHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ready := svc.Ready()
		writeJSON(w, http.StatusOK, types.HealthResponse{Status: "ok", Model: svc.ModelName(), Ready: &ready})
	}
}

// modelHandler godoc
// @Summary      Loaded model name
// @Tags         service
// @Produce      json
// @Success      200  {object}  types.ModelNameResponse
// @Router       /model [get]
func modelHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := svc.ModelName()
		writeJSON(w, http.StatusOK, types.ModelNameResponse{ModelName: &name})
	}
}

// fortuneHandler godoc
// @Summary      A random fortune
// @Tags         service
// @Produce      json
// @Success      200  {object}  types.FortuneResponse
// @Router       /fortune [get]
func fortuneHandler(f Fortuner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if f == nil {
			writeJSON(w, http.StatusOK, types.FortuneResponse{})
			return
		}
		text := f.Fortune()
		writeJSON(w, http.StatusOK, types.FortuneResponse{Fortune: &text})
	}
}

// generateHandler godoc
// @Summary      Generate text
// @Description  Runs the loaded model on the prompt and returns the completion.
// @Tags         generate
// @Accept       json
// @Produce      json
// @Param        request  body      types.GenerateRequest  true  "Generation request"
// @Success      200      {object}  types.GenerateResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      415      {object}  types.ErrorResponse
// @Failure      429      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Failure      504      {object}  types.ErrorResponse
// @Router       /generate [post]
func generateHandler(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var body generateBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(body.Prompt) == "" {
			writeJSONError(w, http.StatusBadRequest, "prompt is required")
			return
		}
		req := body.request()
		if req.MaxNewTokens < 0 {
			writeJSONError(w, http.StatusBadRequest, "max_new_tokens must be positive")
			return
		}

		lvl := requestLogLevel(r)
		start := time.Now()
		logEvent(r, lvl, LevelInfo).Int("max_new_tokens", req.MaxNewTokens).Bool("do_sample", req.DoSample).Msg("generate start")

		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		if generateTimeout > 0 {
			var tcancel context.CancelFunc
			ctx, tcancel = context.WithTimeout(ctx, time.Duration(generateTimeout)*time.Second)
			defer tcancel()
		}
		text, err := svc.Generate(ctx, req)
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			status := statusFor(err)
			if status == http.StatusTooManyRequests {
				IncrementBackpressure("queue_wait")
			}
			writeJSONError(w, status, err.Error())
			logEvent(r, lvl, LevelError).Int("status", status).Dur("dur", time.Since(start)).Err(err).Msg("generate end")
			return
		}
		secs := time.Since(start).Seconds()
		writeJSON(w, http.StatusOK, types.GenerateResponse{GeneratedText: text, ResponseTime: &secs})
		logEvent(r, lvl, LevelInfo).Int("status", http.StatusOK).Dur("dur", time.Since(start)).Msg("generate end")
	}
}

// statusFor maps well-known pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case pipeline.IsTooBusy(err):
		return http.StatusTooManyRequests
	case errors.Is(err, pipeline.ErrNotLoaded), pipeline.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &he):
		return he.StatusCode()
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
