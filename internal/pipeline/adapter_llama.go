//go:build llama

package pipeline

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
const llamaBuilt = true

type llamaAdapter struct {
	ctxSize int
	threads int
}

// NewLlamaAdapter returns the go-llama.cpp backed runtime.
func NewLlamaAdapter(ctxSize, threads int) InferenceAdapter {
	return &llamaAdapter{ctxSize: ctxSize, threads: threads}
}

type llamaSession struct {
	model   *llama.LLama
	threads int
}

func (a *llamaAdapter) Start(modelPath string) (InferSession, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	m, err := llama.New(modelPath, llama.SetContext(a.ctxSize))
	if err != nil {
		return nil, err
	}
	return &llamaSession{model: m, threads: a.threads}, nil
}

func (s *llamaSession) Generate(ctx context.Context, prompt string, params InferParams, onToken func(string) error) (FinalResult, error) {
	if s.model == nil {
		return FinalResult{}, errors.New("llama model not initialized")
	}
	s.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		if onToken != nil && onToken(tok) != nil {
			return false
		}
		return true
	})
	text, err := s.model.Predict(prompt, predictOptions(params, s.threads)...)
	if err != nil {
		if ctx.Err() != nil {
			return FinalResult{}, ctx.Err()
		}
		return FinalResult{}, err
	}
	if ctx.Err() != nil {
		return FinalResult{}, ctx.Err()
	}
	// token counts are not exposed by the binding
	return FinalResult{Content: text, FinishReason: "stop"}, nil
}

func (s *llamaSession) Close() error {
	if s.model != nil {
		s.model.Free()
		s.model = nil
	}
	return nil
}

func zf(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}

// predictOptions converts adapter params into go-llama.cpp options. Later options win,
// so greedy decoding is applied last.
func predictOptions(params InferParams, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(max(1, params.MaxTokens)),
		llama.SetThreads(max(1, threads)),
		llama.SetTopP(zf(params.TopP, llama.DefaultOptions.TopP)),
		llama.SetTemperature(max(0, params.Temperature)),
	}
	if params.Greedy {
		po = append(po, llama.SetTemperature(0), llama.SetTopK(1))
	}
	return po
}
