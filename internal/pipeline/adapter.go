package pipeline

import "context"

// InferenceAdapter abstracts the model runtime used by the Pipeline.
type InferenceAdapter interface {
	// Start loads the model at modelPath and returns a reusable session.
	Start(modelPath string) (InferSession, error)
}

// InferSession is a loaded model. Implementations need not be safe for concurrent
// Generate calls; the Pipeline serializes them.
type InferSession interface {
	// Generate produces a continuation of prompt. onToken, when non-nil, is invoked per
	// token. Implementations must return when ctx is canceled.
	Generate(ctx context.Context, prompt string, params InferParams, onToken func(string) error) (FinalResult, error)
	// Close releases any resources associated with the session.
	Close() error
}

// InferParams captures generation parameters passed to the adapter.
type InferParams struct {
	MaxTokens   int
	Temperature float32
	TopP        float32
	// Greedy disables sampling (do_sample=false).
	Greedy bool
}

// FinalResult summarizes one generation.
type FinalResult struct {
	Content      string
	Usage        Usage
	FinishReason string
}

// Usage contains token accounting.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
