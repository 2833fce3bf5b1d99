//go:build !llama

package pipeline

// No-CGO stub compiled when the 'llama' build tag is NOT set, keeping default builds
// and CI CGO-free. The real adapter lives in adapter_llama.go.

const llamaBuilt = false

type llamaAdapter struct {
	ctxSize int
	threads int
}

// NewLlamaAdapter returns a stub that refuses to load models in this build.
func NewLlamaAdapter(ctxSize, threads int) InferenceAdapter {
	return &llamaAdapter{ctxSize: ctxSize, threads: threads}
}

func (a *llamaAdapter) Start(modelPath string) (InferSession, error) {
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}
