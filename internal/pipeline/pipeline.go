package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"llmchat/internal/registry"
	"llmchat/pkg/types"
)

// State represents the lifecycle state of the pipeline.
type State string

const (
	StateUnloaded State = "unloaded"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateError    State = "error"
)

// Snapshot is a read-only projection of the pipeline state.
type Snapshot struct {
	State       State     `json:"state"`
	ModelID     string    `json:"model_id"`
	ModelPath   string    `json:"model_path,omitempty"`
	Err         string    `json:"error,omitempty"`
	LoadedAt    time.Time `json:"loaded_at,omitempty"`
	QueueLen    int       `json:"queue_len"`
	Inflight    int       `json:"inflight"`
	Generations uint64    `json:"generations_total"`
	LlamaBuilt  bool      `json:"llama_built"`
}

// Pipeline is a single loaded model with serialized generation.
type Pipeline struct {
	cfg     Config
	adapter InferenceAdapter
	log     zerolog.Logger

	loadOnce sync.Once
	loadErr  error

	mu          sync.RWMutex
	state       State
	model       types.Model
	session     InferSession
	err         string
	loadedAt    time.Time
	generations uint64

	genCh   chan struct{} // size 1: single in-flight generation
	queueCh chan struct{} // buffered: queue slots
}

// New constructs a Pipeline; call Load once before Generate.
func New(cfg Config) *Pipeline {
	cfg = cfg.withDefaults()
	p := &Pipeline{
		cfg:     cfg,
		adapter: cfg.Adapter,
		log:     zerolog.Nop(),
		state:   StateUnloaded,
		model:   types.Model{ID: cfg.ModelID, Name: cfg.ModelID},
		genCh:   make(chan struct{}, 1),
		queueCh: make(chan struct{}, cfg.MaxQueueDepth),
	}
	if cfg.Logger != nil {
		p.log = *cfg.Logger
	}
	if p.adapter == nil {
		p.adapter = NewLlamaAdapter(cfg.ContextSize, cfg.Threads)
	}
	return p
}

// Load resolves the configured model and starts the runtime session. Only the first
// call does work; later calls return its outcome.
func (p *Pipeline) Load(ctx context.Context) error {
	p.loadOnce.Do(func() { p.loadErr = p.load(ctx) })
	return p.loadErr
}

func (p *Pipeline) load(ctx context.Context) error {
	p.setState(StateLoading, "")
	if err := ctx.Err(); err != nil {
		p.setState(StateError, err.Error())
		return err
	}
	mdl, ok := registry.Resolve(p.cfg.Registry, p.cfg.ModelID)
	if !ok {
		err := ErrModelNotFound(p.cfg.ModelID)
		p.setState(StateError, err.Error())
		return err
	}
	start := time.Now()
	p.log.Info().Str("model", mdl.ID).Str("path", mdl.Path).Msg("loading model")
	sess, err := p.adapter.Start(mdl.Path)
	if err != nil {
		p.setState(StateError, err.Error())
		p.log.Error().Err(err).Str("model", mdl.ID).Msg("model load failed")
		return err
	}
	p.mu.Lock()
	p.model = mdl
	p.session = sess
	p.state = StateReady
	p.err = ""
	p.loadedAt = time.Now()
	p.mu.Unlock()
	p.log.Info().Str("model", mdl.ID).Dur("dur", time.Since(start)).Msg("model loaded")
	return nil
}

func (p *Pipeline) setState(s State, errMsg string) {
	p.mu.Lock()
	p.state = s
	p.err = errMsg
	p.mu.Unlock()
}

// Ready reports whether the model is loaded.
func (p *Pipeline) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state == StateReady && p.session != nil
}

// ModelName returns the resolved model id, or the configured id before Load.
func (p *Pipeline) ModelName() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.model.ID
}

// Snapshot returns a read-only view of the pipeline state.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Snapshot{
		State:       p.state,
		ModelID:     p.model.ID,
		ModelPath:   p.model.Path,
		Err:         p.err,
		LoadedAt:    p.loadedAt,
		QueueLen:    len(p.queueCh),
		Inflight:    len(p.genCh),
		Generations: p.generations,
		LlamaBuilt:  llamaBuilt,
	}
}

// Close waits for an in-flight generation, then releases the runtime session.
// Generate fails with ErrNotLoaded afterwards.
func (p *Pipeline) Close() error {
	p.genCh <- struct{}{}
	defer func() { <-p.genCh }()
	p.mu.Lock()
	sess := p.session
	p.session = nil
	if p.state == StateReady {
		p.state = StateUnloaded
	}
	p.mu.Unlock()
	if sess == nil {
		return nil
	}
	return sess.Close()
}
