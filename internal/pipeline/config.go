package pipeline

import (
	"time"

	"github.com/rs/zerolog"

	"llmchat/pkg/types"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultContextSize   = 2048
	defaultThreads       = 4
)

// Config encapsulates all tunables for Pipeline construction.
type Config struct {
	// ModelID selects the model: a registry id, an id without extension, or a file path.
	ModelID  string
	Registry []types.Model

	ContextSize int
	Threads     int

	MaxQueueDepth int
	MaxWait       time.Duration

	// Adapter overrides the runtime; nil selects the llama adapter for this build.
	Adapter InferenceAdapter
	Logger  *zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.MaxQueueDepth <= 0 {
		c.MaxQueueDepth = defaultMaxQueueDepth
	}
	if c.MaxWait <= 0 {
		c.MaxWait = defaultMaxWait
	}
	if c.ContextSize <= 0 {
		c.ContextSize = defaultContextSize
	}
	if c.Threads <= 0 {
		c.Threads = defaultThreads
	}
	return c
}
