package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"llmchat/internal/config"
	"llmchat/internal/pipeline"
	"llmchat/internal/registry"
)

// newPipeline scans the models directory and loads the configured model once.
// The pipeline is returned even when loading fails so callers can report its state.
func newPipeline(ctx context.Context, mc config.ModelConfig, log zerolog.Logger) (*pipeline.Pipeline, error) {
	reg, err := registry.LoadDir(mc.Dir)
	if err != nil {
		return nil, err
	}
	plog := log.With().Str("component", "pipeline").Logger()
	p := pipeline.New(pipeline.Config{
		ModelID:       mc.Name,
		Registry:      reg,
		ContextSize:   mc.ContextSize,
		Threads:       mc.Threads,
		MaxQueueDepth: mc.MaxQueueDepth,
		MaxWait:       time.Duration(mc.MaxWaitSeconds) * time.Second,
		Logger:        &plog,
	})
	return p, p.Load(ctx)
}
