package pipeline

import (
	"context"
	"strings"
	"time"

	"llmchat/pkg/types"
)

// Generate runs one completion on the loaded model. Calls queue behind each other;
// a call that waits longer than MaxWait fails with a too-busy error.
func (p *Pipeline) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	release, err := p.beginGeneration(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	p.mu.RLock()
	sess := p.session
	p.mu.RUnlock()
	if sess == nil {
		return "", ErrNotLoaded
	}

	start := time.Now()
	var b strings.Builder
	final, err := sess.Generate(ctx, req.Prompt, paramsFor(req), func(tok string) error {
		b.WriteString(tok)
		return nil
	})
	if err != nil {
		p.log.Debug().Err(err).Dur("dur", time.Since(start)).Msg("generate failed")
		return "", err
	}
	p.mu.Lock()
	p.generations++
	p.mu.Unlock()

	text := final.Content
	if text == "" {
		text = b.String()
	}
	p.log.Debug().Int("chars", len(text)).Dur("dur", time.Since(start)).Msg("generate done")
	return text, nil
}

// paramsFor maps wire parameters onto adapter parameters, filling unset values.
func paramsFor(req types.GenerateRequest) InferParams {
	ip := InferParams{
		MaxTokens:   req.MaxNewTokens,
		Temperature: float32(req.Temperature),
		TopP:        float32(req.TopP),
		Greedy:      !req.DoSample,
	}
	if ip.MaxTokens <= 0 {
		ip.MaxTokens = types.DefaultMaxNewTokens
	}
	if ip.TopP <= 0 || ip.TopP > 1 {
		ip.TopP = types.DefaultTopP
	}
	if ip.Temperature < 0 {
		ip.Temperature = 0
	}
	// Temperature zero always decodes greedily, even with sampling requested.
	if ip.Temperature == 0 {
		ip.Greedy = true
	}
	return ip
}
