package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"llmchat/pkg/types"
)

// GenerateOption adjusts the sampling controls of one Generate call.
type GenerateOption func(*types.GenerateRequest)

// WithMaxNewTokens sets max_new_tokens (default 512).
func WithMaxNewTokens(n int) GenerateOption {
	return func(r *types.GenerateRequest) { r.MaxNewTokens = n }
}

// WithTemperature sets temperature (default 0.7).
func WithTemperature(t float64) GenerateOption {
	return func(r *types.GenerateRequest) { r.Temperature = t }
}

// WithTopP sets top_p (default 0.9).
func WithTopP(p float64) GenerateOption {
	return func(r *types.GenerateRequest) { r.TopP = p }
}

// WithSampling sets do_sample (default true).
func WithSampling(on bool) GenerateOption {
	return func(r *types.GenerateRequest) { r.DoSample = on }
}

// Generate calls POST /generate. On 200 the decoded response carries the measured
// round-trip time in TotalRequestTime. Any other status yields an *APIError.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...GenerateOption) (types.GenerateResponse, error) {
	payload := types.DefaultGenerateRequest(prompt)
	for _, o := range opts {
		o(&payload)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return types.GenerateResponse{}, fmt.Errorf("encode generate request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return types.GenerateResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return types.GenerateResponse{}, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.GenerateResponse{}, err
	}
	total := time.Since(start).Seconds()
	c.log.Debug().Int("status", resp.StatusCode).Float64("total_s", total).Msg("client generate")

	if resp.StatusCode != http.StatusOK {
		return types.GenerateResponse{}, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	var out types.GenerateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return types.GenerateResponse{}, fmt.Errorf("decode /generate response: %w", err)
	}
	out.TotalRequestTime = total
	return out, nil
}
