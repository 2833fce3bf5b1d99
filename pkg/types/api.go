package types

// Defaults applied by DefaultGenerateRequest and by the server when a field is unset.
const (
	DefaultMaxNewTokens = 512
	DefaultTemperature  = 0.7
	DefaultTopP         = 0.9
)

// GenerateRequest is the body of POST /generate. All five fields are always sent.
type GenerateRequest struct {
	// Prompt text to continue.
	// example: Tell me about AI in 100 characters.
	Prompt string `json:"prompt" example:"Tell me about AI in 100 characters."`
	// Maximum number of new tokens to generate.
	// example: 512
	MaxNewTokens int `json:"max_new_tokens" example:"512"`
	// Sampling temperature (higher = more random).
	// example: 0.7
	Temperature float64 `json:"temperature" example:"0.7"`
	// Nucleus sampling probability.
	// example: 0.9
	TopP float64 `json:"top_p" example:"0.9"`
	// Whether to sample at all; false means greedy decoding.
	// example: true
	DoSample bool `json:"do_sample" example:"true"`
}

// DefaultGenerateRequest returns a request for prompt with the default sampling controls.
func DefaultGenerateRequest(prompt string) GenerateRequest {
	return GenerateRequest{
		Prompt:       prompt,
		MaxNewTokens: DefaultMaxNewTokens,
		Temperature:  DefaultTemperature,
		TopP:         DefaultTopP,
		DoSample:     true,
	}
}

// HealthResponse is returned by GET /health. Every field is optional.
type HealthResponse struct {
	// example: ok
	Status string `json:"status,omitempty" example:"ok"`
	// example: tinyllama-q4.gguf
	Model string `json:"model,omitempty" example:"tinyllama-q4.gguf"`
	Ready *bool  `json:"ready,omitempty"`
}

// ModelNameResponse is returned by GET /model.
type ModelNameResponse struct {
	// example: tinyllama-q4.gguf
	ModelName *string `json:"model_name,omitempty" example:"tinyllama-q4.gguf"`
}

// NameOr returns the model name, or fallback when the server omitted it.
func (r ModelNameResponse) NameOr(fallback string) string {
	if r.ModelName == nil {
		return fallback
	}
	return *r.ModelName
}

// FortuneResponse is returned by GET /fortune.
type FortuneResponse struct {
	// example: A fresh start will put you on your way.
	Fortune *string `json:"fortune,omitempty" example:"A fresh start will put you on your way."`
}

// TextOr returns the fortune, or fallback when the server omitted it.
func (r FortuneResponse) TextOr(fallback string) string {
	if r.Fortune == nil {
		return fallback
	}
	return *r.Fortune
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
