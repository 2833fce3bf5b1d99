package types

import "encoding/json"

// GenerateResponse is returned by POST /generate. The server sets GeneratedText and
// ResponseTime; the client injects TotalRequestTime after the round trip. Any other
// fields the server sends are kept in Extra.
type GenerateResponse struct {
	GeneratedText string `json:"generated_text"`
	// Server-side processing time in seconds.
	// example: 0.5
	ResponseTime *float64 `json:"response_time,omitempty" example:"0.5"`
	// Client-measured round-trip time in seconds.
	TotalRequestTime float64 `json:"total_request_time"`

	Extra map[string]json.RawMessage `json:"-" swaggerignore:"true"`
}

var generateResponseKeys = []string{"generated_text", "response_time", "total_request_time"}

type generateResponseFields GenerateResponse

// UnmarshalJSON decodes the known fields and keeps the rest in Extra.
func (r *GenerateResponse) UnmarshalJSON(b []byte) error {
	var known generateResponseFields
	if err := json.Unmarshal(b, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for _, k := range generateResponseKeys {
		delete(all, k)
	}
	*r = GenerateResponse(known)
	r.Extra = nil
	if len(all) > 0 {
		r.Extra = all
	}
	return nil
}

// MarshalJSON emits the known fields merged with Extra.
func (r GenerateResponse) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(generateResponseFields(r))
	if err != nil || len(r.Extra) == 0 {
		return b, err
	}
	out := make(map[string]json.RawMessage, len(r.Extra)+3)
	for k, v := range r.Extra {
		out[k] = v
	}
	var known map[string]json.RawMessage
	if err := json.Unmarshal(b, &known); err != nil {
		return nil, err
	}
	for k, v := range known {
		out[k] = v
	}
	return json.Marshal(out)
}
