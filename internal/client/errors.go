package client

import (
	"errors"
	"fmt"
)

// APIError reports a non-200 answer from POST /generate.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d - %s", e.StatusCode, e.Body)
}

// IsAPIError reports whether err is (or wraps) an *APIError.
func IsAPIError(err error) bool {
	var ae *APIError
	return errors.As(err, &ae)
}
