package openai

import "fmt"

// APIError is a non-200 reply from the endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
}

// RateLimited reports a 429 reply.
func (e *APIError) RateLimited() bool { return e.StatusCode == 429 }
