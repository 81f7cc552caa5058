package backend

import "fmt"

// APIError is a backend rejection decoded at the boundary. Message carries
// the server-provided error text when the body had one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned http %d", e.StatusCode)
}

// HasMessage reports whether the backend supplied its own error text.
func (e *APIError) HasMessage() bool {
	return e.Message != ""
}
