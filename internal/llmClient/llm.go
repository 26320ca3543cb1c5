package llmclient

import "fmt"

// StatusError reports a non-success response from the upstream router. It
// carries the HTTP status code and nothing else.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("router: unexpected status %d", e.Code)
}
