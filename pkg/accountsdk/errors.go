package accountsdk

import "fmt"

// APIError represents a non-2xx response from the account service. The
// message is whatever the server put in the response body's message field.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("accountsdk: %d: %s", e.StatusCode, e.Message)
}
