package fetch

import "fmt"

// NetworkError represents a transport failure, a timeout or a non-2xx response.
type NetworkError struct {
	URL        string
	Message    string
	StatusCode int
	Cause      error
}

func (e *NetworkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("network error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("network error for %s: %s", e.URL, e.Message)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// DecodeError represents a response body that is not valid JSON.
type DecodeError struct {
	URL     string
	Message string
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("decode error for %s: %s", e.URL, e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}
