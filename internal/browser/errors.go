package browser

import "fmt"

// ConnectionError means no rendering session could be acquired. It is terminal
// for a run: a failed remote connection never falls back to a local launch.
type ConnectionError struct {
	Endpoint string // Truncated remote endpoint, empty for local launches
	Message  string
	Cause    error
}

func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("browser connection error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("browser connection error: %s", e.Message)
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// NavigationError means the page did not load, or the network never went idle,
// within the navigation budget.
type NavigationError struct {
	URL     string
	Timeout bool
	Message string
	Cause   error
}

func (e *NavigationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("navigation error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("navigation error for %s: %s", e.URL, e.Message)
}

func (e *NavigationError) Unwrap() error {
	return e.Cause
}
