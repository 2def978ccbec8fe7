package upstream

import "fmt"

// maxDiagnosticLen bounds the response body kept on an UpstreamError.
const maxDiagnosticLen = 500

// UpstreamError reports a failed call to the search endpoint: a non-success
// status, missing credentials, or a transport failure (Status 0).
type UpstreamError struct {
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("search API error: status %d: %s: %v", e.Status, e.Body, e.Err)
	}
	return fmt.Sprintf("search API error: status %d: %s", e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ParseError reports a response whose content held no usable JSON array.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("search API returned unparseable content: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
