package azure

import "fmt"

// TransportError reports a failed call to the provider: network failure,
// authentication rejection, or a non-2xx response. Callers use the status
// code and hint to choose remediation text; fallback search strategies treat
// it as recoverable.
type TransportError struct {
	Op         string // operation that failed, e.g. "list builds"
	StatusCode int    // zero when the request never got a response
	Hint       string // actionable remediation, may be empty
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: provider returned status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// hintForStatus maps response codes to remediation hints.
func hintForStatus(status int) string {
	switch status {
	case 401, 403:
		return "access denied; re-authenticate with 'az login' or refresh your token"
	case 404:
		return "resource not found; check the organization and project names"
	case 429:
		return "provider rate limit hit; wait a moment and retry"
	}
	return ""
}
