package sources

import "fmt"

// TransientFetchError is a single failed catalog call. The fetch continues
// without the affected record(s).
type TransientFetchError struct {
	Op    string // "category", "lookup" or "random"
	URL   string
	Cause error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("%s request to %s failed: %v", e.Op, e.URL, e.Cause)
}

func (e *TransientFetchError) Unwrap() error {
	return e.Cause
}

// FatalFetchError means the catalog itself is unreachable and the fetch stage
// was aborted.
type FatalFetchError struct {
	URL   string
	Cause error
}

func (e *FatalFetchError) Error() string {
	return fmt.Sprintf("catalog unreachable at %s: %v", e.URL, e.Cause)
}

func (e *FatalFetchError) Unwrap() error {
	return e.Cause
}
