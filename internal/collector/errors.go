package collector

import "fmt"

// FetchError reports a request that failed after exhausting its retry
// budget. Callers are expected to skip the affected target and continue.
type FetchError struct {
	URL      string
	Attempts int
	Status   int // last HTTP status, 0 if the request never got a response
	Err      error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d after %d attempts: %v", e.URL, e.Status, e.Attempts, e.Err)
	}
	return fmt.Sprintf("fetch %s: failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
