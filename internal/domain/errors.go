package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPermissionDenied means the microphone is denied or unavailable.
	// Recognition stays idle; the rest of the assistant keeps working.
	ErrPermissionDenied = errors.New("microphone permission denied")

	// ErrProviderUnsupported means a speech capability is absent entirely.
	// The feature is disabled without retries.
	ErrProviderUnsupported = errors.New("speech provider not available")
)

// RelayError is a non-2xx response from the assistant relay. The body text
// is the error detail shown to the user.
type RelayError struct {
	Status int
	Body   string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("relay error %d: %s", e.Status, e.Body)
}
