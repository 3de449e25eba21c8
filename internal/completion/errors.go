package completion

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoAPIKey is returned when the configured API key variable is unset.
var ErrNoAPIKey = errors.New("API key not set")

// Error is a failed completion: the provider status and a diagnostic
// payload suitable for display after redaction.
type Error struct {
	Status  int
	Message string
	Details string
	Err     error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s (status %d): %s", e.Message, e.Status, e.Details)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusOf returns the provider status carried by err, or 500 when err
// is not a completion error.
func StatusOf(err error) int {
	var cerr *Error
	if errors.As(err, &cerr) && cerr.Status != 0 {
		return cerr.Status
	}
	return http.StatusInternalServerError
}
