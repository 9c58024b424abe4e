package translate

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is wrapped when an engine has no API key.
var ErrNotConfigured = errors.New("engine not configured")

// ProviderError reports a failed call to a translation engine.
type ProviderError struct {
	Engine     string
	Message    string
	StatusCode int // HTTP status when the engine answered, 0 otherwise
	Cause      error
}

func (e *ProviderError) Error() string {
	msg := e.Engine + ": " + e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

func providerErr(engine, message string, cause error) *ProviderError {
	return &ProviderError{Engine: engine, Message: message, Cause: cause}
}
