package llm

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned when a client is created without a credential
var ErrMissingAPIKey = errors.New("API key is required")

// GenerationError represents a failed request to a provider
type GenerationError struct {
	Provider Provider
	Model    string
	Message  string
	Cause    error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Provider, e.Model, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s %s: %s", e.Provider, e.Model, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
