package llm

import "fmt"

// ProviderError is returned when the language model provider fails or
// returns an unusable response.
type ProviderError struct {
	Message string
	Cause   error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm provider error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("llm provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}
