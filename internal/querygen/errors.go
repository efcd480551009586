package querygen

import "fmt"

// Fallback reasons reported in SynthesisError and metrics
const (
	ReasonNoClient  = "no_client"
	ReasonLLMError  = "llm_error"
	ReasonMalformed = "malformed_response"
)

// SynthesisError describes why the language model output could not be used.
// It is recovered inside the synthesizer and never returned to callers.
type SynthesisError struct {
	Reason  string
	Message string
	Cause   error
}

func (e *SynthesisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("query synthesis failed (%s): %s: %v", e.Reason, e.Message, e.Cause)
	}
	return fmt.Sprintf("query synthesis failed (%s): %s", e.Reason, e.Message)
}

func (e *SynthesisError) Unwrap() error {
	return e.Cause
}
