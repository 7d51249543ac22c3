package testcase

import "context"

// LLMConnector sends one prompt to a language model and returns the
// sanitized answer body.
type LLMConnector interface {
	Call(ctx context.Context, prompt, model string) (string, error)
}
