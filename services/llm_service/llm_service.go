package llm_service

import "context"

// LLMService sends a single prompt to a language model and returns its reply.
type LLMService interface {
	CallLLM(ctx context.Context, prompt string) (string, error)
}
