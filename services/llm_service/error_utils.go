package llm_service

import (
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
)

type OpenAIHttpError struct {
	StatusCode int
	Message    string
	ErrorType  string
	RawBody    string
}

func (e *OpenAIHttpError) Error() string {
	return fmt.Sprintf("OpenAI API error (HTTP %d): %s (Type: %s)", e.StatusCode, e.Message, e.ErrorType)
}

// toOpenAIHttpError extracts error details from an SDK error, or returns nil
// when err did not come from an HTTP response.
func toOpenAIHttpError(err error) *OpenAIHttpError {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return nil
	}

	httpErr := &OpenAIHttpError{
		StatusCode: apiErr.StatusCode,
		Message:    apiErr.Message,
		ErrorType:  apiErr.Type,
		RawBody:    apiErr.RawJSON(),
	}
	if httpErr.Message == "" {
		httpErr.Message = "Unknown error"
	}
	if httpErr.ErrorType == "" {
		httpErr.ErrorType = "unknown"
	}
	return httpErr
}
