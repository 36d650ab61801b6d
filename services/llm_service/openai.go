package llm_service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// Schema, when set, is sent as a strict JSON-schema response format.
	Schema interface{}
}

type OpenAIService struct {
	client openai.Client
	config OpenAIConfig
	logger *slog.Logger
}

func NewOpenAIService(cfg OpenAIConfig, logger *slog.Logger) *OpenAIService {
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIService{
		client: openai.NewClient(opts...),
		config: cfg,
		logger: logger,
	}
}

// CallLLM sends the prompt as one user message and returns the first choice.
func (s *OpenAIService) CallLLM(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(s.config.Model),
	}
	if s.config.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "video_script",
					Description: openai.String("Ordered scene cuts of a short video"),
					Schema:      s.config.Schema,
					Strict:      openai.Bool(true),
				},
			},
		}
	}

	start := time.Now()
	completion, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		httpErr := toOpenAIHttpError(err)
		if httpErr != nil {
			s.logger.Error("OpenAI API error",
				slog.Int("status_code", httpErr.StatusCode),
				slog.String("error_type", httpErr.ErrorType),
				slog.String("error_message", httpErr.Message),
				slog.String("model", s.config.Model))
			return "", httpErr
		}
		return "", fmt.Errorf("error calling OpenAI API: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", errors.New("no choices in OpenAI API response")
	}

	content := completion.Choices[0].Message.Content
	s.logger.Debug("OpenAI reply received",
		slog.String("model", s.config.Model),
		slog.Int("length", len(content)),
		slog.Duration("elapsed", time.Since(start)))

	return content, nil
}
