package script_step

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/serisow/shortsmith/artifact"
	"github.com/serisow/shortsmith/pipeline_type"
	"github.com/serisow/shortsmith/script"
	"github.com/serisow/shortsmith/services/llm_service"
)

func newContext(t *testing.T) *pipeline_type.Context {
	run, err := artifact.NewRun(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	return pipeline_type.NewContext(run, 1)
}

func TestScriptStepImpl_Execute(t *testing.T) {
	tests := []struct {
		name           string
		mockResponse   string
		mockError      error
		expectedError  bool
		expectedScenes int
	}{
		{
			name:           "valid script",
			mockResponse:   `[{"image_description": "A sunrise.", "text": "Begin."}, {"image_description": "A peak.", "text": "Rise."}]`,
			expectedScenes: 2,
		},
		{
			name:          "LLM service returns an error",
			mockError:     errors.New("LLM service error"),
			expectedError: true,
		},
		{
			name:          "reply fails validation",
			mockResponse:  `Here you go: not json`,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var receivedPrompt string
			mockLLMService := &llm_service.MockLLMService{
				CallLLMFunc: func(ctx context.Context, prompt string) (string, error) {
					receivedPrompt = prompt
					if tt.mockError != nil {
						return "", tt.mockError
					}
					return tt.mockResponse, nil
				},
			}

			scriptStep := &ScriptStepImpl{
				LLMServiceInstance: mockLLMService,
				Logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
			}
			pipelineContext := newContext(t)

			err := scriptStep.Execute(context.Background(), pipelineContext)

			if tt.expectedError && err == nil {
				t.Errorf("Expected an error but got none")
			}
			if !tt.expectedError && err != nil {
				t.Errorf("Did not expect an error but got: %v", err)
			}
			if !strings.Contains(receivedPrompt, script.Topic) {
				t.Errorf("Expected prompt to embed the topic")
			}
			if len(pipelineContext.Scenes) != tt.expectedScenes {
				t.Errorf("Expected %d scenes, got %d", tt.expectedScenes, len(pipelineContext.Scenes))
			}
			if tt.expectedError {
				return
			}
			descriptions, _ := pipelineContext.GetStepOutput(DescriptionsKey)
			texts, _ := pipelineContext.GetStepOutput(TextsKey)
			d, _ := descriptions.([]string)
			x, _ := texts.([]string)
			if len(d) != tt.expectedScenes || len(x) != tt.expectedScenes {
				t.Fatalf("Expected %d aligned entries, got %v and %v", tt.expectedScenes, d, x)
			}
			if d[1] != "A peak." || x[1] != "Rise." {
				t.Errorf("Expected scene 2 to stay aligned, got %q / %q", d[1], x[1])
			}
		})
	}
}

func TestScriptStepImplWithoutService(t *testing.T) {
	step := &ScriptStepImpl{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	if err := step.Execute(context.Background(), newContext(t)); err == nil {
		t.Fatal("Expected an error without an LLM service")
	}
}
