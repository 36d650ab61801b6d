package script_step

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/serisow/shortsmith/pipeline_type"
	"github.com/serisow/shortsmith/script"
	"github.com/serisow/shortsmith/services/llm_service"
)

const (
	StepType        = "script_step"
	DescriptionsKey = "image_descriptions"
	TextsKey        = "scene_texts"
)

// ScriptStepImpl asks the language model for the script and validates it.
type ScriptStepImpl struct {
	LLMServiceInstance llm_service.LLMService
	Logger             *slog.Logger
}

func (s *ScriptStepImpl) Execute(ctx context.Context, pipelineContext *pipeline_type.Context) error {
	if s.LLMServiceInstance == nil {
		return fmt.Errorf("no LLM service configured for %s", StepType)
	}

	prompt := script.BuildPrompt()
	reply, err := s.LLMServiceInstance.CallLLM(ctx, prompt)
	if err != nil {
		return fmt.Errorf("error calling LLM service: %w", err)
	}

	scenes, err := script.Parse(reply)
	if err != nil {
		s.Logger.Error("Script reply rejected",
			slog.String("run_id", pipelineContext.Run.ID),
			slog.String("error", err.Error()),
			slog.String("reply", reply))
		return err
	}

	descriptions, texts := script.Split(scenes)
	pipelineContext.Scenes = scenes
	pipelineContext.SetStepOutput(StepType, len(scenes))
	pipelineContext.SetStepOutput(DescriptionsKey, descriptions)
	pipelineContext.SetStepOutput(TextsKey, texts)

	for i := range descriptions {
		s.Logger.Info("Scene scripted",
			slog.String("run_id", pipelineContext.Run.ID),
			slog.Int("index", i+1),
			slog.String("image_description", descriptions[i]),
			slog.String("text", texts[i]))
	}
	return nil
}

func (s *ScriptStepImpl) GetType() string {
	return StepType
}
