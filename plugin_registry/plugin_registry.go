package plugin_registry

import (
	"fmt"
	"sort"

	"github.com/serisow/shortsmith/pipeline/step"
	"github.com/serisow/shortsmith/services/llm_service"
)

type PluginRegistry struct {
	stepTypes   map[string]func() step.Step
	llmServices map[string]llm_service.LLMService
}

func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{
		stepTypes:   make(map[string]func() step.Step),
		llmServices: make(map[string]llm_service.LLMService),
	}
}

// RegisterStepType registers a new step type
func (pr *PluginRegistry) RegisterStepType(typeName string, factory func() step.Step) {
	pr.stepTypes[typeName] = factory
}

// GetStepInstance returns a new instance of a step type
func (pr *PluginRegistry) GetStepInstance(typeName string) (step.Step, error) {
	factory, ok := pr.stepTypes[typeName]
	if !ok {
		return nil, fmt.Errorf("unknown step type: %s", typeName)
	}
	return factory(), nil
}

// StepTypes lists the registered step types in name order
func (pr *PluginRegistry) StepTypes() []string {
	names := make([]string, 0, len(pr.stepTypes))
	for name := range pr.stepTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterLLMService registers a new LLM service
func (pr *PluginRegistry) RegisterLLMService(name string, service llm_service.LLMService) {
	pr.llmServices[name] = service
}

// GetLLMService returns an LLM service by name
func (pr *PluginRegistry) GetLLMService(name string) (llm_service.LLMService, bool) {
	service, ok := pr.llmServices[name]
	return service, ok
}
