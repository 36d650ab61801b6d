package pipeline_type

import (
	"sort"
	"sync"

	"github.com/serisow/shortsmith/artifact"
	"github.com/serisow/shortsmith/script"
)

// Context carries one run through the pipeline steps.
type Context struct {
	Run    *artifact.Run
	Scenes []script.Scene
	Seed   int64

	mutex       sync.RWMutex
	StepOutputs map[string]interface{}
	results     map[string][]SceneResult
	durations   map[int]float64
}

func NewContext(run *artifact.Run, seed int64) *Context {
	return &Context{
		Run:         run,
		Seed:        seed,
		StepOutputs: make(map[string]interface{}),
		results:     make(map[string][]SceneResult),
		durations:   make(map[int]float64),
	}
}

func (c *Context) SetStepOutput(key string, value interface{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.StepOutputs[key] = value
}

func (c *Context) GetStepOutput(key string) (interface{}, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	val, ok := c.StepOutputs[key]
	return val, ok
}

// AddResult records the outcome of a stage for one index.
func (c *Context) AddResult(stage string, result SceneResult) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.results[stage] = append(c.results[stage], result)
}

// Results returns the outcomes of a stage ordered by index.
func (c *Context) Results(stage string) []SceneResult {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	out := make([]SceneResult, len(c.results[stage]))
	copy(out, c.results[stage])
	sort.SliceStable(out, func(a, b int) bool { return out[a].Index < out[b].Index })
	return out
}

// SetDuration stores the measured narration length of an index.
func (c *Context) SetDuration(index int, seconds float64) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.durations[index] = seconds
}

func (c *Context) Duration(index int) (float64, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	d, ok := c.durations[index]
	return d, ok
}

// SceneTexts returns the script in manifest form.
func (c *Context) SceneTexts() []artifact.SceneText {
	texts := make([]artifact.SceneText, len(c.Scenes))
	for i, s := range c.Scenes {
		texts[i] = artifact.SceneText{ImageDescription: s.ImageDescription, Text: s.Text}
	}
	return texts
}
