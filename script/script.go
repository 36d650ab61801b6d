package script

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// Scene is one image-description/narration pair of the script.
type Scene struct {
	ImageDescription string `json:"image_description" jsonschema_description:"A detailed description of the stock image shown during this scene cut. English only."`
	Text             string `json:"text" jsonschema_description:"Concise, powerful narration that accompanies the image."`
}

// Envelope is the object form requested when the backend enforces a schema.
type Envelope struct {
	Scenes []Scene `json:"scenes" jsonschema_description:"The ordered scene cuts of the video."`
}

// ValidationError describes why a script reply was rejected.
type ValidationError struct {
	Reason string
	Raw    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid script: %s", e.Reason)
}

// Schema returns the JSON schema of Envelope for structured output requests.
func Schema() interface{} {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(Envelope{})
}

// Parse validates a model reply and returns its scenes in order. It accepts
// a bare JSON array or an Envelope object, optionally wrapped in a markdown fence.
func Parse(raw string) ([]Scene, error) {
	content := cleanJSONContent(raw)
	if content == "" {
		return nil, &ValidationError{Reason: "empty reply", Raw: raw}
	}

	var scenes []Scene
	switch content[0] {
	case '[':
		if err := decodeStrict(content, &scenes); err != nil {
			return nil, &ValidationError{Reason: err.Error(), Raw: raw}
		}
	case '{':
		var env Envelope
		if err := decodeStrict(content, &env); err != nil {
			return nil, &ValidationError{Reason: err.Error(), Raw: raw}
		}
		scenes = env.Scenes
	default:
		return nil, &ValidationError{Reason: "reply is not a JSON array or object", Raw: raw}
	}

	if len(scenes) == 0 {
		return nil, &ValidationError{Reason: "script contains no scenes", Raw: raw}
	}

	for i := range scenes {
		scenes[i].ImageDescription = strings.TrimSpace(scenes[i].ImageDescription)
		scenes[i].Text = strings.TrimSpace(scenes[i].Text)
		if scenes[i].ImageDescription == "" {
			return nil, &ValidationError{Reason: fmt.Sprintf("scene %d has an empty image_description", i+1), Raw: raw}
		}
		if scenes[i].Text == "" {
			return nil, &ValidationError{Reason: fmt.Sprintf("scene %d has an empty text", i+1), Raw: raw}
		}
	}

	return scenes, nil
}

// Split returns the descriptions and texts as two positionally aligned slices.
func Split(scenes []Scene) (descriptions []string, texts []string) {
	descriptions = make([]string, len(scenes))
	texts = make([]string, len(scenes))
	for i, s := range scenes {
		descriptions[i] = s.ImageDescription
		texts[i] = s.Text
	}
	return descriptions, texts
}

// decodeStrict rejects missing or non-string fields and trailing data.
// Extra keys on a scene are ignored.
func decodeStrict(content string, v interface{}) error {
	var raw interface{}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	if err := requireFields(raw); err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(content)))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("schema mismatch: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON value")
	}
	return nil
}

func requireFields(raw interface{}) error {
	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		raw, ok := v["scenes"]
		if !ok {
			return fmt.Errorf("missing field \"scenes\"")
		}
		list, ok := raw.([]interface{})
		if !ok {
			return fmt.Errorf("field \"scenes\" must be an array")
		}
		items = list
	}

	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return fmt.Errorf("scene %d is not an object", i+1)
		}
		for _, field := range []string{"image_description", "text"} {
			value, ok := obj[field]
			if !ok {
				return fmt.Errorf("scene %d is missing field %q", i+1, field)
			}
			if _, ok := value.(string); !ok {
				return fmt.Errorf("scene %d field %q must be a string", i+1, field)
			}
		}
	}
	return nil
}

func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
