package image_service

import (
	"fmt"
	"strings"
)

const promptTemplate = "((perfect quality)), ((cinematic photo:1.3)), ((raw candid)), 4k, %s, no occlusion, Fujifilm XT3, highly detailed, bokeh, cinemascope"

const NegativePrompt = "((deformed)), ((limbs cut off)), ((quotes)), ((extra fingers)), ((deformed hands)), extra limbs, disfigured, blurry, bad anatomy, absent limbs, blurred, watermark, disproportionate, grainy, signature, cut off, missing legs, missing arms, poorly drawn face, bad face, fused face, cloned face, worst face, three crus, extra crus, fused crus, worst feet, three feet, fused feet, fused thigh, three thigh, fused thigh, extra thigh, worst thigh, missing fingers, extra fingers, ugly fingers, long fingers, horn, extra eyes, amputation, disconnected limbs"

// BuildPrompt wraps an image description in the photographic style template.
func BuildPrompt(description string) string {
	return fmt.Sprintf(promptTemplate, strings.Trim(strings.TrimSpace(description), "."))
}
