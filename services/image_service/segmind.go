package image_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

type SegmindConfig struct {
	APIKey  string
	URL     string
	Timeout time.Duration
}

type SegmindService struct {
	httpClient *http.Client
	config     SegmindConfig
	logger     *slog.Logger
}

// GenerationRequest is the SDXL text-to-image request body.
type GenerationRequest struct {
	Prompt            string `json:"prompt"`
	NegativePrompt    string `json:"negative_prompt"`
	Style             string `json:"style"`
	Samples           int    `json:"samples"`
	Scheduler         string `json:"scheduler"`
	NumInferenceSteps int    `json:"num_inference_steps"`
	GuidanceScale     int    `json:"guidance_scale"`
	Strength          int    `json:"strength"`
	Seed              int64  `json:"seed"`
	ImgWidth          int    `json:"img_width"`
	ImgHeight         int    `json:"img_height"`
	Refiner           string `json:"refiner"`
	Base64            bool   `json:"base64"`
}

// NewGenerationRequest fills the fixed generation parameters around a prompt.
func NewGenerationRequest(prompt string, seed int64) GenerationRequest {
	return GenerationRequest{
		Prompt:            prompt,
		NegativePrompt:    NegativePrompt,
		Style:             "hdr",
		Samples:           1,
		Scheduler:         "UniPC",
		NumInferenceSteps: 30,
		GuidanceScale:     8,
		Strength:          1,
		Seed:              seed,
		ImgWidth:          1024,
		ImgHeight:         1024,
		Refiner:           "yes",
		Base64:            false,
	}
}

const MaxSeed = 1000000

// RandomSeed draws a generation seed in [1, MaxSeed].
func RandomSeed() int64 {
	return rand.Int63n(MaxSeed) + 1
}

func NewSegmindService(cfg SegmindConfig, logger *slog.Logger) *SegmindService {
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &SegmindService{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		logger:     logger,
	}
}

// GenerateImage returns the JPEG bytes for a prompt. Anything other than
// HTTP 200 with an image/jpeg body is a *SegmindHttpError.
func (s *SegmindService) GenerateImage(ctx context.Context, prompt string, seed int64) ([]byte, error) {
	requestBody, err := json.Marshal(NewGenerationRequest(prompt, seed))
	if err != nil {
		return nil, fmt.Errorf("error marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.URL, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("x-api-key", s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(contentType, "image/jpeg") {
		return nil, s.handleErrorResponse(resp, contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading image data: %w", err)
	}
	return data, nil
}

func (s *SegmindService) handleErrorResponse(resp *http.Response, contentType string) error {
	body, _ := io.ReadAll(resp.Body)
	httpErr := &SegmindHttpError{
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Message:     "unexpected response",
		RawBody:     string(body),
	}

	var errorResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errorResp); err == nil {
		switch {
		case errorResp.Error != "":
			httpErr.Message = errorResp.Error
		case errorResp.Message != "":
			httpErr.Message = errorResp.Message
		}
	} else if len(body) > 0 && len(body) < 512 {
		httpErr.Message = string(body)
	}

	return httpErr
}

type SegmindHttpError struct {
	StatusCode  int
	ContentType string
	Message     string
	RawBody     string
}

func (e *SegmindHttpError) Error() string {
	return fmt.Sprintf("Segmind API error (HTTP %d, %s): %s", e.StatusCode, e.ContentType, e.Message)
}
