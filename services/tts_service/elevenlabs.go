package tts_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type ElevenLabsConfig struct {
	APIKey          string
	BaseURL         string
	VoiceID         string
	ModelID         string
	Stability       float64
	SimilarityBoost float64
	Timeout         time.Duration
}

type ElevenLabsService struct {
	httpClient *http.Client
	config     ElevenLabsConfig
	logger     *slog.Logger
}

type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type SpeechRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings VoiceSettings `json:"voice_settings"`
}

func NewElevenLabsService(cfg ElevenLabsConfig, logger *slog.Logger) *ElevenLabsService {
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	return &ElevenLabsService{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		logger:     logger,
	}
}

// Synthesize returns MPEG audio for text spoken by the configured voice.
func (s *ElevenLabsService) Synthesize(ctx context.Context, text string) ([]byte, error) {
	requestBody, err := json.Marshal(SpeechRequest{
		Text:    text,
		ModelID: s.config.ModelID,
		VoiceSettings: VoiceSettings{
			Stability:       s.config.Stability,
			SimilarityBoost: s.config.SimilarityBoost,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error marshaling request body: %w", err)
	}

	fullURL := fmt.Sprintf("%s/%s", strings.TrimRight(s.config.BaseURL, "/"), s.config.VoiceID)
	req, err := http.NewRequestWithContext(ctx, "POST", fullURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("xi-api-key", s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, s.handleErrorResponse(resp)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio response")
	}

	s.logger.Debug("Speech synthesized",
		slog.String("voice_id", s.config.VoiceID),
		slog.Int("bytes", len(audio)))
	return audio, nil
}

func (s *ElevenLabsService) handleErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ElevenLabsHttpError{
			StatusCode: resp.StatusCode,
			Message:    "Failed to read error response",
			ErrorType:  "unknown",
		}
	}

	var errorResp struct {
		Detail struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"detail"`
	}

	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Detail.Message == "" {
		return &ElevenLabsHttpError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			ErrorType:  "unknown",
			RawBody:    string(body),
		}
	}

	return &ElevenLabsHttpError{
		StatusCode: resp.StatusCode,
		Message:    errorResp.Detail.Message,
		ErrorType:  errorResp.Detail.Status,
		RawBody:    string(body),
	}
}

type ElevenLabsHttpError struct {
	StatusCode int
	Message    string
	ErrorType  string
	RawBody    string
}

func (e *ElevenLabsHttpError) Error() string {
	return fmt.Sprintf("ElevenLabs API error (HTTP %d): %s (Type: %s)", e.StatusCode, e.Message, e.ErrorType)
}
