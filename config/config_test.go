package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		OpenAIAPIKey:         "sk-test",
		OpenAIModel:          "gpt-3.5-turbo",
		SegmindAPIKey:        "sg-test",
		SegmindURL:           "https://api.segmind.com/v1/sdxl1.0-txt2img",
		ElevenLabsAPIKey:     "el-test",
		ElevenLabsVoiceID:    "voice",
		ElevenLabsURL:        "https://api.elevenlabs.io/v1/text-to-speech",
		ElevenLabsModel:      "eleven_multilingual_v2",
		VoiceStability:       0.4,
		VoiceSimilarityBoost: 0.8,
		OutputDir:            "storage/runs",
		SharedSeed:           true,
		RateLimitBatch:       5,
		RateLimitWindow:      60 * time.Second,
		ParallaxFPS:          30,
		ParallaxSize:         1024,
		OutputWidth:          1080,
		OutputHeight:         1920,
		OutputFPS:            24,
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.SegmindURL != "https://api.segmind.com/v1/sdxl1.0-txt2img" {
		t.Errorf("unexpected Segmind URL %q", cfg.SegmindURL)
	}
	if cfg.ElevenLabsModel != "eleven_multilingual_v2" {
		t.Errorf("unexpected ElevenLabs model %q", cfg.ElevenLabsModel)
	}
	if cfg.VoiceStability != 0.4 || cfg.VoiceSimilarityBoost != 0.80 {
		t.Errorf("unexpected voice settings %v/%v", cfg.VoiceStability, cfg.VoiceSimilarityBoost)
	}
	if !cfg.SharedSeed {
		t.Error("expected shared seed to default to true")
	}
	if cfg.RateLimitBatch != 5 || cfg.RateLimitWindow != time.Minute {
		t.Errorf("unexpected rate limit %d per %v", cfg.RateLimitBatch, cfg.RateLimitWindow)
	}
	if cfg.OutputWidth != 1080 || cfg.OutputHeight != 1920 || cfg.OutputFPS != 24 {
		t.Errorf("unexpected output format %dx%d@%d", cfg.OutputWidth, cfg.OutputHeight, cfg.OutputFPS)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SHARED_SEED", "false")
	t.Setenv("SEED", "42")
	t.Setenv("VOICE_STABILITY", "0.7")
	t.Setenv("RATE_LIMIT_WINDOW", "30")

	cfg := Load()

	if cfg.SharedSeed {
		t.Error("expected SHARED_SEED=false to disable the shared seed")
	}
	if cfg.Seed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.Seed)
	}
	if cfg.VoiceStability != 0.7 {
		t.Errorf("expected stability 0.7, got %v", cfg.VoiceStability)
	}
	if cfg.RateLimitWindow != 30*time.Second {
		t.Errorf("expected 30s window, got %v", cfg.RateLimitWindow)
	}
}

func TestLoadReportsMalformedValues(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SEGMIND_API_KEY", "sg-test")
	t.Setenv("ELEVENLABS_API_KEY", "el-test")
	t.Setenv("ELEVENLABS_VOICE_ID", "voice")

	tests := []struct {
		name     string
		env      map[string]string
		contains []string
	}{
		{
			name:     "misspelled boolean",
			env:      map[string]string{"SHARED_SEED": "flase"},
			contains: []string{`SHARED_SEED: invalid boolean "flase"`},
		},
		{
			name:     "word for an integer",
			env:      map[string]string{"RATE_LIMIT_BATCH": "five"},
			contains: []string{`RATE_LIMIT_BATCH: invalid integer "five"`},
		},
		{
			name:     "decimal comma",
			env:      map[string]string{"VOICE_STABILITY": "0,4"},
			contains: []string{`VOICE_STABILITY: invalid number "0,4"`},
		},
		{
			name: "every malformed value is reported",
			env: map[string]string{
				"SHARED_SEED":      "flase",
				"RATE_LIMIT_BATCH": "five",
				"VOICE_STABILITY":  "0,4",
			},
			contains: []string{"SHARED_SEED", "RATE_LIMIT_BATCH", "VOICE_STABILITY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			err := Load().Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !IsValidationError(err) {
				t.Errorf("expected *ValidationError, got %T", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("expected error to mention %q, got %q", want, err.Error())
				}
			}
		})
	}
}

func TestLoadTreatsEmptyValuesAsUnset(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SEGMIND_API_KEY", "sg-test")
	t.Setenv("ELEVENLABS_API_KEY", "el-test")
	t.Setenv("ELEVENLABS_VOICE_ID", "voice")
	t.Setenv("RATE_LIMIT_BATCH", "")
	t.Setenv("SHARED_SEED", " ")

	cfg := Load()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("did not expect an error but got: %v", err)
	}
	if cfg.RateLimitBatch != 5 || !cfg.SharedSeed {
		t.Errorf("expected defaults, got batch %d shared seed %v", cfg.RateLimitBatch, cfg.SharedSeed)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(c *Config)
		wantErr  bool
		contains []string
	}{
		{
			name:   "valid configuration",
			mutate: func(c *Config) {},
		},
		{
			name: "missing credentials are all reported",
			mutate: func(c *Config) {
				c.OpenAIAPIKey = ""
				c.SegmindAPIKey = ""
				c.ElevenLabsVoiceID = " "
			},
			wantErr:  true,
			contains: []string{"OPENAI_API_KEY", "SEGMIND_API_KEY", "ELEVENLABS_VOICE_ID"},
		},
		{
			name:     "stability out of range",
			mutate:   func(c *Config) { c.VoiceStability = 1.5 },
			wantErr:  true,
			contains: []string{"VOICE_STABILITY"},
		},
		{
			name:     "seed out of range",
			mutate:   func(c *Config) { c.Seed = 2000000 },
			wantErr:  true,
			contains: []string{"SEED"},
		},
		{
			name:     "zero batch size",
			mutate:   func(c *Config) { c.RateLimitBatch = 0 },
			wantErr:  true,
			contains: []string{"RATE_LIMIT_BATCH"},
		},
		{
			name:     "partial twilio settings",
			mutate:   func(c *Config) { c.TwilioAccountSID = "AC123" },
			wantErr:  true,
			contains: []string{"TWILIO"},
		},
		{
			name: "complete twilio settings",
			mutate: func(c *Config) {
				c.TwilioAccountSID = "AC123"
				c.TwilioAuthToken = "token"
				c.TwilioFromNumber = "+15550000000"
				c.TwilioToNumber = "+15551111111"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected an error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("did not expect an error but got: %v", err)
			}
			if err != nil && !IsValidationError(err) {
				t.Errorf("expected *ValidationError, got %T", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("expected error to mention %q, got %q", want, err.Error())
				}
			}
		})
	}
}
