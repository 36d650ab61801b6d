package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	LogDir      string
	OutputDir   string
	HTTPPort    string
	Domains     []string
	CertDir     string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	// OpenAIStructuredOutput requests a strict JSON schema; the model must support it.
	OpenAIStructuredOutput bool

	SegmindAPIKey string
	SegmindURL    string

	ElevenLabsAPIKey     string
	ElevenLabsVoiceID    string
	ElevenLabsURL        string
	ElevenLabsModel      string
	VoiceStability       float64
	VoiceSimilarityBoost float64

	// SharedSeed reuses one seed for every image of a run. Seed 0 draws a random one.
	SharedSeed bool
	Seed       int64

	RateLimitBatch  int
	RateLimitWindow time.Duration
	RequestTimeout  time.Duration

	ParallaxCommand string
	ParallaxFPS     int
	ParallaxSize    int

	OutputWidth  int
	OutputHeight int
	OutputFPS    int

	CronSchedule  string
	RetentionDays int

	S3Bucket       string
	S3Region       string
	S3Prefix       string
	S3UsePathStyle bool

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	TwilioToNumber   string

	// parseProblems holds the variables Load could not parse.
	parseProblems []string
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

// Load reads the environment. A malformed number or boolean keeps its
// default and is reported by Validate.
func Load() Config {
	var problems []string
	cfg := Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogDir:      getEnv("LOG_DIR", "logs"),
		OutputDir:   getEnv("OUTPUT_DIR", "storage/runs"),
		HTTPPort:    getEnv("HTTP_PORT", "8086"),
		Domains:     strings.Split(getEnv("DOMAIN", "example.com"), ","),
		CertDir:     getEnv("CERT_CACHE_DIR", "../certs"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		OpenAIStructuredOutput: getEnvAsBool("OPENAI_STRUCTURED_OUTPUT", false, &problems),

		SegmindAPIKey: getEnv("SEGMIND_API_KEY", ""),
		SegmindURL:    getEnv("SEGMIND_URL", "https://api.segmind.com/v1/sdxl1.0-txt2img"),

		ElevenLabsAPIKey:     getEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID:    getEnv("ELEVENLABS_VOICE_ID", ""),
		ElevenLabsURL:        getEnv("ELEVENLABS_URL", "https://api.elevenlabs.io/v1/text-to-speech"),
		ElevenLabsModel:      getEnv("ELEVENLABS_MODEL", "eleven_multilingual_v2"),
		VoiceStability:       getEnvAsFloat("VOICE_STABILITY", 0.4, &problems),
		VoiceSimilarityBoost: getEnvAsFloat("VOICE_SIMILARITY_BOOST", 0.80, &problems),

		SharedSeed: getEnvAsBool("SHARED_SEED", true, &problems),
		Seed:       int64(getEnvAsInt("SEED", 0, &problems)),

		RateLimitBatch:  getEnvAsInt("RATE_LIMIT_BATCH", 5, &problems),
		RateLimitWindow: time.Duration(getEnvAsInt("RATE_LIMIT_WINDOW", 60, &problems)) * time.Second,
		RequestTimeout:  time.Duration(getEnvAsInt("REQUEST_TIMEOUT", 120, &problems)) * time.Second,

		ParallaxCommand: getEnv("PARALLAX_COMMAND", ""),
		ParallaxFPS:     getEnvAsInt("PARALLAX_FPS", 30, &problems),
		ParallaxSize:    getEnvAsInt("PARALLAX_SIZE", 1024, &problems),

		OutputWidth:  getEnvAsInt("OUTPUT_WIDTH", 1080, &problems),
		OutputHeight: getEnvAsInt("OUTPUT_HEIGHT", 1920, &problems),
		OutputFPS:    getEnvAsInt("OUTPUT_FPS", 24, &problems),

		CronSchedule:  getEnv("CRON_SCHEDULE", ""),
		RetentionDays: getEnvAsInt("RETENTION_DAYS", 0, &problems),

		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Region:       getEnv("S3_REGION", ""),
		S3Prefix:       getEnv("S3_PREFIX", "shorts"),
		S3UsePathStyle: getEnvAsBool("S3_USE_PATH_STYLE", false, &problems),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		TwilioToNumber:   getEnv("TWILIO_TO_NUMBER", ""),
	}
	cfg.parseProblems = problems
	return cfg
}

// ValidationError lists every problem found in a Config.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Problems, "; "))
}

// Validate checks the fields a run cannot start without.
func (c Config) Validate() error {
	problems := append([]string(nil), c.parseProblems...)
	required := map[string]string{
		"OPENAI_API_KEY":      c.OpenAIAPIKey,
		"SEGMIND_API_KEY":     c.SegmindAPIKey,
		"ELEVENLABS_API_KEY":  c.ElevenLabsAPIKey,
		"ELEVENLABS_VOICE_ID": c.ElevenLabsVoiceID,
		"OPENAI_MODEL":        c.OpenAIModel,
		"SEGMIND_URL":         c.SegmindURL,
		"ELEVENLABS_URL":      c.ElevenLabsURL,
		"ELEVENLABS_MODEL":    c.ElevenLabsModel,
		"OUTPUT_DIR":          c.OutputDir,
	}
	for _, key := range []string{
		"OPENAI_API_KEY", "SEGMIND_API_KEY", "ELEVENLABS_API_KEY", "ELEVENLABS_VOICE_ID",
		"OPENAI_MODEL", "SEGMIND_URL", "ELEVENLABS_URL", "ELEVENLABS_MODEL", "OUTPUT_DIR",
	} {
		if strings.TrimSpace(required[key]) == "" {
			problems = append(problems, key+" is required")
		}
	}

	if c.VoiceStability < 0 || c.VoiceStability > 1 {
		problems = append(problems, "VOICE_STABILITY must be between 0 and 1")
	}
	if c.VoiceSimilarityBoost < 0 || c.VoiceSimilarityBoost > 1 {
		problems = append(problems, "VOICE_SIMILARITY_BOOST must be between 0 and 1")
	}
	if c.Seed < 0 || c.Seed > 1000000 {
		problems = append(problems, "SEED must be between 0 and 1000000")
	}
	if c.RateLimitBatch <= 0 {
		problems = append(problems, "RATE_LIMIT_BATCH must be positive")
	}
	if c.RateLimitWindow < 0 {
		problems = append(problems, "RATE_LIMIT_WINDOW must not be negative")
	}
	if c.ParallaxFPS <= 0 || c.ParallaxSize <= 0 {
		problems = append(problems, "PARALLAX_FPS and PARALLAX_SIZE must be positive")
	}
	if c.OutputWidth <= 0 || c.OutputHeight <= 0 || c.OutputFPS <= 0 {
		problems = append(problems, "OUTPUT_WIDTH, OUTPUT_HEIGHT and OUTPUT_FPS must be positive")
	}
	if c.RetentionDays < 0 {
		problems = append(problems, "RETENTION_DAYS must not be negative")
	}
	if c.hasAnyTwilio() && !c.TwilioEnabled() {
		problems = append(problems, "TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, TWILIO_FROM_NUMBER and TWILIO_TO_NUMBER must be set together")
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// IsValidationError reports whether err came from Validate.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func (c Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

func (c Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFromNumber != "" && c.TwilioToNumber != ""
}

func (c Config) hasAnyTwilio() bool {
	return c.TwilioAccountSID != "" || c.TwilioAuthToken != "" || c.TwilioFromNumber != "" || c.TwilioToNumber != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int, problems *[]string) int {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if strValue == "" {
		return fallback
	}
	value, err := strconv.Atoi(strValue)
	if err != nil {
		*problems = append(*problems, fmt.Sprintf("%s: invalid integer %q", key, strValue))
		return fallback
	}
	return value
}

func getEnvAsFloat(key string, fallback float64, problems *[]string) float64 {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if strValue == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		*problems = append(*problems, fmt.Sprintf("%s: invalid number %q", key, strValue))
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool, problems *[]string) bool {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if strValue == "" {
		return fallback
	}
	value, err := strconv.ParseBool(strValue)
	if err != nil {
		*problems = append(*problems, fmt.Sprintf("%s: invalid boolean %q", key, strValue))
		return fallback
	}
	return value
}
