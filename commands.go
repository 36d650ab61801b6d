package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/serisow/shortsmith/config"
	"github.com/serisow/shortsmith/handlers"
	"github.com/serisow/shortsmith/logging"
	"github.com/serisow/shortsmith/media_step"
	"github.com/serisow/shortsmith/pipeline"
	"github.com/serisow/shortsmith/pipeline/step"
	"github.com/serisow/shortsmith/plugin_registry"
	"github.com/serisow/shortsmith/publish_step"
	"github.com/serisow/shortsmith/scheduler"
	"github.com/serisow/shortsmith/script"
	"github.com/serisow/shortsmith/script_step"
	"github.com/serisow/shortsmith/server"
	"github.com/serisow/shortsmith/services/image_service"
	"github.com/serisow/shortsmith/services/llm_service"
	"github.com/serisow/shortsmith/services/notify_service"
	"github.com/serisow/shortsmith/services/storage_service"
	"github.com/serisow/shortsmith/services/tts_service"
	"github.com/serisow/shortsmith/video"
	"github.com/serisow/shortsmith/video_step"
	"github.com/spf13/cobra"
	"github.com/urfave/negroni"
)

const (
	executionResultRetention = 24 * time.Hour
	executionCleanupInterval = time.Hour
	runCleanupInterval       = 6 * time.Hour
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "shortsmith",
		Short:         "Generate narrated vertical shorts from a language-model script",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCommand(), newServeCommand())
	return root
}

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Produce one short and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closeLog, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			registry, err := buildRegistry(ctx, cfg, logger)
			if err != nil {
				return err
			}
			store := pipeline.NewExecutionStore(nil, logger)
			runner := pipeline.NewRunner(registry, store, cfg.OutputDir, cfg.Seed, logger)

			runID, err := runner.Run(ctx)
			if err != nil {
				return fmt.Errorf("run %s failed: %w", runID, err)
			}
			result, _ := store.Get(runID)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d/%d scenes %s\n", runID, result.ClipCount, result.SceneCount, result.Location)
			return nil
		},
	}
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the run API and the optional cron trigger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closeLog, err := bootstrap()
			if err != nil {
				return err
			}
			defer closeLog()

			registry, err := buildRegistry(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			store := pipeline.NewExecutionStore(nil, logger)
			store.StartCleanup(executionResultRetention, executionCleanupInterval)
			defer store.StopCleanup()

			runner := pipeline.NewRunner(registry, store, cfg.OutputDir, cfg.Seed, logger)

			if cfg.CronSchedule != "" {
				s, err := scheduler.New(cfg.CronSchedule, runner, logger)
				if err != nil {
					return err
				}
				s.Start()
				defer s.Stop()
			}

			if cfg.RetentionDays > 0 {
				stop := make(chan struct{})
				defer close(stop)
				cleanup := video.NewRunCleanupService(logger, cfg.OutputDir, cfg.RetentionDays)
				cleanup.PerformCleanup()
				cleanup.StartCleanupSchedule(runCleanupInterval, stop)
			}

			r := server.SetupRoutes(handlers.NewRunHandler(runner, store, runner.OutputDir, logger))
			n := setupNegroni(r)

			if cfg.Environment == "production" {
				server.ServeProduction(n, cfg.Domains, cfg.CertDir)
			} else {
				srv := &http.Server{
					Addr:         ":" + cfg.HTTPPort,
					Handler:      n,
					IdleTimeout:  time.Minute,
					ReadTimeout:  5 * time.Second,
					WriteTimeout: 10 * time.Second,
				}
				logger.Info("Listening", slog.String("addr", srv.Addr))
				server.ServeDevelopment(srv)
			}
			return nil
		},
	}
}

// bootstrap loads and validates the configuration before anything touches the network.
func bootstrap() (config.Config, *slog.Logger, func(), error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return cfg, nil, nil, err
	}

	handler, err := logging.NewDailyFileHandler(cfg.LogDir, &slog.HandlerOptions{Level: slog.LevelDebug})
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	closeLog := func() { handler.Close() }
	return cfg, slog.New(handler), closeLog, nil
}

func setupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()

	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())

	n.UseHandler(r)
	return n
}

func buildRegistry(ctx context.Context, cfg config.Config, logger *slog.Logger) (*plugin_registry.PluginRegistry, error) {
	registry := plugin_registry.NewPluginRegistry()

	openAIConfig := llm_service.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
		Timeout: cfg.RequestTimeout,
	}
	if cfg.OpenAIStructuredOutput {
		openAIConfig.Schema = script.Schema()
	}
	registry.RegisterLLMService("openai", llm_service.NewOpenAIService(openAIConfig, logger))

	var uploader publish_step.Uploader
	if cfg.S3Enabled() {
		storage, err := storage_service.NewS3Storage(ctx, storage_service.S3Config{
			Bucket:       cfg.S3Bucket,
			Prefix:       cfg.S3Prefix,
			Region:       cfg.S3Region,
			UsePathStyle: cfg.S3UsePathStyle,
		}, logger)
		if err != nil {
			return nil, err
		}
		uploader = storage
	}

	var notifier publish_step.Notifier
	if cfg.TwilioEnabled() {
		notifier = notify_service.NewSMSNotifier(notify_service.TwilioCredentials{
			AccountSid: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			FromNumber: cfg.TwilioFromNumber,
			ToNumber:   cfg.TwilioToNumber,
		}, logger)
	}

	registerStepTypes(registry, cfg, uploader, notifier, logger)
	return registry, nil
}

func registerStepTypes(registry *plugin_registry.PluginRegistry, cfg config.Config, uploader publish_step.Uploader, notifier publish_step.Notifier, logger *slog.Logger) {
	segmind := image_service.NewSegmindService(image_service.SegmindConfig{
		APIKey:  cfg.SegmindAPIKey,
		URL:     cfg.SegmindURL,
		Timeout: cfg.RequestTimeout,
	}, logger)
	elevenLabs := tts_service.NewElevenLabsService(tts_service.ElevenLabsConfig{
		APIKey:          cfg.ElevenLabsAPIKey,
		BaseURL:         cfg.ElevenLabsURL,
		VoiceID:         cfg.ElevenLabsVoiceID,
		ModelID:         cfg.ElevenLabsModel,
		Stability:       cfg.VoiceStability,
		SimilarityBoost: cfg.VoiceSimilarityBoost,
		Timeout:         cfg.RequestTimeout,
	}, logger)

	runner := video.NewExecRunner(logger)
	ffmpeg := video.NewFFmpegExecutor(logger, runner)
	var renderer video.ParallaxRenderer
	if cfg.ParallaxCommand != "" {
		renderer = video.NewCommandRenderer(cfg.ParallaxCommand, cfg.ParallaxFPS, cfg.ParallaxSize, cfg.ParallaxSize, runner, logger)
	} else {
		renderer = video.NewZoompanRenderer(cfg.ParallaxFPS, cfg.ParallaxSize, runner, logger)
	}

	registry.RegisterStepType(script_step.StepType, func() step.Step {
		llm, _ := registry.GetLLMService("openai")
		return &script_step.ScriptStepImpl{LLMServiceInstance: llm, Logger: logger}
	})
	registry.RegisterStepType(media_step.ImageStepType, func() step.Step {
		return &media_step.ImageStepImpl{
			Generator:  segmind,
			Limiter:    image_service.NewRateLimiter(cfg.RateLimitBatch, cfg.RateLimitWindow, nil, logger),
			SharedSeed: cfg.SharedSeed,
			Logger:     logger,
		}
	})
	registry.RegisterStepType(media_step.NarrationStepType, func() step.Step {
		return &media_step.NarrationStepImpl{Synthesizer: elevenLabs, Logger: logger}
	})
	registry.RegisterStepType(video_step.MotionStepType, func() step.Step {
		return &video_step.MotionStepImpl{FFmpeg: ffmpeg, Renderer: renderer, Logger: logger}
	})
	registry.RegisterStepType(video_step.AssembleStepType, func() step.Step {
		return &video_step.AssembleStepImpl{FFmpeg: ffmpeg, Logger: logger}
	})
	registry.RegisterStepType(video_step.ConcatStepType, func() step.Step {
		return &video_step.ConcatStepImpl{
			FFmpeg: ffmpeg,
			Width:  cfg.OutputWidth,
			Height: cfg.OutputHeight,
			FPS:    cfg.OutputFPS,
			Logger: logger,
		}
	})
	registry.RegisterStepType(publish_step.StepType, func() step.Step {
		return &publish_step.PublishStepImpl{Uploader: uploader, Notifier: notifier, Logger: logger}
	})
}
