package publish_step

import (
	"context"
	"log/slog"

	"github.com/serisow/shortsmith/artifact"
	"github.com/serisow/shortsmith/pipeline_type"
	"github.com/serisow/shortsmith/services/notify_service"
)

const (
	StepType       = "publish_step"
	LocationKey    = "video_location"
	MessageSIDKey  = "notification_sid"
	PublishErrsKey = "publish_errors"
)

// Uploader stores run files remotely.
type Uploader interface {
	Key(runID, name string) string
	UploadFile(ctx context.Context, localPath, key, contentType string) (string, error)
}

// Notifier delivers a short text message.
type Notifier interface {
	Notify(body string) (string, error)
}

// PublishStepImpl uploads the combined video and manifest, then notifies.
// Both collaborators are optional. Failures are logged and recorded on the
// context but never fail the run.
type PublishStepImpl struct {
	Uploader Uploader
	Notifier Notifier
	Logger   *slog.Logger
}

func (s *PublishStepImpl) Execute(ctx context.Context, pipelineContext *pipeline_type.Context) error {
	run := pipelineContext.Run
	var problems []string

	location := run.CombinedPath()
	if s.Uploader != nil {
		if _, err := run.WriteManifest(pipelineContext.Seed, pipelineContext.SceneTexts()); err != nil {
			s.Logger.Warn("Failed to refresh manifest before upload",
				slog.String("run_id", run.ID),
				slog.String("error", err.Error()))
		}

		uploads := []struct {
			path        string
			name        string
			contentType string
		}{
			{run.CombinedPath(), artifact.CombinedVideoName, "video/mp4"},
			{run.ManifestPath(), artifact.ManifestName, "application/yaml"},
		}
		for _, u := range uploads {
			key := s.Uploader.Key(run.ID, u.name)
			remote, err := s.Uploader.UploadFile(ctx, u.path, key, u.contentType)
			if err != nil {
				s.Logger.Error("Upload failed",
					slog.String("run_id", run.ID),
					slog.String("path", u.path),
					slog.String("error", err.Error()))
				problems = append(problems, err.Error())
				continue
			}
			if u.path == run.CombinedPath() {
				location = remote
			}
		}
	}
	pipelineContext.SetStepOutput(LocationKey, location)

	if s.Notifier != nil {
		clips := len(run.Complete(artifact.KindClip))
		body := notify_service.RunSummary(run.ID, clips, len(pipelineContext.Scenes), location)
		sid, err := s.Notifier.Notify(body)
		if err != nil {
			s.Logger.Error("Notification failed",
				slog.String("run_id", run.ID),
				slog.String("error", err.Error()))
			problems = append(problems, err.Error())
		} else {
			pipelineContext.SetStepOutput(MessageSIDKey, sid)
		}
	}

	if len(problems) > 0 {
		pipelineContext.SetStepOutput(PublishErrsKey, problems)
	}
	return nil
}

func (s *PublishStepImpl) GetType() string {
	return StepType
}
