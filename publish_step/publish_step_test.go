package publish_step

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/serisow/shortsmith/artifact"
	"github.com/serisow/shortsmith/pipeline_type"
	"github.com/serisow/shortsmith/script"
)

type mockUploader struct {
	UploadFileFunc func(ctx context.Context, localPath, key, contentType string) (string, error)
}

func (m *mockUploader) Key(runID, name string) string {
	return "shorts/" + runID + "/" + name
}

func (m *mockUploader) UploadFile(ctx context.Context, localPath, key, contentType string) (string, error) {
	return m.UploadFileFunc(ctx, localPath, key, contentType)
}

type mockNotifier struct {
	NotifyFunc func(body string) (string, error)
}

func (m *mockNotifier) Notify(body string) (string, error) {
	return m.NotifyFunc(body)
}

func newContext(t *testing.T) *pipeline_type.Context {
	run, err := artifact.NewRun(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	pipelineContext := pipeline_type.NewContext(run, 9)
	pipelineContext.Scenes = []script.Scene{{ImageDescription: "a", Text: "b"}, {ImageDescription: "c", Text: "d"}}
	run.Record(1, artifact.KindClip, run.Path(artifact.KindClip, 1))
	return pipelineContext
}

func TestPublishStep(t *testing.T) {
	tests := []struct {
		name             string
		uploadErr        error
		notifyErr        error
		expectedLocation string
		expectedProblems int
	}{
		{
			name:             "upload and notify",
			expectedLocation: "s3://bucket/shorts/",
		},
		{
			name:             "upload fails",
			uploadErr:        errors.New("access denied"),
			expectedProblems: 2,
		},
		{
			name:             "notify fails",
			notifyErr:        errors.New("invalid number"),
			expectedLocation: "s3://bucket/shorts/",
			expectedProblems: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipelineContext := newContext(t)
			run := pipelineContext.Run

			var keys, paths []string
			uploader := &mockUploader{
				UploadFileFunc: func(ctx context.Context, localPath, key, contentType string) (string, error) {
					keys = append(keys, key)
					paths = append(paths, localPath)
					if tt.uploadErr != nil {
						return "", tt.uploadErr
					}
					return "s3://bucket/" + key, nil
				},
			}
			var body string
			notifier := &mockNotifier{
				NotifyFunc: func(b string) (string, error) {
					body = b
					return "SM123", tt.notifyErr
				},
			}

			step := &PublishStepImpl{
				Uploader: uploader,
				Notifier: notifier,
				Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
			}
			if err := step.Execute(context.Background(), pipelineContext); err != nil {
				t.Fatalf("publish must not fail the run: %v", err)
			}

			if len(keys) != 2 || !strings.HasSuffix(keys[0], artifact.CombinedVideoName) || !strings.HasSuffix(keys[1], artifact.ManifestName) {
				t.Errorf("unexpected uploads: %v", keys)
			}
			if len(paths) == 2 && paths[1] != run.ManifestPath() {
				t.Errorf("manifest uploaded from %s, expected %s", paths[1], run.ManifestPath())
			}
			location, _ := pipelineContext.GetStepOutput(LocationKey)
			if tt.expectedLocation != "" && !strings.HasPrefix(location.(string), tt.expectedLocation) {
				t.Errorf("unexpected location %v", location)
			}
			if tt.uploadErr != nil && location != run.CombinedPath() {
				t.Errorf("failed upload should leave the local path, got %v", location)
			}
			if !strings.Contains(body, "1/2 scenes assembled") || !strings.Contains(body, run.ID) {
				t.Errorf("unexpected notification body %q", body)
			}

			problems, _ := pipelineContext.GetStepOutput(PublishErrsKey)
			got, _ := problems.([]string)
			if len(got) != tt.expectedProblems {
				t.Errorf("expected %d problems, got %v", tt.expectedProblems, got)
			}
		})
	}
}

func TestPublishStepWithoutCollaborators(t *testing.T) {
	pipelineContext := newContext(t)
	step := &PublishStepImpl{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	if err := step.Execute(context.Background(), pipelineContext); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if location, _ := pipelineContext.GetStepOutput(LocationKey); location != pipelineContext.Run.CombinedPath() {
		t.Errorf("expected local location, got %v", location)
	}
}
