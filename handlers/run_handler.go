package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/serisow/shortsmith/artifact"
	"github.com/serisow/shortsmith/pipeline"
)

// RunStarter starts a pipeline run in the background.
type RunStarter interface {
	RunAsync(ctx context.Context) (string, error)
}

type RunHandler struct {
	Starter RunStarter
	Store   *pipeline.ExecutionStore
	// OutputDir holds the run manifests, read when the store no longer has a run.
	OutputDir string
	Logger    *slog.Logger
}

func NewRunHandler(starter RunStarter, store *pipeline.ExecutionStore, outputDir string, logger *slog.Logger) *RunHandler {
	return &RunHandler{
		Starter:   starter,
		Store:     store,
		OutputDir: outputDir,
		Logger:    logger,
	}
}

// StartRun launches a run and answers before it finishes.
func (h *RunHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	// The run outlives the request.
	runID, err := h.Starter.RunAsync(context.Background())
	if errors.Is(err, pipeline.ErrRunInProgress) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		h.Logger.Error("Failed to start run", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to start run"})
		return
	}

	h.Logger.Info("Run started on demand", slog.String("run_id", runID))
	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "Run started",
		"run_id":  runID,
		"status":  "/runs/" + runID + "/status",
	})
}

func (h *RunHandler) GetRunStatus(w http.ResponseWriter, r *http.Request) {
	result, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":        result.RunID,
		"status":        result.Status,
		"start_time":    result.StartTime,
		"end_time":      result.EndTime,
		"scene_count":   result.SceneCount,
		"clip_count":    result.ClipCount,
		"error_message": result.ErrorMessage,
	})
}

// GetRunResults returns the full record once the run has finished. Runs the
// store has forgotten are answered from their manifest on disk.
func (h *RunHandler) GetRunResults(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	if _, known := h.Store.Get(runID); !known {
		if manifest, ok := h.readManifest(runID); ok {
			writeJSON(w, http.StatusOK, manifest)
			return
		}
	}

	result, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if result.Status == pipeline.StatusStarted {
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"run_id": result.RunID,
			"status": result.Status,
		})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *RunHandler) lookup(w http.ResponseWriter, r *http.Request) (pipeline.ExecutionResult, bool) {
	runID := mux.Vars(r)["id"]
	result, ok := h.Store.Get(runID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return pipeline.ExecutionResult{}, false
	}
	return result, true
}

func (h *RunHandler) readManifest(runID string) (*artifact.Manifest, bool) {
	if h.OutputDir == "" {
		return nil, false
	}
	// Only run identifiers may name a file under OutputDir.
	if _, err := uuid.Parse(runID); err != nil {
		return nil, false
	}
	manifest, err := artifact.ReadManifest(filepath.Join(h.OutputDir, runID+".yaml"))
	if err != nil {
		h.Logger.Debug("No manifest for run",
			slog.String("run_id", runID),
			slog.String("error", err.Error()))
		return nil, false
	}
	return manifest, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
