package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Kind identifies one artifact of a scene.
type Kind string

const (
	KindImage    Kind = "image"
	KindAudio    Kind = "audio"
	KindParallax Kind = "parallax"
	KindClip     Kind = "clip"
)

const CombinedVideoName = "combined_video.mp4"

// Run owns one working directory and the artifacts recorded in it, keyed by
// 1-based scene index.
type Run struct {
	ID  string
	Dir string

	mu        sync.RWMutex
	artifacts map[int]map[Kind]string
	failures  map[int]map[Kind]string
}

// NewRun allocates a fresh run identifier and creates its directory under root.
func NewRun(root string) (*Run, error) {
	id := uuid.New().String()
	dir := filepath.Join(root, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}
	return newRun(id, dir), nil
}

func newRun(id, dir string) *Run {
	return &Run{
		ID:        id,
		Dir:       dir,
		artifacts: make(map[int]map[Kind]string),
		failures:  make(map[int]map[Kind]string),
	}
}

// Path returns where the artifact of the given kind for index i is written.
func (r *Run) Path(kind Kind, i int) string {
	return filepath.Join(r.Dir, FileName(kind, i))
}

// CombinedPath returns the path of the final concatenated video.
func (r *Run) CombinedPath() string {
	return filepath.Join(r.Dir, CombinedVideoName)
}

// FileName is the on-disk name of an artifact.
func FileName(kind Kind, i int) string {
	switch kind {
	case KindImage:
		return fmt.Sprintf("%d.jpg", i)
	case KindAudio:
		return fmt.Sprintf("%d.mp3", i)
	case KindParallax:
		return fmt.Sprintf("parallax_%d.mp4", i)
	case KindClip:
		return fmt.Sprintf("%d.mp4", i)
	default:
		return fmt.Sprintf("%s_%d", kind, i)
	}
}

// Record marks the artifact for index i as produced at path.
func (r *Run) Record(i int, kind Kind, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.artifacts[i] == nil {
		r.artifacts[i] = make(map[Kind]string)
	}
	r.artifacts[i][kind] = path
	if r.failures[i] != nil {
		delete(r.failures[i], kind)
	}
}

// Fail marks the artifact for index i as not produced, with a reason.
func (r *Run) Fail(i int, kind Kind, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures[i] == nil {
		r.failures[i] = make(map[Kind]string)
	}
	r.failures[i][kind] = reason
	if r.artifacts[i] != nil {
		delete(r.artifacts[i], kind)
	}
}

// Lookup returns the recorded path of an artifact.
func (r *Run) Lookup(i int, kind Kind) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	path, ok := r.artifacts[i][kind]
	return path, ok
}

// Failure returns the recorded failure reason of an artifact.
func (r *Run) Failure(i int, kind Kind) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reason, ok := r.failures[i][kind]
	return reason, ok
}

// Complete returns, in ascending order, the indices holding every given kind.
func (r *Run) Complete(kinds ...Kind) []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var indices []int
	for i, byKind := range r.artifacts {
		ok := true
		for _, kind := range kinds {
			if _, exists := byKind[kind]; !exists {
				ok = false
				break
			}
		}
		if ok {
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)
	return indices
}

// Artifacts returns a copy of the recorded artifacts of index i.
func (r *Run) Artifacts(i int) map[Kind]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Kind]string, len(r.artifacts[i]))
	for k, v := range r.artifacts[i] {
		out[k] = v
	}
	return out
}

// Failures returns a copy of the recorded failures of index i.
func (r *Run) Failures(i int) map[Kind]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Kind]string, len(r.failures[i]))
	for k, v := range r.failures[i] {
		out[k] = v
	}
	return out
}
