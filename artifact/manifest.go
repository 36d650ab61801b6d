package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ManifestName is the object name of the manifest when a run is published.
const ManifestName = "run.yaml"

// Manifest is the serialized view of a run directory.
type Manifest struct {
	RunID         string          `yaml:"run_id" json:"run_id"`
	Seed          int64           `yaml:"seed,omitempty" json:"seed,omitempty"`
	CombinedVideo string          `yaml:"combined_video,omitempty" json:"combined_video,omitempty"`
	Scenes        []ManifestScene `yaml:"scenes" json:"scenes"`
}

type ManifestScene struct {
	Index            int             `yaml:"index" json:"index"`
	ImageDescription string          `yaml:"image_description" json:"image_description"`
	Text             string          `yaml:"text" json:"text"`
	Artifacts        map[Kind]string `yaml:"artifacts,omitempty" json:"artifacts,omitempty"`
	Failures         map[Kind]string `yaml:"failures,omitempty" json:"failures,omitempty"`
}

// SceneText is the script content attached to a manifest entry.
type SceneText struct {
	ImageDescription string
	Text             string
}

// BuildManifest snapshots the run. Artifact paths are stored relative to the run directory.
func (r *Run) BuildManifest(seed int64, scenes []SceneText) Manifest {
	m := Manifest{RunID: r.ID, Seed: seed}
	if _, err := os.Stat(r.CombinedPath()); err == nil {
		m.CombinedVideo = CombinedVideoName
	}

	for idx, scene := range scenes {
		i := idx + 1
		entry := ManifestScene{
			Index:            i,
			ImageDescription: scene.ImageDescription,
			Text:             scene.Text,
		}
		if artifacts := r.Artifacts(i); len(artifacts) > 0 {
			entry.Artifacts = make(map[Kind]string, len(artifacts))
			for kind, path := range artifacts {
				entry.Artifacts[kind] = r.relative(path)
			}
		}
		if failures := r.Failures(i); len(failures) > 0 {
			entry.Failures = failures
		}
		m.Scenes = append(m.Scenes, entry)
	}

	sort.Slice(m.Scenes, func(a, b int) bool { return m.Scenes[a].Index < m.Scenes[b].Index })
	return m
}

// ManifestPath is {root}/{id}.yaml, beside the run directory so the
// directory holds only media.
func (r *Run) ManifestPath() string {
	return filepath.Join(filepath.Dir(r.Dir), r.ID+".yaml")
}

// WriteManifest writes the manifest to ManifestPath and returns that path.
func (r *Run) WriteManifest(seed int64, scenes []SceneText) (string, error) {
	data, err := yaml.Marshal(r.BuildManifest(seed, scenes))
	if err != nil {
		return "", fmt.Errorf("failed to marshal manifest: %w", err)
	}
	path := r.ManifestPath()
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return path, nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

func (r *Run) relative(path string) string {
	rel, err := filepath.Rel(r.Dir, path)
	if err != nil {
		return path
	}
	return rel
}
