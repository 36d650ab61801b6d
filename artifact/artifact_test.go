package artifact

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNewRunCreatesUniqueDirectories(t *testing.T) {
	root := t.TempDir()

	first, err := NewRun(root)
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}
	second, err := NewRun(root)
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	if first.ID == second.ID {
		t.Errorf("expected distinct run identifiers, both were %s", first.ID)
	}
	for _, r := range []*Run{first, second} {
		info, err := os.Stat(r.Dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected run directory %s to exist", r.Dir)
		}
		if filepath.Base(r.Dir) != r.ID {
			t.Errorf("expected directory named after run id, got %s", r.Dir)
		}
	}
}

func TestFileNames(t *testing.T) {
	tests := []struct {
		kind     Kind
		index    int
		expected string
	}{
		{KindImage, 1, "1.jpg"},
		{KindAudio, 2, "2.mp3"},
		{KindParallax, 3, "parallax_3.mp4"},
		{KindClip, 10, "10.mp4"},
	}

	r := newRun("run", "/tmp/run")
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FileName(tt.kind, tt.index); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
			if got := r.Path(tt.kind, tt.index); got != filepath.Join("/tmp/run", tt.expected) {
				t.Errorf("unexpected path %s", got)
			}
		})
	}

	if got := r.CombinedPath(); got != filepath.Join("/tmp/run", "combined_video.mp4") {
		t.Errorf("unexpected combined path %s", got)
	}
}

func TestCompleteFiltersGaps(t *testing.T) {
	r := newRun("run", "/tmp/run")
	for i := 1; i <= 5; i++ {
		r.Record(i, KindAudio, r.Path(KindAudio, i))
		if i == 3 {
			r.Fail(i, KindImage, "HTTP 500")
			continue
		}
		r.Record(i, KindImage, r.Path(KindImage, i))
	}

	got := r.Complete(KindImage, KindAudio)
	want := []int{1, 2, 4, 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if _, ok := r.Lookup(3, KindImage); ok {
		t.Error("index 3 image should be absent")
	}
	if reason, ok := r.Failure(3, KindImage); !ok || reason != "HTTP 500" {
		t.Errorf("expected recorded failure, got %q (%v)", reason, ok)
	}
}

func TestRecordClearsEarlierFailure(t *testing.T) {
	r := newRun("run", "/tmp/run")
	r.Fail(1, KindClip, "mux failed")
	r.Record(1, KindClip, r.Path(KindClip, 1))

	if _, ok := r.Failure(1, KindClip); ok {
		t.Error("expected failure to be cleared once the artifact is recorded")
	}
	if got := r.Complete(KindClip); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("expected [1], got %v", got)
	}
}

func TestSortByIndex(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
		wantErr  bool
	}{
		{
			name:     "two digit indices sort numerically",
			input:    []string{"1.mp4", "10.mp4", "2.mp4"},
			expected: []string{"1.mp4", "2.mp4", "10.mp4"},
		},
		{
			name:     "full paths",
			input:    []string{"/run/12.mp4", "/run/9.mp4", "/run/3.mp4"},
			expected: []string{"/run/3.mp4", "/run/9.mp4", "/run/12.mp4"},
		},
		{
			name:    "non numeric stem",
			input:   []string{"1.mp4", "combined_video.mp4"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SortByIndex(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestWriteManifest(t *testing.T) {
	root := t.TempDir()
	r, err := NewRun(root)
	if err != nil {
		t.Fatalf("failed to create run: %v", err)
	}

	r.Record(1, KindImage, r.Path(KindImage, 1))
	r.Record(1, KindAudio, r.Path(KindAudio, 1))
	r.Fail(2, KindImage, "HTTP 500")

	path, err := r.WriteManifest(1234, []SceneText{
		{ImageDescription: "A mountain", Text: "Climb"},
		{ImageDescription: "A river", Text: "Flow"},
	})
	if err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	if path != filepath.Join(root, r.ID+".yaml") {
		t.Errorf("manifest should sit beside the run directory, got %s", path)
	}
	if _, err := os.Stat(filepath.Join(r.Dir, ManifestName)); !os.IsNotExist(err) {
		t.Errorf("manifest must not be written inside the run directory")
	}

	m, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("failed to read manifest: %v", err)
	}
	if m.RunID != r.ID || m.Seed != 1234 {
		t.Errorf("unexpected header %+v", m)
	}
	if len(m.Scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %d", len(m.Scenes))
	}
	if m.Scenes[0].Artifacts[KindImage] != "1.jpg" {
		t.Errorf("expected relative image path, got %q", m.Scenes[0].Artifacts[KindImage])
	}
	if m.Scenes[1].Failures[KindImage] != "HTTP 500" {
		t.Errorf("expected failure reason for scene 2, got %v", m.Scenes[1].Failures)
	}
	if m.CombinedVideo != "" {
		t.Errorf("combined video should be empty before concatenation, got %q", m.CombinedVideo)
	}
}
