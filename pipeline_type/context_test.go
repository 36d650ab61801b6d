package pipeline_type

import (
	"testing"

	"github.com/serisow/shortsmith/artifact"
	"github.com/serisow/shortsmith/script"
)

func TestResultsAreSortedByIndex(t *testing.T) {
	c := NewContext(nil, 1)
	c.AddResult("image_step", Failed(3, "status 500"))
	c.AddResult("image_step", OK(1, "1.jpg"))
	c.AddResult("image_step", Skipped(2, "no audio"))

	results := c.Results("image_step")
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Index != i+1 {
			t.Errorf("position %d holds index %d", i, r.Index)
		}
	}
	if results[2].Status != ResultFailed || results[2].Reason != "status 500" {
		t.Errorf("unexpected result for index 3: %+v", results[2])
	}
	if len(c.Results("unknown")) != 0 {
		t.Errorf("expected no results for an unknown stage")
	}
}

func TestSceneTexts(t *testing.T) {
	c := NewContext(nil, 1)
	c.Scenes = []script.Scene{{ImageDescription: "A pier.", Text: "Stay calm."}}

	texts := c.SceneTexts()
	want := artifact.SceneText{ImageDescription: "A pier.", Text: "Stay calm."}
	if len(texts) != 1 || texts[0] != want {
		t.Errorf("unexpected scene texts: %+v", texts)
	}
}

func TestDurations(t *testing.T) {
	c := NewContext(nil, 1)
	if _, ok := c.Duration(1); ok {
		t.Fatal("expected no duration before SetDuration")
	}
	c.SetDuration(1, 4.5)
	if d, ok := c.Duration(1); !ok || d != 4.5 {
		t.Errorf("expected 4.5, got %v", d)
	}
}
