package model

import (
	"encoding/gob"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/goccy/go-json"
)

func testArtifact() *Artifact {
	return &Artifact{
		Format:       ArtifactFormat,
		FeatureNames: []string{"Humidity3pm", "RainToday", "Rainfall"},
		FeatureTypes: []string{"Float", "Categorical", "Float"},
		Classes:      []int{0, 1},
		BaseScore:    0.0,
		Trees: []Tree{
			{Nodes: []Node{
				{Feature: "Humidity3pm", Threshold: 60, Left: 1, Right: 2},
				{Leaf: true, Value: -1.2},
				{Leaf: true, Value: 1.4},
			}},
			{Nodes: []Node{
				{Feature: "RainToday", Categories: []string{"Yes"}, Left: 1, Right: 2},
				{Leaf: true, Value: 0.8},
				{Leaf: true, Value: -0.3},
			}},
		},
	}
}

func writeJSONArtifact(t *testing.T, dir string, a *Artifact) {
	t.Helper()
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal artifact: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "rain_model.json"), data, 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
}

func TestLoadMissingArtifact(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.Is(err, ErrModelNotFound) {
		t.Fatalf("err = %v, want ErrModelNotFound", err)
	}
}

func TestLoadPrefersNativeJSON(t *testing.T) {
	dir := t.TempDir()
	writeJSONArtifact(t, dir, testArtifact())

	// A gob candidate exists too, but the JSON dump must win.
	gobFile, err := os.Create(filepath.Join(dir, "rain_model.gob"))
	if err != nil {
		t.Fatalf("create gob: %v", err)
	}
	other := testArtifact()
	other.BaseScore = 99
	if err := gob.NewEncoder(gobFile).Encode(other); err != nil {
		t.Fatalf("encode gob: %v", err)
	}
	gobFile.Close()

	artifact, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact.BaseScore != 0 {
		t.Fatalf("loaded the gob candidate; JSON must have priority")
	}
	if filepath.Base(artifact.Source()) != "rain_model.json" {
		t.Fatalf("source = %s, want rain_model.json", artifact.Source())
	}
}

func TestLoadFallsBackToGob(t *testing.T) {
	dir := t.TempDir()
	gobFile, err := os.Create(filepath.Join(dir, "rain_model.gob"))
	if err != nil {
		t.Fatalf("create gob: %v", err)
	}
	if err := gob.NewEncoder(gobFile).Encode(testArtifact()); err != nil {
		t.Fatalf("encode gob: %v", err)
	}
	gobFile.Close()

	artifact, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(artifact.Trees) != 2 {
		t.Fatalf("trees = %d, want 2", len(artifact.Trees))
	}
}

func TestLoadRejectsWrongFormatTag(t *testing.T) {
	dir := t.TempDir()
	a := testArtifact()
	a.Format = "something-else"
	writeJSONArtifact(t, dir, a)

	if _, err := Load(dir); err == nil {
		t.Fatal("expected a load error for an unrecognized format tag")
	} else if errors.Is(err, ErrModelNotFound) {
		t.Fatal("a present-but-invalid artifact must not report ErrModelNotFound")
	}
}

func TestSchemaDiscovery(t *testing.T) {
	w := WrapArtifact(testArtifact())
	schema := w.Schema()
	if !reflect.DeepEqual(schema.FeatureOrder, []string{"Humidity3pm", "RainToday", "Rainfall"}) {
		t.Fatalf("unexpected feature order %v", schema.FeatureOrder)
	}
	if !schema.IsCategorical("RainToday") || schema.IsCategorical("Humidity3pm") {
		t.Fatal("categorical markers not discovered from metadata")
	}
}

func TestSchemaFallbackOnInconsistentMetadata(t *testing.T) {
	a := testArtifact()
	a.FeatureTypes = []string{"Float"} // length mismatch
	w := WrapArtifact(a)
	if len(w.Schema().Categorical) != 0 {
		t.Fatal("inconsistent metadata must fall back to an empty categorical set")
	}
}

func TestBuildRowOrderStable(t *testing.T) {
	w := WrapArtifact(testArtifact())
	feats := map[string]any{"RainToday": "Yes", "Humidity3pm": 72.0, "Rainfall": "3.5"}

	cols1, row1, _ := w.BuildRow(feats)
	cols2, row2, _ := w.BuildRow(feats)
	if !reflect.DeepEqual(cols1, cols2) || !reflect.DeepEqual(row1, row2) {
		t.Fatal("row construction is not order-stable")
	}
}

func TestBuildRowLexicographicWithoutOrder(t *testing.T) {
	a := testArtifact()
	a.FeatureNames = nil
	a.FeatureTypes = nil
	w := WrapArtifact(a)

	cols, _, _ := w.BuildRow(map[string]any{"b": 1.0, "a": 2.0, "c": 3.0})
	if !reflect.DeepEqual(cols, []string{"a", "b", "c"}) {
		t.Fatalf("columns = %v, want lexicographic order", cols)
	}
}

func TestBuildRowCoercion(t *testing.T) {
	w := WrapArtifact(testArtifact())
	_, _, row := w.BuildRow(map[string]any{
		"Humidity3pm": "not-a-number",
		"Rainfall":    nil,
	})

	if row["Humidity3pm"] != 0.0 {
		t.Errorf("unparsable numeric = %v, want 0.0", row["Humidity3pm"])
	}
	if row["Rainfall"] != 0.0 {
		t.Errorf("nil numeric = %v, want 0.0", row["Rainfall"])
	}
	if row["RainToday"] != MissingCategory {
		t.Errorf("absent categorical = %v, want %q", row["RainToday"], MissingCategory)
	}
}

func TestPredict(t *testing.T) {
	w := WrapArtifact(testArtifact())

	// High humidity + rain today: both trees vote for rain.
	res, err := w.Predict(map[string]any{"Humidity3pm": 80.0, "RainToday": "Yes", "Rainfall": 5.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Prediction[0] != 1 {
		t.Fatalf("prediction = %d, want 1", res.Prediction[0])
	}
	p := res.Probabilities[0]
	if len(p) != 2 {
		t.Fatalf("probabilities = %v, want two classes", p)
	}
	if sum := p[0] + p[1]; sum < 0.999 || sum > 1.001 {
		t.Fatalf("probabilities sum to %f, want ~1.0", sum)
	}

	// Dry, low humidity: both trees vote against.
	res, err = w.Predict(map[string]any{"Humidity3pm": 30.0, "RainToday": "No", "Rainfall": 0.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Prediction[0] != 0 {
		t.Fatalf("prediction = %d, want 0", res.Prediction[0])
	}
}

func TestPredictReportsMalformedTrees(t *testing.T) {
	a := testArtifact()
	a.Trees = []Tree{{Nodes: []Node{{Feature: "Humidity3pm", Threshold: 1, Left: 5, Right: 6}}}}
	w := WrapArtifact(a)

	_, err := w.Predict(map[string]any{"Humidity3pm": 2.0})
	var perr *PredictError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want PredictError", err)
	}
}
