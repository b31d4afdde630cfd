// Package model loads the pretrained gradient-boosted rain classifier,
// reconciles caller features against its trained schema, and runs inference.
package model

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// ArtifactFormat tags the native JSON tree-dump format.
const ArtifactFormat = "envirowatch-gbdt"

// Candidate artifact files, tried in fixed preference order: the native JSON
// tree dump before the generic gob-encoded blob.
var artifactCandidates = []string{"rain_model.json", "rain_model.gob"}

// Artifact is a trained classifier plus its introspectable metadata. Loaded
// once and shared read-only for the process lifetime.
type Artifact struct {
	Format       string   `json:"format"`
	FeatureNames []string `json:"feature_names"`
	// FeatureTypes parallels FeatureNames; entries starting with "cat"
	// (case-insensitive) mark categorical features. May be absent.
	FeatureTypes []string `json:"feature_types,omitempty"`
	Classes      []int    `json:"classes"`
	BaseScore    float64  `json:"base_score"`
	Trees        []Tree   `json:"trees"`

	source string
}

// Source reports which file the artifact was loaded from.
func (a *Artifact) Source() string { return a.source }

// Describe implements SchemaProvider. When the type metadata is missing or
// its length disagrees with the feature names, it degrades to the NullSchema
// policy: keep the feature order if known but treat everything as numeric.
func (a *Artifact) Describe() Schema {
	schema := Schema{
		FeatureOrder: a.FeatureNames,
		Categorical:  map[string]bool{},
	}
	if len(a.FeatureTypes) != len(a.FeatureNames) {
		return schema
	}
	for i, t := range a.FeatureTypes {
		if strings.HasPrefix(strings.ToLower(t), "cat") {
			schema.Categorical[a.FeatureNames[i]] = true
		}
	}
	return schema
}

// Load reads the first artifact candidate that parses from dir. It returns
// ErrModelNotFound when no candidate file exists at all; a file that exists
// but cannot be decoded surfaces as a load error instead.
func Load(dir string) (*Artifact, error) {
	var (
		found   bool
		lastErr error
	)

	for _, name := range artifactCandidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		found = true

		artifact, err := loadFile(path)
		if err != nil {
			lastErr = fmt.Errorf("load %s: %w", name, err)
			continue
		}
		artifact.source = path
		return artifact, nil
	}

	if !found {
		return nil, fmt.Errorf("%w: no artifact in %s", ErrModelNotFound, dir)
	}
	return nil, lastErr
}

func loadFile(path string) (*Artifact, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var artifact Artifact
	switch filepath.Ext(path) {
	case ".json":
		if err := json.NewDecoder(file).Decode(&artifact); err != nil {
			return nil, err
		}
		if artifact.Format != ArtifactFormat {
			return nil, fmt.Errorf("unrecognized artifact format %q", artifact.Format)
		}
	case ".gob":
		if err := gob.NewDecoder(file).Decode(&artifact); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported artifact extension %q", filepath.Ext(path))
	}

	if len(artifact.Trees) == 0 {
		return nil, fmt.Errorf("artifact carries no trees")
	}
	return &artifact, nil
}
