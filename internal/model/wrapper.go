package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MissingCategory fills absent categorical cells.
const MissingCategory = "MISSING"

// dateFeatures are excluded from numeric coercion alongside categoricals,
// mirroring the training-time preprocessing.
var dateFeatures = map[string]bool{"Date": true, "Date_month": true, "Date_day": true}

// Result is a completed inference, converted to plain Go types.
type Result struct {
	Prediction    []int       `json:"prediction"`
	Probabilities [][]float64 `json:"probabilities"`
	Columns       []string    `json:"-"`
	Row           []any       `json:"-"`
}

// Wrapper binds a loaded artifact to its discovered schema and exposes
// predict over arbitrary feature dicts.
type Wrapper struct {
	artifact *Artifact
	schema   Schema
}

// NewWrapper loads the artifact from dir and discovers its schema.
func NewWrapper(dir string) (*Wrapper, error) {
	artifact, err := Load(dir)
	if err != nil {
		return nil, err
	}
	return WrapArtifact(artifact), nil
}

// WrapArtifact builds a wrapper around an already-loaded artifact.
func WrapArtifact(artifact *Artifact) *Wrapper {
	var provider SchemaProvider = artifact
	schema := provider.Describe()
	if len(schema.FeatureOrder) == 0 {
		schema = NullSchema{}.Describe()
	}
	return &Wrapper{artifact: artifact, schema: schema}
}

// Schema exposes the discovered schema for diagnostics.
func (w *Wrapper) Schema() Schema { return w.schema }

// Source reports the artifact file backing this wrapper.
func (w *Wrapper) Source() string { return w.artifact.Source() }

// BuildRow constructs the single coerced input row the classifier consumes.
// Columns follow the discovered feature order when known, otherwise the
// caller's feature names sorted lexicographically so output stays
// reproducible. Every expected column is present: absent categoricals become
// MissingCategory, absent or unparsable numerics become 0.0.
func (w *Wrapper) BuildRow(feats map[string]any) ([]string, []any, map[string]any) {
	columns := w.schema.FeatureOrder
	if len(columns) == 0 {
		columns = make([]string, 0, len(feats))
		for name := range feats {
			columns = append(columns, name)
		}
		sort.Strings(columns)
	}

	values := make([]any, len(columns))
	row := make(map[string]any, len(columns))
	for i, col := range columns {
		raw, ok := feats[col]
		var cell any
		switch {
		case w.schema.IsCategorical(col):
			cell = coerceCategory(raw, ok)
		case dateFeatures[col]:
			// Date components pass through numeric coercion too; they are
			// excluded only from being re-typed as categories.
			cell = coerceNumeric(raw)
		default:
			cell = coerceNumeric(raw)
		}
		values[i] = cell
		row[col] = cell
	}
	return columns, values, row
}

// Predict coerces the feature dict into a schema-conformant row and runs the
// ensemble. Any inference failure is captured as a PredictError; this method
// never panics past its boundary.
func (w *Wrapper) Predict(feats map[string]any) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PredictError{Detail: fmt.Sprint(r)}
		}
	}()

	columns, values, row := w.BuildRow(feats)

	p, scoreErr := w.artifact.ensembleProbability(row)
	if scoreErr != nil {
		return nil, &PredictError{Detail: scoreErr.Error()}
	}

	class := 0
	if p >= 0.5 {
		class = 1
	}

	return &Result{
		Prediction:    []int{class},
		Probabilities: [][]float64{{1 - p, p}},
		Columns:       columns,
		Row:           values,
	}, nil
}

// coerceCategory forces a cell to string type; nil or absent values become
// the missing sentinel.
func coerceCategory(raw any, present bool) string {
	if !present || raw == nil {
		return MissingCategory
	}
	switch v := raw.(type) {
	case string:
		if v == "" {
			return MissingCategory
		}
		return v
	default:
		return fmt.Sprint(v)
	}
}

// coerceNumeric forces a cell to float64; unparsable values become 0.0
// rather than failing the request.
func coerceNumeric(raw any) float64 {
	switch v := raw.(type) {
	case nil:
		return 0.0
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case bool:
		if v {
			return 1.0
		}
		return 0.0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0.0
		}
		return f
	default:
		return 0.0
	}
}
