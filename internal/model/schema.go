package model

// Schema describes what a loaded classifier expects as input: the trained
// feature order and which of those features are categorical.
type Schema struct {
	FeatureOrder []string
	Categorical  map[string]bool
}

// IsCategorical reports whether the named feature carries category strings.
func (s Schema) IsCategorical(name string) bool {
	return s.Categorical[name]
}

// SchemaProvider is the capability of describing a model's expected input.
// Business logic consults this interface instead of branching on artifact
// formats directly.
type SchemaProvider interface {
	Describe() Schema
}

// NullSchema is the safety fallback when artifact metadata is missing or
// inconsistent: no feature order is imposed and every feature is treated as
// numeric. This avoids type-mismatch failures at inference time at the cost
// of categorical fidelity; it is an approximation, not a guarantee.
type NullSchema struct{}

func (NullSchema) Describe() Schema {
	return Schema{Categorical: map[string]bool{}}
}
