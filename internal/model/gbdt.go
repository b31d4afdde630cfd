package model

import (
	"fmt"
	"math"
)

// Node is one decision node of a boosted tree. A node is either a leaf
// (Leaf true, Value set) or a split: categorical when Categories is
// non-empty (membership sends the row left), numeric otherwise (value below
// Threshold sends the row left).
type Node struct {
	Feature    string   `json:"feature,omitempty"`
	Threshold  float64  `json:"threshold,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Left       int      `json:"left,omitempty"`
	Right      int      `json:"right,omitempty"`
	Leaf       bool     `json:"leaf,omitempty"`
	Value      float64  `json:"value,omitempty"`
}

// Tree is a single member of the boosted ensemble.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Score walks the tree for one coerced input row and returns the leaf value.
// Rows are looked up by feature name, so scoring is independent of column
// order. Malformed trees (bad indexes, cycles) are reported as errors.
func (t Tree) Score(row map[string]any) (float64, error) {
	if len(t.Nodes) == 0 {
		return 0, fmt.Errorf("empty tree")
	}

	idx := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		if idx < 0 || idx >= len(t.Nodes) {
			return 0, fmt.Errorf("node index %d out of range", idx)
		}
		n := t.Nodes[idx]
		if n.Leaf {
			return n.Value, nil
		}

		if len(n.Categories) > 0 {
			val, _ := row[n.Feature].(string)
			if containsString(n.Categories, val) {
				idx = n.Left
			} else {
				idx = n.Right
			}
			continue
		}

		val, _ := row[n.Feature].(float64)
		if val < n.Threshold {
			idx = n.Left
		} else {
			idx = n.Right
		}
	}
	return 0, fmt.Errorf("tree walk did not reach a leaf")
}

// Ensemble sums tree scores on top of the base score and squashes the margin
// into a probability with the logistic function.
func (a *Artifact) ensembleProbability(row map[string]any) (float64, error) {
	score := a.BaseScore
	for i, tree := range a.Trees {
		leaf, err := tree.Score(row)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		score += leaf
	}
	return 1.0 / (1.0 + math.Exp(-score)), nil
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
