package ml

import (
	"errors"
	"fmt"
	"slices"
)

// DecisionTree is a fitted tree stored as a flat node array. Node 0 is the
// root; children are referenced by index.
type DecisionTree struct {
	Features int        `json:"n_features"`
	Labels   []int      `json:"classes"`
	Nodes    []TreeNode `json:"nodes"`
}

type TreeNode struct {
	FeatureIdx int       `json:"feature_idx"`
	Threshold  float64   `json:"threshold"`
	LeftChild  int       `json:"left_child"`
	RightChild int       `json:"right_child"`
	ClassLabel int       `json:"class_label"`
	IsLeaf     bool      `json:"is_leaf"`
	Counts     []float64 `json:"counts,omitempty"`
}

func (dt *DecisionTree) Name() string     { return "DecisionTreeClassifier" }
func (dt *DecisionTree) NumFeatures() int { return dt.Features }
func (dt *DecisionTree) Classes() []int   { return append([]int(nil), dt.Labels...) }

func (dt *DecisionTree) Predict(X [][]float64) ([]int, error) {
	if err := checkFeatures(X, dt.Features, dt.Name()); err != nil {
		return nil, err
	}
	labels := make([]int, len(X))
	for i, row := range X {
		leaf, err := dt.leaf(row)
		if err != nil {
			return nil, err
		}
		labels[i] = leaf.ClassLabel
	}
	return labels, nil
}

func (dt *DecisionTree) PredictProba(X [][]float64) ([][]float64, error) {
	if err := checkFeatures(X, dt.Features, dt.Name()); err != nil {
		return nil, err
	}
	proba := make([][]float64, len(X))
	for i, row := range X {
		leaf, err := dt.leaf(row)
		if err != nil {
			return nil, err
		}
		proba[i] = dt.leafDistribution(leaf)
	}
	return proba, nil
}

// leaf walks from the root to the leaf that row falls into.
func (dt *DecisionTree) leaf(row []float64) (TreeNode, error) {
	if len(dt.Nodes) == 0 {
		return TreeNode{}, ErrNotFitted
	}
	idx := 0
	for steps := 0; steps <= len(dt.Nodes); steps++ {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return node, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(row) {
			return TreeNode{}, errors.New("feature index out of range")
		}
		if row[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.Nodes) {
			return TreeNode{}, errors.New("invalid tree state")
		}
	}
	return TreeNode{}, errors.New("invalid tree state: cycle detected")
}

// leafDistribution normalises the leaf's class counts. A leaf without counts
// puts all mass on its label.
func (dt *DecisionTree) leafDistribution(leaf TreeNode) []float64 {
	dist := make([]float64, len(dt.Labels))
	var total float64
	for _, c := range leaf.Counts {
		total += c
	}
	if len(leaf.Counts) == len(dt.Labels) && total > 0 {
		for i, c := range leaf.Counts {
			dist[i] = c / total
		}
		return dist
	}
	for i, label := range dt.Labels {
		if label == leaf.ClassLabel {
			dist[i] = 1
		}
	}
	return dist
}

func (dt *DecisionTree) validate() error {
	if dt.Features <= 0 {
		return fmt.Errorf("decision tree: n_features must be positive, got %d", dt.Features)
	}
	if len(dt.Labels) == 0 {
		return errors.New("decision tree: classes are required")
	}
	if len(dt.Nodes) == 0 {
		return fmt.Errorf("decision tree: %w", ErrNotFitted)
	}
	for i, node := range dt.Nodes {
		if node.IsLeaf {
			if !slices.Contains(dt.Labels, node.ClassLabel) {
				return fmt.Errorf("decision tree: leaf %d predicts unknown class %d", i, node.ClassLabel)
			}
			if node.Counts == nil {
				continue
			}
			if len(node.Counts) != len(dt.Labels) {
				return fmt.Errorf("decision tree: node %d has %d counts for %d classes", i, len(node.Counts), len(dt.Labels))
			}
			// Predict and PredictProba must agree on the leaf's class.
			if best := dt.Labels[argmax(node.Counts)]; best != node.ClassLabel {
				return fmt.Errorf("decision tree: leaf %d labelled %d but its counts favour %d", i, node.ClassLabel, best)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= dt.Features {
			return fmt.Errorf("decision tree: node %d splits on feature %d out of %d", i, node.FeatureIdx, dt.Features)
		}
		if node.LeftChild <= i || node.LeftChild >= len(dt.Nodes) || node.RightChild <= i || node.RightChild >= len(dt.Nodes) {
			return fmt.Errorf("decision tree: node %d has invalid children", i)
		}
	}
	return nil
}
