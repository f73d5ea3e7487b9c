package ml

import (
	"errors"
	"fmt"
	"slices"
)

// RandomForest averages the class distributions of its trees. All trees
// share the forest's feature count and class order.
type RandomForest struct {
	Features int            `json:"n_features"`
	Labels   []int          `json:"classes"`
	Trees    []DecisionTree `json:"estimators"`
}

func (rf *RandomForest) Name() string     { return "RandomForestClassifier" }
func (rf *RandomForest) NumFeatures() int { return rf.Features }
func (rf *RandomForest) Classes() []int   { return append([]int(nil), rf.Labels...) }

func (rf *RandomForest) Predict(X [][]float64) ([]int, error) {
	proba, err := rf.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return labelsFromProba(proba, rf.Labels), nil
}

func (rf *RandomForest) PredictProba(X [][]float64) ([][]float64, error) {
	if err := checkFeatures(X, rf.Features, rf.Name()); err != nil {
		return nil, err
	}
	proba := make([][]float64, len(X))
	for i := range proba {
		proba[i] = make([]float64, len(rf.Labels))
	}
	for t := range rf.Trees {
		tp, err := rf.Trees[t].PredictProba(X)
		if err != nil {
			return nil, fmt.Errorf("estimator %d: %w", t, err)
		}
		for i, row := range tp {
			for j, p := range row {
				proba[i][j] += p
			}
		}
	}
	n := float64(len(rf.Trees))
	for _, row := range proba {
		for j := range row {
			row[j] /= n
		}
	}
	return proba, nil
}

func (rf *RandomForest) validate() error {
	if rf.Features <= 0 {
		return fmt.Errorf("random forest: n_features must be positive, got %d", rf.Features)
	}
	if len(rf.Labels) == 0 {
		return errors.New("random forest: classes are required")
	}
	if len(rf.Trees) == 0 {
		return fmt.Errorf("random forest: %w", ErrNotFitted)
	}
	for i := range rf.Trees {
		tree := &rf.Trees[i]
		if tree.Features == 0 {
			tree.Features = rf.Features
		}
		if tree.Labels == nil {
			tree.Labels = rf.Labels
		}
		if tree.Features != rf.Features || !slices.Equal(tree.Labels, rf.Labels) {
			return fmt.Errorf("random forest: estimator %d disagrees on features or classes", i)
		}
		if err := tree.validate(); err != nil {
			return fmt.Errorf("estimator %d: %w", i, err)
		}
	}
	return nil
}
