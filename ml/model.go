package ml

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyMatrix         = errors.New("matrix is empty")
	ErrFeatureMismatch     = errors.New("feature count mismatch")
	ErrUnknownArtifactType = errors.New("unsupported artifact type")
	ErrNotFitted           = errors.New("artifact is not fitted")
)

// Classifier is a pre-fitted model producing one class label per input row.
type Classifier interface {
	Predict(X [][]float64) ([]int, error)
	NumFeatures() int
	Name() string
}

// ProbabilisticClassifier is a Classifier that can also report per-row class
// probabilities. Columns follow the order of Classes().
type ProbabilisticClassifier interface {
	Classifier
	PredictProba(X [][]float64) ([][]float64, error)
	Classes() []int
}

// Scaler is a pre-fitted feature transform applied before inference.
type Scaler interface {
	Transform(X [][]float64) ([][]float64, error)
	NumFeatures() int
	Name() string
}

// checkFeatures validates that every row of X has n columns. The message
// follows the wording users of the exported artifacts already know.
func checkFeatures(X [][]float64, n int, owner string) error {
	if len(X) == 0 {
		return fmt.Errorf("found array with 0 sample(s) while a minimum of 1 is required by %s: %w", owner, ErrEmptyMatrix)
	}
	for _, row := range X {
		if len(row) != n {
			return fmt.Errorf("X has %d features, but %s is expecting %d features as input: %w", len(row), owner, n, ErrFeatureMismatch)
		}
	}
	return nil
}

func argmax(values []float64) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

// labelsFromProba picks the most probable class of every row.
func labelsFromProba(proba [][]float64, classes []int) []int {
	labels := make([]int, len(proba))
	for i, row := range proba {
		labels[i] = classes[argmax(row)]
	}
	return labels
}
