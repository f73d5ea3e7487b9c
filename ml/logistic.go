package ml

import (
	"errors"
	"fmt"
	"math"
)

// LogisticRegression holds fitted linear coefficients. A binary model has a
// single coefficient row scored with the sigmoid; multiclass models carry one
// row per class and use softmax.
type LogisticRegression struct {
	Features  int         `json:"n_features"`
	Labels    []int       `json:"classes"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

func (lr *LogisticRegression) Name() string     { return "LogisticRegression" }
func (lr *LogisticRegression) NumFeatures() int { return lr.Features }
func (lr *LogisticRegression) Classes() []int   { return append([]int(nil), lr.Labels...) }

func (lr *LogisticRegression) Predict(X [][]float64) ([]int, error) {
	proba, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return labelsFromProba(proba, lr.Labels), nil
}

func (lr *LogisticRegression) PredictProba(X [][]float64) ([][]float64, error) {
	if err := checkFeatures(X, lr.Features, lr.Name()); err != nil {
		return nil, err
	}
	proba := make([][]float64, len(X))
	for i, row := range X {
		scores := lr.decision(row)
		if len(scores) == 1 {
			p := sigmoid(scores[0])
			proba[i] = []float64{1 - p, p}
			continue
		}
		proba[i] = softmax(scores)
	}
	return proba, nil
}

func (lr *LogisticRegression) decision(row []float64) []float64 {
	scores := make([]float64, len(lr.Coef))
	for k, coef := range lr.Coef {
		s := lr.Intercept[k]
		for j, w := range coef {
			s += w * row[j]
		}
		scores[k] = s
	}
	return scores
}

func (lr *LogisticRegression) validate() error {
	if lr.Features <= 0 {
		return fmt.Errorf("logistic regression: n_features must be positive, got %d", lr.Features)
	}
	if len(lr.Labels) < 2 {
		return errors.New("logistic regression: at least two classes are required")
	}
	rows := len(lr.Labels)
	if rows == 2 {
		rows = 1
	}
	if len(lr.Coef) != rows || len(lr.Intercept) != rows {
		return fmt.Errorf("logistic regression: expected %d coefficient rows for %d classes, got coef=%d intercept=%d",
			rows, len(lr.Labels), len(lr.Coef), len(lr.Intercept))
	}
	for k, coef := range lr.Coef {
		if len(coef) != lr.Features {
			return fmt.Errorf("logistic regression: coefficient row %d has %d values, want %d", k, len(coef), lr.Features)
		}
	}
	return nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func softmax(scores []float64) []float64 {
	maxScore := scores[argmax(scores)]
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
