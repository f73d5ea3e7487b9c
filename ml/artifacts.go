package ml

import (
	"errors"
	"fmt"
)

// Artifacts is the read-only pair of fitted scaler and classifier loaded at
// startup. It holds no mutable state and is safe for concurrent use.
type Artifacts struct {
	scaler     Scaler
	classifier Classifier
	proba      ProbabilisticClassifier
}

// ArtifactInfo describes loaded artifacts for operators.
type ArtifactInfo struct {
	Classifier    string `json:"classifier"`
	Scaler        string `json:"scaler"`
	Features      int    `json:"n_features"`
	Classes       []int  `json:"classes,omitempty"`
	Probabilities bool   `json:"probabilities"`
}

// NewArtifacts pairs a scaler with a classifier. Both must agree on the
// feature count when they declare one.
func NewArtifacts(scaler Scaler, classifier Classifier) (*Artifacts, error) {
	if scaler == nil || classifier == nil {
		return nil, errors.New("scaler and classifier are required")
	}
	if sf, cf := scaler.NumFeatures(), classifier.NumFeatures(); sf > 0 && cf > 0 && sf != cf {
		return nil, fmt.Errorf("%s expects %d features but %s expects %d: %w",
			scaler.Name(), sf, classifier.Name(), cf, ErrFeatureMismatch)
	}
	a := &Artifacts{scaler: scaler, classifier: classifier}
	if p, ok := classifier.(ProbabilisticClassifier); ok {
		a.proba = p
	}
	return a, nil
}

// LoadArtifacts reads the classifier and scaler artifacts from disk.
func LoadArtifacts(modelPath, scalerPath string) (*Artifacts, error) {
	classifier, err := LoadClassifier(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", modelPath, err)
	}
	scaler, err := LoadScaler(scalerPath)
	if err != nil {
		return nil, fmt.Errorf("load scaler %s: %w", scalerPath, err)
	}
	return NewArtifacts(scaler, classifier)
}

func (a *Artifacts) Transform(X [][]float64) ([][]float64, error) {
	return a.scaler.Transform(X)
}

func (a *Artifacts) Predict(X [][]float64) ([]int, error) {
	return a.classifier.Predict(X)
}

// SupportsProbabilities reports whether PredictProba is available.
func (a *Artifacts) SupportsProbabilities() bool { return a.proba != nil }

// PredictProba returns per-row class probabilities, or nil when the
// classifier does not provide them.
func (a *Artifacts) PredictProba(X [][]float64) ([][]float64, error) {
	if a.proba == nil {
		return nil, nil
	}
	return a.proba.PredictProba(X)
}

func (a *Artifacts) Info() ArtifactInfo {
	info := ArtifactInfo{
		Classifier:    a.classifier.Name(),
		Scaler:        a.scaler.Name(),
		Features:      a.scaler.NumFeatures(),
		Probabilities: a.SupportsProbabilities(),
	}
	if info.Features == 0 {
		info.Features = a.classifier.NumFeatures()
	}
	if a.proba != nil {
		info.Classes = a.proba.Classes()
	}
	return info
}
