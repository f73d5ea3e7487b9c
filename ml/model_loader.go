package ml

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

type validator interface {
	validate() error
}

// ClassifierFactory returns an empty classifier ready to be decoded into.
type ClassifierFactory func() Classifier

// ScalerFactory returns an empty scaler ready to be decoded into.
type ScalerFactory func() Scaler

var classifierFactories = map[string]ClassifierFactory{
	"logistic_regression": func() Classifier { return &LogisticRegression{} },
	"decision_tree":       func() Classifier { return &DecisionTree{} },
	"random_forest":       func() Classifier { return &RandomForest{} },
}

var scalerFactories = map[string]ScalerFactory{
	"standard": func() Scaler { return &StandardScaler{} },
	"minmax":   func() Scaler { return &MinMaxScaler{} },
	"identity": func() Scaler { return &IdentityScaler{} },
}

// envelope is the common header of every exported artifact file.
type envelope struct {
	Type string `json:"type"`
}

// ClassifierTypes lists the artifact types LoadClassifier understands.
func ClassifierTypes() []string { return sortedKeys(classifierFactories) }

// ScalerTypes lists the artifact types LoadScaler understands.
func ScalerTypes() []string { return sortedKeys(scalerFactories) }

// LoadClassifier reads an exported classifier artifact from path.
func LoadClassifier(path string) (Classifier, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classifier artifact: %w", err)
	}
	return DecodeClassifier(payload)
}

// DecodeClassifier decodes an exported classifier artifact.
func DecodeClassifier(payload []byte) (Classifier, error) {
	kind, err := artifactType(payload)
	if err != nil {
		return nil, err
	}
	factory, ok := classifierFactories[kind]
	if !ok {
		return nil, fmt.Errorf("classifier %q: %w", kind, ErrUnknownArtifactType)
	}
	model := factory()
	if err := decodeInto(payload, model); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return model, nil
}

// LoadScaler reads an exported scaler artifact from path.
func LoadScaler(path string) (Scaler, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scaler artifact: %w", err)
	}
	return DecodeScaler(payload)
}

// DecodeScaler decodes an exported scaler artifact.
func DecodeScaler(payload []byte) (Scaler, error) {
	kind, err := artifactType(payload)
	if err != nil {
		return nil, err
	}
	factory, ok := scalerFactories[kind]
	if !ok {
		return nil, fmt.Errorf("scaler %q: %w", kind, ErrUnknownArtifactType)
	}
	scaler := factory()
	if err := decodeInto(payload, scaler); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return scaler, nil
}

func artifactType(payload []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return "", fmt.Errorf("decode artifact header: %w", err)
	}
	if env.Type == "" {
		return "", fmt.Errorf("artifact has no type: %w", ErrUnknownArtifactType)
	}
	return env.Type, nil
}

func decodeInto(payload []byte, target any) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	if err := dec.Decode(target); err != nil {
		return err
	}
	if v, ok := target.(validator); ok {
		return v.validate()
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
