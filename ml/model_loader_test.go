package ml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const logisticArtifact = `{
  "type": "logistic_regression",
  "n_features": 2,
  "classes": [0, 1],
  "coef": [[1.5, -0.5]],
  "intercept": [0.25]
}`

const standardArtifact = `{
  "type": "standard",
  "n_features": 2,
  "mean": [1, 1],
  "scale": [2, 2]
}`

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadArtifacts(t *testing.T) {
	modelPath := writeArtifact(t, "model.json", logisticArtifact)
	scalerPath := writeArtifact(t, "scaler.json", standardArtifact)

	artifacts, err := LoadArtifacts(modelPath, scalerPath)
	require.NoError(t, err)

	info := artifacts.Info()
	assert.Equal(t, "LogisticRegression", info.Classifier)
	assert.Equal(t, "StandardScaler", info.Scaler)
	assert.Equal(t, 2, info.Features)
	assert.Equal(t, []int{0, 1}, info.Classes)
	assert.True(t, info.Probabilities)

	scaled, err := artifacts.Transform([][]float64{{3, 1}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}}, scaled)
}

func TestDecodeClassifierTypes(t *testing.T) {
	tree := `{"type":"decision_tree","n_features":1,"classes":[0,1],"nodes":[
		{"feature_idx":0,"threshold":0,"left_child":1,"right_child":2},
		{"feature_idx":-1,"left_child":-1,"right_child":-1,"class_label":0,"is_leaf":true},
		{"feature_idx":-1,"left_child":-1,"right_child":-1,"class_label":1,"is_leaf":true}]}`
	model, err := DecodeClassifier([]byte(tree))
	require.NoError(t, err)
	assert.IsType(t, &DecisionTree{}, model)

	forest := `{"type":"random_forest","n_features":1,"classes":[0,1],"estimators":[` +
		`{"nodes":[{"feature_idx":-1,"left_child":-1,"right_child":-1,"class_label":1,"is_leaf":true}]}]}`
	model, err = DecodeClassifier([]byte(forest))
	require.NoError(t, err)
	labels, err := model.Predict([][]float64{{5}})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, labels)
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := DecodeClassifier([]byte(`{"type":"svm"}`))
	assert.True(t, errors.Is(err, ErrUnknownArtifactType))

	_, err = DecodeScaler([]byte(`{"n_features":2}`))
	assert.True(t, errors.Is(err, ErrUnknownArtifactType))

	_, err = DecodeScaler([]byte(`not json`))
	assert.Error(t, err)
}

func TestDecodeRejectsInconsistentArtifact(t *testing.T) {
	_, err := DecodeScaler([]byte(`{"type":"standard","n_features":3,"mean":[0,0],"scale":[1,1]}`))
	assert.Error(t, err)
}

func TestNewArtifactsFeatureDisagreement(t *testing.T) {
	scaler := &IdentityScaler{Features: 3}
	model := &LogisticRegression{Features: 2, Labels: []int{0, 1}, Coef: [][]float64{{1, 1}}, Intercept: []float64{0}}
	_, err := NewArtifacts(scaler, model)
	assert.True(t, errors.Is(err, ErrFeatureMismatch))
}

func TestLoadArtifactsMissingFile(t *testing.T) {
	scalerPath := writeArtifact(t, "scaler.json", standardArtifact)
	_, err := LoadArtifacts(filepath.Join(t.TempDir(), "missing.json"), scalerPath)
	assert.Error(t, err)
}

func TestArtifactTypesAreListed(t *testing.T) {
	assert.Equal(t, []string{"decision_tree", "logistic_regression", "random_forest"}, ClassifierTypes())
	assert.Equal(t, []string{"identity", "minmax", "standard"}, ScalerTypes())
}

// labelOnly is a classifier without class probabilities.
type labelOnly struct{}

func (labelOnly) Predict(X [][]float64) ([]int, error) { return make([]int, len(X)), nil }
func (labelOnly) NumFeatures() int                     { return 2 }
func (labelOnly) Name() string                         { return "LabelOnly" }

func TestArtifactsWithoutProbabilities(t *testing.T) {
	artifacts, err := NewArtifacts(&IdentityScaler{Features: 2}, labelOnly{})
	require.NoError(t, err)

	assert.False(t, artifacts.SupportsProbabilities())
	assert.False(t, artifacts.Info().Probabilities)
	proba, err := artifacts.PredictProba([][]float64{{1, 2}})
	require.NoError(t, err)
	assert.Nil(t, proba)
}
