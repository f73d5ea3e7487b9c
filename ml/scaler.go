package ml

import (
	"errors"
	"fmt"
)

// StandardScaler centres each feature on its fitted mean and divides by its
// fitted scale. A zero scale is treated as 1.
type StandardScaler struct {
	Features int       `json:"n_features"`
	Mean     []float64 `json:"mean"`
	Scale    []float64 `json:"scale"`
}

func (s *StandardScaler) Name() string     { return "StandardScaler" }
func (s *StandardScaler) NumFeatures() int { return s.Features }

func (s *StandardScaler) Transform(X [][]float64) ([][]float64, error) {
	if err := checkFeatures(X, s.Features, s.Name()); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scale := s.Scale[j]
			if scale == 0 {
				scale = 1
			}
			scaled[j] = (v - s.Mean[j]) / scale
		}
		out[i] = scaled
	}
	return out, nil
}

func (s *StandardScaler) validate() error {
	if s.Features <= 0 {
		return fmt.Errorf("standard scaler: n_features must be positive, got %d", s.Features)
	}
	if len(s.Mean) != s.Features || len(s.Scale) != s.Features {
		return fmt.Errorf("standard scaler: mean/scale length must be %d, got %d/%d", s.Features, len(s.Mean), len(s.Scale))
	}
	return nil
}

// MinMaxScaler maps each feature from its fitted [min, max] range onto
// FeatureRange.
type MinMaxScaler struct {
	Features     int        `json:"n_features"`
	DataMin      []float64  `json:"data_min"`
	DataMax      []float64  `json:"data_max"`
	FeatureRange [2]float64 `json:"feature_range"`
}

func (s *MinMaxScaler) Name() string     { return "MinMaxScaler" }
func (s *MinMaxScaler) NumFeatures() int { return s.Features }

func (s *MinMaxScaler) Transform(X [][]float64) ([][]float64, error) {
	if err := checkFeatures(X, s.Features, s.Name()); err != nil {
		return nil, err
	}
	lo, hi := s.FeatureRange[0], s.FeatureRange[1]
	out := make([][]float64, len(X))
	for i, row := range X {
		normalized, err := NormalizeVector(row, s.DataMin, s.DataMax)
		if err != nil {
			return nil, err
		}
		for j := range normalized {
			normalized[j] = normalized[j]*(hi-lo) + lo
		}
		out[i] = normalized
	}
	return out, nil
}

func (s *MinMaxScaler) validate() error {
	if s.Features <= 0 {
		return fmt.Errorf("minmax scaler: n_features must be positive, got %d", s.Features)
	}
	if len(s.DataMin) != s.Features || len(s.DataMax) != s.Features {
		return fmt.Errorf("minmax scaler: data_min/data_max length must be %d, got %d/%d", s.Features, len(s.DataMin), len(s.DataMax))
	}
	if s.FeatureRange == [2]float64{} {
		s.FeatureRange = [2]float64{0, 1}
	}
	if s.FeatureRange[0] >= s.FeatureRange[1] {
		return fmt.Errorf("minmax scaler: invalid feature_range %v", s.FeatureRange)
	}
	return nil
}

// NormalizeFeature maps value from [min, max] onto [0, 1] without clipping.
// A degenerate range maps to value-min.
func NormalizeFeature(value, min, max float64) float64 {
	if max == min {
		return value - min
	}
	return (value - min) / (max - min)
}

func NormalizeVector(values []float64, mins []float64, maxs []float64) ([]float64, error) {
	if len(values) != len(mins) || len(values) != len(maxs) {
		return nil, errors.New("values/mins/maxs length mismatch")
	}
	result := make([]float64, len(values))
	for i := range values {
		result[i] = NormalizeFeature(values[i], mins[i], maxs[i])
	}
	return result, nil
}

// IdentityScaler passes features through unchanged while still enforcing
// the fitted feature count.
type IdentityScaler struct {
	Features int `json:"n_features"`
}

func (s *IdentityScaler) Name() string     { return "IdentityScaler" }
func (s *IdentityScaler) NumFeatures() int { return s.Features }

func (s *IdentityScaler) Transform(X [][]float64) ([][]float64, error) {
	if err := checkFeatures(X, s.Features, s.Name()); err != nil {
		return nil, err
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = append([]float64(nil), row...)
	}
	return out, nil
}

func (s *IdentityScaler) validate() error {
	if s.Features <= 0 {
		return fmt.Errorf("identity scaler: n_features must be positive, got %d", s.Features)
	}
	return nil
}
