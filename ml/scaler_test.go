package ml

import (
	"errors"
	"math"
	"testing"
)

func TestStandardScalerTransform(t *testing.T) {
	scaler := &StandardScaler{Features: 3, Mean: []float64{1, 2, 3}, Scale: []float64{2, 0, 0.5}}
	if err := scaler.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := scaler.Transform([][]float64{{3, 2, 4}, {1, 5, 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]float64{{1, 0, 2}, {0, 3, -2}}
	for i := range want {
		for j := range want[i] {
			if math.Abs(out[i][j]-want[i][j]) > 1e-12 {
				t.Fatalf("out[%d][%d] = %f, want %f", i, j, out[i][j], want[i][j])
			}
		}
	}
}

func TestStandardScalerDoesNotMutateInput(t *testing.T) {
	scaler := &StandardScaler{Features: 1, Mean: []float64{10}, Scale: []float64{1}}
	in := [][]float64{{12}}
	if _, err := scaler.Transform(in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in[0][0] != 12 {
		t.Fatalf("input was mutated: %v", in)
	}
}

func TestStandardScalerFeatureMismatch(t *testing.T) {
	scaler := &StandardScaler{Features: 13, Mean: make([]float64, 13), Scale: make([]float64, 13)}
	_, err := scaler.Transform([][]float64{make([]float64, 12)})
	if !errors.Is(err, ErrFeatureMismatch) {
		t.Fatalf("expected feature mismatch, got %v", err)
	}
	want := "X has 12 features, but StandardScaler is expecting 13 features as input"
	if got := err.Error(); len(got) < len(want) || got[:len(want)] != want {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestMinMaxScalerTransform(t *testing.T) {
	scaler := &MinMaxScaler{Features: 2, DataMin: []float64{0, 10}, DataMax: []float64{10, 10}}
	if err := scaler.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := scaler.Transform([][]float64{{5, 12}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0][0] != 0.5 {
		t.Fatalf("expected 0.5, got %f", out[0][0])
	}
	if out[0][1] != 2 {
		t.Fatalf("expected degenerate range to shift only, got %f", out[0][1])
	}
}

func TestMinMaxScalerFeatureRange(t *testing.T) {
	scaler := &MinMaxScaler{Features: 1, DataMin: []float64{0}, DataMax: []float64{4}, FeatureRange: [2]float64{-1, 1}}
	if err := scaler.validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := scaler.Transform([][]float64{{0}, {2}, {4}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0][0] != -1 || out[1][0] != 0 || out[2][0] != 1 {
		t.Fatalf("unexpected values: %v", out)
	}
}

func TestNormalizeVectorLengthMismatch(t *testing.T) {
	if _, err := NormalizeVector([]float64{1, 2}, []float64{0}, []float64{1, 2}); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestIdentityScalerEnforcesFeatureCount(t *testing.T) {
	scaler := &IdentityScaler{Features: 2}
	if _, err := scaler.Transform([][]float64{{1}}); !errors.Is(err, ErrFeatureMismatch) {
		t.Fatalf("expected feature mismatch, got %v", err)
	}
	if _, err := scaler.Transform(nil); !errors.Is(err, ErrEmptyMatrix) {
		t.Fatalf("expected empty matrix error, got %v", err)
	}
}
