// Package predict turns a raw prediction request body into class labels.
//
// The pipeline is linear: decode the body, pick the feature payload, coerce it
// into a 2-D matrix, scale, predict and optionally attach class
// probabilities. Any failure comes back as *Error tagged with a Kind.
package predict

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Artifacts is the read-only model state the handler depends on.
// PredictProba returns nil, nil when the classifier has no probabilities.
type Artifacts interface {
	Transform(X [][]float64) ([][]float64, error)
	Predict(X [][]float64) ([]int, error)
	PredictProba(X [][]float64) ([][]float64, error)
}

// Result is the success body of a prediction.
type Result struct {
	Predictions   []int       `json:"predictions"`
	Probabilities [][]float64 `json:"probabilities"`
}

func (r *Result) clone() *Result {
	out := &Result{Predictions: slices.Clone(r.Predictions)}
	if r.Probabilities != nil {
		out.Probabilities = make([][]float64, len(r.Probabilities))
		for i, row := range r.Probabilities {
			out.Probabilities[i] = slices.Clone(row)
		}
	}
	return out
}

type Handler struct {
	artifacts Artifacts
	cache     *Cache
}

type Option func(*Handler)

// WithCache memoises results. A nil cache disables caching.
func WithCache(c *Cache) Option {
	return func(h *Handler) { h.cache = c }
}

func NewHandler(artifacts Artifacts, opts ...Option) *Handler {
	h := &Handler{artifacts: artifacts}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle runs the whole pipeline on a raw request body.
func (h *Handler) Handle(body []byte) (*Result, error) {
	obj, perr := decodeBody(body)
	if perr != nil {
		return nil, perr
	}
	payload, _, perr := extractPayload(obj)
	if perr != nil {
		return nil, perr
	}
	matrix, err := ToMatrix(payload)
	if err != nil {
		return nil, err
	}
	return h.Predict(matrix)
}

// Predict scales matrix and classifies every row. Failures, including panics
// raised by model code, are reported as KindInternal.
func (h *Handler) Predict(matrix [][]float64) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, internal(fmt.Errorf("prediction failed: %v", r))
		}
	}()

	if len(matrix) == 0 {
		return nil, internal(errors.New("found array with 0 sample(s) while a minimum of 1 is required"))
	}

	key := ""
	if h.cache != nil {
		key = matrixKey(matrix)
		if cached, ok := h.cache.Get(key); ok {
			return cached, nil
		}
	}

	scaled, err := h.artifacts.Transform(matrix)
	if err != nil {
		return nil, internal(err)
	}
	if err := checkFinite(scaled); err != nil {
		return nil, err
	}
	labels, err := h.artifacts.Predict(scaled)
	if err != nil {
		return nil, internal(err)
	}
	if len(labels) != len(matrix) {
		return nil, internal(fmt.Errorf("classifier returned %d labels for %d rows", len(labels), len(matrix)))
	}
	proba, err := h.artifacts.PredictProba(scaled)
	if err != nil {
		return nil, internal(err)
	}
	if proba != nil && len(proba) != len(matrix) {
		return nil, internal(fmt.Errorf("classifier returned %d probability rows for %d rows", len(proba), len(matrix)))
	}
	if err := checkFinite(proba); err != nil {
		return nil, err
	}

	res = &Result{Predictions: labels, Probabilities: proba}
	if h.cache != nil {
		h.cache.Add(key, res)
	}
	return res, nil
}

// ErrNonFinite reports a NaN or infinite value, usually an input so large
// that scaling overflowed float64.
var ErrNonFinite = errors.New("input contains infinity or a value too large for float64")

func checkFinite(X [][]float64) *Error {
	for i, row := range X {
		for j, v := range row {
			if math.IsInf(v, 0) || math.IsNaN(v) {
				return internal(fmt.Errorf("%w at row %d, column %d", ErrNonFinite, i, j))
			}
		}
	}
	return nil
}

// KindOf reports the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return KindInternal
}
