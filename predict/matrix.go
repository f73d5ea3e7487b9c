package predict

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

// ToMatrix coerces a decoded JSON payload into a 2-D feature matrix. Every
// leaf must be numeric and nesting must be rectangular before the rank is
// looked at: a flat list becomes a single row, a list of lists is kept, and
// any other rank is rejected as KindInvalidShape.
func ToMatrix(payload any) ([][]float64, error) {
	shape, data, err := flatten(payload, "")
	if err != nil {
		return nil, internal(err)
	}
	switch len(shape) {
	case 1:
		return [][]float64{data}, nil
	case 2:
		rows, cols := shape[0], shape[1]
		matrix := make([][]float64, rows)
		for r := range matrix {
			matrix[r] = data[r*cols : (r+1)*cols : (r+1)*cols]
		}
		return matrix, nil
	default:
		return nil, newError(KindInvalidShape,
			"features must be a flat list or a list of lists, got %d dimensions", len(shape))
	}
}

// flatten returns the shape and row-major values of v.
func flatten(v any, at string) ([]int, []float64, error) {
	switch t := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return nil, nil, fmt.Errorf("could not convert %s to float at %s", t.String(), location(at))
		}
		return nil, []float64{f}, nil
	case float64:
		return nil, []float64{t}, nil
	case []any:
		if len(t) == 0 {
			return []int{0}, nil, nil
		}
		var inner []int
		var data []float64
		for i, child := range t {
			shape, values, err := flatten(child, at+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, nil, err
			}
			if i == 0 {
				inner = shape
			} else if !slices.Equal(inner, shape) {
				return nil, nil, fmt.Errorf("setting an array element with a sequence: inhomogeneous shape at %s", location(at))
			}
			data = append(data, values...)
		}
		return append([]int{len(t)}, inner...), data, nil
	default:
		return nil, nil, fmt.Errorf("could not convert %s to float at %s", describe(v), location(at))
	}
}

func location(at string) string {
	if at == "" {
		return "features"
	}
	return "features" + at
}

func describe(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(t)
	case string:
		return strconv.Quote(t)
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
