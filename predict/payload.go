package predict

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
)

// FeatureKeys are the accepted synonyms for the feature payload, in lookup
// order.
var FeatureKeys = []string{"features", "valores", "values"}

// decodeBody parses a request body that must be a non-empty JSON object.
// Numbers are kept as json.Number so coercion sees the literal.
func decodeBody(body []byte) (map[string]any, *Error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, newError(KindEmptyOrInvalidBody, "empty JSON")
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, newError(KindEmptyOrInvalidBody, "invalid JSON: %v", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, newError(KindEmptyOrInvalidBody, "invalid JSON: trailing data after top-level value")
	}
	obj, ok := v.(map[string]any)
	if !ok || len(obj) == 0 {
		return nil, newError(KindEmptyOrInvalidBody, "empty JSON")
	}
	return obj, nil
}

// extractPayload returns the first present, truthy value among FeatureKeys.
func extractPayload(obj map[string]any) (any, string, *Error) {
	for _, key := range FeatureKeys {
		if v, ok := obj[key]; ok && truthy(v) {
			return v, key, nil
		}
	}
	return nil, "", newError(KindMissingFeatures,
		"send JSON with the key 'features' holding a flat list or a list of lists")
}

// truthy follows the usual dynamic-language notion: null, false, 0, "" and
// empty containers are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		return err != nil || f != 0
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
