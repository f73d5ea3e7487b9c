package predict

import (
	"fmt"
	"net/http"
)

// Kind classifies why a prediction request failed.
type Kind int

const (
	KindEmptyOrInvalidBody Kind = iota + 1
	KindMissingFeatures
	KindInvalidShape
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindEmptyOrInvalidBody:
		return "empty_or_invalid_body"
	case KindMissingFeatures:
		return "missing_features"
	case KindInvalidShape:
		return "invalid_shape"
	case KindInternal:
		return "internal_prediction_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Status is the HTTP status a failure of this kind is rendered with.
func (k Kind) Status() int {
	if k == KindInternal {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// Error is the single failure type returned by Handler. Client mistakes keep
// their own kind; everything raised while coercing, scaling or predicting is
// KindInternal and carries the underlying error.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func internal(err error) *Error {
	return &Error{Kind: KindInternal, Err: err}
}
