package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"cardiopredict/ml"
	"cardiopredict/monitoring"
	"cardiopredict/predict"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": localize(r, msgReady),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{"status": "ok"}
	if s.deps.Artifacts != nil {
		response["artifacts"] = s.deps.Artifacts.Info()
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		// unreadable and oversized bodies are treated like a missing body
		s.renderPredictError(w, r, &predict.Error{Kind: predict.KindEmptyOrInvalidBody, Err: err})
		return
	}

	result, err := s.deps.Handler.Handle(body)
	if err != nil {
		s.renderPredictError(w, r, err)
		return
	}

	monitoring.Predictions.WithLabelValues(monitoring.OutcomeOK).Inc()
	for _, label := range result.Predictions {
		monitoring.PredictedRows.WithLabelValues(strconv.Itoa(label)).Inc()
	}
	s.record(r, result)

	writeJSON(w, http.StatusOK, result)
}

// renderPredictError maps a handler failure onto status and body. Client
// errors get a localized message; internal errors carry the underlying text.
func (s *Server) renderPredictError(w http.ResponseWriter, r *http.Request, err error) {
	kind := predict.KindOf(err)
	monitoring.Predictions.WithLabelValues(kind.String()).Inc()

	fields := []zap.Field{
		zap.String("request_id", GetRequestID(r.Context())),
		zap.Stringer("kind", kind),
		zap.Error(err),
	}
	var message string
	switch kind {
	case predict.KindEmptyOrInvalidBody:
		message = localize(r, msgEmptyJSON)
	case predict.KindMissingFeatures:
		message = localize(r, msgMissingFeatures)
	case predict.KindInvalidShape:
		message = localize(r, msgInvalidShape)
	default:
		message = err.Error()
	}
	if kind.Status() >= http.StatusInternalServerError {
		s.logger.Error("prediction failed", fields...)
	} else {
		s.logger.Warn("prediction rejected", fields...)
	}
	writeError(w, kind.Status(), message)
}

// record appends the served rows to the prediction log when one is
// configured. Failures are logged and never affect the response.
func (s *Server) record(r *http.Request, result *predict.Result) {
	if s.deps.Recorder == nil {
		return
	}
	var confidence []float64
	if result.Probabilities != nil {
		confidence = make([]float64, len(result.Probabilities))
		for i, row := range result.Probabilities {
			for _, p := range row {
				confidence[i] = max(confidence[i], p)
			}
		}
	}
	features := 0
	if s.deps.Artifacts != nil {
		features = s.deps.Artifacts.Info().Features
	}
	requestID := GetRequestID(r.Context())
	if err := s.deps.Recorder.SavePredictions(r.Context(), requestID, features, result.Predictions, confidence); err != nil {
		s.logger.Warn("prediction log write failed", zap.String("request_id", requestID), zap.Error(err))
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, localize(r, msgNotFound))
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, localize(r, msgMethodNotAllowed))
}

// ArtifactDescriber reports what was loaded at startup.
type ArtifactDescriber interface {
	Info() ml.ArtifactInfo
}

// writeJSON encodes data before committing the status so an unencodable
// value becomes a JSON 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		zap.L().Error("failed to encode JSON response", zap.Error(err))
		status = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{"error": err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		zap.L().Warn("failed to write JSON response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
