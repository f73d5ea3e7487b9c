// Package monitoring exposes the service's Prometheus collectors.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardio_http_requests_total",
			Help: "HTTP requests by route, method and status code",
		},
		[]string{"route", "method", "code"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardio_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	Predictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardio_predictions_total",
			Help: "Prediction requests by outcome",
		},
		[]string{"outcome"},
	)

	PredictedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardio_predicted_rows_total",
			Help: "Rows classified, by predicted label",
		},
		[]string{"label"},
	)

	ArtifactInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cardio_artifact_info",
			Help: "Loaded artifacts; always 1",
		},
		[]string{"classifier", "scaler", "n_features"},
	)
)

// OutcomeOK labels successful predictions in Predictions.
const OutcomeOK = "ok"
