package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"cardiopredict/ml"
	"cardiopredict/predict"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type savedBatch struct {
	requestID     string
	features      int
	labels        []int
	probabilities []float64
}

type fakeRecorder struct {
	mu      sync.Mutex
	batches []savedBatch
	err     error
}

func (f *fakeRecorder) SavePredictions(ctx context.Context, requestID string, features int, labels []int, probabilities []float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, savedBatch{requestID, features, labels, probabilities})
	return f.err
}

func heartArtifacts(t *testing.T) *ml.Artifacts {
	t.Helper()
	scaler := &ml.StandardScaler{
		Features: 13,
		Mean:     []float64{54.4, 0.68, 0.97, 131.6, 246.3, 0.15, 0.53, 149.6, 0.33, 1.04, 1.4, 0.73, 2.31},
		Scale:    []float64{9.07, 0.47, 1.03, 17.5, 51.7, 0.36, 0.53, 22.9, 0.47, 1.16, 0.62, 1.02, 0.61},
	}
	model := &ml.LogisticRegression{
		Features:  13,
		Labels:    []int{0, 1},
		Coef:      [][]float64{{-0.05, -0.75, 0.85, -0.28, -0.2, 0.05, 0.2, 0.45, -0.45, -0.6, 0.35, -0.8, -0.55}},
		Intercept: []float64{0.15},
	}
	artifacts, err := ml.NewArtifacts(scaler, model)
	require.NoError(t, err)
	return artifacts
}

func newTestServer(t *testing.T, recorder PredictionRecorder) *Server {
	t.Helper()
	artifacts := heartArtifacts(t)
	config := DefaultServerConfig()
	config.Timeout = 5 * time.Second
	config.MaxBodyBytes = 4096
	return NewServer(config, Deps{
		Handler:   predict.NewHandler(artifacts),
		Artifacts: artifacts,
		Recorder:  recorder,
		Logger:    zap.NewNop(),
	})
}

func do(t *testing.T, s *Server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestHomeHandler(t *testing.T) {
	s := newTestServer(t, nil)

	rr := do(t, s, http.MethodGet, "/", "")
	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	expected := `{"message":"API de predicción lista.","status":"ok"}`
	if rr.Body.String() != expected+"\n" {
		t.Errorf("handler returned unexpected body: got %v want %v", rr.Body.String(), expected)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("unexpected content type %q", rr.Header().Get("Content-Type"))
	}
}

func TestHomeHandlerEnglish(t *testing.T) {
	s := newTestServer(t, nil)

	rr := do(t, s, http.MethodGet, "/", "", "Accept-Language", "en-US,en;q=0.9")
	expected := `{"message":"Prediction API ready.","status":"ok"}`
	if rr.Body.String() != expected+"\n" {
		t.Errorf("handler returned unexpected body: got %v want %v", rr.Body.String(), expected)
	}
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t, nil)

	rr := do(t, s, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"classifier":"LogisticRegression"`) {
		t.Fatalf("expected artifact info in body: %s", rr.Body.String())
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	s := newTestServer(t, nil)

	rr := do(t, s, http.MethodGet, "/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"error"`) {
		t.Fatalf("expected JSON error body, got %s", rr.Body.String())
	}

	rr = do(t, s, http.MethodGet, "/predict", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	do(t, s, http.MethodGet, "/", "")

	rr := do(t, s, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "cardio_http_requests_total") {
		t.Fatalf("expected request counter in metrics output")
	}
}
