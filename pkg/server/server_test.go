package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/powerset/pkg/automaton"
	"github.com/matzehuels/powerset/pkg/observability"
	"github.com/matzehuels/powerset/pkg/pipeline"
)

const endsWithAB = `{
  "states": [0, 1, 2],
  "alphabet": ["a", "b"],
  "transitions": [[0, "a", [0, 1]], [0, "b", [0]], [1, "b", [2]]],
  "start": 0,
  "accept": [2]
}`

func newTestServer(t *testing.T, opts ...Option) (http.Handler, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	runner := pipeline.NewRunner(nil, nil, logger)
	return New(runner, opts...).Handler(), &buf
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Server is running", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.True(t, strings.HasPrefix(w.Header().Get("Server"), "powerset/"))
}

func TestConvert(t *testing.T) {
	h, _ := newTestServer(t)
	w := post(t, h, "/convert", endsWithAB)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	resp := decodeResponse(t, w)
	assert.Equal(t, []int{0, 1, 2}, resp.NFA.States)
	assert.Equal(t, []int{0, 1, 2}, resp.DFA.States)
	assert.Equal(t, []int{2}, resp.DFA.Accept)
	assert.Len(t, resp.DFA.Transitions, 6)

	// DFA transitions carry exactly one target and encode it as a scalar.
	assert.Contains(t, w.Body.String(), `[1,"b",2]`)
	assert.Contains(t, w.Body.String(), `[0,"a",[0,1]]`)
}

func TestMinimize(t *testing.T) {
	h, _ := newTestServer(t)
	// State 3 duplicates state 2.
	body := `{
	  "states": [0, 1, 2, 3],
	  "alphabet": ["a"],
	  "transitions": [[0, "a", 1], [1, "a", 2], [2, "a", 3], [3, "a", 3]],
	  "start": 0,
	  "accept": [2, 3]
	}`

	w := post(t, h, "/minimize", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	assert.Len(t, resp.NFA.States, 4)
	assert.Len(t, resp.DFA.States, 3)

	a, warnings, err := automaton.Validate(resp.DFA)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, a.IsDeterministic())
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"malformed json", "/convert", `{"states": [`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad transition", "/convert", `{"states": [0], "transitions": [[0, "a"]], "start": 0}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"null target", "/convert", `{"states": [0, 1], "alphabet": ["a"], "transitions": [[1, "a", null]], "start": 0}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing from", "/minimize", `{"states": [0, 1], "alphabet": ["a"], "transitions": [{"symbol": "a", "to": 1}], "start": 0}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"no states", "/convert", `{"states": [], "start": 0}`, http.StatusBadRequest, "INVALID_AUTOMATON"},
		{"unknown start", "/minimize", `{"states": [0, 1], "start": 7}`, http.StatusBadRequest, "INVALID_AUTOMATON"},
	}

	h, _ := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, h, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestLimits(t *testing.T) {
	h, _ := newTestServer(t, WithMaxStates(2), WithMaxBodyBytes(64))

	w := post(t, h, "/convert", `{"states": [0, 1, 2], "start": 0}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "TOO_LARGE")

	w = post(t, h, "/convert", endsWithAB)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "request body exceeds 64 bytes")
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/convert", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRequestID(t *testing.T) {
	h, logs := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(endsWithAB))
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	assert.Contains(t, logs.String(), "request_id=req-42")
	assert.Contains(t, logs.String(), "route=/convert")
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	observability.SetPipelineHooks(m)
	observability.SetHTTPHooks(m)
	t.Cleanup(observability.Reset)

	h, _ := newTestServer(t, WithMetrics(reg))
	require.Equal(t, http.StatusOK, post(t, h, "/minimize", endsWithAB).Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `powerset_stage_total{outcome="ok",stage="minimize"} 1`)
	assert.Contains(t, body, `powerset_http_requests_total{method="POST",route="/minimize",status="200"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	h, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
