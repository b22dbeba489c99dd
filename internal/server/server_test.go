package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/williamcotton/gramgraph/pkg/cache"
	"github.com/williamcotton/gramgraph/pkg/observability"
	"github.com/williamcotton/gramgraph/pkg/pipeline"
	"github.com/williamcotton/gramgraph/pkg/scene"
)

const salesCSV = "quarter,type,amount\nQ1,A,10\nQ1,B,20\nQ2,A,15\nQ2,B,5\n"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := pipeline.NewRunner(c, nil, nil)
	ts := httptest.NewServer(New(runner, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	resp, err := http.Post(ts.URL+path, "application/json", &buf)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["version"])
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
}

func TestRenderSVG(t *testing.T) {
	ts := newTestServer(t)
	req := map[string]any{"spec": `aes(x: quarter, y: amount, color: type) | bar(position: "dodge")`, "csv": salesCSV}

	resp := post(t, ts, "/v1/render", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/svg+xml", resp.Header.Get("Content-Type"))
	assert.Equal(t, "miss", resp.Header.Get("X-Cache"))

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<svg")

	again := post(t, ts, "/v1/render", req)
	require.Equal(t, http.StatusOK, again.StatusCode)
	assert.Equal(t, "hit", again.Header.Get("X-Cache"))
}

func TestRenderPNG(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts, "/v1/render", map[string]any{
		"spec": `aes(x: quarter, y: amount) | bar()`, "csv": salesCSV, "format": "png", "width": 400, "height": 300,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}

func TestScene(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts, "/v1/scene", map[string]any{
		"spec": `aes(x: quarter, y: amount, color: type) | bar() | facet_wrap(by: type)`, "csv": salesCSV,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	g, err := scene.UnmarshalJSON(buf.Bytes())
	require.NoError(t, err)
	assert.Len(t, g.Panels, 2)
	assert.Equal(t, 4, g.Count(scene.KindRect))
}

func TestErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"malformed json", `{"spec":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown field", `{"spec":"line(x: a, y: b)","csv":"a,b\n1,2\n","colour":"red"}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing spec", map[string]any{"csv": salesCSV}, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing csv", map[string]any{"spec": "line(x: a, y: b)"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad format", map[string]any{"spec": "line(x: quarter, y: amount)", "csv": salesCSV, "format": "gif"}, http.StatusBadRequest, "INVALID_FORMAT"},
		{"syntax", map[string]any{"spec": "line(x: quarter y: amount)", "csv": salesCSV}, http.StatusUnprocessableEntity, "SYNTAX_ERROR"},
		{"resolve", map[string]any{"spec": "aes(x: quarter) | line()", "csv": salesCSV}, http.StatusUnprocessableEntity, "RESOLVE_ERROR"},
		{"schema", map[string]any{"spec": "line(x: a, y: b)", "csv": "a,a\n1,2\n"}, http.StatusUnprocessableEntity, "SCHEMA_ERROR"},
		{"data", map[string]any{"spec": "aes(x: quarter, y: type) | bar()", "csv": salesCSV}, http.StatusUnprocessableEntity, "DATA_ERROR"},
		{"canvas too small", map[string]any{"spec": "line(x: quarter, y: amount)", "csv": salesCSV, "width": 20, "height": 20}, http.StatusInternalServerError, "RENDER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts, "/v1/render", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			body := decodeError(t, resp)
			assert.Equal(t, tt.code, string(body.Error.Code))
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	h := New(pipeline.NewRunner(nil, nil, nil), nil).Handler()
	big := `{"spec":"line(x: a, y: b)","csv":"` + strings.Repeat("x", MaxBodyBytes) + `"}`

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/render", strings.NewReader(big)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	ts := newTestServer(t)

	const id = "3f2c8a4e-1d2b-4c5a-9e8f-0a1b2c3d4e5f"
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get(RequestIDHeader))

	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.NotEqual(t, "not-a-uuid", resp2.Header.Get(RequestIDHeader))
}

func TestNotFoundAndMethod(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/render")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	statuses []int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	h := &recordingHTTPHooks{}
	observability.SetHTTPHooks(h)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	post(t, ts, "/v1/render", `{}`)

	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Equal(t, []int{http.StatusOK, http.StatusBadRequest}, h.statuses)
}
