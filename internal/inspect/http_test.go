package inspect

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mirror/internal/ir"
)

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

func doRequest(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHTTP_Values(t *testing.T) {
	h := New(loadShapes(t)).Handler()

	rec, env := doRequest(t, h, http.MethodGet, "/values")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", env.Status)

	var values []ValueInfo
	require.NoError(t, json.Unmarshal(env.Data, &values))
	assert.Len(t, values, 5)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestHTTP_Reflect(t *testing.T) {
	h := New(loadShapes(t)).Handler()

	rec, env := doRequest(t, h, http.MethodGet, "/reflect/canvas/shapes/0?depth=1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var n ir.Node
	require.NoError(t, json.Unmarshal(env.Data, &n))
	assert.Equal(t, "Square", n.SubjectType)
	require.NotNil(t, n.Ancestor)
	assert.Equal(t, "Polygon", n.Ancestor.SubjectType)

	rec, env = doRequest(t, h, http.MethodGet, "/reflect/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &n))
	assert.Equal(t, "Canvas", n.SubjectType, "empty ref is the root value")

	rec, env = doRequest(t, h, http.MethodGet, "/reflect/canvas?depth=deep")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", env.Status)
}

func TestHTTP_Errors(t *testing.T) {
	h := New(loadShapes(t)).Handler()

	tests := []struct {
		target string
		status int
	}{
		{"/descendant/ghost", http.StatusNotFound},
		{"/descendant/canvas/shapes/9", http.StatusNotFound},
		{"/ancestors/0/x", http.StatusBadRequest},
		{"/ancestors/canvas..x", http.StatusBadRequest},
		{"/snapshots/canvas", http.StatusNotImplemented},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec, env := doRequest(t, h, http.MethodGet, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "error", env.Status)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestHTTP_Descendant(t *testing.T) {
	h := New(loadShapes(t)).Handler()

	rec, env := doRequest(t, h, http.MethodGet, "/descendant/canvas/selected/some")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var found Found
	require.NoError(t, json.Unmarshal(env.Data, &found))
	assert.Equal(t, "Circle", found.SubjectType)
	assert.Equal(t, "canvas/selected/some", found.Ref)
}

func TestHTTP_QuickLook(t *testing.T) {
	h := New(loadShapes(t)).Handler()

	rec, env := doRequest(t, h, http.MethodGet, "/quicklook/canvas/title")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"kind":"text","value":"demo"}`, string(env.Data))
}

func TestHTTP_Dump(t *testing.T) {
	h := New(loadShapes(t)).Handler()

	rec, _ := doRequest(t, h, http.MethodGet, "/dump/canvas?max_depth=0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "▹ Canvas\n", string(body))
}

func TestHTTP_Snapshots(t *testing.T) {
	in, _ := newRecordingInspector(t)
	h := in.Handler()

	rec, env := doRequest(t, h, http.MethodPost, "/snapshots/canvas/origin?depth=-1")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var snap ir.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, "canvas/origin", snap.Path)
	assert.Equal(t, ir.MustNodeHash(snap.Node), snap.NodeHash)

	rec, env = doRequest(t, h, http.MethodGet, "/snapshots/canvas/origin")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []ir.Snapshot
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 1)
	assert.Equal(t, snap.ID, history[0].ID)
}

func TestHTTP_RequestLogging(t *testing.T) {
	var logs strings.Builder
	h := New(loadShapes(t), WithLogger(testLogger(&logs))).Handler()

	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, logs.String(), "http request")
	assert.Contains(t, logs.String(), "path=/health")
	assert.Contains(t, logs.String(), "status=200")
	assert.Contains(t, logs.String(), "request_id=")
}
