package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DJCodeOne/freshwax-sub002/core/pipeline"
)

type fakeRunner struct {
	result   *pipeline.Result
	err      error
	lastID   string
	runCount int
}

func (f *fakeRunner) Process(_ context.Context, submissionID string) (*pipeline.Result, error) {
	f.lastID = submissionID
	f.runCount++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeLister struct {
	folders []string
	err     error
	prefix  string
}

func (f *fakeLister) ListFolders(_ context.Context, prefix string) ([]string, error) {
	f.prefix = prefix
	return f.folders, f.err
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthHandler(t *testing.T) {
	handler := NewAPIHandler(&fakeRunner{}, &fakeLister{})
	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, serviceName, body["service"])
	assert.Equal(t, serviceVersion, body["version"])
}

func TestListSubmissionsHandler(t *testing.T) {
	lister := &fakeLister{folders: []string{"sub-1", "sub-2"}}
	handler := NewAPIHandler(&fakeRunner{}, lister)
	rec := httptest.NewRecorder()
	handler.ListSubmissionsHandler(rec, httptest.NewRequest(http.MethodGet, "/submissions", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "submissions/", lister.prefix)
	body := decodeBody(t, rec)
	assert.Equal(t, []interface{}{"sub-1", "sub-2"}, body["submissions"])
}

func TestListSubmissionsHandlerEmpty(t *testing.T) {
	handler := NewAPIHandler(&fakeRunner{}, &fakeLister{})
	rec := httptest.NewRecorder()
	handler.ListSubmissionsHandler(rec, httptest.NewRequest(http.MethodGet, "/submissions", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	// Empty list must serialize as [], not null.
	assert.Contains(t, rec.Body.String(), `"submissions":[]`)
}

func TestListSubmissionsHandlerStorageError(t *testing.T) {
	handler := NewAPIHandler(&fakeRunner{}, &fakeLister{err: errors.New("connection refused")})
	rec := httptest.NewRecorder()
	handler.ListSubmissionsHandler(rec, httptest.NewRequest(http.MethodGet, "/submissions", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestProcessHandlerSuccess(t *testing.T) {
	runner := &fakeRunner{result: &pipeline.Result{
		ReleaseID:  "dj_test_FW-1756700000000",
		Artist:     "DJ Test",
		Title:      "First EP",
		TrackCount: 3,
		CoverURL:   "https://cdn.example.com/cover.webp",
	}}
	handler := NewAPIHandler(runner, &fakeLister{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(`{"submissionId":"sub-1"}`))
	handler.ProcessHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sub-1", runner.lastID)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "dj_test_FW-1756700000000", body["releaseId"])
	assert.Equal(t, float64(3), body["tracks"])
}

func TestProcessHandlerPipelineError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("submission metadata not found")}
	handler := NewAPIHandler(runner, &fakeLister{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(`{"submissionId":"no-meta-id"}`))
	handler.ProcessHandler(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "metadata")
}

func TestProcessHandlerBadRequest(t *testing.T) {
	runner := &fakeRunner{}
	handler := NewAPIHandler(runner, &fakeLister{})

	for name, payload := range map[string]string{
		"malformed json": `{"submissionId":`,
		"missing id":     `{}`,
		"blank id":       `{"submissionId":"   "}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(payload))
			handler.ProcessHandler(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.Zero(t, runner.runCount)
}
