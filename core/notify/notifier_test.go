package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DJCodeOne/freshwax-sub002/config"
	"github.com/DJCodeOne/freshwax-sub002/model"
)

func testService(apiURL string) *emailService {
	return &emailService{
		apiURL:    apiURL,
		apiKey:    "test-key",
		sender:    "noreply@freshwax.example",
		adminAddr: "admin@freshwax.example",
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

func TestNewServiceFallsBackToNoop(t *testing.T) {
	svc := NewService(&config.Config{})
	_, isNoop := svc.(noopService)
	assert.True(t, isNoop)

	// Noop delivery never errors.
	assert.NoError(t, svc.SubmissionReceived(context.Background(), "sub-1"))
	assert.NoError(t, svc.ProcessingFailed(context.Background(), "sub-1", errors.New("boom")))
}

func TestSubmissionReceivedPostsEmail(t *testing.T) {
	var got emailRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := testService(srv.URL)
	require.NoError(t, svc.SubmissionReceived(context.Background(), "sub-1"))

	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "noreply@freshwax.example", got.From)
	assert.Equal(t, "admin@freshwax.example", got.To)
	assert.Contains(t, got.Subject, "sub-1")
	assert.Contains(t, got.HTML, "sub-1")
}

func TestReleaseProcessedIncludesTrackTable(t *testing.T) {
	var got emailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	release := &model.ProcessedRelease{
		ID:     "dj_test_FW-1756700000000",
		Artist: "DJ Test",
		Title:  "First EP",
		Tracks: []model.ProcessedTrack{
			{TrackNumber: 1, Title: "Opener", MP3URL: "https://cdn.example.com/01.mp3", WAVURL: "x", PreviewURL: "x"},
			{TrackNumber: 2, Title: "Broken <One>"},
		},
	}

	svc := testService(srv.URL)
	require.NoError(t, svc.ReleaseProcessed(context.Background(), release))

	assert.Contains(t, got.Subject, "DJ Test")
	assert.Contains(t, got.HTML, "Opener")
	assert.Contains(t, got.HTML, "FAILED")
	// HTML in track titles must be escaped.
	assert.Contains(t, got.HTML, "Broken &lt;One&gt;")
	assert.NotContains(t, got.HTML, "Broken <One>")
}

func TestSendRetriesOnceThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := testService(srv.URL)
	require.NoError(t, svc.ProcessingFailed(context.Background(), "sub-1", errors.New("transcode failed")))
	assert.Equal(t, int32(2), calls.Load())
}

func TestSendReturnsErrorAfterRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	svc := testService(srv.URL)
	err := svc.SubmissionReceived(context.Background(), "sub-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, int32(2), calls.Load())
}

func TestSendHonorsContextDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	svc := testService(srv.URL)
	err := svc.SubmissionReceived(ctx, "sub-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
