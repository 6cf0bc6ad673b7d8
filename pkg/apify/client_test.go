package apify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"igfollowers/pkg/config"
	"igfollowers/pkg/errors"
	"igfollowers/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlatformClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		Apify: config.ApifyConfig{
			Token:        "test-token",
			PollInterval: 5 * time.Millisecond,
		},
		Retry: config.RetryConfig{MaxAttempts: 1},
	}

	client := NewClient(cfg, logger.NewTestLogger())
	client.baseURL = server.URL
	return client
}

func writeRunEnvelope(w http.ResponseWriter, run Run) {
	json.NewEncoder(w).Encode(map[string]Run{"data": run})
}

func TestStartRun(t *testing.T) {
	var gotPath, gotQuery string
	var gotInput map[string]interface{}

	client := newPlatformClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		json.NewDecoder(r.Body).Decode(&gotInput)
		writeRunEnvelope(w, Run{ID: "run-1", Status: "RUNNING", DefaultDatasetID: "ds-1"})
	})

	run, err := client.StartRun(context.Background(), "apify/instagram-followers",
		map[string]interface{}{"username": "target"},
		RunOptions{TimeoutSecs: 3600, MemoryMB: 4096})
	require.NoError(t, err)

	assert.Equal(t, "run-1", run.ID)
	// Owner slash becomes a tilde in the path form
	assert.Equal(t, "/acts/apify~instagram-followers/runs", gotPath)
	assert.Contains(t, gotQuery, "token=test-token")
	assert.Contains(t, gotQuery, "timeout=3600")
	assert.Contains(t, gotQuery, "memory=4096")
	assert.Equal(t, "target", gotInput["username"])
}

func TestStartRunMissingRunID(t *testing.T) {
	client := newPlatformClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeRunEnvelope(w, Run{})
	})

	_, err := client.StartRun(context.Background(), "apify/actor", nil, RunOptions{})
	require.Error(t, err)

	apifyErr, ok := err.(*errors.Error)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeParsing, apifyErr.Type)
}

func TestWaitForRun(t *testing.T) {
	t.Run("polls until success", func(t *testing.T) {
		polls := 0
		client := newPlatformClient(t, func(w http.ResponseWriter, r *http.Request) {
			polls++
			status := "RUNNING"
			if polls >= 3 {
				status = StatusSucceeded
			}
			writeRunEnvelope(w, Run{ID: "run-1", Status: status, DefaultDatasetID: "ds-1"})
		})

		run, err := client.WaitForRun(context.Background(), "run-1", "followers")
		require.NoError(t, err)
		assert.Equal(t, StatusSucceeded, run.Status)
		assert.Equal(t, 3, polls)
	})

	t.Run("failed run surfaces an error", func(t *testing.T) {
		client := newPlatformClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeRunEnvelope(w, Run{ID: "run-1", Status: StatusFailed})
		})

		_, err := client.WaitForRun(context.Background(), "run-1", "followers")
		require.Error(t, err)
		assert.Contains(t, err.Error(), StatusFailed)
	})

	t.Run("context cancellation stops polling", func(t *testing.T) {
		client := newPlatformClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeRunEnvelope(w, Run{ID: "run-1", Status: "RUNNING"})
		})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := client.WaitForRun(ctx, "run-1", "followers")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestRunFinished(t *testing.T) {
	for _, status := range []string{StatusSucceeded, StatusFailed, StatusAborted, StatusTimedOut} {
		assert.True(t, (&Run{Status: status}).Finished(), status)
	}
	assert.False(t, (&Run{Status: "RUNNING"}).Finished())
	assert.False(t, (&Run{Status: "READY"}).Finished())
}

func TestDatasetItems(t *testing.T) {
	t.Run("single short page", func(t *testing.T) {
		client := newPlatformClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]Item{{"username": "a"}, {"username": "b"}})
		})

		items, err := client.DatasetItems(context.Background(), "ds-1")
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("pages until short page", func(t *testing.T) {
		var offsets []string
		client := newPlatformClient(t, func(w http.ResponseWriter, r *http.Request) {
			offset := r.URL.Query().Get("offset")
			offsets = append(offsets, offset)

			if offset == "0" {
				// A full page signals there may be more
				page := make([]Item, datasetPageSize)
				for i := range page {
					page[i] = Item{"username": "u" + strconv.Itoa(i)}
				}
				json.NewEncoder(w).Encode(page)
				return
			}
			json.NewEncoder(w).Encode([]Item{{"username": "last"}})
		})

		items, err := client.DatasetItems(context.Background(), "ds-1")
		require.NoError(t, err)
		assert.Len(t, items, datasetPageSize+1)
		assert.Equal(t, []string{"0", strconv.Itoa(datasetPageSize)}, offsets)
	})
}

func TestCallActor(t *testing.T) {
	client := newPlatformClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/acts/"):
			writeRunEnvelope(w, Run{ID: "run-9", Status: "RUNNING", DefaultDatasetID: "ds-9"})
		case strings.HasPrefix(r.URL.Path, "/actor-runs/"):
			writeRunEnvelope(w, Run{ID: "run-9", Status: StatusSucceeded, DefaultDatasetID: "ds-9"})
		case strings.HasPrefix(r.URL.Path, "/datasets/"):
			json.NewEncoder(w).Encode([]Item{{"username": "result"}})
		default:
			http.NotFound(w, r)
		}
	})

	items, err := client.CallActor(context.Background(), "apify/actor", nil, RunOptions{}, "test")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "result", items[0]["username"])
}

func TestCheckStatus(t *testing.T) {
	client := newPlatformClient(t, func(w http.ResponseWriter, r *http.Request) {})

	tests := []struct {
		status   int
		expected errors.ErrorType
	}{
		{http.StatusUnauthorized, errors.ErrorTypeAuth},
		{http.StatusForbidden, errors.ErrorTypeAuth},
		{http.StatusNotFound, errors.ErrorTypeNotFound},
		{http.StatusTooManyRequests, errors.ErrorTypeRateLimit},
		{http.StatusInternalServerError, errors.ErrorTypeServerError},
		{http.StatusTeapot, errors.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			err := client.checkStatus(tt.status, []byte("body"))
			require.Error(t, err)

			apifyErr, ok := err.(*errors.Error)
			require.True(t, ok)
			assert.Equal(t, tt.expected, apifyErr.Type)
			assert.Equal(t, tt.status, apifyErr.Code)
		})
	}

	assert.NoError(t, client.checkStatus(http.StatusOK, nil))
	assert.NoError(t, client.checkStatus(http.StatusCreated, nil))
}

func TestDoJSONStatusMapping(t *testing.T) {
	client := newPlatformClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.GetRun(context.Background(), "run-1")
	require.Error(t, err)

	apifyErr, ok := err.(*errors.Error)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeAuth, apifyErr.Type)
}

func TestPreviewBody(t *testing.T) {
	assert.Equal(t, "short", previewBody([]byte("short")))

	long := strings.Repeat("x", 300)
	preview := previewBody([]byte(long))
	assert.Len(t, preview, 203)
	assert.True(t, strings.HasSuffix(preview, "..."))
}
