// Package apify is a minimal client for the Apify platform API: start an
// actor run, poll it to completion, and page through the default dataset.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"igfollowers/pkg/config"
	"igfollowers/pkg/errors"
	"igfollowers/pkg/logger"
	"igfollowers/pkg/retry"
)

const (
	apiBaseURL = "https://api.apify.com/v2"

	// datasetPageSize is the item count requested per dataset page
	datasetPageSize = 1000
)

// Terminal run statuses reported by the platform.
const (
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
	StatusAborted   = "ABORTED"
	StatusTimedOut  = "TIMED-OUT"
)

// RunOptions tunes a single actor run.
type RunOptions struct {
	TimeoutSecs int
	MemoryMB    int
}

// Run is the subset of the platform's run object the client needs.
type Run struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

// Finished reports whether the run reached a terminal status.
func (r *Run) Finished() bool {
	switch r.Status {
	case StatusSucceeded, StatusFailed, StatusAborted, StatusTimedOut:
		return true
	}
	return false
}

// Item is one dataset record. Actor output shapes vary, so items stay as
// raw maps until normalization.
type Item map[string]interface{}

// Client talks to the Apify platform API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	pollInterval time.Duration
	maxAttempts  int
	logger       logger.Logger
}

// NewClient creates a platform client with the configured token.
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		baseURL:      apiBaseURL,
		token:        cfg.Apify.Token,
		pollInterval: cfg.Apify.PollInterval,
		maxAttempts:  cfg.Retry.MaxAttempts,
		logger:       log,
	}
}

// StartRun starts an actor run and returns it immediately, without
// waiting for completion.
func (c *Client) StartRun(ctx context.Context, actorID string, input interface{}, opts RunOptions) (*Run, error) {
	params := url.Values{"token": {c.token}}
	if opts.TimeoutSecs > 0 {
		params.Set("timeout", fmt.Sprintf("%d", opts.TimeoutSecs))
	}
	if opts.MemoryMB > 0 {
		params.Set("memory", fmt.Sprintf("%d", opts.MemoryMB))
	}

	// The path form of an actor ID replaces the owner slash with a tilde
	pathID := strings.ReplaceAll(actorID, "/", "~")
	endpoint := fmt.Sprintf("%s/acts/%s/runs?%s", c.baseURL, pathID, params.Encode())

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode actor input: %w", err)
	}

	c.logger.InfoWithFields("Starting actor run", map[string]interface{}{
		"actor": actorID,
	})

	var envelope struct {
		Data Run `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodPost, endpoint, body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data.ID == "" {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: fmt.Sprintf("actor %s run response carried no run ID", actorID),
			Code:    0,
		}
	}

	c.logger.InfoWithFields("Run started", map[string]interface{}{
		"run_id":  envelope.Data.ID,
		"monitor": fmt.Sprintf("https://console.apify.com/actors/runs/%s", envelope.Data.ID),
	})

	return &envelope.Data, nil
}

// GetRun fetches the current state of a run.
func (c *Client) GetRun(ctx context.Context, runID string) (*Run, error) {
	endpoint := fmt.Sprintf("%s/actor-runs/%s?token=%s", c.baseURL, runID, url.QueryEscape(c.token))

	var envelope struct {
		Data Run `json:"data"`
	}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &envelope); err != nil {
		return nil, err
	}

	return &envelope.Data, nil
}

// WaitForRun polls a run until it reaches a terminal status, then fails
// unless that status is SUCCEEDED.
func (c *Client) WaitForRun(ctx context.Context, runID, label string) (*Run, error) {
	for {
		run, err := c.GetRun(ctx, runID)
		if err != nil {
			return nil, err
		}
		if run.Finished() {
			if run.Status != StatusSucceeded {
				return nil, &errors.Error{
					Type:    errors.ErrorTypeServerError,
					Message: fmt.Sprintf("%s run %s finished with status %s, check the Apify console", label, runID, run.Status),
					Code:    0,
				}
			}
			c.logger.InfoWithFields("Run completed", map[string]interface{}{
				"run_id": runID,
				"label":  label,
			})
			return run, nil
		}

		c.logger.DebugWithFields("run still in progress", map[string]interface{}{
			"run_id": runID,
			"status": run.Status,
		})

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

// DatasetItems fetches every item of a dataset, paging until a short page.
func (c *Client) DatasetItems(ctx context.Context, datasetID string) ([]Item, error) {
	var items []Item

	for offset := 0; ; offset += datasetPageSize {
		endpoint := fmt.Sprintf("%s/datasets/%s/items?token=%s&format=json&clean=true&offset=%d&limit=%d",
			c.baseURL, datasetID, url.QueryEscape(c.token), offset, datasetPageSize)

		var page []Item
		if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		items = append(items, page...)
		if len(page) < datasetPageSize {
			return items, nil
		}
	}
}

// CallActor starts a run, waits for it, and returns the default dataset.
func (c *Client) CallActor(ctx context.Context, actorID string, input interface{}, opts RunOptions, label string) ([]Item, error) {
	run, err := c.StartRun(ctx, actorID, input, opts)
	if err != nil {
		return nil, err
	}

	run, err = c.WaitForRun(ctx, run.ID, label)
	if err != nil {
		return nil, err
	}

	return c.DatasetItems(ctx, run.DefaultDatasetID)
}

// doJSON performs one platform API call with retry, decoding the JSON
// response into target.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, body []byte, target interface{}) error {
	op := func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return &errors.Error{
				Type:    errors.ErrorTypeUnknown,
				Message: fmt.Sprintf("failed to create request: %v", err),
				Code:    0,
			}
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &errors.Error{
				Type:    errors.ErrorTypeNetwork,
				Message: fmt.Sprintf("network error: %v", err),
				Code:    0,
			}
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return &errors.Error{
				Type:    errors.ErrorTypeNetwork,
				Message: fmt.Sprintf("failed to read response body: %v", err),
				Code:    resp.StatusCode,
			}
		}

		if err := c.checkStatus(resp.StatusCode, respBody); err != nil {
			return err
		}

		if err := json.Unmarshal(respBody, target); err != nil {
			return &errors.Error{
				Type:    errors.ErrorTypeParsing,
				Message: fmt.Sprintf("failed to parse platform response: %v", err),
				Code:    resp.StatusCode,
			}
		}
		return nil
	}

	return retry.Do(op, &retry.Config{
		MaxAttempts: c.maxAttempts,
		Backoff:     retry.DefaultExponentialBackoff(),
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Logger:      c.logger,
	})
}

func (c *Client) checkStatus(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: "Apify token rejected, check APIFY_TOKEN",
			Code:    status,
		}
	case status == http.StatusNotFound:
		return &errors.Error{
			Type:    errors.ErrorTypeNotFound,
			Message: "actor, run, or dataset not found",
			Code:    status,
		}
	case status == http.StatusTooManyRequests:
		return &errors.Error{
			Type:    errors.ErrorTypeRateLimit,
			Message: "Apify API rate limit exceeded",
			Code:    status,
		}
	case status >= 500:
		return &errors.Error{
			Type:    errors.ErrorTypeServerError,
			Message: fmt.Sprintf("Apify API server error: %s", previewBody(body)),
			Code:    status,
		}
	default:
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status %d: %s", status, previewBody(body)),
			Code:    status,
		}
	}
}

func previewBody(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
