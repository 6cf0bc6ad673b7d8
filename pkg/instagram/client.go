package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"igfollowers/pkg/config"
	"igfollowers/pkg/errors"
	"igfollowers/pkg/logger"
	"igfollowers/pkg/models"
	"igfollowers/pkg/retry"
)

// Client talks to Instagram's internal web API using browser session
// cookies. All requests are sequential; retry and rate-limit backoff are
// applied per request.
type Client struct {
	httpClient  *http.Client
	headers     map[string]string
	baseURL     string
	maxAttempts int
	logger      logger.Logger
}

// NewClient creates a web API client authenticated with the session
// cookies from the configuration.
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	cookies := []string{
		fmt.Sprintf("sessionid=%s", cfg.Instagram.SessionID),
		fmt.Sprintf("csrftoken=%s", cfg.Instagram.CSRFToken),
		fmt.Sprintf("ds_user_id=%s", cfg.Instagram.DSUserID),
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: map[string]string{
			"User-Agent":       cfg.Instagram.UserAgent,
			"X-IG-App-ID":      AppID,
			"X-CSRFToken":      cfg.Instagram.CSRFToken,
			"X-Requested-With": "XMLHttpRequest",
			"Referer":          "https://www.instagram.com/",
			"Origin":           "https://www.instagram.com",
			"Cookie":           strings.Join(cookies, "; "),
		},
		baseURL:     BaseURL,
		maxAttempts: cfg.Retry.MaxAttempts,
		logger:      log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// doRequest performs a single HTTP request with the configured headers
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// GetJSON performs a GET with retry and rate-limit backoff, decoding the
// JSON response into target. 404 responses decode into the zero value so
// callers can log-and-skip vanished accounts.
func (c *Client) GetJSON(ctx context.Context, url string, target interface{}) error {
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return &errors.Error{
				Type:    errors.ErrorTypeUnknown,
				Message: fmt.Sprintf("failed to create request: %v", err),
				Code:    0,
			}
		}

		resp, err := c.doRequest(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			// Deleted or renamed account: not an error worth retrying
			return nil
		}
		if err := c.checkResponseStatus(resp); err != nil {
			return err
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return &errors.Error{
				Type:    errors.ErrorTypeNetwork,
				Message: fmt.Sprintf("failed to read response body: %v", err),
				Code:    resp.StatusCode,
			}
		}

		if err := json.Unmarshal(body, target); err != nil {
			bodyPreview := string(body)
			if len(bodyPreview) > 200 {
				bodyPreview = bodyPreview[:200] + "..."
			}

			c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
				"url":          url,
				"status":       resp.StatusCode,
				"error":        err.Error(),
				"body_preview": bodyPreview,
			})
			return &errors.Error{
				Type:    errors.ErrorTypeParsing,
				Message: fmt.Sprintf("failed to parse JSON: %v", err),
				Code:    resp.StatusCode,
			}
		}

		return nil
	}

	return retry.Do(op, &retry.Config{
		MaxAttempts: c.maxAttempts,
		Backoff:     retry.RateLimitBackoff(),
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Logger:      c.logger,
	})
}

// checkResponseStatus maps HTTP status codes onto the error taxonomy
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.logger.WarnWithFields("session expired or invalid", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: "session expired or invalid, refresh your cookies",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errors.Error{
			Type:    errors.ErrorTypeRateLimit,
			Message: "rate limit exceeded",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode >= 500:
		c.logger.ErrorWithFields("server error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errors.Error{
			Type:    errors.ErrorTypeServerError,
			Message: "server error",
			Code:    resp.StatusCode,
		}
	default:
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}
}

// ResolveUser resolves a username to its full profile, including the user
// ID needed for follower pagination.
func (c *Client) ResolveUser(ctx context.Context, username string) (*UserInfo, error) {
	url := ProfileInfoURL(username)

	var response ProfileResponse
	if err := c.GetJSON(ctx, url, &response); err != nil {
		return nil, err
	}

	if response.RequiresToLogin {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: "Instagram requires authentication to view this profile",
			Code:    http.StatusUnauthorized,
		}
	}

	if response.Data.User == nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNotFound,
			Message: fmt.Sprintf("could not resolve @%s", username),
			Code:    http.StatusNotFound,
		}
	}

	return response.Data.User, nil
}

// FetchFollowerPage fetches one page of a user's followers. maxID is the
// cursor from the previous page; empty fetches the first page.
func (c *Client) FetchFollowerPage(ctx context.Context, userID, maxID string) (*FollowerPage, error) {
	url := FollowersURL(userID, maxID)

	c.logger.DebugWithFields("fetching follower page", map[string]interface{}{
		"user_id": userID,
		"max_id":  maxID,
	})

	var page FollowerPage
	if err := c.GetJSON(ctx, url, &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// FetchProfile fetches the enriched profile for one follower handle.
// Satisfies the enrichment ProfileFetcher interface.
func (c *Client) FetchProfile(ctx context.Context, username string) (models.Profile, error) {
	user, err := c.ResolveUser(ctx, username)
	if err != nil {
		return models.Profile{}, err
	}
	return user.ToProfile(), nil
}
