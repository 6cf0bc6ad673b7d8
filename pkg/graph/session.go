// Package graph implements the session-based collection strategy: an
// interactive web login whose cookies are persisted to disk, and follower
// collection over the GraphQL follower edge.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"igfollowers/pkg/errors"
	"igfollowers/pkg/logger"
)

const (
	loginPageURL  = "https://www.instagram.com/accounts/login/"
	loginAjaxURL  = "https://www.instagram.com/api/v1/web/accounts/login/ajax/"
	twoFactorURL  = "https://www.instagram.com/api/v1/web/accounts/login/ajax/two_factor/"
	loginTimeout  = 30 * time.Second
	defaultUAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Session holds the authenticated state produced by Login. It is saved
// as JSON under the target's data directory and reloaded by the
// followers and enrich stages.
type Session struct {
	Username  string            `json:"username"`
	UserID    string            `json:"user_id"`
	Cookies   map[string]string `json:"cookies"`
	UserAgent string            `json:"user_agent"`
	SavedAt   time.Time         `json:"saved_at"`
}

// SessionID returns the sessionid cookie, empty when not logged in.
func (s *Session) SessionID() string { return s.Cookies["sessionid"] }

// CSRFToken returns the csrftoken cookie.
func (s *Session) CSRFToken() string { return s.Cookies["csrftoken"] }

// Valid reports whether the session carries the cookies needed for
// authenticated requests.
func (s *Session) Valid() bool {
	return s != nil && s.SessionID() != "" && s.CSRFToken() != ""
}

// TwoFactorPrompt asks the user for a verification code. Wired to a
// terminal prompt by the CLI; tests supply a stub.
type TwoFactorPrompt func() (string, error)

type loginResponse struct {
	Authenticated     bool   `json:"authenticated"`
	User              bool   `json:"user"`
	UserID            string `json:"userId"`
	Status            string `json:"status"`
	Message           string `json:"message"`
	TwoFactorRequired bool   `json:"two_factor_required"`
	TwoFactorInfo     struct {
		TwoFactorIdentifier string `json:"two_factor_identifier"`
	} `json:"two_factor_info"`
}

// Login authenticates against the Instagram web login endpoint and
// returns a persistable session. The flow matches the browser: fetch the
// login page for a CSRF token, post the encoded password, and complete
// the two-factor challenge when asked.
func Login(ctx context.Context, username, password string, prompt TwoFactorPrompt, log logger.Logger) (*Session, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	client := &http.Client{Jar: jar, Timeout: loginTimeout}

	csrf, err := fetchCSRFToken(ctx, client)
	if err != nil {
		return nil, err
	}

	log.InfoWithFields("Logging in", map[string]interface{}{
		"username": username,
	})

	form := url.Values{
		"username":     {username},
		"enc_password": {fmt.Sprintf("#PWD_INSTAGRAM_BROWSER:0:%d:%s", time.Now().Unix(), password)},
	}
	result, err := postLoginForm(ctx, client, loginAjaxURL, csrf, form)
	if err != nil {
		return nil, err
	}

	if result.TwoFactorRequired {
		if prompt == nil {
			return nil, &errors.Error{
				Type:    errors.ErrorTypeAuth,
				Message: "two-factor authentication required but no code prompt available",
				Code:    http.StatusBadRequest,
			}
		}
		log.Info("Two-factor authentication required")
		code, err := prompt()
		if err != nil {
			return nil, fmt.Errorf("failed to read verification code: %w", err)
		}

		form = url.Values{
			"username":            {username},
			"verificationCode":    {strings.TrimSpace(code)},
			"identifier":          {result.TwoFactorInfo.TwoFactorIdentifier},
			"verification_method": {"1"},
			"trust_signal":        {"true"},
			"queryParams":         {"{}"},
		}
		result, err = postLoginForm(ctx, client, twoFactorURL, csrf, form)
		if err != nil {
			return nil, err
		}
	}

	if !result.Authenticated {
		msg := "login failed: bad credentials"
		if result.Message != "" {
			msg = fmt.Sprintf("login failed: %s", result.Message)
		}
		return nil, &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: msg,
			Code:    http.StatusUnauthorized,
		}
	}

	sess := &Session{
		Username:  username,
		UserID:    result.UserID,
		Cookies:   make(map[string]string),
		UserAgent: defaultUAgent,
		SavedAt:   time.Now().UTC(),
	}
	base, _ := url.Parse("https://www.instagram.com/")
	for _, c := range jar.Cookies(base) {
		sess.Cookies[c.Name] = c.Value
	}

	if !sess.Valid() {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeAuth,
			Message: "login succeeded but no session cookies were issued",
			Code:    http.StatusUnauthorized,
		}
	}

	return sess, nil
}

// fetchCSRFToken loads the login page so the server issues a csrftoken
// cookie, which the login POST must echo back as a header.
func fetchCSRFToken(ctx context.Context, client *http.Client) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loginPageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", defaultUAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to load login page: %v", err),
			Code:    0,
		}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	for _, c := range client.Jar.Cookies(req.URL) {
		if c.Name == "csrftoken" {
			return c.Value, nil
		}
	}

	return "", &errors.Error{
		Type:    errors.ErrorTypeAuth,
		Message: "login page did not set a CSRF token",
		Code:    resp.StatusCode,
	}
}

func postLoginForm(ctx context.Context, client *http.Client, endpoint, csrf string, form url.Values) (*loginResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", defaultUAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-CSRFToken", csrf)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Referer", loginPageURL)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("login request failed: %v", err),
			Code:    0,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read login response: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeRateLimit,
			Message: "rate limited during login, wait before retrying",
			Code:    resp.StatusCode,
		}
	}

	var result loginResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse login response: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return &result, nil
}
