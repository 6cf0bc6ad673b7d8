package graph

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"igfollowers/pkg/errors"
	"igfollowers/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionValid(t *testing.T) {
	tests := []struct {
		name    string
		session *Session
		valid   bool
	}{
		{"nil session", nil, false},
		{"no cookies", &Session{Cookies: map[string]string{}}, false},
		{"sessionid only", &Session{Cookies: map[string]string{"sessionid": "s"}}, false},
		{"csrftoken only", &Session{Cookies: map[string]string{"csrftoken": "c"}}, false},
		{"both cookies", &Session{Cookies: map[string]string{"sessionid": "s", "csrftoken": "c"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.session.Valid())
		})
	}
}

func TestSessionCookieAccessors(t *testing.T) {
	sess := &Session{Cookies: map[string]string{
		"sessionid": "the-session",
		"csrftoken": "the-token",
	}}

	assert.Equal(t, "the-session", sess.SessionID())
	assert.Equal(t, "the-token", sess.CSRFToken())
}

func TestSessionRoundTrip(t *testing.T) {
	path := store.New(t.TempDir()).SessionFile("alice")

	sess := &Session{
		Username:  "alice",
		UserID:    "12345",
		Cookies:   map[string]string{"sessionid": "s", "csrftoken": "c", "ds_user_id": "12345"},
		UserAgent: "test-agent",
		SavedAt:   time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.SaveJSON(path, sess))

	var loaded Session
	require.NoError(t, store.LoadJSON(path, &loaded))
	assert.Equal(t, *sess, loaded)
	assert.True(t, loaded.Valid())
}

func TestPostLoginForm(t *testing.T) {
	newClient := func() *http.Client {
		jar, _ := cookiejar.New(nil)
		return &http.Client{Jar: jar, Timeout: 5 * time.Second}
	}

	t.Run("authenticated", func(t *testing.T) {
		var gotCSRF, gotContentType string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotCSRF = r.Header.Get("X-CSRFToken")
			gotContentType = r.Header.Get("Content-Type")
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "alice", r.PostForm.Get("username"))

			w.Write([]byte(`{"authenticated": true, "userId": "12345", "status": "ok"}`))
		}))
		defer server.Close()

		result, err := postLoginForm(context.Background(), newClient(), server.URL, "csrf-1",
			url.Values{"username": {"alice"}})
		require.NoError(t, err)

		assert.True(t, result.Authenticated)
		assert.Equal(t, "12345", result.UserID)
		assert.Equal(t, "csrf-1", gotCSRF)
		assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	})

	t.Run("two factor challenge", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"two_factor_required": true, "two_factor_info": {"two_factor_identifier": "tf-id"}}`))
		}))
		defer server.Close()

		result, err := postLoginForm(context.Background(), newClient(), server.URL, "csrf", url.Values{})
		require.NoError(t, err)

		assert.True(t, result.TwoFactorRequired)
		assert.Equal(t, "tf-id", result.TwoFactorInfo.TwoFactorIdentifier)
	})

	t.Run("rate limited", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := postLoginForm(context.Background(), newClient(), server.URL, "csrf", url.Values{})
		require.Error(t, err)

		typed, ok := err.(*errors.Error)
		require.True(t, ok)
		assert.Equal(t, errors.ErrorTypeRateLimit, typed.Type)
	})

	t.Run("malformed response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>checkpoint</html>"))
		}))
		defer server.Close()

		_, err := postLoginForm(context.Background(), newClient(), server.URL, "csrf", url.Values{})
		require.Error(t, err)

		typed, ok := err.(*errors.Error)
		require.True(t, ok)
		assert.Equal(t, errors.ErrorTypeParsing, typed.Type)
	})
}
