package graph

import (
	"encoding/json"
	"testing"

	"igfollowers/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClientConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Retry.MaxAttempts = 1
	return cfg
}

const edgePageJSON = `{
  "data": {
    "user": {
      "edge_followed_by": {
        "count": 2481,
        "page_info": {"has_next_page": true, "end_cursor": "QVFE=="},
        "edges": [
          {"node": {"id": "111", "username": "first_follower", "full_name": "First", "is_verified": true}},
          {"node": {"id": "222", "username": "second_follower", "is_private": true}}
        ]
      }
    }
  },
  "status": "ok"
}`

func TestToEdgePage(t *testing.T) {
	t.Run("full page", func(t *testing.T) {
		var resp edgeResponse
		require.NoError(t, json.Unmarshal([]byte(edgePageJSON), &resp))

		page := toEdgePage(&resp)
		assert.Equal(t, 2481, page.Total)
		assert.True(t, page.HasNextPage)
		assert.Equal(t, "QVFE==", page.EndCursor)

		require.Len(t, page.Followers, 2)
		assert.Equal(t, "111", page.Followers[0].UserID)
		assert.Equal(t, "first_follower", page.Followers[0].Handle)
		assert.True(t, page.Followers[0].IsVerified)
		assert.True(t, page.Followers[1].IsPrivate)
	})

	t.Run("last page", func(t *testing.T) {
		var resp edgeResponse
		require.NoError(t, json.Unmarshal([]byte(`{
		  "data": {"user": {"edge_followed_by": {
		    "count": 1,
		    "page_info": {"has_next_page": false, "end_cursor": ""},
		    "edges": []
		  }}},
		  "status": "ok"
		}`), &resp))

		page := toEdgePage(&resp)
		assert.False(t, page.HasNextPage)
		assert.Empty(t, page.Followers)
	})

	t.Run("missing user exhausts the edge", func(t *testing.T) {
		var resp edgeResponse
		require.NoError(t, json.Unmarshal([]byte(`{"data": {}, "status": "ok"}`), &resp))

		page := toEdgePage(&resp)
		assert.Zero(t, page.Total)
		assert.False(t, page.HasNextPage)
		assert.Empty(t, page.Followers)
	})
}

func TestNewClientUsesSessionCookies(t *testing.T) {
	sess := &Session{
		Username: "alice",
		Cookies: map[string]string{
			"sessionid":  "sess-cookie",
			"csrftoken":  "csrf-cookie",
			"ds_user_id": "12345",
		},
		UserAgent: "saved-agent",
	}

	cfg := testClientConfig()
	client := NewClient(sess, cfg, nil)
	require.NotNil(t, client)

	// The original configuration must not be mutated
	assert.Empty(t, cfg.Instagram.SessionID)
}
