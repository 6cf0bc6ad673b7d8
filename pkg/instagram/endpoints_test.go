package instagram

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileInfoURL(t *testing.T) {
	tests := []struct {
		name     string
		username string
		expected string
	}{
		{
			name:     "simple username",
			username: "testuser",
			expected: fmt.Sprintf("%s%s?username=testuser", BaseURL, ProfileInfoEndpoint),
		},
		{
			name:     "username with underscore",
			username: "test_user",
			expected: fmt.Sprintf("%s%s?username=test_user", BaseURL, ProfileInfoEndpoint),
		},
		{
			name:     "username with dots",
			username: "test.user",
			expected: fmt.Sprintf("%s%s?username=test.user", BaseURL, ProfileInfoEndpoint),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ProfileInfoURL(tt.username)
			assert.Equal(t, tt.expected, result)

			// Verify URL is properly encoded
			_, err := url.Parse(result)
			assert.NoError(t, err)
		})
	}
}

func TestFollowersURL(t *testing.T) {
	t.Run("first page requests no cursor", func(t *testing.T) {
		result := FollowersURL("123456", "")

		parsed, err := url.Parse(result)
		assert.NoError(t, err)
		assert.Equal(t, "/api/v1/friendships/123456/followers/", parsed.Path)
		assert.Equal(t, "100", parsed.Query().Get("count"))
		assert.False(t, parsed.Query().Has("max_id"))
	})

	t.Run("cursor pages carry max_id", func(t *testing.T) {
		result := FollowersURL("123456", "QVFEcursor==")

		parsed, err := url.Parse(result)
		assert.NoError(t, err)
		assert.Equal(t, "QVFEcursor==", parsed.Query().Get("max_id"))
	})
}

func TestIsValidUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		expected bool
	}{
		{"valid simple", "testuser", true},
		{"valid with underscore", "test_user", true},
		{"valid with dots", "test.user.123", true},
		{"empty", "", false},
		{"too long", "abcdefghijklmnopqrstuvwxyz12345", false},
		{"spaces", "test user", false},
		{"special characters", "test@user", false},
		{"unicode", "tëstuser", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidUsername(tt.username))
		})
	}
}

func TestSanitizeUsername(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "testuser", "testuser"},
		{"leading at sign", "@testuser", "testuser"},
		{"trailing slash", "testuser/", "testuser"},
		{"trailing spaces", "testuser  ", "testuser"},
		{"at sign and slash", "@testuser/", "testuser"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeUsername(tt.input))
		})
	}
}
