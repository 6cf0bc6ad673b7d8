package instagram

import (
	"fmt"
	"net/url"
)

const (
	// BaseURL is the base URL for Instagram
	BaseURL = "https://www.instagram.com"

	// AppID is the public web app ID sent by the Instagram web client
	AppID = "936619743392459"

	// ProfileInfoEndpoint returns full profile details for a username
	ProfileInfoEndpoint = "/api/v1/users/web_profile_info/"

	// FollowersEndpoint pattern lists a user's followers with cursor pagination
	FollowersEndpoint = "/api/v1/friendships/%s/followers/"

	// FollowersPageSize is the page size requested from the followers endpoint
	FollowersPageSize = 100
)

// ProfileInfoURL constructs the URL for fetching a user's profile details
func ProfileInfoURL(username string) string {
	params := url.Values{}
	params.Set("username", username)

	return fmt.Sprintf("%s%s?%s", BaseURL, ProfileInfoEndpoint, params.Encode())
}

// FollowersURL constructs the URL for one page of a user's followers.
// maxID is the pagination cursor; empty requests the first page.
func FollowersURL(userID, maxID string) string {
	params := url.Values{}
	params.Set("count", fmt.Sprintf("%d", FollowersPageSize))
	if maxID != "" {
		params.Set("max_id", maxID)
	}

	return fmt.Sprintf("%s%s?%s", BaseURL, fmt.Sprintf(FollowersEndpoint, userID), params.Encode())
}

// IsValidUsername checks if a username is valid according to Instagram rules
func IsValidUsername(username string) bool {
	if username == "" || len(username) > 30 {
		return false
	}

	// Instagram usernames can only contain letters, numbers, periods, and underscores
	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '.' || char == '_') {
			return false
		}
	}

	return true
}

// SanitizeUsername removes any invalid characters from a username
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}

	if username[0] == '@' {
		username = username[1:]
	}

	for len(username) > 0 && (username[len(username)-1] == '/' || username[len(username)-1] == ' ') {
		username = username[:len(username)-1]
	}

	return username
}
