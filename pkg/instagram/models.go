package instagram

import (
	"encoding/json"
	"strings"

	"igfollowers/pkg/models"
)

// ProfileResponse is the top-level response from the web_profile_info endpoint
type ProfileResponse struct {
	RequiresToLogin bool        `json:"requires_to_login"`
	Data            ProfileData `json:"data"`
	Status          string      `json:"status"`
}

// ProfileData wraps the user information in the response
type ProfileData struct {
	User *UserInfo `json:"user"`
}

// UserInfo is the full profile shape returned by web_profile_info
type UserInfo struct {
	ID                    string    `json:"id"`
	Username              string    `json:"username"`
	FullName              string    `json:"full_name"`
	Biography             string    `json:"biography"`
	ExternalURL           string    `json:"external_url"`
	IsVerified            bool      `json:"is_verified"`
	IsPrivate             bool      `json:"is_private"`
	IsBusinessAccount     bool      `json:"is_business_account"`
	IsProfessionalAccount bool      `json:"is_professional_account"`
	CategoryName          string    `json:"category_name"`
	BusinessCategoryName  string    `json:"business_category_name"`
	EdgeFollowedBy        EdgeCount `json:"edge_followed_by"`
	EdgeFollow            EdgeCount `json:"edge_follow"`
	EdgeTimelineMedia     EdgeCount `json:"edge_owner_to_timeline_media"`
	ProfilePicURL         string    `json:"profile_pic_url"`
	ProfilePicURLHD       string    `json:"profile_pic_url_hd"`
}

// EdgeCount carries just the count of a graph edge
type EdgeCount struct {
	Count int `json:"count"`
}

// ToProfile converts the wire shape into the enriched follower record.
func (u *UserInfo) ToProfile() models.Profile {
	category := u.CategoryName
	if category == "" {
		category = u.BusinessCategoryName
	}

	picURL := u.ProfilePicURLHD
	if picURL == "" {
		picURL = u.ProfilePicURL
	}

	return models.Profile{
		Handle:         u.Username,
		UserID:         u.ID,
		FullName:       u.FullName,
		FollowerCount:  u.EdgeFollowedBy.Count,
		FollowingCount: u.EdgeFollow.Count,
		IsVerified:     u.IsVerified,
		IsPrivate:      u.IsPrivate,
		IsBusiness:     u.IsBusinessAccount,
		IsProfessional: u.IsProfessionalAccount,
		Category:       category,
		// Newlines would break one-row-per-record CSV output
		Bio:         strings.ReplaceAll(u.Biography, "\n", " | "),
		ExternalURL: u.ExternalURL,
		PostCount:   u.EdgeTimelineMedia.Count,
		PicURL:      picURL,
	}
}

// FollowerPage is one page of the friendships followers endpoint
type FollowerPage struct {
	Users     []FollowerUser `json:"users"`
	NextMaxID string         `json:"next_max_id"`
	Status    string         `json:"status"`
}

// FollowerUser is the compact user shape in follower pages
type FollowerUser struct {
	PK            json.Number `json:"pk"`
	PKID          string      `json:"pk_id"`
	Username      string      `json:"username"`
	FullName      string      `json:"full_name"`
	IsPrivate     bool        `json:"is_private"`
	IsVerified    bool        `json:"is_verified"`
	ProfilePicURL string      `json:"profile_pic_url"`
}

// UserID returns the follower's identifier, whichever field carried it.
func (u *FollowerUser) UserID() string {
	if id := u.PK.String(); id != "" && id != "0" {
		return id
	}
	return u.PKID
}

// ToFollower converts the wire shape into a collect-stage record.
func (u *FollowerUser) ToFollower() models.Follower {
	return models.Follower{
		UserID:     u.UserID(),
		Handle:     u.Username,
		FullName:   u.FullName,
		IsPrivate:  u.IsPrivate,
		IsVerified: u.IsVerified,
		PicURL:     u.ProfilePicURL,
	}
}
