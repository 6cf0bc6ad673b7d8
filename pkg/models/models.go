package models

import "time"

// Follower is the bare record produced by the Collect stage: enough to
// identify an account before its profile has been fetched.
type Follower struct {
	UserID     string `json:"ig_user_id,omitempty"`
	Handle     string `json:"handle"`
	FullName   string `json:"full_name,omitempty"`
	IsPrivate  bool   `json:"is_private,omitempty"`
	IsVerified bool   `json:"is_verified,omitempty"`
	PicURL     string `json:"profile_pic_url,omitempty"`

	// FollowDate is only known for the data-export strategy, formatted
	// as YYYY-MM-DD in UTC. Timestamp is the raw Unix value.
	FollowDate string `json:"follow_date,omitempty"`
	Timestamp  int64  `json:"timestamp,omitempty"`
}

// Key returns the identifier used for deduplication and checkpointing.
// The export archive carries no user IDs, so the handle is the fallback.
func (f Follower) Key() string {
	if f.UserID != "" {
		return f.UserID
	}
	return f.Handle
}

// Profile is a fully enriched follower record. Created during Collect,
// filled in during Enrich, immutable during Analyze.
type Profile struct {
	Handle         string
	UserID         string
	FullName       string
	FollowerCount  int
	FollowingCount int
	IsVerified     bool
	IsPrivate      bool
	IsBusiness     bool
	IsProfessional bool
	Category       string
	Bio            string
	ExternalURL    string
	PostCount      int
	PicURL         string
	FollowDate     string
	CommentCount   int
}

// Comment is a single comment on one of the target's posts, produced by
// the cloud-actor strategy only.
type Comment struct {
	Handle    string `json:"handle"`
	Text      string `json:"text"`
	PostShort string `json:"post_shortcode"`
}

// CommenterStats aggregates all comments left by one account.
type CommenterStats struct {
	Handle       string
	CommentCount int
	Samples      []string
	IsFollower   bool
}

// GrowthPoint is one month of the follower growth timeline.
type GrowthPoint struct {
	Month        string // YYYY-MM
	NewFollowers int
	Cumulative   int
}

// MonthOf formats a time as a growth timeline bucket key.
func MonthOf(t time.Time) string {
	return t.UTC().Format("2006-01")
}
