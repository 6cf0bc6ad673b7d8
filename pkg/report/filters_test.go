package report

import (
	"strings"
	"testing"

	"igfollowers/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortByFollowers(t *testing.T) {
	profiles := []models.Profile{
		{Handle: "small", FollowerCount: 10},
		{Handle: "zeta", FollowerCount: 500},
		{Handle: "alpha", FollowerCount: 500},
		{Handle: "big", FollowerCount: 9000},
	}

	sorted := SortByFollowers(profiles)

	assert.Equal(t, "big", sorted[0].Handle)
	// Equal counts break ties by handle
	assert.Equal(t, "alpha", sorted[1].Handle)
	assert.Equal(t, "zeta", sorted[2].Handle)
	assert.Equal(t, "small", sorted[3].Handle)

	// Input order is untouched
	assert.Equal(t, "small", profiles[0].Handle)
}

func TestNoteworthy(t *testing.T) {
	profiles := []models.Profile{
		{Handle: "verified_small", IsVerified: true, FollowerCount: 100},
		{Handle: "big_unverified", FollowerCount: 8000},
		{Handle: "exactly_at_threshold", FollowerCount: 5000},
		{Handle: "nobody", FollowerCount: 42},
	}

	noteworthy := Noteworthy(profiles, 5000)
	require.Len(t, noteworthy, 3)
	assert.Equal(t, "big_unverified", noteworthy[0].Handle)
	assert.Equal(t, "exactly_at_threshold", noteworthy[1].Handle)
	assert.Equal(t, "verified_small", noteworthy[2].Handle)
}

func TestLocal(t *testing.T) {
	profiles := []models.Profile{
		{Handle: "astoria_cafe", Bio: "Coffee in Astoria, QUEENS"},
		{Handle: "nyc_runner", Bio: "Marathons around nyc"},
		{Handle: "la_creator", Bio: "Los Angeles based"},
		{Handle: "no_bio"},
	}

	local := Local(profiles, []string{"Queens", "NYC"})
	require.Len(t, local, 2)

	handles := []string{local[0].Handle, local[1].Handle}
	assert.Contains(t, handles, "astoria_cafe")
	assert.Contains(t, handles, "nyc_runner")
}

func TestLocalIgnoresEmptyKeywords(t *testing.T) {
	profiles := []models.Profile{{Handle: "anyone", Bio: "hello"}}
	assert.Empty(t, Local(profiles, []string{""}))
}

func TestLargeFollowings(t *testing.T) {
	profiles := []models.Profile{
		{Handle: "big", FollowerCount: 10000},
		{Handle: "boundary", FollowerCount: 9999},
	}

	large := LargeFollowings(profiles, 10000)
	require.Len(t, large, 1)
	assert.Equal(t, "big", large[0].Handle)
}

func TestBusinessAccounts(t *testing.T) {
	profiles := []models.Profile{
		{Handle: "shop", IsBusiness: true},
		{Handle: "creator", IsProfessional: true},
		{Handle: "personal"},
	}

	business := BusinessAccounts(profiles)
	require.Len(t, business, 2)
}

func TestGrowthTimeline(t *testing.T) {
	profiles := []models.Profile{
		{Handle: "a", FollowDate: "2024-01-05"},
		{Handle: "b", FollowDate: "2024-01-20"},
		{Handle: "c", FollowDate: "2024-03-01"},
		{Handle: "undated"},
	}

	timeline := GrowthTimeline(profiles)
	require.Len(t, timeline, 2)

	assert.Equal(t, models.GrowthPoint{Month: "2024-01", NewFollowers: 2, Cumulative: 2}, timeline[0])
	assert.Equal(t, models.GrowthPoint{Month: "2024-03", NewFollowers: 1, Cumulative: 3}, timeline[1])
}

func TestGrowthTimelineEmpty(t *testing.T) {
	assert.Nil(t, GrowthTimeline([]models.Profile{{Handle: "undated"}}))
}

func TestMutualFollows(t *testing.T) {
	// Followers {a, b, c}, following {b, c, d}: mutuals are {b, c}
	profiles := []models.Profile{
		{Handle: "a", FollowerCount: 1},
		{Handle: "b", FollowerCount: 2},
		{Handle: "c", FollowerCount: 3},
	}
	following := []models.Follower{{Handle: "b"}, {Handle: "c"}, {Handle: "d"}}

	mutuals := MutualFollows(profiles, following)
	require.Len(t, mutuals, 2)
	assert.Equal(t, "c", mutuals[0].Handle)
	assert.Equal(t, "b", mutuals[1].Handle)
}

func TestNotFollowingBack(t *testing.T) {
	profiles := []models.Profile{
		{Handle: "a", FollowerCount: 10},
		{Handle: "b", FollowerCount: 30},
		{Handle: "c", FollowerCount: 20},
		{Handle: "e", FollowerCount: 40},
	}
	following := []models.Follower{{Handle: "b"}, {Handle: "c"}, {Handle: "d"}}

	notBack := NotFollowingBack(profiles, following)
	require.Len(t, notBack, 2)
	assert.Equal(t, "e", notBack[0].Handle)
	assert.Equal(t, "a", notBack[1].Handle)
}

func TestAggregateCommenters(t *testing.T) {
	comments := []models.Comment{
		{Handle: "chatty", Text: "first"},
		{Handle: "chatty", Text: "second"},
		{Handle: "chatty", Text: "third"},
		{Handle: "chatty", Text: "fourth"},
		{Handle: "quiet", Text: "hello"},
		{Handle: "", Text: "anonymous"},
	}
	profiles := []models.Profile{{Handle: "chatty"}}

	commenters := AggregateCommenters(comments, profiles)
	require.Len(t, commenters, 2)

	chatty := commenters[0]
	assert.Equal(t, "chatty", chatty.Handle)
	assert.Equal(t, 4, chatty.CommentCount)
	// Only the first three comments are kept as samples
	assert.Equal(t, []string{"first", "second", "third"}, chatty.Samples)
	assert.True(t, chatty.IsFollower)

	quiet := commenters[1]
	assert.Equal(t, 1, quiet.CommentCount)
	assert.False(t, quiet.IsFollower)
}

func TestAggregateCommentersTruncatesSamples(t *testing.T) {
	long := strings.Repeat("x", 300)
	comments := []models.Comment{{Handle: "verbose", Text: long}}

	commenters := AggregateCommenters(comments, nil)
	require.Len(t, commenters, 1)
	assert.Len(t, commenters[0].Samples[0], 200)
}

func TestCommentersNotFollowing(t *testing.T) {
	commenters := []models.CommenterStats{
		{Handle: "fan", IsFollower: true},
		{Handle: "stranger", IsFollower: false},
	}

	strangers := CommentersNotFollowing(commenters)
	require.Len(t, strangers, 1)
	assert.Equal(t, "stranger", strangers[0].Handle)
}

func TestAttachCommentCounts(t *testing.T) {
	profiles := []models.Profile{{Handle: "a"}, {Handle: "b"}}
	commenters := []models.CommenterStats{{Handle: "a", CommentCount: 7}}

	annotated := AttachCommentCounts(profiles, commenters)
	assert.Equal(t, 7, annotated[0].CommentCount)
	assert.Equal(t, 0, annotated[1].CommentCount)

	// Input slice stays untouched
	assert.Equal(t, 0, profiles[0].CommentCount)
}
