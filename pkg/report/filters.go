// Package report builds the analysis CSVs from enriched profile data.
// Every report is a pure projection of its inputs and is rebuilt in full
// on each run.
package report

import (
	"sort"
	"strings"

	"igfollowers/pkg/models"
)

// SortByFollowers orders profiles by follower count descending, handle
// ascending on ties so output is deterministic.
func SortByFollowers(profiles []models.Profile) []models.Profile {
	sorted := make([]models.Profile, len(profiles))
	copy(sorted, profiles)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].FollowerCount != sorted[j].FollowerCount {
			return sorted[i].FollowerCount > sorted[j].FollowerCount
		}
		return sorted[i].Handle < sorted[j].Handle
	})
	return sorted
}

// Noteworthy selects verified accounts and accounts at or above the
// follower threshold.
func Noteworthy(profiles []models.Profile, followerMin int) []models.Profile {
	var out []models.Profile
	for _, p := range profiles {
		if p.IsVerified || p.FollowerCount >= followerMin {
			out = append(out, p)
		}
	}
	return SortByFollowers(out)
}

// Local selects accounts whose bio contains any of the locality keywords,
// case-insensitively.
func Local(profiles []models.Profile, keywords []string) []models.Profile {
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}

	var out []models.Profile
	for _, p := range profiles {
		bio := strings.ToLower(p.Bio)
		for _, kw := range lowered {
			if kw != "" && strings.Contains(bio, kw) {
				out = append(out, p)
				break
			}
		}
	}
	return SortByFollowers(out)
}

// LargeFollowings selects accounts at or above the follower threshold.
func LargeFollowings(profiles []models.Profile, followerMin int) []models.Profile {
	var out []models.Profile
	for _, p := range profiles {
		if p.FollowerCount >= followerMin {
			out = append(out, p)
		}
	}
	return SortByFollowers(out)
}

// BusinessAccounts selects business and professional accounts.
func BusinessAccounts(profiles []models.Profile) []models.Profile {
	var out []models.Profile
	for _, p := range profiles {
		if p.IsBusiness || p.IsProfessional {
			out = append(out, p)
		}
	}
	return SortByFollowers(out)
}

// GrowthTimeline buckets followers with a known follow date by month and
// returns the timeline oldest first with a running total. Profiles
// without a follow date are excluded.
func GrowthTimeline(profiles []models.Profile) []models.GrowthPoint {
	perMonth := make(map[string]int)
	for _, p := range profiles {
		if len(p.FollowDate) < 7 {
			continue
		}
		perMonth[p.FollowDate[:7]]++
	}
	if len(perMonth) == 0 {
		return nil
	}

	months := make([]string, 0, len(perMonth))
	for m := range perMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	timeline := make([]models.GrowthPoint, 0, len(months))
	cumulative := 0
	for _, m := range months {
		cumulative += perMonth[m]
		timeline = append(timeline, models.GrowthPoint{
			Month:        m,
			NewFollowers: perMonth[m],
			Cumulative:   cumulative,
		})
	}
	return timeline
}

// MutualFollows selects followers the target also follows.
func MutualFollows(profiles []models.Profile, following []models.Follower) []models.Profile {
	followingSet := handleSet(following)
	var out []models.Profile
	for _, p := range profiles {
		if _, ok := followingSet[p.Handle]; ok {
			out = append(out, p)
		}
	}
	return SortByFollowers(out)
}

// NotFollowingBack selects followers the target does not follow back.
func NotFollowingBack(profiles []models.Profile, following []models.Follower) []models.Profile {
	followingSet := handleSet(following)
	var out []models.Profile
	for _, p := range profiles {
		if _, ok := followingSet[p.Handle]; !ok {
			out = append(out, p)
		}
	}
	return SortByFollowers(out)
}

// AggregateCommenters rolls comments up per commenter, keeping up to
// three sample comments and flagging whether the commenter is a follower.
func AggregateCommenters(comments []models.Comment, profiles []models.Profile) []models.CommenterStats {
	followers := make(map[string]struct{}, len(profiles))
	for _, p := range profiles {
		followers[p.Handle] = struct{}{}
	}

	byHandle := make(map[string]*models.CommenterStats)
	var order []string
	for _, c := range comments {
		if c.Handle == "" {
			continue
		}
		stats, ok := byHandle[c.Handle]
		if !ok {
			_, isFollower := followers[c.Handle]
			stats = &models.CommenterStats{Handle: c.Handle, IsFollower: isFollower}
			byHandle[c.Handle] = stats
			order = append(order, c.Handle)
		}
		stats.CommentCount++
		if c.Text != "" && len(stats.Samples) < 3 {
			text := c.Text
			if len(text) > 200 {
				text = text[:200]
			}
			stats.Samples = append(stats.Samples, text)
		}
	}

	out := make([]models.CommenterStats, 0, len(order))
	for _, handle := range order {
		out = append(out, *byHandle[handle])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CommentCount != out[j].CommentCount {
			return out[i].CommentCount > out[j].CommentCount
		}
		return out[i].Handle < out[j].Handle
	})
	return out
}

// CommentersNotFollowing selects commenters absent from the follower set.
func CommentersNotFollowing(commenters []models.CommenterStats) []models.CommenterStats {
	var out []models.CommenterStats
	for _, c := range commenters {
		if !c.IsFollower {
			out = append(out, c)
		}
	}
	return out
}

// AttachCommentCounts annotates each profile with its comment count.
func AttachCommentCounts(profiles []models.Profile, commenters []models.CommenterStats) []models.Profile {
	counts := make(map[string]int, len(commenters))
	for _, c := range commenters {
		counts[c.Handle] = c.CommentCount
	}

	out := make([]models.Profile, len(profiles))
	copy(out, profiles)
	for i := range out {
		out[i].CommentCount = counts[out[i].Handle]
	}
	return out
}

func handleSet(followers []models.Follower) map[string]struct{} {
	set := make(map[string]struct{}, len(followers))
	for _, f := range followers {
		set[f.Handle] = struct{}{}
	}
	return set
}
