package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"igfollowers/pkg/config"
	"igfollowers/pkg/logger"
	"igfollowers/pkg/models"
)

// Report file names under the target's reports directory.
const (
	FileAllFollowers           = "all_followers.csv"
	FileNoteworthy             = "noteworthy_accounts.csv"
	FileLocalCollaborators     = "local_collaborators.csv"
	FileLargeFollowings        = "large_followings.csv"
	FileBusinessAccounts       = "business_accounts.csv"
	FileFollowerGrowth         = "follower_growth.csv"
	FileMutualFollows          = "mutual_follows.csv"
	FileNotFollowingBack       = "not_following_back.csv"
	FileTopCommenters          = "top_commenters.csv"
	FileCommentersNotFollowing = "commenters_not_following.csv"
)

// Input is everything one Analyze run reads. Following and Comments are
// nil unless the collecting strategy produced them.
type Input struct {
	Profiles  []models.Profile
	Following []models.Follower
	Comments  []models.Comment
}

// Summary is printed after generation.
type Summary struct {
	Total           int
	Verified        int
	Business        int
	Private         int
	MedianFollowers float64
	MeanFollowers   float64
	Written         []string
}

// Generator writes the report CSVs for one target.
type Generator struct {
	cfg    config.ReportsConfig
	logger logger.Logger
}

// NewGenerator creates a generator with the configured thresholds.
func NewGenerator(cfg config.ReportsConfig, log logger.Logger) *Generator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Generator{cfg: cfg, logger: log}
}

// Generate writes every report the input supports into dir and returns
// the summary statistics.
func (g *Generator) Generate(dir string, in Input) (*Summary, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}

	commenters := AggregateCommenters(in.Comments, in.Profiles)
	profiles := in.Profiles
	if len(commenters) > 0 {
		profiles = AttachCommentCounts(profiles, commenters)
	}

	summary := g.summarize(profiles)

	write := func(name string, rows [][]string, count int) error {
		path := filepath.Join(dir, name)
		if err := writeCSV(path, rows); err != nil {
			return err
		}
		summary.Written = append(summary.Written, name)
		g.logger.InfoWithFields("Report written", map[string]interface{}{
			"report": name,
			"rows":   count,
		})
		return nil
	}

	if len(profiles) > 0 {
		sets := []struct {
			name     string
			profiles []models.Profile
		}{
			{FileAllFollowers, SortByFollowers(profiles)},
			{FileNoteworthy, Noteworthy(profiles, g.cfg.NoteworthyFollowerMin)},
			{FileLocalCollaborators, Local(profiles, g.cfg.LocalKeywords)},
			{FileLargeFollowings, LargeFollowings(profiles, g.cfg.LargeFollowingMin)},
			{FileBusinessAccounts, BusinessAccounts(profiles)},
		}
		for _, s := range sets {
			if err := write(s.name, profileRows(s.profiles), len(s.profiles)); err != nil {
				return nil, err
			}
		}

		if timeline := GrowthTimeline(profiles); len(timeline) > 0 {
			if err := write(FileFollowerGrowth, growthRows(timeline), len(timeline)); err != nil {
				return nil, err
			}
		}
	}

	if len(in.Following) > 0 && len(profiles) > 0 {
		mutual := MutualFollows(profiles, in.Following)
		if err := write(FileMutualFollows, profileRows(mutual), len(mutual)); err != nil {
			return nil, err
		}

		notBack := NotFollowingBack(profiles, in.Following)
		if err := write(FileNotFollowingBack, profileRows(notBack), len(notBack)); err != nil {
			return nil, err
		}
	}

	if len(commenters) > 0 {
		if err := write(FileTopCommenters, commenterRows(commenters), len(commenters)); err != nil {
			return nil, err
		}

		notFollowing := CommentersNotFollowing(commenters)
		if err := write(FileCommentersNotFollowing, commenterRows(notFollowing), len(notFollowing)); err != nil {
			return nil, err
		}
	}

	return summary, nil
}

func (g *Generator) summarize(profiles []models.Profile) *Summary {
	s := &Summary{Total: len(profiles)}
	if len(profiles) == 0 {
		return s
	}

	counts := make([]int, 0, len(profiles))
	total := 0
	for _, p := range profiles {
		if p.IsVerified {
			s.Verified++
		}
		if p.IsBusiness || p.IsProfessional {
			s.Business++
		}
		if p.IsPrivate {
			s.Private++
		}
		counts = append(counts, p.FollowerCount)
		total += p.FollowerCount
	}

	sort.Ints(counts)
	mid := len(counts) / 2
	if len(counts)%2 == 1 {
		s.MedianFollowers = float64(counts[mid])
	} else {
		s.MedianFollowers = float64(counts[mid-1]+counts[mid]) / 2
	}
	s.MeanFollowers = float64(total) / float64(len(counts))

	return s
}

var profileHeader = []string{
	"handle", "ig_user_id", "full_name",
	"follower_count", "following_count",
	"is_verified", "is_private",
	"is_business", "is_professional",
	"category", "bio",
	"external_url", "post_count",
	"profile_pic_url", "follow_date",
	"comment_count",
}

func profileRows(profiles []models.Profile) [][]string {
	rows := make([][]string, 0, len(profiles)+1)
	rows = append(rows, profileHeader)
	for _, p := range profiles {
		rows = append(rows, []string{
			p.Handle, p.UserID, p.FullName,
			strconv.Itoa(p.FollowerCount), strconv.Itoa(p.FollowingCount),
			strconv.FormatBool(p.IsVerified), strconv.FormatBool(p.IsPrivate),
			strconv.FormatBool(p.IsBusiness), strconv.FormatBool(p.IsProfessional),
			p.Category, p.Bio,
			p.ExternalURL, strconv.Itoa(p.PostCount),
			p.PicURL, p.FollowDate,
			strconv.Itoa(p.CommentCount),
		})
	}
	return rows
}

func growthRows(timeline []models.GrowthPoint) [][]string {
	rows := make([][]string, 0, len(timeline)+1)
	rows = append(rows, []string{"month", "new_followers", "cumulative"})
	for _, p := range timeline {
		rows = append(rows, []string{p.Month, strconv.Itoa(p.NewFollowers), strconv.Itoa(p.Cumulative)})
	}
	return rows
}

func commenterRows(commenters []models.CommenterStats) [][]string {
	rows := make([][]string, 0, len(commenters)+1)
	rows = append(rows, []string{"handle", "comment_count", "is_follower", "sample_comments"})
	for _, c := range commenters {
		rows = append(rows, []string{
			c.Handle,
			strconv.Itoa(c.CommentCount),
			strconv.FormatBool(c.IsFollower),
			strings.Join(c.Samples, " /// "),
		})
	}
	return rows
}

func writeCSV(path string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", filepath.Base(path), err)
	}

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(rows); err != nil {
		file.Close()
		return fmt.Errorf("failed to write report %s: %w", filepath.Base(path), err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close report %s: %w", filepath.Base(path), err)
	}
	return nil
}
