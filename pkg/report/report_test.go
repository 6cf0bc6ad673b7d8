package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"igfollowers/pkg/config"
	"igfollowers/pkg/logger"
	"igfollowers/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReportsConfig() config.ReportsConfig {
	return config.ReportsConfig{
		NoteworthyFollowerMin: 5000,
		LargeFollowingMin:     10000,
		LocalKeywords:         []string{"queens", "nyc"},
	}
}

func readReport(t *testing.T, dir, name string) [][]string {
	t.Helper()
	file, err := os.Open(filepath.Join(dir, name))
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestGenerateProfileReports(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(testReportsConfig(), logger.NewTestLogger())

	profiles := []models.Profile{
		{Handle: "big_verified", FollowerCount: 20000, IsVerified: true, FollowDate: "2024-01-10"},
		{Handle: "queens_cafe", FollowerCount: 3000, Bio: "Coffee in Queens", IsBusiness: true, FollowDate: "2024-02-02"},
		{Handle: "private_person", FollowerCount: 150, IsPrivate: true, FollowDate: "2024-02-20"},
	}

	summary, err := gen.Generate(dir, Input{Profiles: profiles})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Verified)
	assert.Equal(t, 1, summary.Business)
	assert.Equal(t, 1, summary.Private)
	assert.Equal(t, 3000.0, summary.MedianFollowers)
	assert.InDelta(t, 7716.6, summary.MeanFollowers, 0.1)

	all := readReport(t, dir, FileAllFollowers)
	require.Len(t, all, 4)
	assert.Equal(t, profileHeader, all[0])
	// Sorted by follower count descending
	assert.Equal(t, "big_verified", all[1][0])
	assert.Equal(t, "queens_cafe", all[2][0])
	assert.Equal(t, "private_person", all[3][0])

	noteworthy := readReport(t, dir, FileNoteworthy)
	require.Len(t, noteworthy, 2)
	assert.Equal(t, "big_verified", noteworthy[1][0])

	local := readReport(t, dir, FileLocalCollaborators)
	require.Len(t, local, 2)
	assert.Equal(t, "queens_cafe", local[1][0])

	large := readReport(t, dir, FileLargeFollowings)
	require.Len(t, large, 2)

	business := readReport(t, dir, FileBusinessAccounts)
	require.Len(t, business, 2)

	growth := readReport(t, dir, FileFollowerGrowth)
	require.Len(t, growth, 3)
	assert.Equal(t, []string{"month", "new_followers", "cumulative"}, growth[0])
	assert.Equal(t, []string{"2024-01", "1", "1"}, growth[1])
	assert.Equal(t, []string{"2024-02", "2", "3"}, growth[2])

	// Relationship and commenter reports need inputs that were not given
	_, err = os.Stat(filepath.Join(dir, FileMutualFollows))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, FileTopCommenters))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerateRelationshipReports(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(testReportsConfig(), logger.NewTestLogger())

	profiles := []models.Profile{
		{Handle: "mutual_friend", FollowerCount: 500},
		{Handle: "one_way_fan", FollowerCount: 100},
	}
	following := []models.Follower{
		{Handle: "mutual_friend"},
		{Handle: "celebrity", FullName: "Famous Person"},
	}

	_, err := gen.Generate(dir, Input{Profiles: profiles, Following: following})
	require.NoError(t, err)

	mutual := readReport(t, dir, FileMutualFollows)
	require.Len(t, mutual, 2)
	assert.Equal(t, "mutual_friend", mutual[1][0])

	notBack := readReport(t, dir, FileNotFollowingBack)
	require.Len(t, notBack, 2)
	assert.Equal(t, "one_way_fan", notBack[1][0], "followers not followed back")
}

func TestGenerateCommenterReports(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(testReportsConfig(), logger.NewTestLogger())

	profiles := []models.Profile{{Handle: "fan", FollowerCount: 10}}
	comments := []models.Comment{
		{Handle: "fan", Text: "love this"},
		{Handle: "fan", Text: "great shot"},
		{Handle: "stranger", Text: "nice"},
	}

	_, err := gen.Generate(dir, Input{Profiles: profiles, Comments: comments})
	require.NoError(t, err)

	top := readReport(t, dir, FileTopCommenters)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"handle", "comment_count", "is_follower", "sample_comments"}, top[0])
	assert.Equal(t, []string{"fan", "2", "true", "love this /// great shot"}, top[1])
	assert.Equal(t, []string{"stranger", "1", "false", "nice"}, top[2])

	notFollowing := readReport(t, dir, FileCommentersNotFollowing)
	require.Len(t, notFollowing, 2)
	assert.Equal(t, "stranger", notFollowing[1][0])

	// Comment counts flow into the profile reports
	all := readReport(t, dir, FileAllFollowers)
	require.Len(t, all, 2)
	assert.Equal(t, "2", all[1][len(all[1])-1])
}

func TestGenerateEmptyInput(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(testReportsConfig(), logger.NewTestLogger())

	summary, err := gen.Generate(dir, Input{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Empty(t, summary.Written)
}

func TestSummarizeMedianEvenCount(t *testing.T) {
	gen := NewGenerator(testReportsConfig(), logger.NewTestLogger())

	summary := gen.summarize([]models.Profile{
		{FollowerCount: 100},
		{FollowerCount: 200},
		{FollowerCount: 300},
		{FollowerCount: 1000},
	})

	assert.Equal(t, 250.0, summary.MedianFollowers)
	assert.Equal(t, 400.0, summary.MeanFollowers)
}
