package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"igfollowers/pkg/apify"
	"igfollowers/pkg/config"
	"igfollowers/pkg/models"
	"igfollowers/pkg/report"
	"igfollowers/pkg/store"
	"igfollowers/pkg/ui"
)

// ApifyOptions tunes the cloud-actor strategy.
type ApifyOptions struct {
	Options
	UsernamesFile string // plain text, one handle per line
	BatchSize     int    // overrides the configured profile batch size
	InputFile     string // existing raw profile JSON for convert
}

const (
	followersRunTimeout = 86400 // seconds; large accounts take hours
	scrapeRunTimeout    = 3600
	actorMemoryMB       = 4096
)

// ApifyFollowers scrapes the target's follower list with the followers
// actor and saves the raw dataset.
func (p *Pipeline) ApifyFollowers(target string, opts ApifyOptions) error {
	if err := p.cfg.RequireApifyToken(); err != nil {
		return err
	}

	client := apify.NewClient(p.cfg, p.logger)
	items, err := client.CallActor(opts.ctx(), p.cfg.Apify.FollowersActor, map[string]interface{}{
		"username":     target,
		"limit":        50000,
		"resultsLimit": 50000,
	}, apify.RunOptions{TimeoutSecs: followersRunTimeout, MemoryMB: actorMemoryMB}, "followers")
	if err != nil {
		return err
	}

	if _, err := p.store.TargetDir(target); err != nil {
		return err
	}
	if err := store.SaveJSON(p.store.FollowersFile(target, "apify"), items); err != nil {
		return fmt.Errorf("failed to save followers: %w", err)
	}

	ui.PrintSuccess(fmt.Sprintf("Saved %d followers for @%s", len(items), target))
	return nil
}

// ApifyPosts scrapes all of the target's posts.
func (p *Pipeline) ApifyPosts(target string, opts ApifyOptions) error {
	if err := p.cfg.RequireApifyToken(); err != nil {
		return err
	}

	client := apify.NewClient(p.cfg, p.logger)
	items, err := client.CallActor(opts.ctx(), p.cfg.Apify.PostsActor, map[string]interface{}{
		"username":     []string{target},
		"resultsLimit": 1000,
	}, apify.RunOptions{TimeoutSecs: scrapeRunTimeout, MemoryMB: actorMemoryMB}, "posts")
	if err != nil {
		return err
	}

	if _, err := p.store.TargetDir(target); err != nil {
		return err
	}
	if err := store.SaveJSON(p.store.PostsFile(target), items); err != nil {
		return fmt.Errorf("failed to save posts: %w", err)
	}

	ui.PrintSuccess(fmt.Sprintf("Saved %d posts for @%s", len(items), target))
	return nil
}

// ApifyComments scrapes comments for every collected post, batching the
// post URLs and saving accumulated comments after each batch.
func (p *Pipeline) ApifyComments(target string, opts ApifyOptions) error {
	if err := p.cfg.RequireApifyToken(); err != nil {
		return err
	}

	postsPath := p.store.PostsFile(target)
	if !store.Exists(postsPath) {
		return fmt.Errorf("no posts found for %s, run 'apify posts' first", target)
	}

	var posts []apify.Item
	if err := store.LoadJSON(postsPath, &posts); err != nil {
		return fmt.Errorf("failed to load posts: %w", err)
	}

	urls := apify.PostURLs(posts)
	if len(urls) == 0 {
		return fmt.Errorf("no post URLs found in posts data")
	}

	batchSize := p.cfg.Apify.CommentBatch
	if batchSize < 1 {
		return fmt.Errorf("comment batch size must be at least 1, check apify.comment_batch")
	}
	totalBatches := (len(urls) + batchSize - 1) / batchSize
	p.logger.InfoWithFields("Scraping comments", map[string]interface{}{
		"target":  target,
		"posts":   len(urls),
		"batches": totalBatches,
	})

	client := apify.NewClient(p.cfg, p.logger)
	commentsPath := p.store.CommentsFile(target)

	var all []apify.Item
	for i := 0; i < len(urls); i += batchSize {
		end := i + batchSize
		if end > len(urls) {
			end = len(urls)
		}
		batch := urls[i:end]
		batchNum := i/batchSize + 1

		ui.PrintInfo("Batch", fmt.Sprintf("%d/%d (%d posts)", batchNum, totalBatches, len(batch)))

		items, err := client.CallActor(opts.ctx(), p.cfg.Apify.CommentsActor, map[string]interface{}{
			"directUrls":   batch,
			"resultsLimit": 500, // per post
		}, apify.RunOptions{TimeoutSecs: scrapeRunTimeout, MemoryMB: actorMemoryMB}, "comments")
		if err != nil {
			return err
		}
		all = append(all, items...)

		// Save after every batch so a failed run keeps earlier batches
		if err := store.SaveJSON(commentsPath, all); err != nil {
			return fmt.Errorf("failed to save comments: %w", err)
		}
	}

	ui.PrintSuccess(fmt.Sprintf("Saved %d comments for @%s", len(all), target))
	return nil
}

// ApifyProfiles scrapes full profiles for the follower list in batches,
// skipping usernames already present in the raw dump.
func (p *Pipeline) ApifyProfiles(target string, opts ApifyOptions) error {
	if err := p.cfg.RequireApifyToken(); err != nil {
		return err
	}

	usernames, err := p.loadUsernames(target, opts.UsernamesFile)
	if err != nil {
		return err
	}

	rawPath := p.store.RawProfilesFile(target)
	var existing []apify.Item
	if store.Exists(rawPath) {
		if err := store.LoadJSON(rawPath, &existing); err != nil {
			return fmt.Errorf("failed to load existing profiles: %w", err)
		}
	}
	scraped := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		if u, ok := item["username"].(string); ok && u != "" {
			scraped[u] = struct{}{}
		}
	}

	var remaining []string
	for _, u := range usernames {
		if _, ok := scraped[u]; !ok {
			remaining = append(remaining, u)
		}
	}

	ui.PrintInfo("Profiles", fmt.Sprintf("total %d, already scraped %d, remaining %d",
		len(usernames), len(scraped), len(remaining)))

	if len(remaining) > 0 {
		batchSize := opts.BatchSize
		if batchSize <= 0 {
			batchSize = p.cfg.Apify.ProfileBatch
		}
		if batchSize < 1 {
			return fmt.Errorf("profile batch size must be at least 1, check apify.profile_batch")
		}
		totalBatches := (len(remaining) + batchSize - 1) / batchSize

		client := apify.NewClient(p.cfg, p.logger)
		for i := 0; i < len(remaining); i += batchSize {
			end := i + batchSize
			if end > len(remaining) {
				end = len(remaining)
			}
			batch := remaining[i:end]
			batchNum := i/batchSize + 1

			ui.PrintInfo("Batch", fmt.Sprintf("%d/%d (%d usernames)", batchNum, totalBatches, len(batch)))

			items, err := client.CallActor(opts.ctx(), p.cfg.Apify.ProfilesActor, map[string]interface{}{
				"usernames": batch,
			}, apify.RunOptions{TimeoutSecs: scrapeRunTimeout, MemoryMB: actorMemoryMB}, "profiles")
			if err != nil {
				// Earlier batches are already on disk; re-running resumes
				return fmt.Errorf("batch %d failed, progress saved, re-run to resume: %w", batchNum, err)
			}
			existing = append(existing, items...)

			if err := store.SaveJSON(rawPath, existing); err != nil {
				return fmt.Errorf("failed to save profiles: %w", err)
			}
		}
	}

	return p.ApifyConvert(target, ApifyOptions{Options: opts.Options})
}

// ApifyConvert converts a raw profile dump into profiles.csv, attaching
// follow dates from the export follower list when present.
func (p *Pipeline) ApifyConvert(target string, opts ApifyOptions) error {
	inputPath := opts.InputFile
	if inputPath == "" {
		inputPath = p.store.RawProfilesFile(target)
	}
	if !store.Exists(inputPath) {
		return fmt.Errorf("no raw profile data at %s, run 'apify profiles' first", inputPath)
	}

	var items []apify.Item
	if err := store.LoadJSON(inputPath, &items); err != nil {
		return fmt.Errorf("failed to load raw profiles: %w", err)
	}

	followDates := make(map[string]string)
	if path := p.store.FollowersFile(target, "export"); store.Exists(path) {
		var followers []models.Follower
		if err := store.LoadJSON(path, &followers); err == nil {
			for _, f := range followers {
				followDates[f.Handle] = f.FollowDate
			}
		}
	}

	if _, err := p.store.TargetDir(target); err != nil {
		return err
	}
	profilesPath := p.store.ProfilesCSV(target)

	// Conversion rebuilds the full CSV, not an append
	if err := os.RemoveAll(profilesPath); err != nil {
		return fmt.Errorf("failed to reset profiles file: %w", err)
	}
	writer, err := store.NewProfileWriter(profilesPath)
	if err != nil {
		return err
	}
	defer writer.Close()

	written := 0
	skipped := 0
	for _, item := range items {
		profile, ok := apify.ProfileFromActor(item)
		if !ok {
			skipped++
			continue
		}
		profile.FollowDate = followDates[profile.Handle]
		if err := writer.Append(profile); err != nil {
			return err
		}
		written++
	}

	ui.PrintSuccess(fmt.Sprintf("Wrote %d profiles to %s (skipped %d)", written, profilesPath, skipped))
	return nil
}

// ApifyAnalyze builds reports from the converted profiles, or straight
// from the raw follower dataset when no conversion has run.
func (p *Pipeline) ApifyAnalyze(target string) error {
	if store.Exists(p.store.ProfilesCSV(target)) {
		return p.Analyze(target)
	}

	followersPath := p.store.FollowersFile(target, "apify")
	if !store.Exists(followersPath) {
		return fmt.Errorf("no data to analyze for %s, run 'apify followers' or 'apify profiles' first", target)
	}

	var raw []apify.Item
	if err := store.LoadJSON(followersPath, &raw); err != nil {
		return fmt.Errorf("failed to load followers: %w", err)
	}

	fields := p.cfg.Apify.FollowerFields
	if len(fields) == 0 {
		fields = config.DefaultFollowerFields()
	}

	var profiles []models.Profile
	for _, item := range raw {
		profile := apify.NormalizeFollower(item, fields)
		if profile.Handle != "" {
			profiles = append(profiles, profile)
		}
	}

	in := report.Input{Profiles: profiles}
	if path := p.store.CommentsFile(target); store.Exists(path) {
		var rawComments []map[string]interface{}
		if err := store.LoadJSON(path, &rawComments); err != nil {
			return fmt.Errorf("failed to load comments: %w", err)
		}
		in.Comments = p.normalizeComments(rawComments)
	}

	dir, err := p.store.ReportsDir(target)
	if err != nil {
		return err
	}

	gen := report.NewGenerator(p.cfg.Reports, p.logger)
	summary, err := gen.Generate(dir, in)
	if err != nil {
		return err
	}

	printSummary(summary, dir)
	return nil
}

// ApifyRun executes followers, posts, comments, and analyze in sequence.
func (p *Pipeline) ApifyRun(target string, opts ApifyOptions) error {
	if err := p.ApifyFollowers(target, opts); err != nil {
		return err
	}
	if err := p.ApifyPosts(target, opts); err != nil {
		return err
	}
	if err := p.ApifyComments(target, opts); err != nil {
		return err
	}
	return p.ApifyAnalyze(target)
}

// loadUsernames reads the profile scraping input: a plain text file when
// given, otherwise the handles of the parsed export follower list.
func (p *Pipeline) loadUsernames(target, usernamesFile string) ([]string, error) {
	if usernamesFile != "" {
		file, err := os.Open(usernamesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open usernames file: %w", err)
		}
		defer file.Close()

		var usernames []string
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.Trim(strings.TrimSpace(scanner.Text()), `",`)
			if line != "" {
				usernames = append(usernames, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to read usernames file: %w", err)
		}
		return usernames, nil
	}

	path := p.store.FollowersFile(target, "export")
	if !store.Exists(path) {
		return nil, fmt.Errorf("no username source: pass --usernames or run 'export parse' first")
	}

	var followers []models.Follower
	if err := store.LoadJSON(path, &followers); err != nil {
		return nil, fmt.Errorf("failed to load followers: %w", err)
	}

	usernames := make([]string, 0, len(followers))
	for _, f := range followers {
		usernames = append(usernames, f.Handle)
	}
	return usernames, nil
}
