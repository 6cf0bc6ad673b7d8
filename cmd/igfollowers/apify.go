package main

import (
	"context"

	"github.com/spf13/cobra"

	"igfollowers/pkg/pipeline"
)

var (
	apifyTarget    string
	apifyUsernames string
	apifyBatchSize int
	apifyInput     string
)

var apifyCmd = &cobra.Command{
	Use:   "apify",
	Short: "Collect followers and engagement data via Apify cloud actors",
	Long: `Run managed Apify actors to scrape the target's followers, posts,
comments, and full profiles. Requires an Apify account and APIFY_TOKEN
(get one at https://console.apify.com/account/integrations).

Actor runs are polled to completion and dataset results are saved
locally; batched steps save after every batch so failed runs resume.`,
}

var apifyFollowersCmd = &cobra.Command{
	Use:   "followers",
	Short: "Scrape the target's follower list",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.ApifyFollowers(apifyTarget, apifyOptions(cmd.Context()))
	},
}

var apifyPostsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Scrape the target's posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.ApifyPosts(apifyTarget, apifyOptions(cmd.Context()))
	},
}

var apifyCommentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Scrape comments on the target's posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.ApifyComments(apifyTarget, apifyOptions(cmd.Context()))
	},
}

var apifyProfilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Scrape full profiles for the follower list in batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.ApifyProfiles(apifyTarget, apifyOptions(cmd.Context()))
	},
}

var apifyConvertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a raw profile dump to the profiles CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.ApifyConvert(apifyTarget, apifyOptions(cmd.Context()))
	},
}

var apifyAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Generate analysis reports from scraped data",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.ApifyAnalyze(apifyTarget)
	},
}

var apifyRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape followers, posts, and comments, then analyze",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.ApifyRun(apifyTarget, apifyOptions(cmd.Context()))
	},
}

func apifyOptions(ctx context.Context) pipeline.ApifyOptions {
	return pipeline.ApifyOptions{
		Options: pipeline.Options{
			Context: ctx,
			Quiet:   quiet,
		},
		UsernamesFile: apifyUsernames,
		BatchSize:     apifyBatchSize,
		InputFile:     apifyInput,
	}
}

func init() {
	rootCmd.AddCommand(apifyCmd)

	apifyCmd.PersistentFlags().StringVarP(&apifyTarget, "target", "t", "", "target account to scrape")
	apifyCmd.MarkPersistentFlagRequired("target")

	apifyProfilesCmd.Flags().StringVar(&apifyUsernames, "usernames", "", "text file with one username per line (default: export followers)")
	apifyProfilesCmd.Flags().IntVar(&apifyBatchSize, "batch-size", 0, "usernames per actor run (default from config)")
	apifyConvertCmd.Flags().StringVar(&apifyInput, "input", "", "raw profile JSON to convert (default: the scraped dump)")

	apifyCmd.AddCommand(apifyFollowersCmd)
	apifyCmd.AddCommand(apifyPostsCmd)
	apifyCmd.AddCommand(apifyCommentsCmd)
	apifyCmd.AddCommand(apifyProfilesCmd)
	apifyCmd.AddCommand(apifyConvertCmd)
	apifyCmd.AddCommand(apifyAnalyzeCmd)
	apifyCmd.AddCommand(apifyRunCmd)
}
