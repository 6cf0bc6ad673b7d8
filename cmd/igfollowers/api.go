package main

import (
	"context"

	"github.com/spf13/cobra"

	"igfollowers/pkg/pipeline"
)

var (
	apiTarget string
	apiFast   bool
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Collect followers through the Instagram web API",
	Long: `Page through the target's follower list using Instagram's internal web
API, authenticated with browser session cookies (IG_SESSION_ID,
IG_CSRF_TOKEN, IG_DS_USER_ID, or a stored account).

Progress is saved after every page and every enriched profile, so
rate-limited or interrupted runs resume where they stopped.`,
}

var apiFollowersCmd = &cobra.Command{
	Use:   "followers",
	Short: "Collect the target's follower list",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.APICollect(apiTarget, apiOptions(cmd.Context()))
	},
}

var apiEnrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fetch full profile data for each collected follower",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.APIEnrich(apiTarget, apiOptions(cmd.Context()))
	},
}

var apiAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Generate analysis reports from enriched profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.Analyze(apiTarget)
	},
}

var apiRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Collect, enrich, and analyze in one pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.APIRun(apiTarget, apiOptions(cmd.Context()))
	},
}

func apiOptions(ctx context.Context) pipeline.Options {
	return pipeline.Options{
		Context: ctx,
		Fast:    apiFast,
		Quiet:   quiet,
	}
}

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.PersistentFlags().StringVarP(&apiTarget, "target", "t", "", "target account to collect")
	apiCmd.PersistentFlags().BoolVar(&apiFast, "fast", false, "faster pacing (higher rate-limit risk)")
	apiCmd.MarkPersistentFlagRequired("target")

	apiCmd.AddCommand(apiFollowersCmd)
	apiCmd.AddCommand(apiEnrichCmd)
	apiCmd.AddCommand(apiAnalyzeCmd)
	apiCmd.AddCommand(apiRunCmd)
}
