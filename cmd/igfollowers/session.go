package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"igfollowers/pkg/pipeline"
)

var (
	sessionTarget   string
	sessionUsername string
	sessionFast     bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Collect followers with an interactive login session",
	Long: `Log in to Instagram interactively (password prompt, two-factor
supported), persist the session cookies to disk, and walk the target's
follower list over the GraphQL follower edge.

The login step runs once; later stages reuse the saved session. The
password can also be supplied via the IG_PASSWORD environment variable.`,
}

var sessionLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the session for reuse",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.SessionLogin(sessionUsername, sessionOptions(cmd.Context()))
	},
}

var sessionFollowersCmd = &cobra.Command{
	Use:     "followers",
	Short:   "Collect the target's follower list",
	PreRunE: requireSessionTarget,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.SessionFollowers(sessionTarget, sessionUsername, sessionOptions(cmd.Context()))
	},
}

var sessionEnrichCmd = &cobra.Command{
	Use:     "enrich",
	Short:   "Fetch full profile data for each collected follower",
	PreRunE: requireSessionTarget,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.SessionEnrich(sessionTarget, sessionUsername, sessionOptions(cmd.Context()))
	},
}

var sessionAnalyzeCmd = &cobra.Command{
	Use:     "analyze",
	Short:   "Generate analysis reports from enriched profiles",
	PreRunE: requireSessionTarget,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.Analyze(sessionTarget)
	},
}

var sessionRunCmd = &cobra.Command{
	Use:     "run",
	Short:   "Collect, enrich, and analyze in one pass",
	PreRunE: requireSessionTarget,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.SessionRun(sessionTarget, sessionUsername, sessionOptions(cmd.Context()))
	},
}

func requireSessionTarget(cmd *cobra.Command, args []string) error {
	if sessionTarget == "" {
		return fmt.Errorf("--target is required")
	}
	return nil
}

func sessionOptions(ctx context.Context) pipeline.Options {
	return pipeline.Options{
		Context: ctx,
		Fast:    sessionFast,
		Quiet:   quiet,
	}
}

func init() {
	rootCmd.AddCommand(sessionCmd)

	sessionCmd.PersistentFlags().StringVarP(&sessionTarget, "target", "t", "", "target account to collect")
	sessionCmd.PersistentFlags().StringVarP(&sessionUsername, "username", "u", "", "your Instagram username (the login account)")
	sessionCmd.PersistentFlags().BoolVar(&sessionFast, "fast", false, "faster pacing (higher rate-limit risk)")

	sessionCmd.AddCommand(sessionLoginCmd)
	sessionCmd.AddCommand(sessionFollowersCmd)
	sessionCmd.AddCommand(sessionEnrichCmd)
	sessionCmd.AddCommand(sessionAnalyzeCmd)
	sessionCmd.AddCommand(sessionRunCmd)
}
