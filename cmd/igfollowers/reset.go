package main

import (
	"github.com/spf13/cobra"
)

var resetTarget string

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the enrichment checkpoint for a target account",
	Long: `Delete the enrichment checkpoint so the next enrich pass refetches every
follower from scratch. Collected follower lists and generated reports are
left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.ResetCheckpoint(resetTarget)
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().StringVarP(&resetTarget, "target", "t", "", "target account to reset")
}
