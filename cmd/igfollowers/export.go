package main

import (
	"context"

	"github.com/spf13/cobra"

	"igfollowers/pkg/pipeline"
)

var (
	exportTarget string
	exportPath   string
	exportSince  string
	exportFast   bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Collect followers from the official Instagram data export",
	Long: `Parse the follower list out of an official Instagram data export (request
it under Settings > Your information and permissions > Download your
information), enrich each follower via the web API, and generate reports.

The export also carries follow timestamps and the following list, which
unlock the follower growth and mutual-follow reports.`,
}

var exportParseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse follower and following lists from the export archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.ExportParse(exportTarget, exportOptions(cmd.Context()))
	},
}

var exportEnrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Fetch full profile data for each parsed follower",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.ExportEnrich(exportTarget, exportOptions(cmd.Context()))
	},
}

var exportAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Generate analysis reports from enriched profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.Analyze(exportTarget)
	},
}

var exportRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Parse, enrich, and analyze in one pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := newPipeline()
		if err != nil {
			return err
		}
		return p.ExportRun(exportTarget, exportOptions(cmd.Context()))
	},
}

func exportOptions(ctx context.Context) pipeline.ExportOptions {
	return pipeline.ExportOptions{
		Options: pipeline.Options{
			Context: ctx,
			Fast:    exportFast,
			Quiet:   quiet,
		},
		ExportPath: exportPath,
		Since:      exportSince,
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.PersistentFlags().StringVarP(&exportTarget, "target", "t", "", "target account the export belongs to")
	exportCmd.PersistentFlags().StringVar(&exportPath, "export-path", "", "path to the export directory or ZIP file")
	exportCmd.PersistentFlags().StringVar(&exportSince, "since", "", "only keep follows on or after this date (YYYY-MM-DD)")
	exportCmd.PersistentFlags().BoolVar(&exportFast, "fast", false, "faster pacing (higher rate-limit risk)")
	exportCmd.MarkPersistentFlagRequired("target")

	exportCmd.AddCommand(exportParseCmd)
	exportCmd.AddCommand(exportEnrichCmd)
	exportCmd.AddCommand(exportAnalyzeCmd)
	exportCmd.AddCommand(exportRunCmd)
}
