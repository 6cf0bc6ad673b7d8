// Package pipeline wires the collection strategies to storage, pacing,
// enrichment, and reporting. Each strategy is an independent pipeline
// with the same three-stage shape: Collect, Enrich, Analyze.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"igfollowers/pkg/apify"
	"igfollowers/pkg/checkpoint"
	"igfollowers/pkg/config"
	"igfollowers/pkg/enrich"
	"igfollowers/pkg/logger"
	"igfollowers/pkg/models"
	"igfollowers/pkg/report"
	"igfollowers/pkg/store"
	"igfollowers/pkg/ui"
)

// Options carries the per-invocation knobs shared by all strategies.
type Options struct {
	Context context.Context
	Fast    bool
	Quiet   bool
}

func (o Options) ctx() context.Context {
	if o.Context == nil {
		return context.Background()
	}
	return o.Context
}

// Pipeline holds the shared plumbing every strategy uses.
type Pipeline struct {
	cfg    *config.Config
	store  *store.Store
	logger logger.Logger
}

// New creates a pipeline rooted at the configured data directory.
func New(cfg *config.Config, log logger.Logger) *Pipeline {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Pipeline{
		cfg:    cfg,
		store:  store.New(cfg.DataDir),
		logger: log,
	}
}

// Store exposes the underlying data store.
func (p *Pipeline) Store() *store.Store {
	return p.store
}

// Analyze rebuilds every report the persisted data supports: profiles.csv
// always, the following list and comments when the collecting strategy
// produced them.
func (p *Pipeline) Analyze(target string) error {
	profilesPath := p.store.ProfilesCSV(target)
	if !store.Exists(profilesPath) {
		return fmt.Errorf("no enriched profiles found for %s, run the enrich stage first", target)
	}

	profiles, err := store.ReadProfiles(profilesPath)
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	in := report.Input{Profiles: profiles}

	if path := p.store.FollowingFile(target); store.Exists(path) {
		if err := store.LoadJSON(path, &in.Following); err != nil {
			return fmt.Errorf("failed to load following list: %w", err)
		}
	}
	if path := p.store.CommentsFile(target); store.Exists(path) {
		var raw []map[string]interface{}
		if err := store.LoadJSON(path, &raw); err != nil {
			return fmt.Errorf("failed to load comments: %w", err)
		}
		in.Comments = p.normalizeComments(raw)
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

// ResetCheckpoint deletes the enrichment checkpoint so the next enrich
// pass refetches every follower.
func (p *Pipeline) ResetCheckpoint(target string) error {
	if target == "" {
		return fmt.Errorf("target account is required, pass --target")
	}
	if err := checkpoint.Remove(p.store.CheckpointLog(target)); err != nil {
		return err
	}
	ui.PrintSuccess(fmt.Sprintf("Enrichment checkpoint cleared for @%s", target))
	return nil
}

// loadFollowers reads a strategy's collected follower list.
func (p *Pipeline) loadFollowers(target, strategy string) ([]models.Follower, error) {
	path := p.store.FollowersFile(target, strategy)
	if !store.Exists(path) {
		return nil, fmt.Errorf("no collected followers found for %s, run the collect stage first", target)
	}

	var followers []models.Follower
	if err := store.LoadJSON(path, &followers); err != nil {
		return nil, fmt.Errorf("failed to load followers: %w", err)
	}
	return followers, nil
}

// enrichFollowers runs the shared enrichment loop with the given fetcher.
func (p *Pipeline) enrichFollowers(fetcher enrich.ProfileFetcher, target string, followers []models.Follower, opts Options) (*enrich.Result, error) {
	enricher := enrich.New(fetcher, p.store, p.cfg, p.logger)
	return enricher.Run(opts.ctx(), target, followers, enrich.Options{
		Fast:  opts.Fast,
		Quiet: opts.Quiet,
	})
}

// normalizeComments maps raw comment actor items through the configured
// field candidates.
func (p *Pipeline) normalizeComments(raw []map[string]interface{}) []models.Comment {
	fields := p.cfg.Apify.CommenterFields
	if len(fields) == 0 {
		fields = config.DefaultCommenterFields()
	}

	var comments []models.Comment
	for _, item := range raw {
		c := apify.NormalizeComment(apify.Item(item), fields)
		if c.Handle != "" {
			comments = append(comments, c)
		}
	}
	return comments
}

func printSummary(s *report.Summary, dir string) {
	ui.PrintHighlight("=== Summary ===")
	ui.PrintInfo("Total followers", fmt.Sprintf("%d", s.Total))
	ui.PrintInfo("Verified accounts", fmt.Sprintf("%d", s.Verified))
	ui.PrintInfo("Business/Creator accounts", fmt.Sprintf("%d", s.Business))
	ui.PrintInfo("Private accounts", fmt.Sprintf("%d", s.Private))
	ui.PrintInfo("Median follower count", fmt.Sprintf("%.0f", s.MedianFollowers))
	ui.PrintInfo("Mean follower count", fmt.Sprintf("%.0f", s.MeanFollowers))
	fmt.Fprintf(os.Stdout, "\nReports saved to %s/\n", dir)
}
