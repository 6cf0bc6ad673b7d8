package pipeline

import (
	"fmt"

	"igfollowers/pkg/export"
	"igfollowers/pkg/instagram"
	"igfollowers/pkg/store"
	"igfollowers/pkg/ui"
)

// ExportOptions tunes the data-export strategy.
type ExportOptions struct {
	Options
	ExportPath string
	Since      string // YYYY-MM-DD, keep only follows on or after
}

// ExportParse reads the export archive and persists the follower and
// following lists.
func (p *Pipeline) ExportParse(target string, opts ExportOptions) error {
	if opts.ExportPath == "" {
		return fmt.Errorf("export path is required, pass --export-path")
	}

	archive, err := export.Open(opts.ExportPath)
	if err != nil {
		return err
	}

	followers, err := archive.Followers()
	if err != nil {
		return err
	}
	total := len(followers)
	followers = export.FilterSince(followers, opts.Since)

	if _, err := p.store.TargetDir(target); err != nil {
		return err
	}
	if err := store.SaveJSON(p.store.FollowersFile(target, "export"), followers); err != nil {
		return fmt.Errorf("failed to save followers: %w", err)
	}

	p.logger.InfoWithFields("Export parsed", map[string]interface{}{
		"target":    target,
		"followers": len(followers),
		"filtered":  total - len(followers),
	})
	ui.PrintSuccess(fmt.Sprintf("Parsed %d followers for @%s", len(followers), target))

	following, err := archive.Following()
	if err != nil {
		return err
	}
	if following != nil {
		if err := store.SaveJSON(p.store.FollowingFile(target), following); err != nil {
			return fmt.Errorf("failed to save following list: %w", err)
		}
		ui.PrintInfo("Following list", fmt.Sprintf("%d accounts", len(following)))
	} else {
		ui.PrintWarning("No following.json in export, mutual-follow reports will be skipped")
	}

	return nil
}

// ExportEnrich fetches full profiles for the parsed follower list using
// the web API with session cookies.
func (p *Pipeline) ExportEnrich(target string, opts ExportOptions) error {
	if err := p.cfg.RequireSessionCookies(); err != nil {
		return err
	}

	followers, err := p.loadFollowers(target, "export")
	if err != nil {
		return err
	}

	client := instagram.NewClient(p.cfg, p.logger)
	_, err = p.enrichFollowers(client, target, followers, opts.Options)
	return err
}

// ExportRun executes parse, enrich, and analyze in sequence.
func (p *Pipeline) ExportRun(target string, opts ExportOptions) error {
	if err := p.ExportParse(target, opts); err != nil {
		return err
	}
	if err := p.ExportEnrich(target, opts); err != nil {
		return err
	}
	return p.Analyze(target)
}
