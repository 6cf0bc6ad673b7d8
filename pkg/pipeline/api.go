package pipeline

import (
	stderrors "errors"
	"fmt"
	"sort"

	"igfollowers/pkg/errors"
	"igfollowers/pkg/instagram"
	"igfollowers/pkg/models"
	"igfollowers/pkg/ratelimit"
	"igfollowers/pkg/store"
	"igfollowers/pkg/ui"
)

// APICollect pages through the target's follower list via the web API,
// persisting the accumulated set after every page so an interrupted run
// resumes where it stopped.
func (p *Pipeline) APICollect(target string, opts Options) error {
	if err := p.cfg.RequireSessionCookies(); err != nil {
		return err
	}
	ctx := opts.ctx()

	client := instagram.NewClient(p.cfg, p.logger)
	user, err := client.ResolveUser(ctx, target)
	if err != nil {
		return err
	}

	ui.PrintInfo("Target", fmt.Sprintf("@%s (%d followers)", target, user.EdgeFollowedBy.Count))

	if _, err := p.store.TargetDir(target); err != nil {
		return err
	}
	followersPath := p.store.FollowersFile(target, "api")

	// Resume from a previous partial run
	collected := make(map[string]models.Follower)
	if store.Exists(followersPath) {
		var existing []models.Follower
		if err := store.LoadJSON(followersPath, &existing); err != nil {
			return fmt.Errorf("failed to load existing followers: %w", err)
		}
		for _, f := range existing {
			collected[f.Key()] = f
		}
		p.logger.InfoWithFields("Resuming collection", map[string]interface{}{
			"target":    target,
			"collected": len(collected),
		})
	}

	delay := p.cfg.Pacing.PageDelay
	pause := p.cfg.Pacing.PagePause
	if opts.Fast {
		delay = p.cfg.Pacing.FastPageDelay
		pause = p.cfg.Pacing.FastPagePause
	}
	pacer := ratelimit.NewPacer(delay, pause, p.cfg.Pacing.PagePauseEvery)

	save := func() error {
		return store.SaveJSON(followersPath, sortedFollowers(collected))
	}

	maxID := ""
	pages := 0
	for {
		page, err := client.FetchFollowerPage(ctx, user.ID, maxID)
		if err != nil {
			// Persist before surfacing so re-running resumes
			if saveErr := save(); saveErr != nil {
				return saveErr
			}
			var typed *errors.Error
			if stderrors.As(err, &typed) && typed.Type == errors.ErrorTypeRateLimit {
				return fmt.Errorf("rate limited after %d followers, progress saved, re-run later to resume: %w",
					len(collected), err)
			}
			return err
		}

		for _, u := range page.Users {
			f := u.ToFollower()
			collected[f.Key()] = f
		}
		pages++

		if err := save(); err != nil {
			return err
		}

		p.logger.InfoWithFields("Follower page collected", map[string]interface{}{
			"target":    target,
			"page":      pages,
			"collected": len(collected),
		})

		if page.NextMaxID == "" {
			break
		}
		maxID = page.NextMaxID

		if err := pacer.Wait(ctx); err != nil {
			return err
		}
	}

	ui.PrintSuccess(fmt.Sprintf("Collected %d followers for @%s", len(collected), target))
	return nil
}

// APIEnrich fetches full profiles for the collected follower list.
func (p *Pipeline) APIEnrich(target string, opts Options) error {
	if err := p.cfg.RequireSessionCookies(); err != nil {
		return err
	}

	followers, err := p.loadFollowers(target, "api")
	if err != nil {
		return err
	}

	client := instagram.NewClient(p.cfg, p.logger)
	_, err = p.enrichFollowers(client, target, followers, opts)
	return err
}

// APIRun executes collect, enrich, and analyze in sequence.
func (p *Pipeline) APIRun(target string, opts Options) error {
	if err := p.APICollect(target, opts); err != nil {
		return err
	}
	if err := p.APIEnrich(target, opts); err != nil {
		return err
	}
	return p.Analyze(target)
}

// sortedFollowers flattens the collected set ordered by handle so saved
// files are stable across runs.
func sortedFollowers(collected map[string]models.Follower) []models.Follower {
	out := make([]models.Follower, 0, len(collected))
	for _, f := range collected {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}
