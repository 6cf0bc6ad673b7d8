package pipeline

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"igfollowers/pkg/errors"
	"igfollowers/pkg/graph"
	"igfollowers/pkg/models"
	"igfollowers/pkg/ratelimit"
	"igfollowers/pkg/store"
	"igfollowers/pkg/ui"
)

// SessionLogin authenticates interactively and persists the session
// cookies for later stages. The password comes from IG_PASSWORD when set,
// otherwise from a hidden prompt.
func (p *Pipeline) SessionLogin(username string, opts Options) error {
	if username == "" {
		return fmt.Errorf("username is required, pass --username")
	}

	password := os.Getenv("IG_PASSWORD")
	if password == "" {
		var err error
		password, err = ui.PromptPassword(fmt.Sprintf("Password for @%s", username))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	prompt := func() (string, error) {
		return ui.PromptLine("Verification code")
	}

	sess, err := graph.Login(opts.ctx(), username, password, prompt, p.logger)
	if err != nil {
		return err
	}

	path := p.store.SessionFile(username)
	if err := store.SaveJSON(path, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	ui.PrintSuccess(fmt.Sprintf("Login successful. Session saved to %s", path))
	return nil
}

// SessionFollowers walks the target's follower edge with a saved session,
// persisting progress every page.
func (p *Pipeline) SessionFollowers(target, username string, opts Options) error {
	sess, err := p.loadSession(username)
	if err != nil {
		return err
	}
	ctx := opts.ctx()

	client := graph.NewClient(sess, p.cfg, p.logger)
	user, err := client.ResolveUser(ctx, target)
	if err != nil {
		return err
	}

	ui.PrintInfo("Target", fmt.Sprintf("@%s (%d followers)", target, user.EdgeFollowedBy.Count))

	if _, err := p.store.TargetDir(target); err != nil {
		return err
	}
	followersPath := p.store.FollowersFile(target, "session")

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

	after := ""
	for {
		page, err := client.FetchFollowerEdge(ctx, user.ID, after)
		if err != nil {
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

		for _, f := range page.Followers {
			collected[f.Key()] = f
		}

		if err := save(); err != nil {
			return err
		}

		p.logger.InfoWithFields("Follower edge page collected", map[string]interface{}{
			"target":    target,
			"collected": len(collected),
		})

		if !page.HasNextPage || page.EndCursor == "" {
			break
		}
		after = page.EndCursor

		if err := pacer.Wait(ctx); err != nil {
			return err
		}
	}

	ui.PrintSuccess(fmt.Sprintf("Collected %d followers for @%s", len(collected), target))
	return nil
}

// SessionEnrich fetches full profiles using the saved session.
func (p *Pipeline) SessionEnrich(target, username string, opts Options) error {
	sess, err := p.loadSession(username)
	if err != nil {
		return err
	}

	followers, err := p.loadFollowers(target, "session")
	if err != nil {
		return err
	}

	client := graph.NewClient(sess, p.cfg, p.logger)
	_, err = p.enrichFollowers(client, target, followers, opts)
	return err
}

// SessionRun executes followers, enrich, and analyze in sequence.
func (p *Pipeline) SessionRun(target, username string, opts Options) error {
	if err := p.SessionFollowers(target, username, opts); err != nil {
		return err
	}
	if err := p.SessionEnrich(target, username, opts); err != nil {
		return err
	}
	return p.Analyze(target)
}

// loadSession loads a saved session. When username is empty and exactly
// one session file exists, that one is used.
func (p *Pipeline) loadSession(username string) (*graph.Session, error) {
	if username == "" {
		matches, _ := filepath.Glob(p.store.SessionFile("*"))
		switch len(matches) {
		case 0:
			return nil, fmt.Errorf("no saved session found, run 'session login' first")
		case 1:
			base := filepath.Base(matches[0])
			username = strings.TrimSuffix(strings.TrimPrefix(base, "session-"), ".json")
		default:
			return nil, fmt.Errorf("multiple saved sessions found, pass --username")
		}
	}

	path := p.store.SessionFile(username)
	if !store.Exists(path) {
		return nil, fmt.Errorf("no saved session for @%s, run 'session login' first", username)
	}

	var sess graph.Session
	if err := store.LoadJSON(path, &sess); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !sess.Valid() {
		return nil, fmt.Errorf("saved session for @%s is incomplete, run 'session login' again", username)
	}

	return &sess, nil
}
