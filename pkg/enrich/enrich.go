// Package enrich fetches full profile records for collected followers,
// one at a time, with checkpointed resume and rate-limit aware pacing.
package enrich

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"igfollowers/pkg/checkpoint"
	"igfollowers/pkg/config"
	"igfollowers/pkg/errors"
	"igfollowers/pkg/logger"
	"igfollowers/pkg/models"
	"igfollowers/pkg/ratelimit"
	"igfollowers/pkg/store"
)

// ProfileFetcher fetches the enriched profile for one handle. The api,
// session, and export strategies all satisfy it with the web API client.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, handle string) (models.Profile, error)
}

// Options tunes one enrichment pass.
type Options struct {
	Fast  bool
	Quiet bool
}

// Result summarizes an enrichment pass. RateLimited means the pass
// stopped early with all progress persisted; re-running resumes it.
type Result struct {
	Total       int
	Enriched    int
	Skipped     int
	Errors      int
	RateLimited bool
}

// Enricher drives the per-follower enrichment loop.
type Enricher struct {
	fetcher ProfileFetcher
	store   *store.Store
	cfg     *config.Config
	logger  logger.Logger
}

// New creates an enricher backed by the given profile fetcher.
func New(fetcher ProfileFetcher, st *store.Store, cfg *config.Config, log logger.Logger) *Enricher {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Enricher{fetcher: fetcher, store: st, cfg: cfg, logger: log}
}

// Run enriches every follower not yet in the checkpoint log. Each
// successful profile appends one CSV row and one checkpoint entry before
// the next fetch starts, so interruption at any point loses nothing.
func (e *Enricher) Run(ctx context.Context, target string, followers []models.Follower, opts Options) (*Result, error) {
	if _, err := e.store.TargetDir(target); err != nil {
		return nil, err
	}

	chk, err := checkpoint.Open(e.store.CheckpointLog(target))
	if err != nil {
		return nil, err
	}
	defer chk.Close()

	writer, err := store.NewProfileWriter(e.store.ProfilesCSV(target))
	if err != nil {
		return nil, err
	}
	defer writer.Close()

	result := &Result{Total: len(followers)}

	var remaining []models.Follower
	for _, f := range followers {
		if chk.Done(f.Key()) {
			result.Skipped++
			continue
		}
		remaining = append(remaining, f)
	}

	e.logger.InfoWithFields("Enrichment starting", map[string]interface{}{
		"target":    target,
		"total":     result.Total,
		"remaining": len(remaining),
		"skipped":   result.Skipped,
	})

	if len(remaining) == 0 {
		return result, nil
	}

	delay := e.cfg.Pacing.ProfileDelay
	pause := e.cfg.Pacing.BatchPause
	pauseEvery := e.cfg.Pacing.BatchPauseEvery
	if opts.Fast {
		delay = e.cfg.Pacing.FastProfileDelay
		pause = e.cfg.Pacing.FastBatchPause
		pauseEvery = e.cfg.Pacing.FastBatchPauseEvery
	}
	pacer := ratelimit.NewPacer(delay, pause, pauseEvery)

	bar := e.newProgressBar(len(remaining), opts)

	for _, follower := range remaining {
		profile, err := e.fetcher.FetchProfile(ctx, follower.Handle)
		if err != nil {
			var typed *errors.Error
			if stderrors.As(err, &typed) {
				switch typed.Type {
				case errors.ErrorTypeRateLimit:
					// Stop early; everything done so far is on disk
					result.RateLimited = true
					return result, fmt.Errorf("rate limited after %d profiles, wait ~15 minutes and re-run to resume: %w",
						result.Enriched, err)
				case errors.ErrorTypeAuth:
					return result, err
				}
			}
			if ctx.Err() != nil {
				return result, ctx.Err()
			}

			result.Errors++
			e.logger.WarnWithFields("profile fetch failed, skipping", map[string]interface{}{
				"handle": follower.Handle,
				"error":  err.Error(),
			})
			continue
		}

		// A vanished account decodes to an empty profile; keep the
		// handle so the row is still attributable.
		if profile.Handle == "" {
			result.Errors++
			e.logger.DebugWithFields("profile unavailable", map[string]interface{}{
				"handle": follower.Handle,
			})
			continue
		}

		// Collection-time fields the profile lookup cannot know
		if follower.FollowDate != "" {
			profile.FollowDate = follower.FollowDate
		}

		if err := writer.Append(profile); err != nil {
			return result, fmt.Errorf("failed to persist profile for @%s: %w", follower.Handle, err)
		}
		if err := chk.Record(follower.Key()); err != nil {
			return result, err
		}

		result.Enriched++
		if bar != nil {
			bar.Add(1)
		}
		if result.Enriched%10 == 0 {
			logger.LogEnrichProgress(target, result.Enriched, len(remaining), result.Errors)
		}

		if err := pacer.Wait(ctx); err != nil {
			return result, err
		}
	}

	if bar != nil {
		bar.Finish()
	}
	e.logger.InfoWithFields("Enrichment finished", map[string]interface{}{
		"target":   target,
		"enriched": result.Enriched,
		"errors":   result.Errors,
	})

	return result, nil
}

func (e *Enricher) newProgressBar(total int, opts Options) *progressbar.ProgressBar {
	if opts.Quiet {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("enriching"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("profiles"),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)
}
