package tracking

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/punchclock/internal/domain"
)

const sweepConcurrency = 8

// SweepResult counts what one sweep changed.
type SweepResult struct {
	Checked     int
	IdleOpened  int
	BreaksEnded int
}

// Sweep runs the heartbeat checks for every employee with an open
// session: breaks the policy considers over are ended, and idle periods
// are opened for employees inactive past their threshold. Only the grace
// policy has heartbeat checks; under any other policy Sweep does nothing.
func (s *Service) Sweep(ctx context.Context) (SweepResult, error) {
	if !s.HeartbeatChecks() {
		return SweepResult{}, nil
	}
	ids, err := s.repo.ListActive(ctx)
	if err != nil {
		return SweepResult{}, err
	}

	type outcome struct {
		idle, ended bool
		brk         *domain.Break
		sessionID   string
		at          time.Time
	}
	results := make([]outcome, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sweepConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			var out outcome
			_, _, err := s.mutate(gctx, id, false, func(t *domain.Tracker, now time.Time) error {
				out = outcome{}
				session, ok := t.Active()
				if !ok {
					return errNoChange
				}
				if session.ActiveBreak() != nil {
					b, ended, err := t.AutoEndBreak(now, s.rules)
					if err != nil {
						return err
					}
					out.ended, out.brk = ended, b
					out.sessionID, out.at = session.ID, now
				}
				_, opened, err := t.DetectIdle(now, s.rules, s.thresholdFor(t))
				if err != nil {
					return err
				}
				out.idle = opened
				if !out.idle && !out.ended {
					return errNoChange
				}
				return nil
			})
			// A tracker may close or vanish between listing and locking.
			if err != nil && !errors.Is(err, domain.ErrTrackerNotFound) {
				s.log.Warn("sweep failed", "employee", id, "error", err)
				return nil
			}
			if out.ended {
				s.breakEnded(gctx, id, out.sessionID, out.brk, out.at)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SweepResult{}, err
	}

	res := SweepResult{Checked: len(ids)}
	for _, r := range results {
		if r.idle {
			res.IdleOpened++
		}
		if r.ended {
			res.BreaksEnded++
		}
	}
	if res.IdleOpened > 0 || res.BreaksEnded > 0 {
		s.log.Info("sweep", "checked", res.Checked, "idle_opened", res.IdleOpened, "breaks_ended", res.BreaksEnded)
	}
	return res, nil
}

// HeartbeatChecks reports whether the configured policy auto-ends breaks
// and auto-detects idle time.
func (s *Service) HeartbeatChecks() bool {
	return s.rules.Policy != nil && s.rules.Policy.Name() == domain.PolicyGrace
}

// RunSweeper sweeps every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.log.Error("sweep failed", "error", err)
			}
		}
	}
}
