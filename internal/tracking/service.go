package tracking

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"

	"github.com/emiliopalmerini/punchclock/internal/domain"
	"github.com/emiliopalmerini/punchclock/internal/ports"
)

const maxSaveRetries = 5

// errNoChange lets a mutation finish without writing the tracker.
var errNoChange = errors.New("no change")

// Options configures a Service.
type Options struct {
	Repo    ports.TrackerRepository
	Metrics ports.MetricsRecorder
	Clock   domain.Clock
	Rules   domain.Rules
	// IdleThreshold applies when an employee has no threshold of their own.
	IdleThreshold time.Duration
	Logger        hclog.Logger
	// BackOff paces retries after a version conflict.
	BackOff func() backoff.BackOff
}

// Service applies tracker operations as load, apply and save. Writers for
// the same employee are serialised in process, and a version conflict
// with another process is retried against a fresh copy.
type Service struct {
	repo          ports.TrackerRepository
	metrics       ports.MetricsRecorder
	clock         domain.Clock
	rules         domain.Rules
	idleThreshold time.Duration
	log           hclog.Logger
	newBackOff    func() backoff.BackOff
	locks         *keyedMutex
}

func NewService(o Options) *Service {
	s := &Service{
		repo:          o.Repo,
		metrics:       o.Metrics,
		clock:         o.Clock,
		rules:         o.Rules,
		idleThreshold: o.IdleThreshold,
		log:           o.Logger,
		newBackOff:    o.BackOff,
		locks:         newKeyedMutex(),
	}
	if s.clock == nil {
		s.clock = domain.SystemClock{}
	}
	if s.idleThreshold <= 0 {
		s.idleThreshold = domain.DefaultIdleThresholdSeconds * time.Second
	}
	if s.log == nil {
		s.log = hclog.NewNullLogger()
	}
	s.log = s.log.Named("tracking")
	if s.newBackOff == nil {
		s.newBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 10 * time.Millisecond
			b.MaxInterval = 250 * time.Millisecond
			b.MaxElapsedTime = 2 * time.Second
			return b
		}
	}
	return s
}

// Rules returns the rules mutations are applied with.
func (s *Service) Rules() domain.Rules {
	return s.rules
}

// Today is the current calendar day in the service's location.
func (s *Service) Today() string {
	loc := s.rules.Location
	if loc == nil {
		loc = time.UTC
	}
	return domain.DateKey(s.clock.Now(), loc)
}

// mutate loads the employee's tracker, applies fn and saves the result.
// When create is set a missing tracker is started fresh, otherwise it is
// reported as not found.
func (s *Service) mutate(ctx context.Context, employeeID string, create bool, fn func(t *domain.Tracker, now time.Time) error) (*domain.Tracker, time.Time, error) {
	unlock := s.locks.Lock(employeeID)
	defer unlock()

	var (
		out     *domain.Tracker
		outNow  time.Time
		attempt int
	)
	op := func() error {
		attempt++
		t, err := s.repo.Get(ctx, employeeID)
		if err != nil {
			return backoff.Permanent(err)
		}
		now := s.clock.Now()
		if t == nil {
			if !create {
				return backoff.Permanent(domain.ErrTrackerNotFound)
			}
			t = domain.NewTracker(employeeID, now)
		}

		if err := fn(t, now); err != nil {
			if errors.Is(err, errNoChange) {
				out, outNow = t, now
				return nil
			}
			return backoff.Permanent(err)
		}

		if err := s.repo.Save(ctx, t); err != nil {
			if errors.Is(err, ports.ErrVersionConflict) {
				s.log.Debug("version conflict, retrying", "employee", employeeID, "attempt", attempt)
				return err
			}
			return backoff.Permanent(err)
		}
		out, outNow = t, now
		return nil
	}

	b := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), maxSaveRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, time.Time{}, err
	}
	return out, outNow, nil
}

func (s *Service) load(ctx context.Context, employeeID string) (*domain.Tracker, error) {
	return s.repo.Get(ctx, employeeID)
}

func (s *Service) record(ctx context.Context, e *ports.TrackerEvent) {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.RecordEvent(ctx, e); err != nil {
		s.log.Warn("failed to record metrics", "event", e.Kind, "error", err)
	}
}
