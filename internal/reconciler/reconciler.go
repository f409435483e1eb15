package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flatground/skateline/internal/domain"
	"github.com/flatground/skateline/internal/event"
	"github.com/flatground/skateline/internal/game"
	"github.com/flatground/skateline/internal/logger"
	"github.com/flatground/skateline/internal/match"
	"github.com/flatground/skateline/internal/metrics"
	"github.com/flatground/skateline/internal/repository"
)

// Reconciler runs the deadline scans that keep abandoned matches from
// hanging forever. All mutation goes through the match service, so every
// forfeit is subject to the same validation and version check as a player
// action. A scan that loses a version race to a live player simply moves on;
// the next cycle picks up whatever is still expired.
type Reconciler struct {
	repo     repository.Match
	matchSvc match.Service
	eventBus event.Bus
	warned   WarningCache
	now      func() time.Time

	warningLead  time.Duration
	stalledAfter time.Duration
	scanLimit    int
}

// Options tunes scan behaviour
type Options struct {
	// WarningLead is how far before a deadline the warning fires
	WarningLead time.Duration
	// StalledAfter is the staleness horizon for the stalled-match scan
	StalledAfter time.Duration
	// ScanLimit bounds the rows processed per scan per cycle
	ScanLimit int
	Now       func() time.Time
}

// New creates a Reconciler. warned deduplicates deadline warnings; its TTL is
// the re-warn cooldown.
func New(repo repository.Match, matchSvc match.Service, eventBus event.Bus, warned WarningCache, opts Options) *Reconciler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ScanLimit <= 0 {
		opts.ScanLimit = DefaultScanLimit
	}
	if opts.WarningLead <= 0 {
		opts.WarningLead = DefaultWarningLead
	}
	if opts.StalledAfter <= 0 {
		opts.StalledAfter = DefaultStalledAfter
	}
	return &Reconciler{
		repo:         repo,
		matchSvc:     matchSvc,
		eventBus:     eventBus,
		warned:       warned,
		now:          opts.Now,
		warningLead:  opts.WarningLead,
		stalledAfter: opts.StalledAfter,
		scanLimit:    opts.ScanLimit,
	}
}

// Run executes one full reconciliation cycle. Scan failures are independent:
// a storage error in one scan does not stop the others.
func (r *Reconciler) Run(ctx context.Context) error {
	var errs []error
	if err := r.ScanExpiredTurns(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", ScanExpiredTurns, err))
	}
	if err := r.ScanDeadlineWarnings(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", ScanDeadlineWarnings, err))
	}
	if err := r.ScanStalledMatches(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", ScanStalledMatches, err))
	}
	if err := r.ScanExpiredChallenges(ctx); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", ScanExpiredChallenges, err))
	}
	return errors.Join(errs...)
}

// ScanExpiredTurns forfeits active matches whose turn deadline has elapsed.
// The expected actor loses; the deadline is re-checked inside the transaction
// so an action committed between the list and the write wins the race.
func (r *Reconciler) ScanExpiredTurns(ctx context.Context) error {
	metrics.ReconcilerScans.WithLabelValues(ScanExpiredTurns).Inc()

	expired, err := r.repo.ListExpiredActive(ctx, r.now(), r.scanLimit)
	if err != nil {
		return err
	}

	for i := range expired {
		m := &expired[i]
		act := game.Action{Type: game.ActionTimeout}
		if _, err := r.matchSvc.Submit(ctx, m.ID, game.SystemActorID, act); err != nil {
			r.skip(ctx, ScanExpiredTurns, m.ID.String(), err)
			continue
		}
		metrics.ReconcilerForfeits.WithLabelValues(string(domain.ForfeitCauseTimeout)).Inc()
	}
	return nil
}

// ScanDeadlineWarnings notifies the expected actor when their deadline is
// close. Warnings are read-only and deduplicated per (match, deadline) for
// the cache's cooldown; a new deadline after a committed action is a new key
// and warns again.
func (r *Reconciler) ScanDeadlineWarnings(ctx context.Context) error {
	metrics.ReconcilerScans.WithLabelValues(ScanDeadlineWarnings).Inc()

	approaching, err := r.repo.ListDeadlineApproaching(ctx, r.now(), r.warningLead, r.scanLimit)
	if err != nil {
		return err
	}

	for i := range approaching {
		m := &approaching[i]
		key := warningKey(m)
		if r.warned.Contains(key) {
			continue
		}
		r.warned.Add(key)

		metrics.DeadlineWarnings.Inc()
		metrics.EventsPublished.WithLabelValues(string(event.MatchDeadlineWarning)).Inc()
		_ = r.eventBus.Publish(ctx, event.NewDeadlineWarningEvent(m))
	}
	return nil
}

// ScanStalledMatches forfeits matches that have sat in play past the
// staleness horizon regardless of whose turn it is.
func (r *Reconciler) ScanStalledMatches(ctx context.Context) error {
	metrics.ReconcilerScans.WithLabelValues(ScanStalledMatches).Inc()

	stalled, err := r.repo.ListStalledActive(ctx, r.now().Add(-r.stalledAfter), r.scanLimit)
	if err != nil {
		return err
	}

	for i := range stalled {
		m := &stalled[i]
		act := game.Action{Type: game.ActionStalledExpire}
		if _, err := r.matchSvc.Submit(ctx, m.ID, game.SystemActorID, act); err != nil {
			r.skip(ctx, ScanStalledMatches, m.ID.String(), err)
			continue
		}
		metrics.ReconcilerForfeits.WithLabelValues(string(domain.ForfeitCauseStalled)).Inc()
	}
	return nil
}

// ScanExpiredChallenges lapses pending challenges nobody answered.
func (r *Reconciler) ScanExpiredChallenges(ctx context.Context) error {
	metrics.ReconcilerScans.WithLabelValues(ScanExpiredChallenges).Inc()

	pending, err := r.repo.ListExpiredPending(ctx, r.now(), r.scanLimit)
	if err != nil {
		return err
	}

	for i := range pending {
		m := &pending[i]
		act := game.Action{Type: game.ActionTimeout}
		if _, err := r.matchSvc.Submit(ctx, m.ID, game.SystemActorID, act); err != nil {
			r.skip(ctx, ScanExpiredChallenges, m.ID.String(), err)
		}
	}
	return nil
}

// skip logs a per-match failure without failing the scan. A concurrency
// conflict or a deadline saved by a just-committed action is expected
// traffic, not an error.
func (r *Reconciler) skip(ctx context.Context, scan, matchID string, err error) {
	log := logger.FromContext(ctx)
	if errors.Is(err, domain.ErrConcurrencyConflict) ||
		errors.Is(err, domain.ErrDeadlineNotElapsed) ||
		errors.Is(err, domain.ErrMatchNotActive) {
		log.Debug(LogMsgReconcileSkipped, "scan", scan, "matchID", matchID, "reason", err)
		return
	}
	log.Error(LogMsgReconcileFailed, "scan", scan, "matchID", matchID, "error", err)
}

func warningKey(m *domain.Match) string {
	return m.ID.String() + "@" + m.DeadlineAt.UTC().Format(time.RFC3339)
}
