// Package scheduler drives the daily price-check batch over all active
// subscriptions.
package scheduler

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/gnithesh/productowl/internal/models"
	"github.com/gnithesh/productowl/internal/tracker"
)

// ErrRunInProgress is returned when a trigger fires while the previous run
// is still draining; the new run is skipped, never stacked.
var ErrRunInProgress = errors.New("price check already running")

// SubscriptionSource loads the active subscription set for a run.
type SubscriptionSource interface {
	FindActive(ctx context.Context) ([]models.Subscription, error)
}

// Checker processes one subscription end to end.
type Checker interface {
	CheckSubscription(ctx context.Context, sub *models.Subscription) (tracker.CheckResult, error)
}

// Scheduler fires one batch run per day at a fixed wall-clock hour. Items
// within a run are processed strictly sequentially with a pacing delay
// between them, so at most one scrape is in flight at any time.
type Scheduler struct {
	subs    SubscriptionSource
	checker Checker
	pace    *rate.Limiter
	hour    int
	loc     *time.Location

	running atomic.Bool
}

func New(subs SubscriptionSource, checker Checker, pacing time.Duration, hour int, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		subs:    subs,
		checker: checker,
		pace:    rate.NewLimiter(rate.Every(pacing), 1),
		hour:    hour,
		loc:     loc,
	}
}

// Run blocks until ctx is cancelled, triggering one batch at the configured
// hour each day.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := nextRun(time.Now(), s.hour, s.loc)
		log.Printf("scheduler: next price check at %s", next.Format(time.RFC1123))
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("scheduler: stopping")
			return
		case <-timer.C:
			if _, err := s.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("scheduler: run failed: %v", err)
			}
		}
	}
}

// RunOnce executes a single batch pass: load all active subscriptions, check
// each sequentially, and report the bucketed counts. Per-item failures are
// logged and isolated; only a failure to load the subscription set is fatal
// to the run.
func (s *Scheduler) RunOnce(ctx context.Context) (models.RunSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		log.Println("scheduler: previous run still in progress, skipping")
		return models.RunSummary{}, ErrRunInProgress
	}
	defer s.running.Store(false)

	log.Println("scheduler: starting price check")
	var summary models.RunSummary

	subs, err := s.subs.FindActive(ctx)
	if err != nil {
		return summary, err
	}
	log.Printf("scheduler: %d active subscriptions", len(subs))

	for i := range subs {
		// Pacing between items, applied whether or not the previous item
		// succeeded; the first item passes immediately.
		if err := s.pace.Wait(ctx); err != nil {
			return summary, err
		}

		sub := &subs[i]
		result, err := s.checker.CheckSubscription(ctx, sub)
		summary.Checked++
		if err != nil {
			log.Printf("scheduler: subscription %s product %s: %v", sub.ID.Hex(), sub.ProductID.Hex(), err)
			summary.Failed++
			continue
		}
		switch result {
		case tracker.ResultNotified:
			summary.Updated++
			summary.Notified++
		case tracker.ResultUpdated:
			summary.Updated++
		default:
			summary.Skipped++
		}
	}

	log.Printf("scheduler: price check completed: checked=%d updated=%d notified=%d skipped=%d failed=%d",
		summary.Checked, summary.Updated, summary.Notified, summary.Skipped, summary.Failed)
	return summary, nil
}

// nextRun returns the next occurrence of hour o'clock in loc after now.
func nextRun(now time.Time, hour int, loc *time.Location) time.Time {
	n := now.In(loc)
	next := time.Date(n.Year(), n.Month(), n.Day(), hour, 0, 0, 0, loc)
	if !next.After(n) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
