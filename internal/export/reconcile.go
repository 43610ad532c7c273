package export

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/sstent/stravasync/internal/strava"
)

// DefaultDaysBack is the retention window used when none is configured.
const DefaultDaysBack = 90

// ActivitySource fetches detailed upstream activities started at or after
// a given time. Satisfied by *strava.Client.
type ActivitySource interface {
	FetchSince(ctx context.Context, since time.Time) ([]strava.DetailedActivity, error)
}

// SnapshotStore loads and saves the export document under a blob name.
// Load returns (nil, nil) when no usable prior snapshot exists. Satisfied
// by *drive.Store.
type SnapshotStore interface {
	Load(ctx context.Context, name string) (*Document, error)
	Save(ctx context.Context, name string, doc *Document) error
}

// Reconciler merges freshly fetched workouts into the previously stored
// export document: dedup by id, prune outside the retention window, sort
// by start date descending, restamp metadata, persist. The store is only
// written after the whole in-memory document has been built, so a failed
// run leaves the previous remote snapshot authoritative.
type Reconciler struct {
	source   ActivitySource
	store    SnapshotStore
	name     string
	daysBack int
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock overrides the reconciler's notion of "now".
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		r.now = now
	}
}

// NewReconciler creates a reconciler persisting under the given blob name
// with a retention window of daysBack days.
func NewReconciler(source ActivitySource, store SnapshotStore, name string, daysBack int, logger *slog.Logger, opts ...Option) *Reconciler {
	if daysBack <= 0 {
		daysBack = DefaultDaysBack
	}
	r := &Reconciler{
		source:   source,
		store:    store,
		name:     name,
		daysBack: daysBack,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result summarizes one reconciliation run.
type Result struct {
	Fetched int // detailed activities fetched upstream
	Added   int // workouts not previously in the snapshot
	Pruned  int // workouts dropped for leaving the retention window
	Total   int // workouts in the persisted document
}

// Run performs one full reconciliation cycle.
func (r *Reconciler) Run(ctx context.Context) (*Result, error) {
	now := r.now().UTC()
	cutoff := now.AddDate(0, 0, -r.daysBack)

	prior, err := r.store.Load(ctx, r.name)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %q: %w", r.name, err)
	}

	// Re-scan every stored workout for the watermark instead of trusting a
	// recorded last-sync time, so upstream backfills landing out of order
	// are picked up on the next run.
	watermark := cutoff
	if prior != nil && len(prior.Workouts) > 0 {
		watermark = maxStartDate(prior.Workouts)
	}
	r.logger.Info("fetching activities", "since", watermark, "days_back", r.daysBack)

	fetched, err := r.source.FetchSince(ctx, watermark)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities since %s: %w",
			watermark.Format(time.RFC3339), err)
	}

	doc := prior
	if doc == nil {
		doc = &Document{}
	}

	// The watermark activity itself is fetched again on every run; the id
	// check absorbs that overlap. A stored workout is never overwritten by
	// a re-fetched one, even when fields differ.
	seen := make(map[string]struct{}, len(doc.Workouts))
	for _, w := range doc.Workouts {
		seen[w.ID] = struct{}{}
	}

	added := 0
	for _, raw := range fetched {
		w := Normalize(raw)
		if _, exists := seen[w.ID]; exists {
			continue
		}
		seen[w.ID] = struct{}{}
		doc.Workouts = append(doc.Workouts, w)
		added++
	}

	kept := make([]Workout, 0, len(doc.Workouts))
	pruned := 0
	for _, w := range doc.Workouts {
		if w.StartDate.Before(cutoff) {
			pruned++
			continue
		}
		kept = append(kept, w)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].StartDate.After(kept[j].StartDate)
	})

	doc.Workouts = kept
	doc.Metadata = Metadata{
		SchemaVersion: SchemaVersion,
		ExportedAt:    now,
	}

	if err := r.store.Save(ctx, r.name, doc); err != nil {
		return nil, fmt.Errorf("failed to persist snapshot %q: %w", r.name, err)
	}

	result := &Result{
		Fetched: len(fetched),
		Added:   added,
		Pruned:  pruned,
		Total:   len(doc.Workouts),
	}
	r.logger.Info("reconciliation complete",
		"fetched", result.Fetched, "added", result.Added,
		"pruned", result.Pruned, "total", result.Total)
	return result, nil
}

func maxStartDate(workouts []Workout) time.Time {
	max := workouts[0].StartDate
	for _, w := range workouts[1:] {
		if w.StartDate.After(max) {
			max = w.StartDate
		}
	}
	return max
}
