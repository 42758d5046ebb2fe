// Package preview manages the "current preview" slot that the heuristic
// parser and the asynchronous AI upgrade both write into.
//
// Every keystroke restarts a quiet-period timer; only the last pending
// timer fires. Because an in-flight classification call cannot be
// recalled once dispatched, each request additionally carries the
// generation it was issued under, and a completed result is discarded
// when a newer input has superseded it. Timer cancellation alone would
// leave a stale in-flight response free to overwrite the preview.
package preview

import (
	"context"
	"sync"
	"time"

	"gitlab.com/htetaung/paisa-tracker/internal/models"
)

// DefaultQuietPeriod is how long input must be stable before the
// classifier is invoked.
const DefaultQuietPeriod = 800 * time.Millisecond

// Classifier produces refined expense candidates for the given text.
// An empty result means the heuristic preview stands.
type Classifier interface {
	Classify(ctx context.Context, text string, today time.Time) []models.ParsedExpense
}

// Debouncer schedules debounced classification upgrades and publishes
// results to the OnUpgrade callback, last-input-wins.
type Debouncer struct {
	classifier Classifier
	quiet      time.Duration

	// OnUpgrade receives the refined candidates for the most recent
	// input. Called from the timer goroutine; never called with a stale
	// result and never with an empty one.
	OnUpgrade func(expenses []models.ParsedExpense)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// NewDebouncer creates a Debouncer with the given quiet period.
// A non-positive quiet period falls back to DefaultQuietPeriod.
func NewDebouncer(classifier Classifier, quiet time.Duration) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Debouncer{classifier: classifier, quiet: quiet}
}

// Submit registers new input. Any pending timer is cancelled and a new
// quiet-period timer started; the classification fires only if no newer
// input arrives first.
func (d *Debouncer) Submit(ctx context.Context, text string, today time.Time) {
	if d == nil || d.classifier == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.quiet, func() {
		d.classify(ctx, text, today, gen)
	})
}

// Cancel drops the pending timer and marks any in-flight classification
// stale, without stopping the debouncer. The next Submit starts fresh.
func (d *Debouncer) Cancel() {
	if d == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Stop cancels any pending classification and prevents further ones.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// classify runs the upgrade for input issued under gen and publishes the
// result unless newer input has superseded it.
func (d *Debouncer) classify(ctx context.Context, text string, today time.Time, gen uint64) {
	if !d.current(gen) {
		return
	}

	expenses := d.classifier.Classify(ctx, text, today)

	// Re-check after the call: the input may have changed while the
	// request was in flight.
	if !d.current(gen) || len(expenses) == 0 {
		return
	}

	if d.OnUpgrade != nil {
		d.OnUpgrade(expenses)
	}
}

func (d *Debouncer) current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.stopped && gen == d.gen
}
