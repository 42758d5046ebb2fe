// Package tracker orchestrates the expense pipeline: heuristic preview,
// debounced AI upgrade, commit to the store, and recomputation of alerts
// and analytics from the full transaction set.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gitlab.com/htetaung/paisa-tracker/internal/analytics"
	"gitlab.com/htetaung/paisa-tracker/internal/archiver"
	"gitlab.com/htetaung/paisa-tracker/internal/budget"
	"gitlab.com/htetaung/paisa-tracker/internal/logger"
	"gitlab.com/htetaung/paisa-tracker/internal/models"
	"gitlab.com/htetaung/paisa-tracker/internal/notify"
	"gitlab.com/htetaung/paisa-tracker/internal/parser"
	"gitlab.com/htetaung/paisa-tracker/internal/preview"
	"gitlab.com/htetaung/paisa-tracker/internal/store"
)

// Clock supplies the current time. Overridable in tests.
type Clock func() time.Time

// Tracker is the per-user application service. Methods are safe for the
// single-threaded, event-driven use the app makes of them; internal
// state shared with the debounce timer goroutine is mutex-guarded.
type Tracker struct {
	store      store.Store
	userID     string
	dispatcher *notify.Dispatcher
	debouncer  *preview.Debouncer
	clock      Clock

	mu           sync.Mutex
	budgetState  models.BudgetState
	transactions []models.Transaction
	dismissed    map[string]bool
	previewSlot  []models.ParsedExpense
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(t *Tracker) { t.clock = clock }
}

// WithDebouncer attaches the AI upgrade debouncer. Without one, previews
// stay heuristic-only.
func WithDebouncer(d *preview.Debouncer) Option {
	return func(t *Tracker) { t.debouncer = d }
}

// WithDispatcher attaches the notification dispatcher.
func WithDispatcher(d *notify.Dispatcher) Option {
	return func(t *Tracker) { t.dispatcher = d }
}

// New creates a Tracker for one user.
func New(s store.Store, userID string, opts ...Option) *Tracker {
	t := &Tracker{
		store:     s,
		userID:    userID,
		clock:     time.Now,
		dismissed: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.debouncer != nil {
		t.debouncer.OnUpgrade = t.setPreview
	}
	return t
}

// Bootstrap loads persisted state and runs the rollover archiver. Store
// read failures are logged and replaced with empty defaults; the session
// proceeds regardless. The archiver runs once per session, after the
// state loads, each step sequenced rather than parallelized.
func (t *Tracker) Bootstrap(ctx context.Context) {
	state, err := t.store.LoadBudget(ctx, t.userID)
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to load budget, using defaults")
		state = models.BudgetState{}
	}

	txs, err := t.store.LoadTransactions(ctx, t.userID)
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to load transactions, starting empty")
		txs = nil
	}

	t.mu.Lock()
	t.budgetState = state
	t.transactions = txs
	t.mu.Unlock()

	if err := archiver.New(t.store, t.userID).Run(ctx, t.clock()); err != nil {
		logger.Log.Error().Err(err).Msg("history archive check failed")
	}
}

// Preview runs the heuristic parse immediately and schedules the
// debounced AI upgrade. The returned candidates are the current preview;
// a later upgrade replaces it via the preview slot.
func (t *Tracker) Preview(ctx context.Context, text string) []models.ParsedExpense {
	now := t.clock()
	expenses := parser.Split(text, now)

	t.mu.Lock()
	t.previewSlot = expenses
	t.mu.Unlock()

	if t.debouncer != nil {
		t.debouncer.Submit(ctx, text, now)
	}

	return expenses
}

// CurrentPreview returns the latest preview, which the AI upgrade may
// have refined since Preview returned.
func (t *Tracker) CurrentPreview() []models.ParsedExpense {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.previewSlot
}

// ClearPreview discards the pending preview without committing it. Any
// in-flight upgrade for the discarded input is dropped as stale.
func (t *Tracker) ClearPreview() {
	if t.debouncer != nil {
		t.debouncer.Cancel()
	}
	t.setPreview(nil)
}

// setPreview is the debouncer's upgrade callback.
func (t *Tracker) setPreview(expenses []models.ParsedExpense) {
	t.mu.Lock()
	t.previewSlot = expenses
	t.mu.Unlock()
}

// Commit turns the candidates into transactions and persists each one.
// Candidates without an amount are skipped. Writes are best-effort: a
// store failure is logged, the transaction is kept in memory, and no
// error reaches the caller.
func (t *Tracker) Commit(ctx context.Context, candidates []models.ParsedExpense) []models.Transaction {
	now := t.clock()

	var committed []models.Transaction
	for _, candidate := range candidates {
		if !candidate.HasAmount() {
			continue
		}

		category := models.CategoryMiscellaneous
		if candidate.Category != nil {
			category = *candidate.Category
		}

		date := candidate.Date
		if date.IsZero() {
			date = now
		}

		tx := models.Transaction{
			ID:          uuid.NewString(),
			Amount:      *candidate.Amount,
			Category:    category,
			Description: candidate.Description,
			Date:        date,
			Timestamp:   now,
		}

		if err := t.store.AddTransaction(ctx, t.userID, tx); err != nil {
			logger.Log.Error().Err(err).Str("tx_id", tx.ID).Msg("failed to persist transaction")
		}
		committed = append(committed, tx)
	}

	if len(committed) == 0 {
		return nil
	}

	t.mu.Lock()
	t.transactions = append(committed, t.transactions...)
	t.previewSlot = nil
	t.mu.Unlock()

	// An upgrade still in flight for the committed input must not
	// repopulate the slot afterwards.
	if t.debouncer != nil {
		t.debouncer.Cancel()
	}

	t.notifyAlerts(ctx)

	return committed
}

// CommitText parses text and commits the result in one step.
func (t *Tracker) CommitText(ctx context.Context, text string) []models.Transaction {
	return t.Commit(ctx, parser.Split(text, t.clock()))
}

// Delete removes a transaction by id, from the store and from memory.
func (t *Tracker) Delete(ctx context.Context, id string) {
	if err := t.store.DeleteTransaction(ctx, t.userID, id); err != nil {
		logger.Log.Error().Err(err).Str("tx_id", id).Msg("failed to delete transaction")
	}

	t.mu.Lock()
	kept := t.transactions[:0]
	for _, tx := range t.transactions {
		if tx.ID != id {
			kept = append(kept, tx)
		}
	}
	t.transactions = kept
	t.mu.Unlock()
}

// Budget returns the current budget state.
func (t *Tracker) Budget() models.BudgetState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.budgetState
}

// Transactions returns the in-memory transaction list, newest first.
func (t *Tracker) Transactions() []models.Transaction {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Transaction, len(t.transactions))
	copy(out, t.transactions)
	return out
}

// SetIncome updates the monthly income. The change is rejected and the
// prior state retained when it would break the savings invariant.
func (t *Tracker) SetIncome(ctx context.Context, income decimal.Decimal) error {
	return t.updateBudget(ctx, func(state *models.BudgetState) {
		state.MonthlyIncome = income
		state.IsSet = true
	})
}

// SetAllocations replaces the spending caps. The change is rejected and
// the prior state retained when the savings target exceeds income.
func (t *Tracker) SetAllocations(ctx context.Context, alloc models.Allocations) error {
	return t.updateBudget(ctx, func(state *models.BudgetState) {
		state.Allocations = alloc
		state.IsSet = true
	})
}

// updateBudget applies a mutation, validates the result, and persists it
// only if the invariants hold.
func (t *Tracker) updateBudget(ctx context.Context, mutate func(*models.BudgetState)) error {
	t.mu.Lock()
	candidate := t.budgetState
	if candidate.Allocations.WeeklyCategoryLimits != nil {
		limits := make(map[models.Category]decimal.Decimal, len(candidate.Allocations.WeeklyCategoryLimits))
		for k, v := range candidate.Allocations.WeeklyCategoryLimits {
			limits[k] = v
		}
		candidate.Allocations.WeeklyCategoryLimits = limits
	}
	mutate(&candidate)

	if err := candidate.Validate(); err != nil {
		t.mu.Unlock()
		return err
	}

	t.budgetState = candidate
	t.mu.Unlock()

	if err := t.store.SaveBudget(ctx, t.userID, candidate); err != nil {
		logger.Log.Error().Err(err).Msg("failed to persist budget")
	}

	t.notifyAlerts(ctx)
	return nil
}

// Alerts recomputes the alert list and filters out dismissed ids.
func (t *Tracker) Alerts() []models.AlertItem {
	t.mu.Lock()
	state := t.budgetState
	txs := make([]models.Transaction, len(t.transactions))
	copy(txs, t.transactions)
	dismissed := t.dismissed
	t.mu.Unlock()

	all := budget.Evaluate(state, txs, t.clock())

	var visible []models.AlertItem
	for _, alert := range all {
		if dismissed[alert.ID] {
			continue
		}
		visible = append(visible, alert)
	}
	return visible
}

// Dismiss hides an alert for the rest of the session. A new day or month
// changes the alert's id, so the condition re-alerts on rollover.
func (t *Tracker) Dismiss(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dismissed[id] = true
}

// Summary aggregates the full transaction set.
func (t *Tracker) Summary() analytics.Summary {
	return analytics.Summarize(t.Transactions())
}

// notifyAlerts pushes the current alert list to the dispatcher, if any.
func (t *Tracker) notifyAlerts(ctx context.Context) {
	if t.dispatcher == nil {
		return
	}
	t.dispatcher.Dispatch(ctx, t.Alerts())
}
