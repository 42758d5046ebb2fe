package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/htetaung/paisa-tracker/internal/models"
	"gitlab.com/htetaung/paisa-tracker/internal/preview"
	"gitlab.com/htetaung/paisa-tracker/internal/store"
	"gitlab.com/htetaung/paisa-tracker/internal/tracker"
)

var loopNow = time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)

func newLoopTracker(t *testing.T, opts ...tracker.Option) (*tracker.Tracker, *store.MemStore) {
	t.Helper()
	mem := store.NewMemStore()
	opts = append([]tracker.Option{
		tracker.WithClock(func() time.Time { return loopNow }),
	}, opts...)
	return tracker.New(mem, "user-1", opts...), mem
}

// refiningClassifier returns canned refinements keyed by input text.
type refiningClassifier struct {
	mu      sync.Mutex
	results map[string][]models.ParsedExpense
}

func (c *refiningClassifier) Classify(_ context.Context, text string, _ time.Time) []models.ParsedExpense {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results[text]
}

func refined(amount int64, category models.Category, description string) []models.ParsedExpense {
	amt := decimal.NewFromInt(amount)
	return []models.ParsedExpense{
		{Amount: &amt, Category: &category, Description: description, Date: loopNow},
	}
}

func TestHandleBudgetSetLimits(t *testing.T) {
	t.Parallel()

	tr, mem := newLoopTracker(t)
	ctx := context.Background()
	require.NoError(t, tr.SetIncome(ctx, decimal.NewFromInt(50000)))

	handleBudget(ctx, tr, "set weekly 2000")
	handleBudget(ctx, tr, "set monthly 8000")
	handleBudget(ctx, tr, "set savings 10000")
	handleBudget(ctx, tr, "set cat Groceries 500")

	state := tr.Budget()
	require.True(t, decimal.NewFromInt(2000).Equal(state.Allocations.WeeklyLimit))
	require.True(t, decimal.NewFromInt(8000).Equal(state.Allocations.MonthlyLimit))
	require.True(t, decimal.NewFromInt(10000).Equal(state.Allocations.SavingsTarget))
	require.True(t, decimal.NewFromInt(500).Equal(state.Allocations.WeeklyCategoryLimits[models.CategoryGroceries]))

	// Each edit persists the new state.
	persisted, err := mem.LoadBudget(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(2000).Equal(persisted.Allocations.WeeklyLimit))

	// A second category limit does not clobber the first.
	handleBudget(ctx, tr, "set cat Outings 800")
	state = tr.Budget()
	require.Len(t, state.Allocations.WeeklyCategoryLimits, 2)
	require.True(t, decimal.NewFromInt(500).Equal(state.Allocations.WeeklyCategoryLimits[models.CategoryGroceries]))
}

func TestHandleBudgetLimitsDriveAlerts(t *testing.T) {
	t.Parallel()

	tr, _ := newLoopTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.SetIncome(ctx, decimal.NewFromInt(50000)))
	handleBudget(ctx, tr, "set weekly 1000")

	tr.CommitText(ctx, "groceries 1500")

	alerts := tr.Alerts()
	require.NotEmpty(t, alerts)
	require.Equal(t, models.AlertCritical, alerts[0].Type)
	require.Equal(t, "weekly-critical-2026-08-29", alerts[0].ID)
}

func TestHandleBudgetRejectionRetainsState(t *testing.T) {
	t.Parallel()

	tr, _ := newLoopTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.SetIncome(ctx, decimal.NewFromInt(10000)))
	handleBudget(ctx, tr, "set savings 4000")

	// Savings target above income is rejected; prior target stands.
	handleBudget(ctx, tr, "set savings 20000")
	require.True(t, decimal.NewFromInt(4000).Equal(tr.Budget().Allocations.SavingsTarget))
}

func TestHandleBudgetBadInput(t *testing.T) {
	t.Parallel()

	tr, _ := newLoopTracker(t)
	ctx := context.Background()

	before := tr.Budget()
	for _, arg := range []string{
		"set weekly",
		"set weekly abc",
		"set cat Groceries",
		"set cat NotACategory 500",
		"raise weekly 2000",
	} {
		handleBudget(ctx, tr, arg)
	}
	require.Equal(t, before, tr.Budget())
}

func TestPreviewThenCommitUsesRefinement(t *testing.T) {
	t.Parallel()

	classifier := &refiningClassifier{results: map[string][]models.ParsedExpense{
		"cofee 250 at blue cup": refined(250, models.CategoryOutings, "Coffee at Blue Cup"),
	}}
	d := preview.NewDebouncer(classifier, time.Millisecond)
	defer d.Stop()

	tr, mem := newLoopTracker(t, tracker.WithDebouncer(d))
	ctx := context.Background()

	previewLine(ctx, tr, "cofee 250 at blue cup")

	// The heuristic candidate is available immediately.
	heuristic := tr.CurrentPreview()
	require.Len(t, heuristic, 1)
	require.Equal(t, models.CategoryMiscellaneous, *heuristic[0].Category)

	// The debounced upgrade replaces it after the quiet period.
	require.Eventually(t, func() bool {
		current := tr.CurrentPreview()
		return len(current) == 1 && current[0].Description == "Coffee at Blue Cup"
	}, 2*time.Second, 5*time.Millisecond)

	commitPreview(ctx, tr)

	txs, err := mem.LoadTransactions(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, models.CategoryOutings, txs[0].Category)
	require.Equal(t, "Coffee at Blue Cup", txs[0].Description)
	require.Empty(t, tr.CurrentPreview(), "commit consumes the preview")
}

func TestPreviewThenCommitHeuristicOnly(t *testing.T) {
	t.Parallel()

	tr, mem := newLoopTracker(t)
	ctx := context.Background()

	previewLine(ctx, tr, "petrol 2000")
	commitPreview(ctx, tr)

	txs, err := mem.LoadTransactions(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, models.CategoryPetrol, txs[0].Category)
}

func TestCancelDiscardsPreview(t *testing.T) {
	t.Parallel()

	tr, mem := newLoopTracker(t)
	ctx := context.Background()

	previewLine(ctx, tr, "petrol 2000")
	require.NotEmpty(t, tr.CurrentPreview())

	tr.ClearPreview()
	require.Empty(t, tr.CurrentPreview())

	commitPreview(ctx, tr)
	txs, err := mem.LoadTransactions(ctx, "user-1")
	require.NoError(t, err)
	require.Empty(t, txs, "nothing recorded after cancel")
}
