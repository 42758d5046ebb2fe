package preview

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/htetaung/paisa-tracker/internal/models"
)

var previewToday = time.Date(2026, time.August, 29, 0, 0, 0, 0, time.UTC)

// stubClassifier records calls and optionally blocks until released, so
// tests can interleave new submissions with an in-flight classification.
type stubClassifier struct {
	mu      sync.Mutex
	calls   []string
	started chan string
	release chan struct{}
	results map[string][]models.ParsedExpense
}

func newStubClassifier() *stubClassifier {
	return &stubClassifier{
		started: make(chan string, 8),
		results: make(map[string][]models.ParsedExpense),
	}
}

func (s *stubClassifier) Classify(_ context.Context, text string, _ time.Time) []models.ParsedExpense {
	s.mu.Lock()
	s.calls = append(s.calls, text)
	s.mu.Unlock()

	s.started <- text
	if s.release != nil {
		<-s.release
	}
	return s.results[text]
}

func (s *stubClassifier) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func expenseFor(description string, amount int64) []models.ParsedExpense {
	amt := decimal.NewFromInt(amount)
	category := models.CategoryGroceries
	return []models.ParsedExpense{
		{Amount: &amt, Category: &category, Description: description},
	}
}

func waitForUpgrade(t *testing.T, ch <-chan []models.ParsedExpense) []models.ParsedExpense {
	t.Helper()
	select {
	case expenses := <-ch:
		return expenses
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for upgrade callback")
		return nil
	}
}

func TestDebouncerPublishesUpgrade(t *testing.T) {
	t.Parallel()

	stub := newStubClassifier()
	stub.results["milk 80"] = expenseFor("Milk", 80)

	d := NewDebouncer(stub, time.Millisecond)
	defer d.Stop()

	upgraded := make(chan []models.ParsedExpense, 1)
	d.OnUpgrade = func(expenses []models.ParsedExpense) { upgraded <- expenses }

	d.Submit(context.Background(), "milk 80", previewToday)

	expenses := waitForUpgrade(t, upgraded)
	require.Len(t, expenses, 1)
	require.Equal(t, "Milk", expenses[0].Description)
}

func TestDebouncerLastInputWins(t *testing.T) {
	t.Parallel()

	stub := newStubClassifier()
	stub.results["milk 80 and bre"] = expenseFor("Partial", 80)
	stub.results["milk 80 and bread 40"] = expenseFor("Final", 120)

	d := NewDebouncer(stub, 50*time.Millisecond)
	defer d.Stop()

	upgraded := make(chan []models.ParsedExpense, 1)
	d.OnUpgrade = func(expenses []models.ParsedExpense) { upgraded <- expenses }

	// Rapid keystrokes, each well inside the quiet period of the last.
	d.Submit(context.Background(), "milk 80 and bre", previewToday)
	time.Sleep(5 * time.Millisecond)
	d.Submit(context.Background(), "milk 80 and bread 40", previewToday)

	expenses := waitForUpgrade(t, upgraded)
	require.Equal(t, "Final", expenses[0].Description)
	require.Equal(t, 1, stub.callCount(), "superseded input must never reach the classifier")
}

func TestDebouncerDiscardsStaleInFlightResult(t *testing.T) {
	t.Parallel()

	stub := newStubClassifier()
	stub.release = make(chan struct{})
	stub.results["old input"] = expenseFor("Old", 10)
	stub.results["new input"] = expenseFor("New", 20)

	d := NewDebouncer(stub, time.Millisecond)
	defer d.Stop()

	upgraded := make(chan []models.ParsedExpense, 2)
	d.OnUpgrade = func(expenses []models.ParsedExpense) { upgraded <- expenses }

	d.Submit(context.Background(), "old input", previewToday)
	require.Equal(t, "old input", <-stub.started)

	// Newer input arrives while the old call is in flight.
	d.Submit(context.Background(), "new input", previewToday)

	// Let the old call finish first, then the new one.
	stub.release <- struct{}{}
	require.Equal(t, "new input", <-stub.started)
	stub.release <- struct{}{}

	expenses := waitForUpgrade(t, upgraded)
	require.Equal(t, "New", expenses[0].Description, "stale in-flight result must be discarded")

	select {
	case extra := <-upgraded:
		t.Fatalf("unexpected second upgrade: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncerEmptyResultKeepsSilence(t *testing.T) {
	t.Parallel()

	stub := newStubClassifier()

	d := NewDebouncer(stub, time.Millisecond)
	defer d.Stop()

	called := make(chan struct{}, 1)
	d.OnUpgrade = func([]models.ParsedExpense) { called <- struct{}{} }

	d.Submit(context.Background(), "gibberish", previewToday)
	require.Equal(t, "gibberish", <-stub.started)

	select {
	case <-called:
		t.Fatal("OnUpgrade must not fire for an empty classification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncerCancel(t *testing.T) {
	t.Parallel()

	stub := newStubClassifier()
	stub.results["milk 80"] = expenseFor("Milk", 80)

	d := NewDebouncer(stub, 50*time.Millisecond)
	defer d.Stop()

	upgraded := make(chan []models.ParsedExpense, 1)
	d.OnUpgrade = func(expenses []models.ParsedExpense) { upgraded <- expenses }

	// Cancel inside the quiet period drops the pending classification.
	d.Submit(context.Background(), "milk 80", previewToday)
	d.Cancel()

	select {
	case extra := <-upgraded:
		t.Fatalf("upgrade after Cancel: %+v", extra)
	case <-time.After(150 * time.Millisecond):
	}
	require.Zero(t, stub.callCount())

	// Cancel while a call is in flight marks its result stale.
	stub.release = make(chan struct{})
	d.Submit(context.Background(), "milk 80", previewToday)
	require.Equal(t, "milk 80", <-stub.started)
	d.Cancel()
	stub.release <- struct{}{}

	select {
	case extra := <-upgraded:
		t.Fatalf("stale upgrade after Cancel: %+v", extra)
	case <-time.After(100 * time.Millisecond):
	}

	// The debouncer still works afterwards.
	stub.release = nil
	d.Submit(context.Background(), "milk 80", previewToday)
	<-stub.started
	expenses := waitForUpgrade(t, upgraded)
	require.Equal(t, "Milk", expenses[0].Description)
}

func TestDebouncerStop(t *testing.T) {
	t.Parallel()

	stub := newStubClassifier()
	stub.results["milk 80"] = expenseFor("Milk", 80)

	d := NewDebouncer(stub, 50*time.Millisecond)

	d.OnUpgrade = func([]models.ParsedExpense) {
		t.Error("OnUpgrade fired after Stop")
	}

	d.Submit(context.Background(), "milk 80", previewToday)
	d.Stop()

	time.Sleep(150 * time.Millisecond)
	require.Zero(t, stub.callCount())

	// Submissions after Stop are ignored.
	d.Submit(context.Background(), "milk 80", previewToday)
	time.Sleep(150 * time.Millisecond)
	require.Zero(t, stub.callCount())
}

func TestDebouncerNilSafety(t *testing.T) {
	t.Parallel()

	var d *Debouncer
	d.Submit(context.Background(), "milk 80", previewToday)

	d = NewDebouncer(nil, time.Millisecond)
	d.Submit(context.Background(), "milk 80", previewToday)
	d.Stop()
}

func TestNewDebouncerDefaultQuietPeriod(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(newStubClassifier(), 0)
	require.Equal(t, DefaultQuietPeriod, d.quiet)

	d = NewDebouncer(newStubClassifier(), -time.Second)
	require.Equal(t, DefaultQuietPeriod, d.quiet)
}
