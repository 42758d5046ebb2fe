// Package archiver detects week and month rollover at session start and
// snapshots the previous window's stats before the live window moves on.
package archiver

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/htetaung/paisa-tracker/internal/dateutil"
	"gitlab.com/htetaung/paisa-tracker/internal/models"
	"gitlab.com/htetaung/paisa-tracker/internal/store"
)

// Archiver snapshots completed weeks and months.
type Archiver struct {
	store  store.Store
	userID string
}

// New creates an Archiver for one user.
func New(s store.Store, userID string) *Archiver {
	return &Archiver{store: s, userID: userID}
}

// Run performs one rollover check. On first run (no history meta) it
// initializes the meta to the current identifiers without snapshotting;
// there is nothing to archive yet. When the stored week or month
// identifier differs from the current one, the previous window is
// recomputed from the entire transaction history, persisted as a
// finalized snapshot, and the meta advanced. Running again with
// unchanged identifiers writes nothing.
func (a *Archiver) Run(ctx context.Context, now time.Time) error {
	currentWeek := dateutil.WeekIdentifier(now)
	currentMonth := dateutil.MonthIdentifier(now)

	meta, err := a.store.LoadHistoryMeta(ctx, a.userID)
	if err != nil {
		return fmt.Errorf("failed to load history meta: %w", err)
	}

	if meta == nil {
		return a.saveMeta(ctx, currentWeek, currentMonth)
	}

	if meta.LastActiveWeek == currentWeek && meta.LastActiveMonth == currentMonth {
		return nil
	}

	txs, err := a.store.LoadTransactions(ctx, a.userID)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}

	if meta.LastActiveWeek != currentWeek && meta.LastActiveWeek != "" {
		spent, saved, breakdown := windowTotals(txs, func(t time.Time) string {
			return dateutil.WeekIdentifier(t)
		}, meta.LastActiveWeek)

		err := a.store.SaveWeeklyStats(ctx, a.userID, models.WeeklyStats{
			WeekID:            meta.LastActiveWeek,
			TotalSpent:        spent,
			TotalSaved:        saved,
			CategoryBreakdown: breakdown,
			Finalized:         true,
		})
		if err != nil {
			return fmt.Errorf("failed to save weekly snapshot: %w", err)
		}
	}

	if meta.LastActiveMonth != currentMonth && meta.LastActiveMonth != "" {
		spent, saved, breakdown := windowTotals(txs, func(t time.Time) string {
			return dateutil.MonthIdentifier(t)
		}, meta.LastActiveMonth)

		err := a.store.SaveMonthlyStats(ctx, a.userID, models.MonthlyStats{
			MonthID:           meta.LastActiveMonth,
			TotalSpent:        spent,
			TotalSaved:        saved,
			CategoryBreakdown: breakdown,
			Finalized:         true,
		})
		if err != nil {
			return fmt.Errorf("failed to save monthly snapshot: %w", err)
		}
	}

	return a.saveMeta(ctx, currentWeek, currentMonth)
}

func (a *Archiver) saveMeta(ctx context.Context, week, month string) error {
	err := a.store.SaveHistoryMeta(ctx, a.userID, models.HistoryMeta{
		LastActiveWeek:  week,
		LastActiveMonth: month,
	})
	if err != nil {
		return fmt.Errorf("failed to save history meta: %w", err)
	}
	return nil
}

// windowTotals sums the transactions whose computed window identifier
// equals wantID. Savings-category amounts go to totalSaved; everything
// else to totalSpent and the category breakdown.
func windowTotals(
	txs []models.Transaction,
	identify func(time.Time) string,
	wantID string,
) (totalSpent, totalSaved decimal.Decimal, breakdown map[models.Category]decimal.Decimal) {
	totalSpent = decimal.Zero
	totalSaved = decimal.Zero
	breakdown = make(map[models.Category]decimal.Decimal)

	for _, tx := range txs {
		if identify(tx.Date) != wantID {
			continue
		}
		if tx.Category == models.CategorySavings {
			totalSaved = totalSaved.Add(tx.Amount)
			continue
		}
		totalSpent = totalSpent.Add(tx.Amount)
		if existing, ok := breakdown[tx.Category]; ok {
			breakdown[tx.Category] = existing.Add(tx.Amount)
		} else {
			breakdown[tx.Category] = tx.Amount
		}
	}

	return totalSpent, totalSaved, breakdown
}
