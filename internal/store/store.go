// Package store persists tracker state in a per-user document store.
package store

import (
	"context"

	"gitlab.com/htetaung/paisa-tracker/internal/models"
)

// Store is the persistence collaborator. Implementations must treat
// Transaction.ID as an idempotency key: adding the same transaction
// twice is a single upsert, deleting an absent id is not an error.
type Store interface {
	LoadBudget(ctx context.Context, userID string) (models.BudgetState, error)
	SaveBudget(ctx context.Context, userID string, state models.BudgetState) error

	// LoadTransactions returns all transactions ordered by Timestamp
	// descending.
	LoadTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	AddTransaction(ctx context.Context, userID string, tx models.Transaction) error
	DeleteTransaction(ctx context.Context, userID string, id string) error

	SaveWeeklyStats(ctx context.Context, userID string, stats models.WeeklyStats) error
	SaveMonthlyStats(ctx context.Context, userID string, stats models.MonthlyStats) error

	LoadHistoryMeta(ctx context.Context, userID string) (*models.HistoryMeta, error)
	SaveHistoryMeta(ctx context.Context, userID string, meta models.HistoryMeta) error
}
