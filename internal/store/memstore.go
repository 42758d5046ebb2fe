package store

import (
	"context"
	"sort"
	"sync"

	"gitlab.com/htetaung/paisa-tracker/internal/models"
)

// MemStore is an in-memory Store used by tests and offline runs.
type MemStore struct {
	mu           sync.Mutex
	budgets      map[string]models.BudgetState
	transactions map[string]map[string]models.Transaction
	weekly       map[string]map[string]models.WeeklyStats
	monthly      map[string]map[string]models.MonthlyStats
	meta         map[string]models.HistoryMeta
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		budgets:      make(map[string]models.BudgetState),
		transactions: make(map[string]map[string]models.Transaction),
		weekly:       make(map[string]map[string]models.WeeklyStats),
		monthly:      make(map[string]map[string]models.MonthlyStats),
		meta:         make(map[string]models.HistoryMeta),
	}
}

// LoadBudget returns the stored budget state, zero when unset.
func (s *MemStore) LoadBudget(_ context.Context, userID string) (models.BudgetState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budgets[userID], nil
}

// SaveBudget stores the budget state.
func (s *MemStore) SaveBudget(_ context.Context, userID string, state models.BudgetState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[userID] = state
	return nil
}

// LoadTransactions returns all transactions, newest first.
func (s *MemStore) LoadTransactions(_ context.Context, userID string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txs := make([]models.Transaction, 0, len(s.transactions[userID]))
	for _, tx := range s.transactions[userID] {
		txs = append(txs, tx)
	}
	sort.Slice(txs, func(i, j int) bool {
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})
	return txs, nil
}

// AddTransaction upserts a transaction keyed by its id.
func (s *MemStore) AddTransaction(_ context.Context, userID string, tx models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transactions[userID] == nil {
		s.transactions[userID] = make(map[string]models.Transaction)
	}
	s.transactions[userID][tx.ID] = tx
	return nil
}

// DeleteTransaction removes a transaction by id.
func (s *MemStore) DeleteTransaction(_ context.Context, userID string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.transactions[userID], id)
	return nil
}

// SaveWeeklyStats stores a weekly snapshot keyed by week id.
func (s *MemStore) SaveWeeklyStats(_ context.Context, userID string, stats models.WeeklyStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.weekly[userID] == nil {
		s.weekly[userID] = make(map[string]models.WeeklyStats)
	}
	s.weekly[userID][stats.WeekID] = stats
	return nil
}

// SaveMonthlyStats stores a monthly snapshot keyed by month id.
func (s *MemStore) SaveMonthlyStats(_ context.Context, userID string, stats models.MonthlyStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.monthly[userID] == nil {
		s.monthly[userID] = make(map[string]models.MonthlyStats)
	}
	s.monthly[userID][stats.MonthID] = stats
	return nil
}

// LoadHistoryMeta returns the archiver bookkeeping, nil on first run.
func (s *MemStore) LoadHistoryMeta(_ context.Context, userID string) (*models.HistoryMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.meta[userID]
	if !ok {
		return nil, nil
	}
	return &meta, nil
}

// SaveHistoryMeta stores the archiver bookkeeping.
func (s *MemStore) SaveHistoryMeta(_ context.Context, userID string, meta models.HistoryMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta[userID] = meta
	return nil
}

// WeeklyStats returns the stored weekly snapshots for a user. Test helper.
func (s *MemStore) WeeklyStats(userID string) map[string]models.WeeklyStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]models.WeeklyStats, len(s.weekly[userID]))
	for k, v := range s.weekly[userID] {
		out[k] = v
	}
	return out
}

// MonthlyStats returns the stored monthly snapshots for a user. Test helper.
func (s *MemStore) MonthlyStats(userID string) map[string]models.MonthlyStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]models.MonthlyStats, len(s.monthly[userID]))
	for k, v := range s.monthly[userID] {
		out[k] = v
	}
	return out
}

var _ Store = (*MemStore)(nil)
