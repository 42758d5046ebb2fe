package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"gitlab.com/htetaung/paisa-tracker/internal/models"
)

// Firestore document layout, all under a per-user namespace:
//
//	users/{uid}/transactions/{txID}
//	users/{uid}/stats-weekly/{weekID}
//	users/{uid}/stats-monthly/{monthID}
//	users/{uid}/meta/budget
//	users/{uid}/meta/history
const (
	usersCollection   = "users"
	txCollection      = "transactions"
	weeklyCollection  = "stats-weekly"
	monthlyCollection = "stats-monthly"
	metaCollection    = "meta"
	budgetDoc         = "budget"
	historyDoc        = "history"
)

// FirestoreStore implements Store on Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore initializes the Firebase app and Firestore client.
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	conf := &firebase.Config{ProjectID: projectID}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &FirestoreStore{client: client}, nil
}

// Close closes the Firestore client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) user(userID string) *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(userID)
}

// LoadBudget returns the user's budget state, or a zero state when none
// has been saved yet.
func (s *FirestoreStore) LoadBudget(ctx context.Context, userID string) (models.BudgetState, error) {
	snap, err := s.user(userID).Collection(metaCollection).Doc(budgetDoc).Get(ctx)
	if err != nil {
		if snap != nil && !snap.Exists() {
			return models.BudgetState{}, nil
		}
		return models.BudgetState{}, fmt.Errorf("failed to load budget: %w", err)
	}

	var state models.BudgetState
	if err := snap.DataTo(&state); err != nil {
		return models.BudgetState{}, fmt.Errorf("failed to parse budget: %w", err)
	}
	return state, nil
}

// SaveBudget stores the user's budget state.
func (s *FirestoreStore) SaveBudget(ctx context.Context, userID string, state models.BudgetState) error {
	_, err := s.user(userID).Collection(metaCollection).Doc(budgetDoc).Set(ctx, state)
	if err != nil {
		return fmt.Errorf("failed to save budget: %w", err)
	}
	return nil
}

// LoadTransactions returns all of the user's transactions, newest first.
func (s *FirestoreStore) LoadTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	iter := s.user(userID).Collection(txCollection).
		OrderBy("timestamp", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var txs []models.Transaction
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate transactions: %w", err)
		}

		var tx models.Transaction
		if err := doc.DataTo(&tx); err != nil {
			return nil, fmt.Errorf("failed to parse transaction: %w", err)
		}
		txs = append(txs, tx)
	}

	return txs, nil
}

// AddTransaction upserts a transaction keyed by its id.
func (s *FirestoreStore) AddTransaction(ctx context.Context, userID string, tx models.Transaction) error {
	_, err := s.user(userID).Collection(txCollection).Doc(tx.ID).Set(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to add transaction: %w", err)
	}
	return nil
}

// DeleteTransaction removes a transaction by id. Deleting an absent id
// is a no-op.
func (s *FirestoreStore) DeleteTransaction(ctx context.Context, userID string, id string) error {
	_, err := s.user(userID).Collection(txCollection).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// SaveWeeklyStats stores a finalized weekly snapshot keyed by week id.
func (s *FirestoreStore) SaveWeeklyStats(ctx context.Context, userID string, stats models.WeeklyStats) error {
	_, err := s.user(userID).Collection(weeklyCollection).Doc(stats.WeekID).Set(ctx, stats)
	if err != nil {
		return fmt.Errorf("failed to save weekly stats: %w", err)
	}
	return nil
}

// SaveMonthlyStats stores a finalized monthly snapshot keyed by month id.
func (s *FirestoreStore) SaveMonthlyStats(ctx context.Context, userID string, stats models.MonthlyStats) error {
	_, err := s.user(userID).Collection(monthlyCollection).Doc(stats.MonthID).Set(ctx, stats)
	if err != nil {
		return fmt.Errorf("failed to save monthly stats: %w", err)
	}
	return nil
}

// LoadHistoryMeta returns the archiver bookkeeping document, or nil when
// it has never been written (first run).
func (s *FirestoreStore) LoadHistoryMeta(ctx context.Context, userID string) (*models.HistoryMeta, error) {
	snap, err := s.user(userID).Collection(metaCollection).Doc(historyDoc).Get(ctx)
	if err != nil {
		if snap != nil && !snap.Exists() {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load history meta: %w", err)
	}

	var meta models.HistoryMeta
	if err := snap.DataTo(&meta); err != nil {
		return nil, fmt.Errorf("failed to parse history meta: %w", err)
	}
	return &meta, nil
}

// SaveHistoryMeta stores the archiver bookkeeping document.
func (s *FirestoreStore) SaveHistoryMeta(ctx context.Context, userID string, meta models.HistoryMeta) error {
	_, err := s.user(userID).Collection(metaCollection).Doc(historyDoc).Set(ctx, meta)
	if err != nil {
		return fmt.Errorf("failed to save history meta: %w", err)
	}
	return nil
}

var _ Store = (*FirestoreStore)(nil)
