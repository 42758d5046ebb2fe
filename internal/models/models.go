// Package models defines the domain entities for the expense tracker.
package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Category is one of the fixed expense categories.
type Category string

// The nine canonical categories. Every transaction carries exactly one.
const (
	CategoryGroceries     Category = "Groceries"
	CategoryOutings       Category = "Outings"
	CategoryBodyCare      Category = "BodyCare"
	CategoryOrders        Category = "Orders"
	CategoryMiscellaneous Category = "Miscellaneous"
	CategoryPetrol        Category = "Petrol"
	CategoryBills         Category = "Bills"
	CategorySavings       Category = "Savings"
	CategoryOther         Category = "Other"
)

// Categories lists all canonical categories in display order.
var Categories = []Category{
	CategoryGroceries,
	CategoryOutings,
	CategoryBodyCare,
	CategoryOrders,
	CategoryMiscellaneous,
	CategoryPetrol,
	CategoryBills,
	CategorySavings,
	CategoryOther,
}

// IsValid reports whether c is one of the canonical categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Bucket is a budget-period grouping. Every category maps into exactly one.
type Bucket string

// The three budget buckets.
const (
	BucketWeekly  Bucket = "Weekly"
	BucketMonthly Bucket = "Monthly"
	BucketSavings Bucket = "Savings"
)

// bucketByCategory is the total category-to-bucket mapping.
var bucketByCategory = map[Category]Bucket{
	CategoryGroceries:     BucketWeekly,
	CategoryOutings:       BucketWeekly,
	CategoryBodyCare:      BucketWeekly,
	CategoryOrders:        BucketWeekly,
	CategoryMiscellaneous: BucketWeekly,
	CategoryPetrol:        BucketMonthly,
	CategoryBills:         BucketMonthly,
	CategoryOther:         BucketMonthly,
	CategorySavings:       BucketSavings,
}

// BucketFor returns the budget bucket a category belongs to.
func BucketFor(c Category) Bucket {
	if b, ok := bucketByCategory[c]; ok {
		return b
	}
	return BucketMonthly
}

// Transaction is an immutable record of a single spend event.
// ID doubles as the idempotency key for persistence and deletion.
type Transaction struct {
	ID          string          `firestore:"id"`
	Amount      decimal.Decimal `firestore:"amount"`
	Category    Category        `firestore:"category"`
	Description string          `firestore:"description"`
	Date        time.Time       `firestore:"date"`
	Timestamp   time.Time       `firestore:"timestamp"`
}

// ParsedExpense is a not-yet-committed expense candidate. Amount and
// Category are nil when the parse could not extract them.
type ParsedExpense struct {
	Amount      *decimal.Decimal
	Category    *Category
	Description string
	Date        time.Time
}

// HasAmount reports whether the parse extracted an amount.
func (p *ParsedExpense) HasAmount() bool {
	return p.Amount != nil
}

// Allocations holds the configured spending caps. A zero cap means the
// corresponding limit is not configured.
type Allocations struct {
	WeeklyLimit          decimal.Decimal              `firestore:"weeklyLimit"`
	MonthlyLimit         decimal.Decimal              `firestore:"monthlyLimit"`
	SavingsTarget        decimal.Decimal              `firestore:"savingsTarget"`
	WeeklyCategoryLimits map[Category]decimal.Decimal `firestore:"weeklyCategoryLimits"`
}

// BudgetState is the singleton per-user budget configuration.
type BudgetState struct {
	MonthlyIncome decimal.Decimal `firestore:"monthlyIncome"`
	Allocations   Allocations     `firestore:"allocations"`
	IsSet         bool            `firestore:"isSet"`
}

// Validate checks the budget invariants. The savings target must not
// exceed the monthly income.
func (b *BudgetState) Validate() error {
	if b.Allocations.SavingsTarget.GreaterThan(b.MonthlyIncome) {
		return fmt.Errorf("savings target %s exceeds monthly income %s",
			b.Allocations.SavingsTarget.StringFixed(2), b.MonthlyIncome.StringFixed(2))
	}
	return nil
}

// AlertType is the severity of an alert.
type AlertType string

// Alert severities, ranked.
const (
	AlertSuccess  AlertType = "success"
	AlertWarning  AlertType = "warning"
	AlertCritical AlertType = "critical"
)

// AlertItem is a derived alert, regenerated in full on every evaluation.
// ID is deterministic (kind + scope + time discriminator) so the same
// underlying condition dedupes across recomputations and a dismissal
// holds until the discriminator rolls over.
type AlertItem struct {
	ID      string
	Type    AlertType
	Title   string
	Message string
}

// WeeklyStats is a finalized snapshot of a completed ISO week.
type WeeklyStats struct {
	WeekID            string                       `firestore:"weekId"`
	TotalSpent        decimal.Decimal              `firestore:"totalSpent"`
	TotalSaved        decimal.Decimal              `firestore:"totalSaved"`
	CategoryBreakdown map[Category]decimal.Decimal `firestore:"categoryBreakdown"`
	Finalized         bool                         `firestore:"finalized"`
}

// MonthlyStats is a finalized snapshot of a completed calendar month.
type MonthlyStats struct {
	MonthID           string                       `firestore:"monthId"`
	TotalSpent        decimal.Decimal              `firestore:"totalSpent"`
	TotalSaved        decimal.Decimal              `firestore:"totalSaved"`
	CategoryBreakdown map[Category]decimal.Decimal `firestore:"categoryBreakdown"`
	Finalized         bool                         `firestore:"finalized"`
}

// HistoryMeta tracks the identifiers of the week and month the tracker
// last saw. Advanced only by the archiver after a successful snapshot.
type HistoryMeta struct {
	LastActiveWeek  string `firestore:"lastActiveWeek"`
	LastActiveMonth string `firestore:"lastActiveMonth"`
}
