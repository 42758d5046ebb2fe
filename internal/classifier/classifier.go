// Package classifier adapts the external text-classification service to
// the domain model. It is a strict boundary: free-text category labels
// from the model are coerced into the canonical nine-value enum before
// anything reaches a Transaction, and every failure of the external call
// collapses to an empty result; the heuristic parse the caller already
// holds stays authoritative.
package classifier

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/htetaung/paisa-tracker/internal/gemini"
	"gitlab.com/htetaung/paisa-tracker/internal/logger"
	"gitlab.com/htetaung/paisa-tracker/internal/models"
)

// ExpenseParser is the external classification call. Satisfied by
// *gemini.Client.
type ExpenseParser interface {
	ParseExpenses(ctx context.Context, text string, today time.Time) ([]gemini.ExpenseCandidate, error)
}

// categorySynonyms maps labels the external service is known to emit
// onto canonical categories. Lookup is case-insensitive, exact first,
// then substring in table order. Unresolvable labels default to
// Miscellaneous.
var categorySynonyms = []struct {
	label    string
	category models.Category
}{
	{"groceries", models.CategoryGroceries},
	{"grocery", models.CategoryGroceries},
	{"food", models.CategoryGroceries},
	{"vegetables", models.CategoryGroceries},
	{"supermarket", models.CategoryGroceries},
	{"restaurant", models.CategoryOutings},
	{"dining", models.CategoryOutings},
	{"entertainment", models.CategoryOutings},
	{"movies", models.CategoryOutings},
	{"travel", models.CategoryOutings},
	{"outing", models.CategoryOutings},
	{"body care", models.CategoryBodyCare},
	{"personal care", models.CategoryBodyCare},
	{"health", models.CategoryBodyCare},
	{"shopping", models.CategoryOrders},
	{"online", models.CategoryOrders},
	{"order", models.CategoryOrders},
	{"fuel", models.CategoryPetrol},
	{"transport", models.CategoryPetrol},
	{"utilities", models.CategoryBills},
	{"rent", models.CategoryBills},
	{"bill", models.CategoryBills},
	{"investment", models.CategorySavings},
	{"saving", models.CategorySavings},
	{"misc", models.CategoryMiscellaneous},
}

// Upgrader runs the asynchronous classification upgrade.
type Upgrader struct {
	parser ExpenseParser
}

// NewUpgrader creates an Upgrader over the given external parser.
func NewUpgrader(parser ExpenseParser) *Upgrader {
	return &Upgrader{parser: parser}
}

// Classify calls the external service and normalizes its output.
// It never returns an error: any failure is logged and yields an empty
// result, because the caller already displays the heuristic parse.
func (u *Upgrader) Classify(ctx context.Context, text string, today time.Time) []models.ParsedExpense {
	if u == nil || u.parser == nil {
		return nil
	}

	candidates, err := u.parser.ParseExpenses(ctx, text, today)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("expense classification failed, keeping heuristic result")
		return nil
	}

	var expenses []models.ParsedExpense
	for _, candidate := range candidates {
		if candidate.Amount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		amount := candidate.Amount
		category := NormalizeCategory(candidate.Category)

		description := strings.TrimSpace(candidate.Description)
		if description == "" {
			description = string(category) + " expense"
		}

		date := candidate.Date
		if date.IsZero() {
			date = today
		}

		expenses = append(expenses, models.ParsedExpense{
			Amount:      &amount,
			Category:    &category,
			Description: description,
			Date:        date,
		})
	}

	return expenses
}

// NormalizeCategory coerces a free-text category label into the
// canonical enum. Exact enum values pass through; known synonyms map to
// their category; everything else becomes Miscellaneous.
func NormalizeCategory(label string) models.Category {
	trimmed := strings.TrimSpace(label)

	for _, c := range models.Categories {
		if strings.EqualFold(string(c), trimmed) {
			return c
		}
	}

	lowered := strings.ToLower(trimmed)
	for _, entry := range categorySynonyms {
		if lowered == entry.label {
			return entry.category
		}
	}

	// Substring pass catches compound labels like "Food & Dining".
	for _, entry := range categorySynonyms {
		if strings.Contains(lowered, entry.label) {
			return entry.category
		}
	}

	return models.CategoryMiscellaneous
}
