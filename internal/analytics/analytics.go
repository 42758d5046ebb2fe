// Package analytics aggregates transactions into category breakdowns,
// percentages, and derived textual insights. Everything here is
// display-only; granular categories are never persisted.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"gitlab.com/htetaung/paisa-tracker/internal/models"
)

// GranularPersonal is the display bucket for raw "Personal" transactions.
const GranularPersonal = "Personal Purchases"

// GranularFoodDelivery is the display bucket for delivery-app spending.
const GranularFoodDelivery = "Food Delivery"

// descriptionBuckets relabels transactions by merchant keywords found in
// the description. First match in table order wins.
var descriptionBuckets = []struct {
	bucket   string
	keywords []string
}{
	{GranularFoodDelivery, []string{"zomato", "swiggy"}},
	{"Groceries", []string{"blinkit", "zepto", "dmart", "bigbasket"}},
	{"Subscriptions", []string{"netflix", "spotify", "hotstar", "prime video"}},
	{"Online Shopping", []string{"amazon", "flipkart", "myntra"}},
}

// displayNames formats raw categories that read poorly verbatim.
var displayNames = map[models.Category]string{
	models.CategoryBills:   "Bills & Utilities",
	models.CategoryPetrol:  "Petrol / Transport",
	models.CategoryOutings: "Outings & Entertainment",
}

// BreakdownEntry is one granular category's share of total spend.
type BreakdownEntry struct {
	Category   string
	Amount     decimal.Decimal
	Count      int
	Percentage int
}

// Summary is the analytics output for a transaction set.
type Summary struct {
	TotalSpent        decimal.Decimal
	Breakdown         []BreakdownEntry
	TopCategories     []BreakdownEntry
	PersonalPurchases []models.Transaction
	Insights          []string
}

// GranularCategory refines a transaction's display category beyond the
// raw enum. Pure function of (category, description): raw "Personal"
// overrides everything, then merchant keywords in the description, then
// the formatted raw category.
func GranularCategory(category models.Category, description string) string {
	if string(category) == "Personal" {
		return GranularPersonal
	}

	lowered := strings.ToLower(description)
	for _, entry := range descriptionBuckets {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				return entry.bucket
			}
		}
	}

	if name, ok := displayNames[category]; ok {
		return name
	}
	return string(category)
}

// Summarize aggregates the transactions into a Summary.
func Summarize(txs []models.Transaction) Summary {
	summary := Summary{TotalSpent: decimal.Zero}

	type group struct {
		amount decimal.Decimal
		count  int
	}
	groups := make(map[string]*group)

	for _, tx := range txs {
		summary.TotalSpent = summary.TotalSpent.Add(tx.Amount)

		name := GranularCategory(tx.Category, tx.Description)
		g, ok := groups[name]
		if !ok {
			g = &group{amount: decimal.Zero}
			groups[name] = g
		}
		g.amount = g.amount.Add(tx.Amount)
		g.count++

		// Collected on the raw category, independent of the granular
		// regrouping above.
		if string(tx.Category) == "Personal" {
			summary.PersonalPurchases = append(summary.PersonalPurchases, tx)
		}
	}

	for name, g := range groups {
		summary.Breakdown = append(summary.Breakdown, BreakdownEntry{
			Category:   name,
			Amount:     g.amount,
			Count:      g.count,
			Percentage: percentage(g.amount, summary.TotalSpent),
		})
	}

	// Amount desc, name asc on ties. The groups map iterates in random
	// order, so the tie-break keeps equal-amount entries stable between
	// runs.
	sort.SliceStable(summary.Breakdown, func(i, j int) bool {
		if !summary.Breakdown[i].Amount.Equal(summary.Breakdown[j].Amount) {
			return summary.Breakdown[i].Amount.GreaterThan(summary.Breakdown[j].Amount)
		}
		return summary.Breakdown[i].Category < summary.Breakdown[j].Category
	})

	top := len(summary.Breakdown)
	if top > 3 {
		top = 3
	}
	summary.TopCategories = summary.Breakdown[:top]

	summary.Insights = insights(summary)

	return summary
}

// percentage returns round(part/total*100), or 0 when total is zero.
func percentage(part, total decimal.Decimal) int {
	if total.IsZero() {
		return 0
	}
	ratio, _ := part.Div(total).Float64()
	return int(math.Round(ratio * 100))
}

// insights derives the fixed-order textual observations. An insight is
// only emitted when its triggering condition holds, so the list may be
// shorter than three entries.
func insights(summary Summary) []string {
	var out []string

	if len(summary.Breakdown) > 0 {
		top := summary.Breakdown[0]
		out = append(out, fmt.Sprintf("Your top spending category is %s at %s.",
			top.Category, top.Amount.StringFixed(2)))
	}

	for _, entry := range summary.Breakdown {
		if entry.Category == GranularFoodDelivery && entry.Percentage > 20 {
			out = append(out, fmt.Sprintf(
				"Food delivery is %d%% of your spending. Cooking at home a few nights could save a lot.",
				entry.Percentage))
			break
		}
	}

	if len(summary.PersonalPurchases) > 0 && !summary.TotalSpent.IsZero() {
		personal := decimal.Zero
		for _, tx := range summary.PersonalPurchases {
			personal = personal.Add(tx.Amount)
		}
		threshold := summary.TotalSpent.Mul(decimal.NewFromFloat(0.15))
		if personal.GreaterThan(threshold) {
			out = append(out, fmt.Sprintf("Personal purchases make up %s of your %s total spend.",
				personal.StringFixed(2), summary.TotalSpent.StringFixed(2)))
		}
	}

	return out
}
