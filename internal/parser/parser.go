// Package parser converts free-text expense input into structured
// expense candidates using local heuristics. It is the fast path: the
// result is always available immediately and may later be superseded by
// the AI classifier's refinement.
package parser

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"gitlab.com/htetaung/paisa-tracker/internal/models"
)

// amountRegex matches an optional currency marker (rs, rs., ₹) followed
// by a number with optional thousands separators and up to 2 decimals,
// e.g. "rs 250", "₹1,200.50", "300".
var amountRegex = regexp.MustCompile(`(?i)(?:rs\.?\s*|₹\s*)?(\d+(?:,\d+)*(?:\.\d{1,2})?)`)

// categoryKeywords maps each category to its trigger keywords. Matching
// is first-match-wins in table order, so the order here is a deliberate
// tie-break: "zomato order for dinner" is Orders, not Outings.
var categoryKeywords = []struct {
	category models.Category
	keywords []string
}{
	{models.CategoryGroceries, []string{
		"groceries", "grocery", "vegetables", "sabzi", "milk", "fruits",
		"kirana", "supermarket", "dmart", "blinkit", "zepto",
	}},
	{models.CategoryOrders, []string{
		"zomato", "swiggy", "amazon", "flipkart", "myntra", "order",
		"delivery", "parcel",
	}},
	{models.CategoryOutings, []string{
		"restaurant", "cafe", "movie", "taxi", "uber", "ola", "dinner",
		"lunch out", "outing", "pub", "bar", "trip",
	}},
	{models.CategoryBodyCare, []string{
		"salon", "haircut", "shampoo", "cosmetics", "skincare", "gym",
		"spa", "soap",
	}},
	{models.CategoryPetrol, []string{
		"petrol", "fuel", "diesel", "gas station",
	}},
	{models.CategoryBills, []string{
		"bill", "electricity", "recharge", "rent", "wifi", "internet",
		"emi", "insurance",
	}},
	{models.CategorySavings, []string{
		"savings", "saved", "deposit", "sip", "invested", "investment",
	}},
	{models.CategoryMiscellaneous, []string{
		"misc", "miscellaneous", "stationery", "gift",
	}},
}

// Parse extracts a best-effort structured expense from one line of text.
// Amount and category are nil when they cannot be extracted; that is not
// an error, the caller decides whether the candidate is usable.
func Parse(text string, now time.Time) models.ParsedExpense {
	parsed := models.ParsedExpense{Date: expenseDate(text, now)}

	amountMatch := amountRegex.FindStringSubmatchIndex(text)
	if amountMatch != nil {
		raw := strings.ReplaceAll(text[amountMatch[2]:amountMatch[3]], ",", "")
		if amount, err := decimal.NewFromString(raw); err == nil {
			parsed.Amount = &amount
		}
	}

	if parsed.Amount != nil {
		category := matchCategory(text)
		parsed.Category = &category
	}

	remainder := text
	if amountMatch != nil {
		remainder = text[:amountMatch[0]] + text[amountMatch[1]:]
	}
	parsed.Description = deriveDescription(remainder, parsed.Category)

	return parsed
}

// Split parses input that may hold several expenses separated by commas
// or newlines. Chunks without an amount are dropped. If no chunk
// survives, the entire original text is retried as a single item, so a
// lone expense whose description contains a comma is not lost.
func Split(text string, now time.Time) []models.ParsedExpense {
	chunks := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	var expenses []models.ParsedExpense
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		parsed := Parse(chunk, now)
		if parsed.HasAmount() {
			expenses = append(expenses, parsed)
		}
	}

	if len(expenses) == 0 {
		whole := Parse(text, now)
		if whole.HasAmount() {
			return []models.ParsedExpense{whole}
		}
		return nil
	}

	return expenses
}

// matchCategory returns the first category whose keyword list contains a
// case-insensitive substring of text, or Miscellaneous if none match.
func matchCategory(text string) models.Category {
	lowered := strings.ToLower(text)
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				return entry.category
			}
		}
	}
	return models.CategoryMiscellaneous
}

// expenseDate attributes the expense to yesterday when the text says so.
// No other relative-date vocabulary is recognized.
func expenseDate(text string, now time.Time) time.Time {
	if strings.Contains(strings.ToLower(text), "yesterday") {
		return now.AddDate(0, 0, -1)
	}
	return now
}

// deriveDescription trims the text left after removing the amount match
// and capitalizes its first character. An empty remainder gets a
// synthesized label.
func deriveDescription(remainder string, category *models.Category) string {
	remainder = strings.TrimSpace(remainder)
	if remainder == "" {
		if category != nil {
			return string(*category) + " expense"
		}
		return "Expense"
	}

	runes := []rune(remainder)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
