// Package budget evaluates the configured budget against the full
// transaction set and produces deduplicated, severity-ranked alerts.
package budget

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/htetaung/paisa-tracker/internal/dateutil"
	"gitlab.com/htetaung/paisa-tracker/internal/models"
)

// warningRatio is the fraction of a limit at which a warning fires.
var warningRatio = decimal.NewFromFloat(0.8)

// Evaluate recomputes all alerts from scratch. It is a pure function of
// its inputs; callers re-run it on every relevant state change and apply
// their own dismissed-id filtering.
//
// Alert ids are deterministic. Weekly-scoped ids use today's date as the
// discriminator rather than the week id, so a dismissed weekly alert
// reappears the next calendar day even within the same week. That is the
// intended re-alerting cadence.
func Evaluate(state models.BudgetState, txs []models.Transaction, now time.Time) []models.AlertItem {
	var alerts []models.AlertItem

	today := now.Format("2006-01-02")
	month := dateutil.MonthIdentifier(now)

	weeklySpent := bucketSpentThisWeek(txs, now)
	monthlySpent := bucketSpentThisMonth(txs, now)

	if alert := limitAlert(weeklySpent, state.Allocations.WeeklyLimit,
		"weekly-critical-"+today, "weekly-warning-"+today,
		"Weekly Budget Exceeded", "Weekly Budget Warning", "weekly budget"); alert != nil {
		alerts = append(alerts, *alert)
	}

	for _, category := range models.Categories {
		limit, ok := state.Allocations.WeeklyCategoryLimits[category]
		if !ok || !limit.IsPositive() {
			continue
		}
		spent := categorySpentThisWeek(txs, category, now)
		if alert := limitAlert(spent, limit,
			fmt.Sprintf("weekly-cat-critical-%s-%s", category, today),
			fmt.Sprintf("weekly-cat-warning-%s-%s", category, today),
			fmt.Sprintf("%s Budget Exceeded", category),
			fmt.Sprintf("%s Budget Warning", category),
			fmt.Sprintf("weekly %s budget", category)); alert != nil {
			alerts = append(alerts, *alert)
		}
	}

	if alert := limitAlert(monthlySpent, state.Allocations.MonthlyLimit,
		"monthly-critical-"+month, "monthly-warning-"+month,
		"Monthly Budget Exceeded", "Monthly Budget Warning", "monthly budget"); alert != nil {
		alerts = append(alerts, *alert)
	}

	if state.Allocations.SavingsTarget.IsPositive() {
		alerts = append(alerts, savingsAlert(state, txs, month))
	}

	return alerts
}

// limitAlert applies the spend-type thresholds: above the limit is
// critical, at or past 80% of it is a warning, below that nothing.
// A non-positive limit is unconfigured and never alerts.
func limitAlert(spent, limit decimal.Decimal, criticalID, warningID, criticalTitle, warningTitle, scope string) *models.AlertItem {
	if !limit.IsPositive() {
		return nil
	}

	switch {
	case spent.GreaterThan(limit):
		return &models.AlertItem{
			ID:    criticalID,
			Type:  models.AlertCritical,
			Title: criticalTitle,
			Message: fmt.Sprintf("You have spent %s of your %s %s.",
				spent.StringFixed(2), limit.StringFixed(2), scope),
		}
	case spent.GreaterThanOrEqual(limit.Mul(warningRatio)):
		return &models.AlertItem{
			ID:    warningID,
			Type:  models.AlertWarning,
			Title: warningTitle,
			Message: fmt.Sprintf("You have used %s of your %s %s.",
				spent.StringFixed(2), limit.StringFixed(2), scope),
		}
	}

	return nil
}

// savingsAlert evaluates the savings target. Savings are computed as
// monthly income minus ALL spending since inception, not scoped to the
// current month. That is the stated behavior, not an oversight. Any
// shortfall is a warning; there is no critical tier for savings.
func savingsAlert(state models.BudgetState, txs []models.Transaction, month string) models.AlertItem {
	spentAllTime := decimal.Zero
	for _, tx := range txs {
		spentAllTime = spentAllTime.Add(tx.Amount)
	}
	currentSavings := state.MonthlyIncome.Sub(spentAllTime)

	if currentSavings.GreaterThanOrEqual(state.Allocations.SavingsTarget) {
		return models.AlertItem{
			ID:    "savings-success-" + month,
			Type:  models.AlertSuccess,
			Title: "Savings On Track",
			Message: fmt.Sprintf("Your savings of %s meet your %s target.",
				currentSavings.StringFixed(2), state.Allocations.SavingsTarget.StringFixed(2)),
		}
	}

	return models.AlertItem{
		ID:    "savings-warning-" + month,
		Type:  models.AlertWarning,
		Title: "Savings Below Goal",
		Message: fmt.Sprintf("Your savings of %s are below your %s target.",
			currentSavings.StringFixed(2), state.Allocations.SavingsTarget.StringFixed(2)),
	}
}

// bucketSpentThisWeek sums current-ISO-week transactions whose category
// maps to the Weekly bucket.
func bucketSpentThisWeek(txs []models.Transaction, now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if models.BucketFor(tx.Category) != models.BucketWeekly {
			continue
		}
		if !dateutil.IsSameWeek(tx.Date, now) {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total
}

// bucketSpentThisMonth sums current-calendar-month transactions whose
// category maps to the Monthly bucket.
func bucketSpentThisMonth(txs []models.Transaction, now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if models.BucketFor(tx.Category) != models.BucketMonthly {
			continue
		}
		if !dateutil.SameMonth(tx.Date, now) {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total
}

// categorySpentThisWeek sums current-ISO-week spending for one category.
func categorySpentThisWeek(txs []models.Transaction, category models.Category, now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Category != category {
			continue
		}
		if !dateutil.IsSameWeek(tx.Date, now) {
			continue
		}
		total = total.Add(tx.Amount)
	}
	return total
}
