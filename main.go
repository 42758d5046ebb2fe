// Package main is the entry point for the interactive expense tracker.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/htetaung/paisa-tracker/internal/analytics"
	"gitlab.com/htetaung/paisa-tracker/internal/classifier"
	"gitlab.com/htetaung/paisa-tracker/internal/config"
	"gitlab.com/htetaung/paisa-tracker/internal/gemini"
	"gitlab.com/htetaung/paisa-tracker/internal/logger"
	"gitlab.com/htetaung/paisa-tracker/internal/models"
	"gitlab.com/htetaung/paisa-tracker/internal/notify"
	"gitlab.com/htetaung/paisa-tracker/internal/preview"
	"gitlab.com/htetaung/paisa-tracker/internal/store"
	"gitlab.com/htetaung/paisa-tracker/internal/tracker"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("paisa-tracker %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.SetLevel(cfg.LogLevel)

	var st store.Store
	if cfg.FirebaseProjectID != "" {
		fs, err := store.NewFirestoreStore(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentials)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect to Firestore")
		}
		defer fs.Close()
		st = fs
	} else {
		logger.Log.Warn().Msg("FIREBASE_PROJECT_ID not set, using in-memory store")
		st = store.NewMemStore()
	}

	opts := []tracker.Option{}

	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Gemini unavailable, previews stay heuristic-only")
		} else {
			upgrader := classifier.NewUpgrader(client)
			opts = append(opts, tracker.WithDebouncer(preview.NewDebouncer(upgrader, cfg.AIPreviewDebounce)))
		}
	}

	if cfg.NotificationsEnabled {
		opts = append(opts, tracker.WithDispatcher(notify.NewDispatcher(ctx, notify.LogNotifier{})))
	}

	t := tracker.New(st, cfg.UserID, opts...)
	t.Bootstrap(ctx)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Log.Info().Msg("Shutting down...")
		cancel()
	}()

	runLoop(ctx, t)
}

// runLoop reads commands from stdin until EOF or cancellation. A plain
// line of text previews as expense input; commit records the current
// preview, which the AI upgrade may have refined in the meantime.
func runLoop(ctx context.Context, t *tracker.Tracker) {
	fmt.Println("paisa-tracker ready. Type an expense (e.g. \"rs 250 groceries\") to preview it, then: commit, cancel")
	fmt.Println("other commands: alerts, stats, chart, budget [set ...], income <amount>, dismiss <id>, delete <id>, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "quit", "exit":
			return
		case "commit", "ok":
			commitPreview(ctx, t)
		case "cancel":
			t.ClearPreview()
			fmt.Println("preview discarded")
		case "alerts":
			printAlerts(t.Alerts())
		case "stats":
			printSummary(t.Summary())
		case "chart":
			writeChart(t.Summary())
		case "budget":
			handleBudget(ctx, t, arg)
		case "income":
			setIncome(ctx, t, arg)
		case "dismiss":
			t.Dismiss(arg)
		case "delete":
			t.Delete(ctx, arg)
			fmt.Println("deleted", arg)
		default:
			previewLine(ctx, t, line)
		}
	}
}

// previewLine runs the heuristic parse immediately and schedules the
// debounced AI refinement into the same preview slot.
func previewLine(ctx context.Context, t *tracker.Tracker, line string) {
	expenses := t.Preview(ctx, line)
	if len(expenses) == 0 {
		fmt.Println("could not find an amount in that, nothing to preview")
		return
	}

	for _, exp := range expenses {
		category := models.CategoryMiscellaneous
		if exp.Category != nil {
			category = *exp.Category
		}
		fmt.Printf("preview  %s  %s  %s\n",
			exp.Amount.StringFixed(2), category, exp.Description)
	}
	fmt.Println("type 'commit' to record, 'cancel' to discard, or keep typing to refine")
}

// commitPreview records whatever the preview slot currently holds,
// heuristic or AI-refined.
func commitPreview(ctx context.Context, t *tracker.Tracker) {
	expenses := t.CurrentPreview()
	if len(expenses) == 0 {
		fmt.Println("nothing to commit")
		return
	}

	for _, tx := range t.Commit(ctx, expenses) {
		fmt.Printf("recorded %s  %s  %s  (%s)\n",
			tx.Amount.StringFixed(2), tx.Category, tx.Description, tx.ID)
	}
}

const budgetUsage = "usage: budget | budget set weekly|monthly|savings <amount> | budget set cat <category> <amount>"

// handleBudget prints the budget state or applies one limit edit. A
// rejected edit (savings target above income) is surfaced and the prior
// state retained.
func handleBudget(ctx context.Context, t *tracker.Tracker, arg string) {
	if arg == "" {
		printBudget(t.Budget())
		return
	}

	fields := strings.Fields(arg)
	if len(fields) < 3 || fields[0] != "set" {
		fmt.Println(budgetUsage)
		return
	}

	alloc := t.Budget().Allocations
	if alloc.WeeklyCategoryLimits != nil {
		limits := make(map[models.Category]decimal.Decimal, len(alloc.WeeklyCategoryLimits))
		for k, v := range alloc.WeeklyCategoryLimits {
			limits[k] = v
		}
		alloc.WeeklyCategoryLimits = limits
	}

	switch fields[1] {
	case "weekly", "monthly", "savings":
		amount, err := decimal.NewFromString(fields[2])
		if err != nil {
			fmt.Println(budgetUsage)
			return
		}
		switch fields[1] {
		case "weekly":
			alloc.WeeklyLimit = amount
		case "monthly":
			alloc.MonthlyLimit = amount
		case "savings":
			alloc.SavingsTarget = amount
		}
	case "cat":
		if len(fields) < 4 {
			fmt.Println(budgetUsage)
			return
		}
		category := models.Category(fields[2])
		if !category.IsValid() {
			fmt.Println("unknown category:", fields[2])
			return
		}
		amount, err := decimal.NewFromString(fields[3])
		if err != nil {
			fmt.Println(budgetUsage)
			return
		}
		if alloc.WeeklyCategoryLimits == nil {
			alloc.WeeklyCategoryLimits = make(map[models.Category]decimal.Decimal)
		}
		alloc.WeeklyCategoryLimits[category] = amount
	default:
		fmt.Println(budgetUsage)
		return
	}

	if err := t.SetAllocations(ctx, alloc); err != nil {
		fmt.Println("rejected:", err)
		return
	}
	fmt.Println("budget updated")
}

func setIncome(ctx context.Context, t *tracker.Tracker, arg string) {
	income, err := decimal.NewFromString(arg)
	if err != nil {
		fmt.Println("usage: income <amount>")
		return
	}
	if err := t.SetIncome(ctx, income); err != nil {
		fmt.Println("rejected:", err)
		return
	}
	fmt.Println("monthly income set to", income.StringFixed(2))
}

func printAlerts(alerts []models.AlertItem) {
	if len(alerts) == 0 {
		fmt.Println("no alerts")
		return
	}
	for _, alert := range alerts {
		fmt.Printf("[%s] %s: %s  (%s)\n", alert.Type, alert.Title, alert.Message, alert.ID)
	}
}

func printSummary(summary analytics.Summary) {
	fmt.Println("total spent:", summary.TotalSpent.StringFixed(2))
	for _, entry := range summary.Breakdown {
		fmt.Printf("  %-24s %10s  %3d%%  (%d)\n",
			entry.Category, entry.Amount.StringFixed(2), entry.Percentage, entry.Count)
	}
	for _, insight := range summary.Insights {
		fmt.Println("  *", insight)
	}
}

func writeChart(summary analytics.Summary) {
	png, err := analytics.Chart(summary, time.Now().Format("January 2006"))
	if err != nil {
		fmt.Println("chart:", err)
		return
	}
	name := fmt.Sprintf("expenses-%s.png", time.Now().Format("2006-01"))
	if err := os.WriteFile(name, png, 0o644); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to write chart file")
		return
	}
	fmt.Println("chart written to", name)
}

func printBudget(state models.BudgetState) {
	if !state.IsSet {
		fmt.Println("budget not set up yet; use: income <amount>")
		return
	}
	fmt.Println("monthly income:", state.MonthlyIncome.StringFixed(2))
	fmt.Println("weekly limit:  ", state.Allocations.WeeklyLimit.StringFixed(2))
	fmt.Println("monthly limit: ", state.Allocations.MonthlyLimit.StringFixed(2))
	fmt.Println("savings target:", state.Allocations.SavingsTarget.StringFixed(2))
	for category, limit := range state.Allocations.WeeklyCategoryLimits {
		fmt.Printf("  weekly %s limit: %s\n", category, limit.StringFixed(2))
	}
}
