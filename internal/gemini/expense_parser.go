package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

// ParseExpensesTimeout is the timeout for expense extraction API calls.
const ParseExpensesTimeout = 15 * time.Second

// MaxInputLength caps the user text embedded in the prompt.
const MaxInputLength = 500

// MinInputLength is the minimum number of non-whitespace characters the
// input must hold before a classification call is worth making.
const MinInputLength = 3

// ErrParseTimeout indicates the Gemini API call timed out.
var ErrParseTimeout = errors.New("expense extraction timed out")

// ExpenseCandidate is one expense extracted by the model. Category is
// the model's free-text label; normalization to the canonical enum
// happens in the classifier package, never here.
type ExpenseCandidate struct {
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        time.Time
}

// expensesResponse is the JSON structure returned by Gemini.
type expensesResponse struct {
	Expenses []expenseEntry `json:"expenses"`
}

type expenseEntry struct {
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// ParseExpenses extracts zero or more structured expenses from free
// text. Input shorter than MinInputLength non-whitespace characters
// returns an empty result without calling the API. Entries whose amount
// is missing or unparseable are dropped.
func (c *Client) ParseExpenses(ctx context.Context, text string, today time.Time) ([]ExpenseCandidate, error) {
	if len(strings.Join(strings.Fields(text), "")) < MinInputLength {
		return nil, nil
	}

	if c.generator == nil {
		return nil, fmt.Errorf("gemini client not initialized")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, ParseExpensesTimeout)
	defer cancel()

	prompt := buildExpensesPrompt(SanitizeForPrompt(text, MaxInputLength), today)

	temp := float32(0.2)
	config := &genai.GenerateContentConfig{
		Temperature:      &temp,
		MaxOutputTokens:  int32(800),
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: "You are a JSON API. You MUST respond with ONLY valid JSON, no preamble or explanation. Output a single JSON object."},
			},
		},
	}

	resp, err := c.generator.GenerateContent(timeoutCtx, ModelName, []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}, config)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrParseTimeout
		}
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if resp == nil {
		return nil, fmt.Errorf("no response from Gemini")
	}

	fullText := resp.Text()
	if fullText == "" {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	return parseExpensesResponse(fullText, today)
}

func buildExpensesPrompt(text string, today time.Time) string {
	return fmt.Sprintf(`Extract expense entries from this text: "%s"

Today's date is %s. The text may describe one expense or several.

Return ONLY a JSON object with no additional text or markdown formatting:
{"expenses": [{"amount": "250.00", "category": "Food", "description": "Dinner at cafe", "date": "%s"}]}

Required fields per entry:
- amount: The numeric amount spent (string, e.g. "250.00"). Use "0" if unknown.
- category: A short category label (e.g. "Food", "Transport", "Shopping")
- description: What the money was spent on
- date: The date of the expense in YYYY-MM-DD format; "yesterday" means the day before today

Return {"expenses": []} if the text describes no spending.`,
		text, today.Format("2006-01-02"), today.Format("2006-01-02"))
}

// parseExpensesResponse decodes the model output, tolerating markdown
// code fences and preamble text around the JSON object.
func parseExpensesResponse(response string, today time.Time) ([]ExpenseCandidate, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = extractJSON(response)
	if response == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var er expensesResponse
	if err := json.Unmarshal([]byte(response), &er); err != nil {
		return nil, fmt.Errorf("failed to parse expenses response: %w", err)
	}

	var candidates []ExpenseCandidate
	for _, entry := range er.Expenses {
		if entry.Amount == "" || entry.Amount == "0" {
			continue
		}
		amount, err := decimal.NewFromString(entry.Amount)
		if err != nil || amount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		candidate := ExpenseCandidate{
			Amount:      amount,
			Category:    SanitizeForPrompt(entry.Category, 50),
			Description: SanitizeForPrompt(entry.Description, MaxDescriptionLength),
			Date:        today,
		}
		if entry.Date != "" {
			if date, err := time.Parse("2006-01-02", entry.Date); err == nil {
				candidate.Date = date
			}
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// extractJSON extracts a JSON object from text that may contain
// preamble. Gemini sometimes returns responses like "Here is the
// JSON:\n{...}" even when ResponseMIMEType is set to application/json.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	end := strings.LastIndex(text, "}")
	if end == -1 || end <= start {
		return ""
	}

	return text[start : end+1]
}
