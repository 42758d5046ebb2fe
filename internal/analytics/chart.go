package analytics

import (
	"fmt"

	"github.com/go-analyze/charts"
)

// Chart renders the breakdown as a pie chart. Returns PNG image bytes.
func Chart(summary Summary, period string) ([]byte, error) {
	if len(summary.Breakdown) == 0 {
		return nil, fmt.Errorf("no expenses to chart")
	}

	values := make([]float64, 0, len(summary.Breakdown))
	names := make([]string, 0, len(summary.Breakdown))
	for _, entry := range summary.Breakdown {
		names = append(names, entry.Category)
		values = append(values, entry.Amount.InexactFloat64())
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: fmt.Sprintf("Expense Breakdown - %s", period),
		}),
		charts.LegendLabelsOptionFunc(names),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf, nil
}
