package notify

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/kelsos/wallet-tracker/internal/models"
)

var (
	headlineStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	numericStyle = cellStyle.Align(lipgloss.Right)
)

// ConsoleDeliverer prints the report as a styled table.
type ConsoleDeliverer struct {
	out       io.Writer
	threshold decimal.Decimal
}

func NewConsoleDeliverer(out io.Writer, threshold decimal.Decimal) *ConsoleDeliverer {
	return &ConsoleDeliverer{out: out, threshold: threshold}
}

func (d *ConsoleDeliverer) Deliver(ctx context.Context, report models.Report, wallet string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(headlineStyle.Render(Subject(report)))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Wallet: ") + wallet + "\n")
	b.WriteString(labelStyle.Render("Total:  ") + FormatUSD(report.TotalPortfolioValue) + "\n\n")

	if len(report.SignificantEvents) == 0 {
		fmt.Fprintf(&b, "No new transactions over %s.\n\n", FormatUSD(d.threshold))
	} else {
		for _, event := range report.SignificantEvents {
			b.WriteString(eventStyle.Render("• "+event.Kind) + " " +
				strings.TrimSpace(event.QuantityLabel+" "+event.Token) +
				" (" + FormatUSD(event.ValueUSD) + ")\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(holdingsTable(report.RankedHoldings).String())
	b.WriteString("\n")

	if _, err := io.WriteString(d.out, b.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func holdingsTable(holdings []models.RankedHolding) *table.Table {
	rows := make([][]string, 0, len(holdings))
	for _, h := range holdings {
		rows = append(rows, []string{
			strconv.Itoa(h.Rank),
			h.Token,
			FormatAmount(h.Amount),
			FormatUSD(h.ValueUSD),
			FormatPercent(h.PercentOfTotal),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(labelStyle).
		Headers("#", "Token", "Amount", "Value (USD)", "%").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col >= 2:
				return numericStyle
			default:
				return cellStyle
			}
		})
}
