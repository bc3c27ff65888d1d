// Package notify hands finished reports to the outside world.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kelsos/wallet-tracker/internal/models"
)

// Deliverer sends a report for a wallet. A returned error means the report
// may not have reached its destination; it is never retried.
type Deliverer interface {
	Deliver(ctx context.Context, report models.Report, wallet string) error
}

// maxAmountPlaces caps the precision shown for token amounts.
const maxAmountPlaces = 8

var printer = message.NewPrinter(language.English)

// Subject is the headline shared by all delivery channels.
func Subject(report models.Report) string {
	return fmt.Sprintf("Wallet Update: %d New TXs + Top Holdings", len(report.SignificantEvents))
}

// FormatUSD renders a dollar value with thousands separators and two decimals.
func FormatUSD(value decimal.Decimal) string {
	return "$" + printer.Sprintf("%.2f", value.Round(2).InexactFloat64())
}

// FormatAmount renders a token amount with thousands separators, keeping the
// significant decimals of the value.
func FormatAmount(amount decimal.Decimal) string {
	places := 0
	if s := amount.String(); strings.Contains(s, ".") {
		places = len(s) - strings.Index(s, ".") - 1
	}
	if places > maxAmountPlaces {
		places = maxAmountPlaces
	}
	return printer.Sprintf(fmt.Sprintf("%%.%df", places), amount.InexactFloat64())
}

// FormatPercent renders a share of the portfolio, for example "25.00%".
func FormatPercent(pct decimal.Decimal) string {
	return pct.StringFixed(2) + "%"
}

// Multi fans a report out to several deliverers. Every deliverer is tried;
// their errors are joined.
type Multi []Deliverer

func (m Multi) Deliver(ctx context.Context, report models.Report, wallet string) error {
	var errs []error
	for _, d := range m {
		if err := d.Deliver(ctx, report, wallet); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
