// Package extract obtains a wallet snapshot from an extraction source.
package extract

import (
	"context"
	"net/url"
	"strings"

	"github.com/kelsos/wallet-tracker/internal/models"
)

// WalletPlaceholder is replaced with the wallet identifier in source locations.
const WalletPlaceholder = "{wallet}"

// Extractor returns the current holdings and activity of a wallet.
type Extractor interface {
	Extract(ctx context.Context, wallet string) (*models.Snapshot, error)
}

// resolveURL substitutes the wallet placeholder, or appends the wallet as the
// last path segment when the template has none.
func resolveURL(template, wallet string) string {
	if strings.Contains(template, WalletPlaceholder) {
		return strings.ReplaceAll(template, WalletPlaceholder, url.PathEscape(wallet))
	}

	u, err := url.Parse(template)
	if err != nil {
		return strings.TrimRight(template, "/") + "/" + url.PathEscape(wallet)
	}
	u = u.JoinPath(wallet)
	return u.String()
}

func resolvePath(template, wallet string) string {
	return strings.ReplaceAll(template, WalletPlaceholder, wallet)
}
