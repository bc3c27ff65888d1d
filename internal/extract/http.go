package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kelsos/wallet-tracker/internal/logger"
	"github.com/kelsos/wallet-tracker/internal/models"
)

// maxErrorBody bounds how much of a failed response ends up in the error.
const maxErrorBody = 512

// HTTPExtractor fetches a JSON snapshot from an HTTP endpoint.
type HTTPExtractor struct {
	URL        string
	httpClient *http.Client
}

// NewHTTPExtractor creates an extractor for the given URL template. The
// timeout applies per request, on top of any deadline carried by the context.
func NewHTTPExtractor(urlTemplate string, timeout time.Duration) *HTTPExtractor {
	return &HTTPExtractor{
		URL: urlTemplate,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (e *HTTPExtractor) Extract(ctx context.Context, wallet string) (*models.Snapshot, error) {
	target := resolveURL(e.URL, wallet)
	start := time.Now()
	logger.Debug("Fetching snapshot from %s", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		logger.Error("Snapshot request to %s failed after %v: %v", target, time.Since(start), err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	logger.Debug("Snapshot request to %s completed in %v with status %d", target, time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading snapshot: %w", err)
	}

	snapshot, err := decodeSnapshot(body)
	if err != nil {
		return nil, err
	}

	logger.Info("Extracted %d holdings and %d activity rows for %s",
		len(snapshot.Holdings), len(snapshot.Activity), wallet)

	return snapshot, nil
}
