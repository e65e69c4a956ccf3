package scraper

import (
	"context"

	"cinedex/internal/domain"
)

// Scraper defines the interface for fetching a content record from a
// source page. Implementations deliver a best-effort, possibly partial
// snapshot; the merge and store layers own reconciliation, so a scraper
// never needs to worry about ids or prior state.
type Scraper interface {
	// ScrapeItem fetches one content record for the given URL.
	ScrapeItem(ctx context.Context, url string) (domain.ContentItem, error)
}
