package storage

import (
	"context"
	"errors"

	"cinedex/internal/domain"
)

// ErrNotFound is returned when no item exists for the requested URL.
var ErrNotFound = errors.New("content item not found")

// Repository defines the interface for the canonical content store.
// This allows us to swap storage implementations (e.g., BadgerDB, SQL)
// without changing the core application logic that uses it.
type Repository interface {
	// FindByURL retrieves the persisted item for its natural key.
	// Returns ErrNotFound when the URL has never been upserted.
	FindByURL(ctx context.Context, url string) (*domain.ContentItem, error)

	// Upsert merges item against the stored state for item.URL and
	// persists the result, assigning a stable item id on first insert
	// and stable section ids via the merger. With force=false a write
	// whose merged form is byte-identical to the stored form is skipped.
	// The persisted, id-bearing form is returned either way.
	Upsert(ctx context.Context, item domain.ContentItem, force bool) (domain.ContentItem, error)

	// All returns every persisted item in insertion order.
	All(ctx context.Context) ([]domain.ContentItem, error)

	// Delete removes an item by URL. Deleting an absent URL is a no-op.
	// This is an administrative operation; the ingest path never deletes.
	Delete(ctx context.Context, url string) error

	// Close gracefully shuts down the repository connection.
	Close() error
}
