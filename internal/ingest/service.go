// Package ingest drives scraped content into the canonical store: one
// logical worker, one item at a time, each upsert independently atomic
// so a run can be aborted between items without partial state.
package ingest

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"cinedex/internal/domain"
	"cinedex/internal/scraper"
	"cinedex/internal/storage"
)

// Notifier is told about items seen for the first time. Announcement
// failures are the notifier's problem; ingest never blocks on them.
type Notifier interface {
	AnnounceNewItem(ctx context.Context, item domain.ContentItem)
}

// Summary reports one ingest run. Per-item failures are collected here,
// not propagated: one bad record must not sink the batch.
type Summary struct {
	Processed int
	Created   int
	Updated   int
	Skipped   int
	Failed    int
	Errors    map[string]string
}

// Service ingests scraped records through the repository.
type Service struct {
	repo     storage.Repository
	notifier Notifier
	log      logrus.FieldLogger
}

// New creates an ingest Service. notifier may be nil.
func New(repo storage.Repository, notifier Notifier, logger logrus.FieldLogger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      logger.WithField("component", "ingest"),
	}
}

// Run upserts each item in order. Items sharing a URL within one batch
// are applied in program order, last one wins. The returned error is
// non-nil only for cancellation; storage failures for individual items
// land in the summary.
func (s *Service) Run(ctx context.Context, items []domain.ContentItem, force bool) (Summary, error) {
	summary := Summary{Errors: make(map[string]string)}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		s.ingestOne(ctx, item, force, &summary)
	}

	s.log.WithFields(logrus.Fields{
		"processed": summary.Processed,
		"created":   summary.Created,
		"updated":   summary.Updated,
		"skipped":   summary.Skipped,
		"failed":    summary.Failed,
	}).Info("Ingest run complete")
	return summary, nil
}

// RunSource scrapes each URL and upserts the result. Scrape failures are
// per-item too.
func (s *Service) RunSource(ctx context.Context, sc scraper.Scraper, urls []string, force bool) (Summary, error) {
	summary := Summary{Errors: make(map[string]string)}

	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		item, err := sc.ScrapeItem(ctx, url)
		if err != nil {
			s.log.WithError(err).WithField("url", url).Error("Failed to scrape item")
			summary.Processed++
			summary.Failed++
			summary.Errors[url] = err.Error()
			continue
		}
		s.ingestOne(ctx, item, force, &summary)
	}

	s.log.WithFields(logrus.Fields{
		"processed": summary.Processed,
		"created":   summary.Created,
		"failed":    summary.Failed,
	}).Info("Ingest-from-source run complete")
	return summary, nil
}

func (s *Service) ingestOne(ctx context.Context, item domain.ContentItem, force bool, summary *Summary) {
	log := s.log.WithField("url", item.URL)
	summary.Processed++

	prior, err := s.repo.FindByURL(ctx, item.URL)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.WithError(err).Error("Failed to read prior state")
		summary.Failed++
		summary.Errors[item.URL] = err.Error()
		return
	}

	persisted, err := s.repo.Upsert(ctx, item, force)
	if err != nil {
		log.WithError(err).Error("Failed to upsert item")
		summary.Failed++
		summary.Errors[item.URL] = err.Error()
		return
	}

	switch {
	case prior == nil:
		summary.Created++
		if s.notifier != nil {
			s.notifier.AnnounceNewItem(ctx, persisted)
		}
	case persisted.UpdatedAt.Equal(prior.UpdatedAt):
		summary.Skipped++
	default:
		summary.Updated++
	}
}
