package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"

	"cinedex/internal/domain"
)

// RodScraper implements the Scraper interface using the rod library.
// It is deliberately thin: it lifts the page-level metadata a generic
// content page exposes (title, preview image, description, tags) and
// leaves section-level extraction to site-specific implementations.
type RodScraper struct {
	log logrus.FieldLogger
}

// NewRodScraper creates a new scraper service instance.
func NewRodScraper(logger logrus.FieldLogger) *RodScraper {
	return &RodScraper{
		log: logger.WithField("component", "scraper"),
	}
}

// ScrapeItem fetches one content record using rod.
func (s *RodScraper) ScrapeItem(ctx context.Context, url string) (item domain.ContentItem, err error) {
	log := s.log.WithField("url", url)
	log.Info("Scraping content page")

	path, exists := launcher.LookPath()
	if !exists {
		log.Error("Cannot find browser executable for rod")
		return domain.ContentItem{}, errors.New("rod browser dependency not found")
	}
	u := launcher.New().Bin(path).MustLaunch()
	browser := rod.New().ControlURL(u)
	if err = browser.Connect(); err != nil {
		log.WithError(err).Error("Failed to connect to rod browser")
		return domain.ContentItem{}, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil {
			log.WithError(closeErr).Error("Error closing rod browser instance")
			if err == nil {
				err = fmt.Errorf("error closing browser: %w", closeErr)
			}
		}
	}()

	var page *rod.Page
	page, err = browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		log.WithError(err).Error("Failed to create rod page")
		return domain.ContentItem{}, fmt.Errorf("failed to create page: %w", err)
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			log.WithError(closeErr).Error("Error closing rod page")
			if err == nil {
				err = fmt.Errorf("error closing page: %w", closeErr)
			}
		}
	}()

	pageCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	page = page.Context(pageCtx)

	if err = page.WaitLoad(); err != nil {
		if errors.Is(pageCtx.Err(), context.DeadlineExceeded) {
			log.WithError(pageCtx.Err()).Warn("Scraping timed out")
			return domain.ContentItem{}, fmt.Errorf("scraping timed out for %s: %w", url, pageCtx.Err())
		}
		log.WithError(err).Error("Failed to wait for page load")
		return domain.ContentItem{}, fmt.Errorf("failed waiting for page load: %w", err)
	}

	item = domain.ContentItem{
		URL:       url,
		Title:     s.pageTitle(page, log),
		Thumbnail: s.metaContent(page, log, `meta[property="og:image"]`),
		Date:      s.metaContent(page, log, `meta[property="article:published_time"]`),
	}
	if synopsis := s.description(page, log); synopsis != "" {
		item.Info = []domain.ContentInfo{{Synopsis: synopsis}}
	}

	log.WithField("title", item.Title).Info("Content page scraped")
	return item, nil
}

func (s *RodScraper) pageTitle(page *rod.Page, log logrus.FieldLogger) string {
	titleElement, err := page.Element("title")
	if err != nil {
		log.WithError(err).Warn("Could not find title element")
		return ""
	}
	title, err := titleElement.Text()
	if err != nil {
		log.WithError(err).Error("Failed to get text from title element")
		return ""
	}
	return strings.TrimSpace(title)
}

func (s *RodScraper) description(page *rod.Page, log logrus.FieldLogger) string {
	for _, selector := range []string{
		`meta[name="description"]`,
		`meta[property="og:description"]`,
	} {
		if content := s.metaContent(page, log, selector); content != "" {
			return content
		}
	}
	log.Debug("Could not find description meta tag")
	return ""
}

func (s *RodScraper) metaContent(page *rod.Page, log logrus.FieldLogger, selector string) string {
	element, err := page.Element(selector)
	if err != nil {
		if !strings.Contains(err.Error(), "element not found") {
			log.WithError(err).WithField("selector", selector).Warn("Error searching for meta tag")
		}
		return ""
	}
	content, err := element.Attribute("content")
	if err != nil || content == nil {
		return ""
	}
	return strings.TrimSpace(*content)
}
