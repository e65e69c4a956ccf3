// Package merge reconciles a freshly scraped content item with its
// previously persisted form, keeping section identity stable across
// re-scrapes. The scraper has no upstream ids to offer: the only handle
// on a logical section is its heading text.
package merge

import (
	"github.com/sirupsen/logrus"

	"cinedex/internal/domain"
	"cinedex/internal/extract"
	"cinedex/internal/id"
)

// Merger computes the merged form of an incoming item against the stored
// one. It owns no state beyond its logger and is safe to share.
type Merger struct {
	log logrus.FieldLogger
}

// New creates a Merger.
func New(logger logrus.FieldLogger) *Merger {
	return &Merger{log: logger.WithField("component", "merger")}
}

// Merge returns the item that should be persisted for incoming.
//
// When existing is nil every section receives a fresh id. Otherwise each
// incoming section adopts the id of the first not-yet-claimed existing
// section with the same heading; all other section fields are taken from
// incoming (a content refresh, not a field-level merge). Sections present
// only in existing are dropped: the result reflects what the current
// scrape produced.
//
// Known limitation: duplicate headings inside one scrape bind to existing
// sections in encounter order. First incoming duplicate claims the first
// unclaimed existing match; anything beyond that is first-available, not
// a guarantee.
func (m *Merger) Merge(existing *domain.ContentItem, incoming domain.ContentItem) domain.ContentItem {
	out := incoming
	out.Info = make([]domain.ContentInfo, len(incoming.Info))
	copy(out.Info, incoming.Info)

	for i := range out.Info {
		var prior []domain.Section
		if existing != nil && i < len(existing.Info) {
			prior = existing.Info[i].Sections
		}
		out.Info[i].Sections = m.mergeSections(prior, out.Info[i].Sections)
	}
	return out
}

func (m *Merger) mergeSections(prior, incoming []domain.Section) []domain.Section {
	if len(incoming) == 0 {
		return nil
	}

	merged := make([]domain.Section, len(incoming))
	copy(merged, incoming)

	claimed := make([]bool, len(prior))
	seen := make(map[string]int, len(merged))

	for i := range merged {
		sec := &merged[i]
		enrichSection(sec)

		seen[sec.Heading]++
		if seen[sec.Heading] > 1 {
			m.log.WithField("heading", sec.Heading).
				Debug("duplicate section heading in scrape, binding first-available")
		}

		sec.ID = ""
		for j := range prior {
			if !claimed[j] && prior[j].Heading == sec.Heading && prior[j].ID != "" {
				sec.ID = prior[j].ID
				claimed[j] = true
				break
			}
		}
		if sec.ID == "" {
			sec.ID = id.MustGenerate(id.PrefixSection)
		}
	}
	return merged
}

// enrichSection derives the facet fields a scrape leaves blank: group
// quality and size from the group name, and the purpose of each download
// button from its label.
func enrichSection(sec *domain.Section) {
	if len(sec.Links) == 0 {
		return
	}
	links := make([]domain.LinkGroup, len(sec.Links))
	copy(links, sec.Links)

	for i := range links {
		g := &links[i]
		switch g.Kind {
		case domain.KindMovie, domain.KindBatchZip:
			if g.Quality == "" {
				g.Quality = extract.Quality(g.Name)
			}
			if g.Size == "" {
				g.Size = extract.Size(g.Name)
			}
			if g.Kind == domain.KindBatchZip {
				g.Type = "Batch/Zip"
			}
			downloads := make([]domain.DownloadLink, len(g.Downloads))
			copy(downloads, g.Downloads)
			for k := range downloads {
				if downloads[k].Type == "" {
					downloads[k].Type = extract.LinkPurpose(downloads[k].ButtonLabel)
				}
			}
			g.Downloads = downloads
		}
	}
	sec.Links = links
}
