package category

import (
	"strings"

	"github.com/sirupsen/logrus"

	"cinedex/internal/domain"
	"cinedex/internal/extract"
)

// Result holds, per type and slug, the lightweight member list in
// canonical store iteration order.
type Result map[string]map[string][]domain.ItemRef

// MatchOptions tune the matching pass.
type MatchOptions struct {
	// Comprehensive additionally runs the free-text substring pass over
	// title, URL, synopsis and plot. Costlier and broader; used for full
	// rebuilds, not incremental refreshes.
	Comprehensive bool
}

// Matcher assigns canonical items to taxonomy slugs. Matching is
// inclusive (one item may land in many slugs across many types) and
// deterministic for a given taxonomy and item set.
type Matcher struct {
	log logrus.FieldLogger
}

// NewMatcher creates a Matcher.
func NewMatcher(logger logrus.FieldLogger) *Matcher {
	return &Matcher{log: logger.WithField("component", "matcher")}
}

// Match scans the full item set once per slug and applies the predicate
// chain in order of increasing cost: tag membership, structured-field
// equality, then (comprehensive only) free-text search. Item order within
// a slug follows the order of items, which callers take from
// Repository.All.
func (m *Matcher) Match(tax Taxonomy, items []domain.ContentItem, opts MatchOptions) Result {
	result := make(Result, len(tax))
	for typeKey, desc := range tax {
		bySlug := make(map[string][]domain.ItemRef, len(desc.Slugs))
		for _, slug := range desc.Slugs {
			var refs []domain.ItemRef
			for _, item := range items {
				if m.matches(item, slug, opts) {
					refs = append(refs, item.Ref())
				}
			}
			bySlug[slug] = refs
		}
		result[typeKey] = bySlug
	}

	m.log.WithFields(logrus.Fields{
		"types": len(tax),
		"items": len(items),
	}).Debug("category matching complete")
	return result
}

func (m *Matcher) matches(item domain.ContentItem, slug string, opts MatchOptions) bool {
	if matchesTags(item, slug) {
		return true
	}
	if matchesFields(item, slug) {
		return true
	}
	if opts.Comprehensive && matchesText(item, slug) {
		return true
	}
	return false
}

// matchesTags checks tag membership. Comparison is case-insensitive and
// slug-normalized, so tag "Hindi Dubbed" matches slug "hindi-dubbed".
func matchesTags(item domain.ContentItem, slug string) bool {
	for _, tag := range item.Tags {
		if strings.EqualFold(Slugify(tag), slug) {
			return true
		}
	}
	return false
}

// matchesFields checks structured-field equality: release year, language
// and every quality the item offers. Quality is inclusive across link
// groups, so an item with 1080p and 720p options matches both slugs.
func matchesFields(item domain.ContentItem, slug string) bool {
	for _, info := range item.Info {
		if info.ReleaseYear != "" && info.ReleaseYear == slug {
			return true
		}
		if info.Language != "" && strings.EqualFold(Slugify(info.Language), slug) {
			return true
		}
		for _, sec := range info.Sections {
			if q := extract.Quality(sec.Heading); q != "" && q == slug {
				return true
			}
			for _, g := range sec.Links {
				if g.Quality != "" && strings.EqualFold(g.Quality, slug) {
					return true
				}
				if q := extract.Quality(g.Name); q != "" && q == slug {
					return true
				}
			}
		}
	}
	return false
}

// matchesText is the comprehensive free-text pass: the slug, with
// hyphens widened back to spaces, searched across title, URL, synopsis
// and plot.
func matchesText(item domain.ContentItem, slug string) bool {
	needle := strings.ToLower(strings.ReplaceAll(slug, "-", " "))
	if needle == "" {
		return false
	}
	haystacks := []string{item.Title, item.URL}
	for _, info := range item.Info {
		haystacks = append(haystacks, info.Synopsis, info.Plot)
	}
	for _, h := range haystacks {
		h = strings.ToLower(h)
		if strings.Contains(h, needle) {
			return true
		}
		// URLs keep their hyphens
		if strings.Contains(h, strings.ReplaceAll(needle, " ", "-")) {
			return true
		}
	}
	return false
}
