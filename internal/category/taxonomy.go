// Package category derives the read-side category index from the
// canonical store: a declarative taxonomy of types and slugs, a matcher
// that assigns items to slugs, and a materializer that publishes the
// per-slug artifacts readers page through.
package category

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Descriptor describes one category type: a display title, a short
// description and the ordered set of slugs it contains.
type Descriptor struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Slugs       []string `json:"slugs"`
}

// Taxonomy maps a category-type key (e.g. "movies-by-genres") to its
// descriptor. It is read-only input: populated from a sitemap-derived
// listing or configured statically, never mutated by the matcher.
type Taxonomy map[string]Descriptor

// Default returns the built-in taxonomy used when no external listing is
// configured.
func Default() Taxonomy {
	years := make([]string, 0, 30)
	for y := 2025; y >= 1996; y-- {
		years = append(years, strconv.Itoa(y))
	}
	return Taxonomy{
		"movies-by-genres": {
			Title:       "Movies by Genre",
			Description: "Browse movies grouped by genre",
			Slugs: []string{
				"action", "adventure", "animation", "comedy", "crime",
				"drama", "fantasy", "horror", "mystery", "romance",
				"sci-fi", "thriller",
			},
		},
		"movies-by-quality": {
			Title:       "Movies by Quality",
			Description: "Browse movies grouped by available quality",
			Slugs:       []string{"480p", "720p", "1080p", "2160p", "4k"},
		},
		"movies-by-year": {
			Title:       "Movies by Year",
			Description: "Browse movies grouped by release year",
			Slugs:       years,
		},
		"movies-by-language": {
			Title:       "Movies by Language",
			Description: "Browse movies grouped by language",
			Slugs: []string{
				"english", "hindi", "hindi-dubbed", "tamil", "telugu",
				"korean", "japanese",
			},
		},
		"web-series": {
			Title:       "Web Series",
			Description: "Browse series by platform",
			Slugs:       []string{"netflix", "amazon-prime", "disney-hotstar", "apple-tv"},
		},
	}
}

// Load reads a taxonomy from a JSON file with the same shape as the
// Taxonomy type. An empty path yields the default taxonomy.
func Load(path string) (Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file: %w", err)
	}
	var tax Taxonomy
	if err := json.Unmarshal(data, &tax); err != nil {
		return nil, fmt.Errorf("parse taxonomy file %s: %w", path, err)
	}
	return tax, nil
}

// OrderedSlugs returns the slugs of a type in render order: year-like
// types newest first numerically, everything else lexicographic, so the
// manifest ordering is stable across runs.
func (t Taxonomy) OrderedSlugs(typeKey string) []string {
	desc, ok := t[typeKey]
	if !ok {
		return nil
	}
	slugs := append([]string(nil), desc.Slugs...)
	if isYearType(typeKey) {
		sort.Slice(slugs, func(i, j int) bool {
			a, _ := strconv.Atoi(slugs[i])
			b, _ := strconv.Atoi(slugs[j])
			return a > b
		})
	} else {
		sort.Strings(slugs)
	}
	return slugs
}

// OrderedTypes returns the type keys in lexicographic order.
func (t Taxonomy) OrderedTypes() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isYearType(typeKey string) bool {
	return strings.Contains(typeKey, "year")
}

// Slugify normalizes a free-text tag to slug form: lowercased, spaces
// and separators collapsed to single hyphens.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastHyphen := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
