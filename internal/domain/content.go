package domain

import "time"

// LinkGroupKind discriminates the LinkGroup variants.
type LinkGroupKind string

const (
	KindMovie    LinkGroupKind = "movie"
	KindSeries   LinkGroupKind = "series"
	KindBatchZip LinkGroupKind = "batchzip"
)

// LinkPurpose classifies where a download button points.
type LinkPurpose string

const (
	PurposeGDrive  LinkPurpose = "gdrive"
	PurposeVCloud  LinkPurpose = "vcloud"
	PurposeBatch   LinkPurpose = "batch"
	PurposeDirect  LinkPurpose = "direct"
	PurposeUnknown LinkPurpose = "unknown"
)

// ContentItem is one canonical movie or series record, keyed by the
// source URL. The ID is assigned by the store on first insert and never
// reassigned; the URL is the natural key across re-scrapes.
type ContentItem struct {
	ID        string        `json:"id"`
	URL       string        `json:"url"`
	Title     string        `json:"title"`
	Thumbnail string        `json:"thumbnail,omitempty"`
	Date      string        `json:"date,omitempty"`
	Tags      []string      `json:"tags,omitempty"`
	Info      []ContentInfo `json:"info,omitempty"`

	// Set by the store: CreatedAt on first insert, UpdatedAt on every
	// written upsert. CreatedAt drives canonical iteration order.
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ContentInfo is the descriptive metadata for one release. In practice a
// scrape produces exactly one of these per item.
type ContentInfo struct {
	IMDBRating  string    `json:"imdb_rating,omitempty"`
	Series      bool      `json:"series,omitempty"`
	Season      string    `json:"season,omitempty"`
	Episode     string    `json:"episode,omitempty"`
	ReleaseYear string    `json:"release_year,omitempty"`
	Language    string    `json:"language,omitempty"`
	Size        string    `json:"size,omitempty"`
	Format      string    `json:"format,omitempty"`
	Synopsis    string    `json:"synopsis,omitempty"`
	Plot        string    `json:"plot,omitempty"`
	Screenshots []string  `json:"screenshots,omitempty"`
	Sections    []Section `json:"sections,omitempty"`
}

// Section is a named cluster of download options under one heading
// (e.g. "Download Links - 1080p"). Its ID is identity-bearing: once
// assigned it survives every re-scrape for as long as the heading text
// is unchanged.
type Section struct {
	ID      string      `json:"id"`
	Heading string      `json:"heading"`
	Links   []LinkGroup `json:"links,omitempty"`
}

// LinkGroup is a tagged union over the movie, series and batch/zip
// variants. Kind decides which fields are meaningful: movie and batchzip
// groups carry Downloads, series groups carry Episodes.
type LinkGroup struct {
	Kind LinkGroupKind `json:"kind"`

	// Movie / batchzip variant.
	Name      string         `json:"name,omitempty"`
	Quality   string         `json:"quality,omitempty"`
	Size      string         `json:"size,omitempty"`
	Downloads []DownloadLink `json:"downloads,omitempty"`

	// Series variant: episode number -> URL. Key order carries no meaning.
	ButtonLabel string            `json:"button_label,omitempty"`
	Type        string            `json:"type,omitempty"`
	Episodes    map[string]string `json:"episodes,omitempty"`
}

// DownloadLink is a single download button inside a movie or batch/zip
// group.
type DownloadLink struct {
	ButtonLabel string      `json:"button_label"`
	Link        string      `json:"link"`
	Type        LinkPurpose `json:"type"`
}

// ItemRef is the lightweight projection served from category artifacts.
type ItemRef struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Date      string `json:"date,omitempty"`
	URL       string `json:"url"`
}

// Ref returns the lightweight projection of the item.
func (c ContentItem) Ref() ItemRef {
	return ItemRef{
		ID:        c.ID,
		Title:     c.Title,
		Thumbnail: c.Thumbnail,
		Date:      c.Date,
		URL:       c.URL,
	}
}

// FirstInfo returns the first ContentInfo, or a zero value when the item
// carries none. Scrapes may legitimately deliver items with no info block.
func (c ContentItem) FirstInfo() ContentInfo {
	if len(c.Info) == 0 {
		return ContentInfo{}
	}
	return c.Info[0]
}
