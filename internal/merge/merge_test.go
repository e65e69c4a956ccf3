package merge

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinedex/internal/domain"
)

func newTestMerger() *Merger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(log)
}

func itemWithHeadings(headings ...string) domain.ContentItem {
	sections := make([]domain.Section, len(headings))
	for i, h := range headings {
		sections[i] = domain.Section{Heading: h}
	}
	return domain.ContentItem{
		URL:   "https://example.org/movie-a",
		Title: "Movie A",
		Info:  []domain.ContentInfo{{Sections: sections}},
	}
}

func sectionIDs(item domain.ContentItem) map[string]string {
	ids := make(map[string]string)
	for _, info := range item.Info {
		for _, sec := range info.Sections {
			ids[sec.Heading] = sec.ID
		}
	}
	return ids
}

func TestMergeFirstInsertAssignsIDs(t *testing.T) {
	m := newTestMerger()

	got := m.Merge(nil, itemWithHeadings("720p", "1080p"))

	require.Len(t, got.Info, 1)
	require.Len(t, got.Info[0].Sections, 2)
	for _, sec := range got.Info[0].Sections {
		assert.NotEmpty(t, sec.ID, "section %q must receive an id", sec.Heading)
	}
	assert.NotEqual(t, got.Info[0].Sections[0].ID, got.Info[0].Sections[1].ID)
}

func TestMergeIdempotent(t *testing.T) {
	m := newTestMerger()

	first := m.Merge(nil, itemWithHeadings("720p", "1080p"))
	second := m.Merge(&first, itemWithHeadings("720p", "1080p"))

	assert.Equal(t, sectionIDs(first), sectionIDs(second))
}

func TestMergeKeepsIDsWhenFieldsChange(t *testing.T) {
	m := newTestMerger()

	first := m.Merge(nil, itemWithHeadings("1080p"))

	updated := itemWithHeadings("1080p")
	updated.Info[0].Sections[0].Links = []domain.LinkGroup{{
		Kind: domain.KindMovie,
		Name: "Movie A 1080p [1.4GB]",
		Downloads: []domain.DownloadLink{
			{ButtonLabel: "G-Direct", Link: "https://dl.example.org/a"},
		},
	}}
	second := m.Merge(&first, updated)

	assert.Equal(t, first.Info[0].Sections[0].ID, second.Info[0].Sections[0].ID)
	// incoming content replaces stored content wholesale
	require.Len(t, second.Info[0].Sections[0].Links, 1)
}

func TestMergeDropsStaleAndAssignsFresh(t *testing.T) {
	m := newTestMerger()

	first := m.Merge(nil, itemWithHeadings("720p", "1080p"))
	firstIDs := sectionIDs(first)

	second := m.Merge(&first, itemWithHeadings("1080p", "480p"))
	secondIDs := sectionIDs(second)

	assert.Equal(t, firstIDs["1080p"], secondIDs["1080p"], "surviving heading keeps its id")
	assert.NotContains(t, secondIDs, "720p", "dropped heading is absent")
	assert.NotEmpty(t, secondIDs["480p"])
	assert.NotEqual(t, firstIDs["720p"], secondIDs["480p"])
	assert.NotEqual(t, firstIDs["1080p"], secondIDs["480p"])
}

func TestMergeDuplicateHeadingsFirstAvailable(t *testing.T) {
	m := newTestMerger()

	first := m.Merge(nil, itemWithHeadings("1080p", "1080p"))
	a := first.Info[0].Sections[0].ID
	b := first.Info[0].Sections[1].ID
	require.NotEqual(t, a, b)

	second := m.Merge(&first, itemWithHeadings("1080p", "1080p"))
	assert.Equal(t, a, second.Info[0].Sections[0].ID)
	assert.Equal(t, b, second.Info[0].Sections[1].ID)
}

func TestMergeToleratesMissingCollections(t *testing.T) {
	m := newTestMerger()

	assert.NotPanics(t, func() {
		got := m.Merge(nil, domain.ContentItem{URL: "https://example.org/bare"})
		assert.Empty(t, got.Info)

		withEmptyInfo := domain.ContentItem{
			URL:  "https://example.org/empty-info",
			Info: []domain.ContentInfo{{}},
		}
		got = m.Merge(nil, withEmptyInfo)
		assert.Empty(t, got.Info[0].Sections)
	})
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	m := newTestMerger()

	incoming := itemWithHeadings("720p")
	_ = m.Merge(nil, incoming)

	assert.Empty(t, incoming.Info[0].Sections[0].ID, "caller's copy must stay untouched")
}

func TestMergeEnrichesLinkGroups(t *testing.T) {
	m := newTestMerger()

	incoming := itemWithHeadings("Download Links")
	incoming.Info[0].Sections[0].Links = []domain.LinkGroup{
		{
			Kind: domain.KindMovie,
			Name: "Movie A 1080p x264 [1.4GB]",
			Downloads: []domain.DownloadLink{
				{ButtonLabel: "G-Direct [Instant]", Link: "https://dl.example.org/g"},
				{ButtonLabel: "V-Cloud", Link: "https://dl.example.org/v"},
				{ButtonLabel: "Download", Link: "https://dl.example.org/d"},
			},
		},
		{Kind: domain.KindBatchZip, Name: "Season Pack 720p [4.2GB]"},
	}

	got := m.Merge(nil, incoming)
	groups := got.Info[0].Sections[0].Links
	require.Len(t, groups, 2)

	assert.Equal(t, "1080p", groups[0].Quality)
	assert.Equal(t, "1.4GB", groups[0].Size)
	assert.Equal(t, domain.PurposeGDrive, groups[0].Downloads[0].Type)
	assert.Equal(t, domain.PurposeVCloud, groups[0].Downloads[1].Type)
	assert.Equal(t, domain.PurposeDirect, groups[0].Downloads[2].Type)

	assert.Equal(t, "Batch/Zip", groups[1].Type)
	assert.Equal(t, "720p", groups[1].Quality)
	assert.Equal(t, "4.2GB", groups[1].Size)
}
