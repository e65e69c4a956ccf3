package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinedex/internal/category"
	"cinedex/internal/domain"
	"cinedex/internal/storage"
)

type stubRepo struct {
	items map[string]domain.ContentItem
}

func (r *stubRepo) FindByURL(ctx context.Context, url string) (*domain.ContentItem, error) {
	item, ok := r.items[url]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &item, nil
}

func (r *stubRepo) Upsert(ctx context.Context, item domain.ContentItem, force bool) (domain.ContentItem, error) {
	return item, nil
}
func (r *stubRepo) All(ctx context.Context) ([]domain.ContentItem, error) { return nil, nil }
func (r *stubRepo) Delete(ctx context.Context, url string) error          { return nil }
func (r *stubRepo) Close() error                                          { return nil }

func setupServer(t *testing.T) (http.Handler, *stubRepo) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	artifacts := category.NewMaterializer(t.TempDir(), log)
	tax := category.Taxonomy{
		"movies-by-quality": {Title: "By Quality", Slugs: []string{"1080p"}},
	}
	refs := []domain.ItemRef{
		{ID: "itm-1", Title: "One", URL: "https://example.org/1"},
		{ID: "itm-2", Title: "Two", URL: "https://example.org/2"},
		{ID: "itm-3", Title: "Three", URL: "https://example.org/3"},
		{ID: "itm-4", Title: "Four", URL: "https://example.org/4"},
		{ID: "itm-5", Title: "Five", URL: "https://example.org/5"},
	}
	artifacts.Materialize(
		category.Result{"movies-by-quality": {"1080p": refs}},
		tax,
		category.MaterializeOptions{},
	)

	repo := &stubRepo{items: map[string]domain.ContentItem{
		"https://example.org/1": {ID: "itm-1", URL: "https://example.org/1", Title: "One"},
	}}

	srv := New(repo, artifacts, tax, NewPageCache(16, time.Minute), log)
	return srv.Handler(), repo
}

func doGet(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type pageResponse struct {
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Items []domain.ItemRef `json:"items"`
}

func TestCategoryPage(t *testing.T) {
	h, _ := setupServer(t)

	w := doGet(t, h, "/api/category/movies-by-quality/1080p?page=1&limit=2")
	require.Equal(t, http.StatusOK, w.Code)

	var resp pageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Page)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "itm-1", resp.Items[0].ID)
}

func TestCategoryPageBeyondEnd(t *testing.T) {
	h, _ := setupServer(t)

	w := doGet(t, h, "/api/category/movies-by-quality/1080p?page=100&limit=20")
	require.Equal(t, http.StatusOK, w.Code, "page past the end is empty, not an error")

	var resp pageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
}

func TestCategoryPageUnknownSlug(t *testing.T) {
	h, _ := setupServer(t)

	w := doGet(t, h, "/api/category/movies-by-quality/8k")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategoryPageCached(t *testing.T) {
	h, _ := setupServer(t)

	first := doGet(t, h, "/api/category/movies-by-quality/1080p?page=1&limit=2")
	second := doGet(t, h, "/api/category/movies-by-quality/1080p?page=1&limit=2")
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestContentByURL(t *testing.T) {
	h, _ := setupServer(t)

	w := doGet(t, h, "/api/content?url=https://example.org/1")
	require.Equal(t, http.StatusOK, w.Code)

	var item domain.ContentItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	assert.Equal(t, "itm-1", item.ID)

	w = doGet(t, h, "/api/content?url=https://example.org/unknown")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doGet(t, h, "/api/content")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListCategories(t *testing.T) {
	h, _ := setupServer(t)

	w := doGet(t, h, "/api/categories")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Taxonomy category.Taxonomy `json:"taxonomy"`
		Manifest category.Manifest `json:"manifest"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Taxonomy, "movies-by-quality")
	assert.Equal(t, 1, resp.Manifest.Total)
}
