// Package server exposes the read path: paginated category pages served
// from materialized artifacts, plus canonical item lookup. Responses are
// cached in a capacity-bounded expiring map injected at construction, so
// there is no module-level shared state.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"

	"cinedex/internal/category"
	"cinedex/internal/domain"
	"cinedex/internal/storage"
)

const defaultPageSize = 20

// PageCache is the serving-boundary cache for category pages: bounded
// capacity, per-entry TTL checked on access.
type PageCache = expirable.LRU[string, []domain.ItemRef]

// NewPageCache creates a cache holding up to size pages for at most ttl.
func NewPageCache(size int, ttl time.Duration) *PageCache {
	return expirable.NewLRU[string, []domain.ItemRef](size, nil, ttl)
}

// Server wires the read-side HTTP handlers.
type Server struct {
	repo      storage.Repository
	artifacts *category.Materializer
	tax       category.Taxonomy
	cache     *PageCache
	log       logrus.FieldLogger
}

// New creates a Server. cache may be nil to disable response caching.
func New(repo storage.Repository, artifacts *category.Materializer, tax category.Taxonomy, cache *PageCache, logger logrus.FieldLogger) *Server {
	return &Server{
		repo:      repo,
		artifacts: artifacts,
		tax:       tax,
		cache:     cache,
		log:       logger.WithField("component", "server"),
	}
}

// Handler builds the gin engine with all routes registered.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/categories", s.listCategories)
	api.GET("/category/:type/:slug", s.categoryPage)
	api.GET("/content", s.contentByURL)

	return r
}

func (s *Server) listCategories(c *gin.Context) {
	resp := gin.H{"taxonomy": s.tax}
	if manifest, err := s.artifacts.LoadManifest(); err == nil {
		resp["manifest"] = manifest
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) categoryPage(c *gin.Context) {
	typeKey := c.Param("type")
	slug := c.Param("slug")
	page := parseInt(c.Query("page"), 1)
	limit := parseInt(c.Query("limit"), defaultPageSize)

	cacheKey := fmt.Sprintf("%s/%s?page=%d&limit=%d", typeKey, slug, page, limit)
	if s.cache != nil {
		if refs, ok := s.cache.Get(cacheKey); ok {
			s.writePage(c, typeKey, slug, page, limit, refs)
			return
		}
	}

	refs, err := s.artifacts.LoadPage(typeKey, slug, page, limit)
	if errors.Is(err, category.ErrArtifactNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"type": typeKey,
			"slug": slug,
		}).Error("Failed to load category page")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load category"})
		return
	}

	if s.cache != nil {
		s.cache.Add(cacheKey, refs)
	}
	s.writePage(c, typeKey, slug, page, limit, refs)
}

func (s *Server) writePage(c *gin.Context, typeKey, slug string, page, limit int, refs []domain.ItemRef) {
	if refs == nil {
		refs = []domain.ItemRef{}
	}
	c.JSON(http.StatusOK, gin.H{
		"type":  typeKey,
		"slug":  slug,
		"page":  page,
		"limit": limit,
		"items": refs,
	})
}

func (s *Server) contentByURL(c *gin.Context) {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url query parameter required"})
		return
	}

	item, err := s.repo.FindByURL(c.Request.Context(), url)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		s.log.WithError(err).WithField("url", url).Error("Failed to load item")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load item"})
		return
	}
	c.JSON(http.StatusOK, item)
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
