package category

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"cinedex/internal/domain"
)

// ErrArtifactNotFound is returned when no artifact exists for a
// (type, slug) pair.
var ErrArtifactNotFound = errors.New("category artifact not found")

const manifestFile = "manifest.json"

// MaterializeOptions gate which (type, slug) pairs get (re)written.
type MaterializeOptions struct {
	// Force rewrites artifacts that already exist. Without it an existing
	// artifact is left untouched.
	Force bool
	// CreateEmpty writes an artifact with an empty member list for
	// zero-match slugs instead of skipping them.
	CreateEmpty bool
	// Type and Slug, when non-empty, restrict the run to one type or one
	// slug.
	Type string
	Slug string
}

// ManifestEntry records one materialized (type, slug) pair.
type ManifestEntry struct {
	Type        string    `json:"type"`
	Slug        string    `json:"slug"`
	MatchCount  int       `json:"match_count"`
	GeneratedAt time.Time `json:"generated_at"`
	Empty       bool      `json:"empty"`
}

// Manifest aggregates a materialize run. Per-slug failures are recorded
// here rather than aborting the run.
type Manifest struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Total       int               `json:"total"`
	WithMatches int               `json:"with_matches"`
	Empty       int               `json:"empty"`
	Skipped     int               `json:"skipped"`
	Entries     []ManifestEntry   `json:"entries"`
	Errors      map[string]string `json:"errors,omitempty"`
}

// Materializer publishes match results as per-slug JSON artifacts under
// a base directory, plus a manifest describing the run. Artifacts are
// derived and disposable: they can be regenerated from the canonical
// store at any time.
type Materializer struct {
	dir string
	log logrus.FieldLogger
}

// NewMaterializer creates a Materializer rooted at dir.
func NewMaterializer(dir string, logger logrus.FieldLogger) *Materializer {
	return &Materializer{
		dir: dir,
		log: logger.WithField("component", "materializer"),
	}
}

// Materialize writes the artifacts selected by opts and returns the run
// manifest. One bad slug never blocks the others: failures are caught,
// logged, and recorded in the manifest's error map.
func (w *Materializer) Materialize(result Result, tax Taxonomy, opts MaterializeOptions) Manifest {
	manifest := Manifest{
		GeneratedAt: time.Now().UTC(),
		Errors:      make(map[string]string),
	}

	for _, typeKey := range tax.OrderedTypes() {
		if opts.Type != "" && opts.Type != typeKey {
			continue
		}
		for _, slug := range tax.OrderedSlugs(typeKey) {
			if opts.Slug != "" && opts.Slug != slug {
				continue
			}
			manifest.Total++

			refs := result[typeKey][slug]
			entry, err := w.writeSlug(typeKey, slug, refs, opts)
			if err != nil {
				w.log.WithError(err).WithFields(logrus.Fields{
					"type": typeKey,
					"slug": slug,
				}).Error("Failed to materialize category")
				manifest.Errors[typeKey+"/"+slug] = err.Error()
				continue
			}
			if entry == nil {
				manifest.Skipped++
				continue
			}

			manifest.Entries = append(manifest.Entries, *entry)
			if entry.Empty {
				manifest.Empty++
			} else {
				manifest.WithMatches++
			}
		}
	}

	if err := w.writeManifest(manifest); err != nil {
		w.log.WithError(err).Error("Failed to write manifest")
		manifest.Errors[manifestFile] = err.Error()
	}

	w.log.WithFields(logrus.Fields{
		"total":        manifest.Total,
		"with_matches": manifest.WithMatches,
		"empty":        manifest.Empty,
		"skipped":      manifest.Skipped,
		"errors":       len(manifest.Errors),
	}).Info("Materialize run complete")
	return manifest
}

// writeSlug writes one artifact. A nil entry with nil error means the
// pair was deliberately skipped (already exists without force, or empty
// without createEmpty).
func (w *Materializer) writeSlug(typeKey, slug string, refs []domain.ItemRef, opts MaterializeOptions) (*ManifestEntry, error) {
	path, err := w.artifactPath(typeKey, slug)
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		if _, err := os.Stat(path); err == nil {
			return nil, nil
		}
	}
	if len(refs) == 0 && !opts.CreateEmpty {
		return nil, nil
	}

	if refs == nil {
		refs = []domain.ItemRef{}
	}
	data, err := json.Marshal(refs)
	if err != nil {
		return nil, fmt.Errorf("marshal artifact: %w", err)
	}
	if err := atomicWrite(path, data); err != nil {
		return nil, err
	}

	return &ManifestEntry{
		Type:        typeKey,
		Slug:        slug,
		MatchCount:  len(refs),
		GeneratedAt: time.Now().UTC(),
		Empty:       len(refs) == 0,
	}, nil
}

func (w *Materializer) writeManifest(m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return atomicWrite(filepath.Join(w.dir, manifestFile), data)
}

// LoadManifest reads the manifest from the most recent run.
func (w *Materializer) LoadManifest() (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(w.dir, manifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return Manifest{}, ErrArtifactNotFound
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return m, nil
}

// LoadPage reads one artifact and returns its members for a 1-based page
// of the given size. A page past the end of the data returns an empty
// slice, never an error.
func (w *Materializer) LoadPage(typeKey, slug string, page, limit int) ([]domain.ItemRef, error) {
	path, err := w.artifactPath(typeKey, slug)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrArtifactNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var refs []domain.ItemRef
	if err := json.Unmarshal(data, &refs); err != nil {
		return nil, fmt.Errorf("parse artifact %s/%s: %w", typeKey, slug, err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	start := (page - 1) * limit
	if start >= len(refs) {
		return []domain.ItemRef{}, nil
	}
	end := start + limit
	if end > len(refs) {
		end = len(refs)
	}
	return refs[start:end], nil
}

// artifactPath validates that type and slug are safe path components and
// returns dir/type/slug.json.
func (w *Materializer) artifactPath(typeKey, slug string) (string, error) {
	for _, part := range []string{typeKey, slug} {
		if part == "" || strings.ContainsAny(part, `/\`) || part == "." || part == ".." {
			return "", fmt.Errorf("invalid artifact path component %q", part)
		}
	}
	return filepath.Join(w.dir, typeKey, slug+".json"), nil
}

// atomicWrite publishes data at path via a temp file and rename, so a
// failed write never leaves a partial artifact visible to readers.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish artifact: %w", err)
	}
	return nil
}
