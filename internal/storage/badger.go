package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"cinedex/internal/domain"
	"cinedex/internal/id"
	"cinedex/internal/merge"
)

// contentPrefix keys every canonical item by its natural URL.
// Format: content:{url}
const contentPrefix = "content:"

// BadgerRepository implements the Repository interface using BadgerDB.
type BadgerRepository struct {
	db     *badger.DB
	merger *merge.Merger
	log    logrus.FieldLogger
}

// NewBadgerRepository creates and initializes a new BadgerDB repository.
// It opens the database at the specified path.
func NewBadgerRepository(dbPath string, merger *merge.Merger, logger logrus.FieldLogger) (*BadgerRepository, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = &badgerLogger{logger.WithField("component", "badgerdb")}

	db, err := badger.Open(opts)
	if err != nil {
		logger.WithError(err).Error("Failed to open BadgerDB")
		return nil, fmt.Errorf("failed to open badger db at %s: %w", dbPath, err)
	}
	logger.WithField("path", dbPath).Info("BadgerDB opened")

	return &BadgerRepository{
		db:     db,
		merger: merger,
		log:    logger.WithField("component", "repository"),
	}, nil
}

// Close closes the BadgerDB database connection.
func (r *BadgerRepository) Close() error {
	r.log.Info("Closing BadgerDB...")
	if err := r.db.Close(); err != nil {
		r.log.WithError(err).Error("Error closing BadgerDB")
		return err
	}
	return nil
}

func contentKey(url string) []byte {
	return []byte(contentPrefix + url)
}

// FindByURL retrieves a single item by its natural key.
func (r *BadgerRepository) FindByURL(ctx context.Context, url string) (*domain.ContentItem, error) {
	var item domain.ContentItem
	err := r.db.View(func(txn *badger.Txn) error {
		got, err := txn.Get(contentKey(url))
		if err != nil {
			return err
		}
		return got.Value(func(val []byte) error {
			return json.Unmarshal(val, &item)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.log.WithError(err).WithField("url", url).Error("Failed to read item")
		return nil, fmt.Errorf("failed to get item %s: %w", url, err)
	}
	return &item, nil
}

// Upsert performs the read-merge-write cycle for one natural key inside a
// single Badger transaction, so the stored value cannot change between the
// read and the write. Callers serialize upserts per URL; concurrent writes
// to distinct URLs are fine.
func (r *BadgerRepository) Upsert(ctx context.Context, item domain.ContentItem, force bool) (domain.ContentItem, error) {
	log := r.log.WithField("url", item.URL)

	if item.URL == "" {
		return domain.ContentItem{}, errors.New("cannot upsert item without url")
	}

	var persisted domain.ContentItem
	err := r.db.Update(func(txn *badger.Txn) error {
		key := contentKey(item.URL)

		var existing *domain.ContentItem
		var storedBytes []byte
		got, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// first insert
		case err != nil:
			return err
		default:
			storedBytes, err = got.ValueCopy(nil)
			if err != nil {
				return err
			}
			var cur domain.ContentItem
			if err := json.Unmarshal(storedBytes, &cur); err != nil {
				return fmt.Errorf("failed to unmarshal stored item: %w", err)
			}
			existing = &cur
		}

		merged := r.merger.Merge(existing, item)
		now := time.Now().UTC()
		if existing != nil {
			merged.ID = existing.ID
			merged.CreatedAt = existing.CreatedAt
		} else {
			merged.ID = id.MustGenerate(id.PrefixItem)
			merged.CreatedAt = now
		}
		merged.UpdatedAt = now

		mergedBytes, err := json.Marshal(merged)
		if err != nil {
			return fmt.Errorf("failed to marshal item: %w", err)
		}

		// Unchanged content produces identical bytes modulo the update
		// timestamp; skip the write unless forced.
		if !force && existing != nil && equalIgnoringUpdatedAt(storedBytes, mergedBytes) {
			persisted = *existing
			log.Debug("Upsert skipped, content unchanged")
			return nil
		}

		if err := txn.SetEntry(badger.NewEntry(key, mergedBytes)); err != nil {
			return err
		}
		persisted = merged
		return nil
	})
	if err != nil {
		log.WithError(err).Error("Failed to upsert item")
		return domain.ContentItem{}, fmt.Errorf("failed to upsert item %s: %w", item.URL, err)
	}

	log.WithField("id", persisted.ID).Info("Item upserted")
	return persisted, nil
}

// equalIgnoringUpdatedAt compares two serialized items with their
// UpdatedAt stamps zeroed, so a refresh that changed nothing else is
// recognized as a duplicate.
func equalIgnoringUpdatedAt(a, b []byte) bool {
	var ia, ib domain.ContentItem
	if err := json.Unmarshal(a, &ia); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &ib); err != nil {
		return false
	}
	ia.UpdatedAt = time.Time{}
	ib.UpdatedAt = time.Time{}
	ra, err := json.Marshal(ia)
	if err != nil {
		return false
	}
	rb, err := json.Marshal(ib)
	if err != nil {
		return false
	}
	return bytes.Equal(ra, rb)
}

// All returns every persisted item, oldest first. Category matching
// relies on this order being stable between runs.
func (r *BadgerRepository) All(ctx context.Context) ([]domain.ContentItem, error) {
	var items []domain.ContentItem

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(contentPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			entry := it.Item()
			err := entry.Value(func(val []byte) error {
				var item domain.ContentItem
				if err := json.Unmarshal(val, &item); err != nil {
					r.log.WithError(err).WithField("key", string(entry.Key())).Error("Failed to unmarshal item from DB")
					return fmt.Errorf("failed to unmarshal item data for key %s: %w", string(entry.Key()), err)
				}
				items = append(items, item)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.log.WithError(err).Error("Failed to scan items")
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})

	r.log.WithField("item_count", len(items)).Debug("Items retrieved")
	return items, nil
}

// Delete removes a specific item. Deleting an absent key is a no-op.
func (r *BadgerRepository) Delete(ctx context.Context, url string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(contentKey(url))
	})
	if err != nil {
		r.log.WithError(err).WithField("url", url).Error("Failed to delete item")
		return fmt.Errorf("failed to delete item %s: %w", url, err)
	}
	r.log.WithField("url", url).Info("Item deleted")
	return nil
}

// --- BadgerDB Internal Logger ---

// badgerLogger adapts logrus.FieldLogger to Badger's logger interface.
type badgerLogger struct {
	logger logrus.FieldLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	l.logger.Errorf(f, v...)
}
func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	l.logger.Warningf(f, v...)
}
func (l *badgerLogger) Infof(f string, v ...interface{}) {
	l.logger.Infof(f, v...)
}
func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}
