// Package store persists articles in a local bbolt database. Rows are keyed
// by URL; a secondary index orders them by publication time for window and
// watermark scans.
package store

import (
	"context"
	"crypto/sha1" //nolint:gosec // non-cryptographic id generation
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/newsdesk-hq/newsdesk/internal/clock"
	"github.com/newsdesk-hq/newsdesk/internal/domain"
	"github.com/newsdesk-hq/newsdesk/internal/logger"
)

var (
	bucketArticles     = []byte("articles")
	bucketPublishedIdx = []byte("published_idx")
)

// Store wraps the bbolt database.
type Store struct {
	db  *bolt.DB
	clk clock.Clock
	log logger.Logger
}

// Open opens (or creates) the database at path and ensures the buckets
// exist.
func Open(path string, clk clock.Clock, log logger.Logger) (*Store, error) {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketArticles); err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists(bucketPublishedIdx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create buckets: %w", err)
	}

	return &Store{db: db, clk: clk, log: log}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertByURL persists the article unless a row with the same URL already
// exists. The first write wins: later articles for a known URL leave the
// stored row untouched. The returned bool reports whether a new row was
// written.
func (s *Store) UpsertByURL(ctx context.Context, art domain.Article) (domain.StoredArticle, bool, error) {
	rows, inserted, err := s.UpsertBatch(ctx, []domain.Article{art})
	if err != nil {
		return domain.StoredArticle{}, false, err
	}
	return rows[0], inserted == 1, nil
}

// UpsertBatch applies UpsertByURL semantics to a whole batch inside one
// transaction and returns the stored row for every input article, existing
// or fresh, in input order.
func (s *Store) UpsertBatch(ctx context.Context, articles []domain.Article) ([]domain.StoredArticle, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	if len(articles) == 0 {
		return nil, 0, nil
	}

	rows := make([]domain.StoredArticle, len(articles))
	inserted := 0

	err := s.db.Update(func(tx *bolt.Tx) error {
		arts := tx.Bucket(bucketArticles)
		idx := tx.Bucket(bucketPublishedIdx)

		for i, art := range articles {
			key := []byte(art.URL)

			if raw := arts.Get(key); raw != nil {
				var existing domain.StoredArticle
				if err := json.Unmarshal(raw, &existing); err != nil {
					return fmt.Errorf("decode stored article %s: %w", art.URL, err)
				}
				rows[i] = existing
				continue
			}

			row := domain.StoredArticle{
				ID:       hashURL(art.URL),
				StoredAt: s.clk.Now().UTC(),
				Article:  art,
			}
			row.Embedding = nil

			raw, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("encode article %s: %w", art.URL, err)
			}
			if err := arts.Put(key, raw); err != nil {
				return err
			}
			if !row.PublishedAt.IsZero() {
				if err := idx.Put(idxKey(row.PublishedAt, row.URL), key); err != nil {
					return err
				}
			}

			rows[i] = row
			inserted++
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("upsert batch: %w", err)
	}

	return rows, inserted, nil
}

// GetByURL fetches one stored row.
func (s *Store) GetByURL(ctx context.Context, url string) (domain.StoredArticle, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoredArticle{}, false, err
	}

	var row domain.StoredArticle
	found := false

	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketArticles).Get([]byte(url))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &row); err != nil {
			return fmt.Errorf("decode stored article %s: %w", url, err)
		}
		found = true
		return nil
	})
	if err != nil {
		return domain.StoredArticle{}, false, err
	}
	return row, found, nil
}

// ListSince returns articles published strictly after the given instant,
// ordered by publication time ascending. Articles without a publication
// time are never returned; they cannot be placed on the timeline.
func (s *Store) ListSince(ctx context.Context, after time.Time) ([]domain.StoredArticle, error) {
	return s.listWindow(ctx, after, time.Time{})
}

// ListRange returns articles published in the half-open window
// (from, to], ordered by publication time ascending.
func (s *Store) ListRange(ctx context.Context, from, to time.Time) ([]domain.StoredArticle, error) {
	return s.listWindow(ctx, from, to)
}

func (s *Store) listWindow(ctx context.Context, after, until time.Time) ([]domain.StoredArticle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []domain.StoredArticle

	err := s.db.View(func(tx *bolt.Tx) error {
		arts := tx.Bucket(bucketArticles)
		c := tx.Bucket(bucketPublishedIdx).Cursor()

		for k, urlKey := c.Seek(idxPrefix(after)); k != nil; k, urlKey = c.Next() {
			ts := idxTime(k)
			if !ts.After(after) {
				continue
			}
			if !until.IsZero() && ts.After(until) {
				break
			}

			raw := arts.Get(urlKey)
			if raw == nil {
				continue
			}
			var row domain.StoredArticle
			if err := json.Unmarshal(raw, &row); err != nil {
				return fmt.Errorf("decode stored article %s: %w", urlKey, err)
			}
			out = append(out, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Filters narrows a stored-article query. Zero values leave that dimension
// unconstrained.
type Filters struct {
	Keyword string
	From    time.Time
	To      time.Time
	Source  domain.SourceFilter
}

// Query scans the store for rows matching the filters, ordered by
// publication time descending. Keyword matching is a case-insensitive
// substring test on title and description.
func (s *Store) Query(ctx context.Context, f Filters) ([]domain.StoredArticle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	keyword := strings.ToLower(strings.TrimSpace(f.Keyword))
	var out []domain.StoredArticle

	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketArticles).Cursor()
		for k, raw := c.First(); k != nil; k, raw = c.Next() {
			var row domain.StoredArticle
			if err := json.Unmarshal(raw, &row); err != nil {
				return fmt.Errorf("decode stored article %s: %w", k, err)
			}
			if !matches(row, keyword, f) {
				continue
			}
			out = append(out, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out, nil
}

func matches(row domain.StoredArticle, keyword string, f Filters) bool {
	if !f.Source.Matches(row.Source) {
		return false
	}
	if !f.From.IsZero() && !row.PublishedAt.After(f.From) {
		return false
	}
	if !f.To.IsZero() && row.PublishedAt.After(f.To) {
		return false
	}
	if keyword == "" {
		return true
	}
	return strings.Contains(strings.ToLower(row.Title), keyword) ||
		strings.Contains(strings.ToLower(row.Description), keyword)
}

// idxKey builds the publication-time index key: big-endian nanoseconds so
// byte order matches time order, with the URL appended for uniqueness.
func idxKey(ts time.Time, url string) []byte {
	key := make([]byte, 8, 8+len(url))
	binary.BigEndian.PutUint64(key, uint64(ts.UnixNano()))
	return append(key, url...)
}

func idxPrefix(ts time.Time) []byte {
	key := make([]byte, 8)
	if ts.IsZero() {
		return key
	}
	binary.BigEndian.PutUint64(key, uint64(ts.UnixNano()))
	return key
}

func idxTime(key []byte) time.Time {
	if len(key) < 8 {
		return time.Time{}
	}
	return time.Unix(0, int64(binary.BigEndian.Uint64(key[:8]))).UTC()
}

// hashURL derives the stable row ID from the article URL.
func hashURL(u string) string {
	sum := sha1.Sum([]byte(u))
	return hex.EncodeToString(sum[:])
}
