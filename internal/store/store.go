// Package store owns the SQLite schema and every row in it: authors,
// posts, and the classification view the learning task reads.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/jmoiron/sqlx"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/RavenB/UnitedTweetAnalyzer/pkg/location"
	"github.com/RavenB/UnitedTweetAnalyzer/pkg/source"
)

// DefaultSampleSize is the number of unlabeled authors frozen into
// the classification view when no size is configured.
const DefaultSampleSize = 200

// Author is one stored account. The first successful insert wins;
// later inserts for the same id are no-ops, never updates.
type Author struct {
	ID        int64   `db:"id"`
	Name      string  `db:"username"`
	Lang      string  `db:"lang"`
	Location  string  `db:"location"`
	Stemmed   *string `db:"stemmed_location"`
	UTCOffset *int64  `db:"utc_offset"`
	Timezone  string  `db:"timezone"`
}

// Post is one stored geotagged post with its resolved country. The
// country may be the unknown sentinel but is never null.
type Post struct {
	ID       int64   `db:"id"`
	Lat      float64 `db:"lat"`
	Lon      float64 `db:"lon"`
	Country  string  `db:"country"`
	AuthorID int64   `db:"author_id"`
}

// TrainingRow is one labeled instance. Column order matters to the
// downstream feature extraction: lang, location, utc_offset,
// timezone, country.
type TrainingRow struct {
	Lang      string  `db:"lang"`
	Location  *string `db:"location"`
	UTCOffset *int64  `db:"utc_offset"`
	Timezone  string  `db:"timezone"`
	Country   string  `db:"country"`
}

// ClassificationRow is one row of the classification view. Country is
// nil for the frozen unlabeled sample.
type ClassificationRow struct {
	ID        int64   `db:"id"`
	Lang      string  `db:"lang"`
	Location  *string `db:"location"`
	UTCOffset *int64  `db:"utc_offset"`
	Timezone  string  `db:"timezone"`
	Country   *string `db:"country"`
}

// Options configures Open.
type Options struct {
	// SampleSize is the unlabeled sample size K baked into the
	// classification view at creation. Zero means DefaultSampleSize.
	SampleSize int
	Logger     *slog.Logger
}

// Storage is the persistence engine. All mutating operations (author
// insert, post insert, reseed, close) are serialized by one mutex;
// reads run outside it on the connection pool.
type Storage struct {
	db  *sqlx.DB
	log *slog.Logger

	mu sync.Mutex
}

// Open connects to the SQLite store at path, creating the schema and
// the classification view when no file exists there yet. An existing
// file is connected to as-is, with no schema work. Errors from Open
// leave no usable store; callers must treat them as fatal.
func Open(path string, opts Options) (*Storage, error) {
	if opts.SampleSize <= 0 {
		opts.SampleSize = DefaultSampleSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	// The connection creates the file, so existence decides whether
	// schema setup runs before anything can observe the store.
	_, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr)

	db, err := sqlx.Open("sqlite",
		"file:"+path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	if fresh {
		if err := createSchema(db, opts.SampleSize); err != nil {
			db.Close()
			return nil, fmt.Errorf("initialize store %s: %w", path, err)
		}
		opts.Logger.Info("store created", "path", path, "sample_size", opts.SampleSize)
	}

	return &Storage{db: db, log: opts.Logger}, nil
}

// Close releases the store handle. It waits for any in-flight write
// to finish by taking the same lock the writers hold.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// InsertAuthor stores an author, skipping one that already exists.
// The raw location is normalized into its stemmed form before
// storing, and the platform's "offset unknown" sentinel becomes a
// missing value. Duplicate identity is success, not an error.
func (s *Storage) InsertAuthor(ctx context.Context, a Author) error {
	a = prepAuthor(a)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertAuthorLocked(ctx, a)
}

// SavePost persists the author and then the post as one serialized
// sequence. A non-duplicate author failure skips the post entirely:
// a post row must never reference an author the store refused.
func (s *Storage) SavePost(ctx context.Context, a Author, p Post) error {
	a = prepAuthor(a)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.insertAuthorLocked(ctx, a); err != nil {
		return fmt.Errorf("skipping post %d: %w", p.ID, err)
	}
	return s.insertPostLocked(ctx, p)
}

// prepAuthor derives the stored form of an author. It runs outside
// the write lock; only the inserts themselves need serialization.
func prepAuthor(a Author) Author {
	if stemmed, ok := location.Normalize(a.Location); ok {
		a.Stemmed = &stemmed
	} else {
		a.Stemmed = nil
	}
	if a.UTCOffset != nil && *a.UTCOffset == source.UTCOffsetUnknown {
		a.UTCOffset = nil
	}
	return a
}

func (s *Storage) insertAuthorLocked(ctx context.Context, a Author) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO authors (id, username, lang, location, stemmed_location, utc_offset, timezone)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Name, a.Lang, a.Location, a.Stemmed, a.UTCOffset, a.Timezone)
	if isConstraintErr(err) {
		s.log.Debug("author already stored", "author_id", a.ID, "name", a.Name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("insert author %d: %w", a.ID, err)
	}
	return nil
}

func (s *Storage) insertPostLocked(ctx context.Context, p Post) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (id, lat, lon, country, author_id)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Lat, p.Lon, p.Country, p.AuthorID)
	if isConstraintErr(err) {
		s.log.Debug("post already stored", "post_id", p.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("insert post %d: %w", p.ID, err)
	}
	return nil
}

// Resample redraws the frozen unlabeled sample by replacing the
// stored seed. This never happens implicitly; it is the explicit
// administrative counterpart to the creation-time draw.
func (s *Storage) Resample(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seed := newSampleSeed()
	if _, err := s.db.ExecContext(ctx, `UPDATE sample_meta SET seed = ?`, seed); err != nil {
		return fmt.Errorf("resample: %w", err)
	}
	s.log.Info("unlabeled sample redrawn", "seed", seed)
	return nil
}

// TrainingRows returns every labeled (author, country) pair, one row
// per labeled post.
func (s *Storage) TrainingRows(ctx context.Context) ([]TrainingRow, error) {
	var rows []TrainingRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT authors.lang, authors.stemmed_location AS location,
		       authors.utc_offset, authors.timezone, posts.country
		FROM authors, posts
		WHERE authors.id = posts.author_id
	`)
	if err != nil {
		return nil, fmt.Errorf("training rows: %w", err)
	}
	return rows, nil
}

// ClassificationRows returns the classification view: the frozen
// unlabeled sample plus every labeled pair.
func (s *Storage) ClassificationRows(ctx context.Context) ([]ClassificationRow, error) {
	var rows []ClassificationRow
	err := s.db.SelectContext(ctx, &rows, `SELECT * FROM classification_view`)
	if err != nil {
		return nil, fmt.Errorf("classification rows: %w", err)
	}
	return rows, nil
}

// CountPostsByCountry reports how many posts resolved to each
// country, the unknown sentinel included.
func (s *Storage) CountPostsByCountry(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryxContext(ctx, `SELECT country, COUNT(*) AS cnt FROM posts GROUP BY country`)
	if err != nil {
		return nil, fmt.Errorf("count posts by country: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var country string
		var cnt int
		if err := rows.Scan(&country, &cnt); err != nil {
			return nil, err
		}
		counts[country] = cnt
	}
	return counts, rows.Err()
}

// Counts returns the stored author and post totals.
func (s *Storage) Counts(ctx context.Context) (authors, posts int64, err error) {
	if err = s.db.GetContext(ctx, &authors, `SELECT COUNT(*) FROM authors`); err != nil {
		return 0, 0, fmt.Errorf("count authors: %w", err)
	}
	if err = s.db.GetContext(ctx, &posts, `SELECT COUNT(*) FROM posts`); err != nil {
		return 0, 0, fmt.Errorf("count posts: %w", err)
	}
	return authors, posts, nil
}

// isConstraintErr reports whether err is a SQLite uniqueness or
// integrity violation. A primary-key hit here is how duplicate
// delivery is detected; there is no pre-insert existence check.
func isConstraintErr(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
