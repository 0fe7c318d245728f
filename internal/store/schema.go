package store

import (
	"fmt"
	"math/rand/v2"

	"github.com/jmoiron/sqlx"
)

// The permutation modulus for the frozen-sample ordering. Any prime
// larger than the id space of a realistic capture works; this is the
// Mersenne prime 2^31-1.
const sampleModulus = 2147483647

const createAuthors = `
CREATE TABLE authors (
    id               INTEGER PRIMARY KEY,
    username         TEXT NOT NULL,
    lang             TEXT,
    location         TEXT,
    stemmed_location TEXT,
    utc_offset       INTEGER,
    timezone         TEXT
)`

const createPosts = `
CREATE TABLE posts (
    id        INTEGER PRIMARY KEY,
    lat       REAL NOT NULL,
    lon       REAL NOT NULL,
    country   TEXT NOT NULL,
    author_id INTEGER NOT NULL,
    FOREIGN KEY(author_id) REFERENCES authors(id)
)`

// sample_meta holds the single row that freezes the unlabeled sample:
// a seed drawn once at store creation plus the configured sample size.
const createSampleMeta = `
CREATE TABLE sample_meta (
    seed         INTEGER NOT NULL,
    sample_limit INTEGER NOT NULL
)`

// The classification view unions a fixed-size sample of unlabeled
// authors (country NULL) with every labeled (author, country) pair.
//
// The unlabeled branch is ordered by a keyed permutation of the author
// id instead of RANDOM(): the seed is drawn exactly once when the
// store is created, so repeated reads and process restarts see the
// same sample. Redrawing happens only through the explicit Resample
// operation.
const createViewTmpl = `
CREATE VIEW classification_view AS
SELECT * FROM (
    SELECT authors.id, authors.lang, authors.stemmed_location AS location,
           authors.utc_offset, authors.timezone, NULL AS country
    FROM authors
    WHERE authors.id NOT IN (SELECT posts.author_id FROM posts)
    ORDER BY (authors.id * (SELECT seed FROM sample_meta)) %% %d
    LIMIT %d
)
UNION
SELECT authors.id, authors.lang, authors.stemmed_location AS location,
       authors.utc_offset, authors.timezone, posts.country
FROM authors, posts
WHERE authors.id = posts.author_id`

// createSchema brings a fresh store to its ready state. It runs only
// when the database file did not exist before Open; any failure here
// is unrecoverable for the caller.
func createSchema(db *sqlx.DB, sampleLimit int) error {
	for _, ddl := range []string{createAuthors, createPosts, createSampleMeta} {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	if _, err := db.Exec(
		`INSERT INTO sample_meta (seed, sample_limit) VALUES (?, ?)`,
		newSampleSeed(), sampleLimit,
	); err != nil {
		return fmt.Errorf("seed sample meta: %w", err)
	}

	view := fmt.Sprintf(createViewTmpl, sampleModulus, sampleLimit)
	if _, err := db.Exec(view); err != nil {
		return fmt.Errorf("create classification view: %w", err)
	}

	return nil
}

func newSampleSeed() int64 {
	return 1 + rand.Int64N(sampleModulus-1)
}
