package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RavenB/UnitedTweetAnalyzer/internal/store"
	"github.com/RavenB/UnitedTweetAnalyzer/pkg/geo"
	"github.com/RavenB/UnitedTweetAnalyzer/pkg/ingest"
	"github.com/RavenB/UnitedTweetAnalyzer/pkg/source"
)

type staticResolver struct{}

func (staticResolver) Resolve(lon, lat float64) string { return "US" }

// batchSource delivers its events once, then nothing.
type batchSource struct {
	events []source.PostEvent
	polled bool
}

func (b *batchSource) Name() string { return "batch" }

func (b *batchSource) Poll(ctx context.Context) ([]source.PostEvent, error) {
	if b.polled {
		return nil, nil
	}
	b.polled = true
	return b.events, nil
}

type failingSource struct{}

func (failingSource) Name() string { return "failing" }

func (failingSource) Poll(ctx context.Context) ([]source.PostEvent, error) {
	return nil, fmt.Errorf("boom")
}

func newTestStore(t *testing.T) *store.Storage {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"),
		store.Options{SampleSize: 5, Logger: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func makeEvents(n int) []source.PostEvent {
	events := make([]source.PostEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, source.PostEvent{
			ID:          int64(100 + i),
			Coordinates: &geo.Point{Lat: 40.0, Lon: -75.0},
			Author: source.AuthorRecord{
				ID:   int64(10 + i%3),
				Name: fmt.Sprintf("author-%d", i%3),
				Lang: "en",
			},
		})
	}
	return events
}

func TestIngestAllConcurrent(t *testing.T) {
	st := newTestStore(t)
	log := slog.New(slog.DiscardHandler)
	ing := ingest.New(st, staticResolver{}, log)
	s := New(ing, nil, time.Minute, 4, log)

	const n = 40
	done := s.ingestAll(context.Background(), makeEvents(n))
	assert.Equal(t, n, done)

	authors, posts, err := st.Counts(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, authors)
	assert.EqualValues(t, n, posts)
}

func TestPollAllSurvivesFailingSource(t *testing.T) {
	st := newTestStore(t)
	log := slog.New(slog.DiscardHandler)
	ing := ingest.New(st, staticResolver{}, log)

	batch := &batchSource{events: makeEvents(5)}
	s := New(ing, []source.Source{failingSource{}, batch}, time.Minute, 2, log)

	s.pollAll(context.Background())

	_, posts, err := st.Counts(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 5, posts, "events after the failing source are still ingested")
}

func TestRunStopsOnCancel(t *testing.T) {
	st := newTestStore(t)
	log := slog.New(slog.DiscardHandler)
	ing := ingest.New(st, staticResolver{}, log)

	batch := &batchSource{events: makeEvents(3)}
	s := New(ing, []source.Source{batch}, 50*time.Millisecond, 2, log)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, posts, cErr := st.Counts(context.Background())
	require.NoError(t, cErr)
	assert.EqualValues(t, 3, posts, "the initial poll ran before cancellation")
}
