package source

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RavenB/UnitedTweetAnalyzer/pkg/geo"
)

const geoFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
     xmlns:geo="http://www.w3.org/2003/01/geo/wgs84_pos#"
     xmlns:georss="http://www.georss.org/georss">
  <channel>
    <title>test feed</title>
    <language>en</language>
    <item>
      <title>philly post</title>
      <guid>tag:example.com,2015:post-1</guid>
      <author>alice@example.com (alice)</author>
      <geo:lat>40.0</geo:lat>
      <geo:long>-75.0</geo:long>
    </item>
    <item>
      <title>paris post</title>
      <guid>tag:example.com,2015:post-2</guid>
      <georss:point>48.85 2.35</georss:point>
    </item>
    <item>
      <title>no location</title>
      <guid>tag:example.com,2015:post-3</guid>
    </item>
    <item>
      <title>broken point</title>
      <guid>tag:example.com,2015:post-4</guid>
      <georss:point>not a point</georss:point>
    </item>
  </channel>
</rss>`

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestGeoRSSPoll(t *testing.T) {
	srv := serveFeed(t, geoFeedXML)
	g := NewGeoRSS([]GeoFeed{{Name: "test", URL: srv.URL}}, nil, testLogger())

	events, err := g.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 4)

	first := events[0]
	require.NotNil(t, first.Coordinates)
	assert.Equal(t, geo.Point{Lat: 40.0, Lon: -75.0}, *first.Coordinates)
	assert.Equal(t, "alice", first.Author.Name)
	assert.Equal(t, "en", first.Author.Lang)
	assert.Positive(t, first.ID)
	assert.Positive(t, first.Author.ID)

	second := events[1]
	require.NotNil(t, second.Coordinates)
	assert.Equal(t, geo.Point{Lat: 48.85, Lon: 2.35}, *second.Coordinates)

	// Entries without a parsable coordinate are still delivered, with
	// no location attached; their authors count even when their posts
	// never will.
	for _, ev := range events[2:] {
		assert.Nil(t, ev.Coordinates)
		assert.Nil(t, ev.Box)
		assert.Positive(t, ev.ID)
		assert.Positive(t, ev.Author.ID)
	}
}

func TestGeoRSSPollStableIDs(t *testing.T) {
	srv := serveFeed(t, geoFeedXML)
	g := NewGeoRSS([]GeoFeed{{Name: "test", URL: srv.URL}}, nil, testLogger())

	first, err := g.Poll(context.Background())
	require.NoError(t, err)
	second, err := g.Poll(context.Background())
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID,
			"redelivered entries must map to the same post identity")
		assert.Equal(t, first[i].Author.ID, second[i].Author.ID)
	}
}

func TestGeoRSSBoundingBoxFilter(t *testing.T) {
	srv := serveFeed(t, geoFeedXML)
	usBox := &geo.BoundingBox{
		SouthWest: geo.Point{Lat: 23.2193, Lon: -125.1088},
		NorthEast: geo.Point{Lat: 47.4416, Lon: -66.595},
	}
	g := NewGeoRSS([]GeoFeed{{Name: "test", URL: srv.URL}}, usBox, testLogger())

	events, err := g.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 3, "only the geotagged paris entry falls to the box filter")
	assert.Equal(t, geo.Point{Lat: 40.0, Lon: -75.0}, *events[0].Coordinates)
	assert.Nil(t, events[1].Coordinates, "the filter must not touch location-less entries")
	assert.Nil(t, events[2].Coordinates)
}

func TestGeoRSSFeedErrorDoesNotFailPoll(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(bad.Close)
	good := serveFeed(t, geoFeedXML)

	g := NewGeoRSS([]GeoFeed{
		{Name: "bad", URL: bad.URL},
		{Name: "good", URL: good.URL},
	}, nil, testLogger())

	events, err := g.Poll(context.Background())
	require.NoError(t, err, "a failing feed is logged and skipped")
	assert.Len(t, events, 4)
}
