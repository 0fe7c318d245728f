package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RavenB/UnitedTweetAnalyzer/pkg/geo"
)

func writeEvents(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	data := ""
	for _, l := range lines {
		data += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestFilePoll(t *testing.T) {
	path := writeEvents(t,
		`{"id":1,"coordinates":{"lat":40,"lon":-75},"author":{"id":10,"name":"a","lang":"en","location":"New York, NY","utc_offset":-18000,"timezone":"EST"}}`,
		``,
		`{"id":2,"box":{"south_west":{"lat":10,"lon":10},"north_east":{"lat":20,"lon":20}},"author":{"id":11,"name":"b","lang":"fr","utc_offset":-1}}`,
		`{"id":3,"author":{"id":12,"name":"c"}}`,
	)

	events, err := NewFile(path).Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 3, "blank lines are skipped")

	first := events[0]
	assert.EqualValues(t, 1, first.ID)
	require.NotNil(t, first.Coordinates)
	assert.Equal(t, geo.Point{Lat: 40, Lon: -75}, *first.Coordinates)
	require.NotNil(t, first.Author.UTCOffset)
	assert.EqualValues(t, -18000, *first.Author.UTCOffset)

	second := events[1]
	assert.Nil(t, second.Coordinates)
	require.NotNil(t, second.Box)
	assert.Equal(t, geo.Point{Lat: 10, Lon: 10}, second.Box.SouthWest)
	require.NotNil(t, second.Author.UTCOffset)
	assert.Equal(t, UTCOffsetUnknown, *second.Author.UTCOffset,
		"the platform sentinel passes through the source untouched")

	third := events[2]
	assert.Nil(t, third.Coordinates)
	assert.Nil(t, third.Box)
	assert.Nil(t, third.Author.UTCOffset)
}

func TestFilePollBadLine(t *testing.T) {
	path := writeEvents(t, `{"id":1,"author":{"id":10}}`, `not json`)

	_, err := NewFile(path).Poll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ":2", "error names the offending line")
}

func TestFilePollMissingFile(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "nope.jsonl")).Poll(context.Background())
	require.Error(t, err)
}
