// Package source delivers geotagged post events from the outside
// world. Sources are pollable collaborators; the ingestion engine owns
// everything downstream of the event boundary.
package source

import (
	"context"

	"github.com/RavenB/UnitedTweetAnalyzer/pkg/geo"
)

// UTCOffsetUnknown is the sentinel some platforms use when an
// author's UTC offset is not set. The registry translates it to a
// missing value before persisting; it never reaches the store as -1.
const UTCOffsetUnknown int64 = -1

// AuthorRecord is the account that produced a post, as delivered by
// the platform.
type AuthorRecord struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Lang      string `json:"lang"`
	Location  string `json:"location"`
	UTCOffset *int64 `json:"utc_offset"`
	Timezone  string `json:"timezone"`
}

// PostEvent is one geotagged post with its author. A post carries
// direct coordinates, a bounding region, or neither; the ingestor's
// fallback chain decides which signal to use.
type PostEvent struct {
	ID          int64            `json:"id"`
	Coordinates *geo.Point       `json:"coordinates,omitempty"`
	Box         *geo.BoundingBox `json:"box,omitempty"`
	Author      AuthorRecord     `json:"author"`
}

// Source is the interface every post producer implements.
type Source interface {
	Name() string
	Poll(ctx context.Context) ([]PostEvent, error)
}
