// Package ingest turns post events into stored rows: it picks the
// usable location signal, resolves the country, and hands the
// author-then-post pair to the store.
package ingest

import (
	"context"
	"log/slog"

	"github.com/RavenB/UnitedTweetAnalyzer/internal/store"
	"github.com/RavenB/UnitedTweetAnalyzer/pkg/geo"
	"github.com/RavenB/UnitedTweetAnalyzer/pkg/source"
)

// Ingestor persists post events. Safe for concurrent use: resolution
// happens per call, and the store serializes the writes.
type Ingestor struct {
	store    *store.Storage
	resolver geo.Resolver
	log      *slog.Logger
}

// New creates an ingestor over the given store and country resolver.
func New(st *store.Storage, resolver geo.Resolver, log *slog.Logger) *Ingestor {
	return &Ingestor{store: st, resolver: resolver, log: log}
}

// Ingest persists one post event. The author is always stored; the
// post only when it carries a usable location.
//
// The location fallback chain, in order: direct coordinates, then the
// midpoint of the first and last corner of the bounding region, then
// nothing. A post without a usable location is dropped silently, but
// its author is kept: accounts seen only through location-less posts
// are exactly the unlabeled population the classification view
// samples from.
//
// Country resolution runs before the store lock is taken; only the
// inserts are serialized.
func (i *Ingestor) Ingest(ctx context.Context, ev source.PostEvent) error {
	author := store.Author{
		ID:        ev.Author.ID,
		Name:      ev.Author.Name,
		Lang:      ev.Author.Lang,
		Location:  ev.Author.Location,
		UTCOffset: ev.Author.UTCOffset,
		Timezone:  ev.Author.Timezone,
	}

	pt, ok := effectivePoint(ev)
	if !ok {
		if err := i.store.InsertAuthor(ctx, author); err != nil {
			i.log.Warn("author not persisted", "author_id", ev.Author.ID, "error", err)
			return err
		}
		i.log.Debug("post carries no location, dropped", "post_id", ev.ID)
		return nil
	}

	country := i.resolver.Resolve(pt.Lon, pt.Lat)
	if country == geo.Unknown {
		i.log.Warn("post resolved to no known country",
			"post_id", ev.ID, "lat", pt.Lat, "lon", pt.Lon)
	}

	err := i.store.SavePost(ctx, author,
		store.Post{
			ID:       ev.ID,
			Lat:      pt.Lat,
			Lon:      pt.Lon,
			Country:  country,
			AuthorID: ev.Author.ID,
		},
	)
	if err != nil {
		i.log.Warn("post not persisted", "post_id", ev.ID, "author_id", ev.Author.ID, "error", err)
		return err
	}

	i.log.Debug("post stored", "post_id", ev.ID, "country", country)
	return nil
}

// effectivePoint applies the location precedence: direct coordinates
// win over the bounding region; the region's effective point is the
// arithmetic midpoint of its first and last corner.
func effectivePoint(ev source.PostEvent) (geo.Point, bool) {
	if ev.Coordinates != nil {
		return *ev.Coordinates, true
	}
	if ev.Box != nil {
		corners := ev.Box.Corners()
		return geo.Midpoint(corners[0], corners[len(corners)-1]), true
	}
	return geo.Point{}, false
}
