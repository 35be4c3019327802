package preview

import (
	"context"
	"regexp"

	"github.com/songreel/songreel/internal/errcat"
	"github.com/songreel/songreel/internal/media"
)

const (
	fallbackPlaylistTitle  = "Playlist"
	fallbackPlaylistAuthor = "Various Artists"
)

// thumbnailVideoID pulls the member video ID out of a playlist
// thumbnail URL (".../vi/<id>/hqdefault.jpg").
var thumbnailVideoID = regexp.MustCompile(`/vi/([A-Za-z0-9_-]{11})/`)

// resolveVideoItem fetches embeddable metadata for a single video.
// Unlike collections there is no meaningful fallback, so failures
// propagate to the caller.
func (r *Resolver) resolveVideoItem(ctx context.Context, desc *media.Descriptor) (*Preview, error) {
	target := desc.WatchURL()
	meta, err := r.fetchOEmbed(ctx, r.VideoOEmbedURL, target)
	if err != nil {
		return nil, errcat.Wrap(errcat.CategoryPreview, err)
	}

	artwork := r.thumbnailURL(desc.ID, "maxresdefault")
	if !r.probeURL(ctx, artwork) {
		artwork = r.thumbnailURL(desc.ID, "hqdefault")
	}

	return &Preview{
		Title:       media.CleanTitle(meta.Title, meta.AuthorName),
		Author:      media.CleanAuthor(meta.AuthorName),
		ArtworkURL:  artwork,
		Platform:    media.PlatformVideo,
		ResolvedURL: target,
		ID:          desc.ID,
	}, nil
}

// resolveVideoCollection builds a playlist preview. A collection has no
// single authoritative metadata source, so every lookup failure
// degrades to a generic preview instead of an error.
func (r *Resolver) resolveVideoCollection(ctx context.Context, desc *media.Descriptor) *Preview {
	target := desc.WatchURL()
	pv := &Preview{
		Title:        fallbackPlaylistTitle,
		Author:       fallbackPlaylistAuthor,
		Platform:     media.PlatformVideo,
		IsCollection: true,
		ResolvedURL:  target,
		ID:           desc.CollectionID,
	}

	thumbKey := desc.ID
	if thumbKey == "" {
		thumbKey = desc.CollectionID
	}

	meta, err := r.fetchOEmbed(ctx, r.VideoOEmbedURL, target)
	if err != nil {
		pv.Degraded = true
	}
	if err == nil {
		if meta.Title != "" {
			pv.Title = media.CleanTitle(meta.Title, meta.AuthorName)
		}
		if meta.AuthorName != "" {
			pv.Author = media.CleanAuthor(meta.AuthorName)
		}
		pv.ItemCount = meta.ItemCount

		// The playlist thumbnail points at the first member video;
		// its ID makes a better artwork key than the playlist ID.
		if desc.ID == "" {
			if m := thumbnailVideoID.FindStringSubmatch(meta.ThumbnailURL); m != nil {
				thumbKey = m[1]
			}
		}
	}

	pv.ArtworkURL = r.thumbnailURL(thumbKey, "hqdefault")
	return pv
}
