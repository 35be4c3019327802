package preview

import (
	"context"
	"strings"

	"github.com/songreel/songreel/internal/media"
)

const (
	fallbackTrackTitle   = "Track"
	fallbackTrackAuthor  = "Unknown Artist"
	unknownAuthor        = "Unknown"
	streamingProviderDef = "Spotify"
)

// resolveStreaming fetches embeddable metadata for a streaming track or
// playlist. The endpoint exposes no owner attribution or item counts,
// and every failure degrades to a generic preview.
func (r *Resolver) resolveStreaming(ctx context.Context, desc *media.Descriptor) *Preview {
	target := desc.WatchURL()

	pv := &Preview{
		Platform:     media.PlatformStreaming,
		IsCollection: desc.IsCollection,
		ResolvedURL:  target,
		ID:           desc.ID,
	}
	if desc.IsCollection {
		pv.ID = desc.CollectionID
		pv.Title = fallbackPlaylistTitle
		pv.Author = fallbackTrackAuthor
	} else {
		pv.Title = fallbackTrackTitle
		pv.Author = fallbackTrackAuthor
	}

	meta, err := r.fetchOEmbed(ctx, r.StreamOEmbedURL, target)
	if err != nil || meta.Title == "" {
		pv.Degraded = true
		return pv
	}

	pv.ArtworkURL = meta.ThumbnailURL

	if desc.IsCollection {
		pv.Title = meta.Title
		pv.Author = meta.ProviderName
		if pv.Author == "" {
			pv.Author = streamingProviderDef
		}
		return pv
	}

	// Tracks arrive as a combined "Artist - Title" string.
	if author, title, found := strings.Cut(meta.Title, " - "); found {
		pv.Author = strings.TrimSpace(author)
		pv.Title = strings.TrimSpace(title)
	} else {
		pv.Title = strings.TrimSpace(meta.Title)
		pv.Author = unknownAuthor
	}
	return pv
}
