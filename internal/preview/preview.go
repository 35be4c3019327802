// Package preview resolves classified media descriptors into the
// lightweight metadata shown before a download is started. All lookups
// use unauthenticated embeddable-metadata endpoints except free-text
// search, which needs a configured API key.
package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/songreel/songreel/internal/errcat"
	"github.com/songreel/songreel/internal/media"
)

// Preview is what the user sees before confirming a download. A new
// Preview is produced on every resolve; previews are never mutated.
type Preview struct {
	Title        string
	Author       string
	ArtworkURL   string
	Platform     media.Platform
	IsCollection bool
	ItemCount    int // 0 when the source does not expose a count
	ResolvedURL  string
	ID           string
	Alternates   []Preview

	// Degraded marks a preview built from fallback values because the
	// metadata lookup failed. Downloads still proceed on it.
	Degraded bool
}

// Resolver fetches previews. Endpoint fields default to the real
// services and are overridable for tests.
type Resolver struct {
	Client *http.Client

	SearchKey string

	VideoOEmbedURL  string
	StreamOEmbedURL string
	SearchURL       string
	ThumbnailBase   string
}

func NewResolver(client *http.Client, searchKey string) *Resolver {
	if client == nil {
		client = NewDefaultClient()
	}
	return &Resolver{
		Client:          client,
		SearchKey:       searchKey,
		VideoOEmbedURL:  "https://www.youtube.com/oembed",
		StreamOEmbedURL: "https://open.spotify.com/oembed",
		SearchURL:       "https://www.googleapis.com/youtube/v3/search",
		ThumbnailBase:   "https://i.ytimg.com/vi",
	}
}

func NewDefaultClient() *http.Client {
	return &http.Client{Timeout: 15 * time.Second}
}

// Resolve produces a Preview for the descriptor. Single-item video
// failures propagate; collection and streaming failures degrade to
// generic placeholder previews instead.
func (r *Resolver) Resolve(ctx context.Context, desc *media.Descriptor) (*Preview, error) {
	if desc == nil {
		return nil, errcat.New(errcat.CategoryInvalidInput, "nothing to preview")
	}
	switch {
	case desc.IsSearchQuery:
		return r.resolveSearch(ctx, desc)
	case desc.Platform == media.PlatformStreaming:
		return r.resolveStreaming(ctx, desc), nil
	case desc.IsCollection:
		return r.resolveVideoCollection(ctx, desc), nil
	default:
		return r.resolveVideoItem(ctx, desc)
	}
}

// oembedResponse covers the fields both platforms share. item_count is
// non-standard and only honored when a provider happens to send it.
type oembedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
	ProviderName string `json:"provider_name"`
	ItemCount    int    `json:"item_count"`
}

func (r *Resolver) fetchOEmbed(ctx context.Context, endpoint, target string) (oembedResponse, error) {
	var meta oembedResponse

	query := url.Values{}
	query.Set("url", target)
	query.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return meta, err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return meta, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return meta, fmt.Errorf("metadata endpoint returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return meta, fmt.Errorf("decoding metadata: %w", err)
	}
	return meta, nil
}

// probeURL reports whether target exists, for thumbnail fallback.
func (r *Resolver) probeURL(ctx context.Context, target string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (r *Resolver) thumbnailURL(key, variant string) string {
	return fmt.Sprintf("%s/%s/%s.jpg", r.ThumbnailBase, key, variant)
}
