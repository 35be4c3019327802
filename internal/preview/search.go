package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"

	"github.com/songreel/songreel/internal/errcat"
	"github.com/songreel/songreel/internal/media"
)

const searchMaxResults = 5

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		ChannelTitle string `json:"channelTitle"`
		Thumbnails   struct {
			High    searchThumb `json:"high"`
			Medium  searchThumb `json:"medium"`
			Default searchThumb `json:"default"`
		} `json:"thumbnails"`
	} `json:"snippet"`
}

type searchThumb struct {
	URL string `json:"url"`
}

// resolveSearch turns a free-text query into the best-matching single
// item, carrying every candidate so the caller can offer alternatives.
func (r *Resolver) resolveSearch(ctx context.Context, desc *media.Descriptor) (*Preview, error) {
	if r.SearchKey == "" {
		return nil, errcat.New(errcat.CategoryPreview,
			"search requires an API key: set SONGREEL_YT_KEY")
	}

	query := url.Values{}
	query.Set("part", "snippet")
	query.Set("type", "video")
	query.Set("maxResults", fmt.Sprintf("%d", searchMaxResults))
	query.Set("q", desc.ID)
	query.Set("key", r.SearchKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.SearchURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, errcat.Wrap(errcat.CategoryPreview, err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, errcat.Wrap(errcat.CategoryPreview, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errcat.Newf(errcat.CategoryPreview, "search endpoint returned %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errcat.Wrap(errcat.CategoryPreview, fmt.Errorf("decoding search results: %w", err))
	}
	if len(result.Items) == 0 {
		return nil, errcat.Newf(errcat.CategoryPreview, "no results for %q", desc.ID)
	}

	alternates := make([]Preview, 0, len(result.Items))
	for _, item := range result.Items {
		alternates = append(alternates, r.previewFromSearchItem(item))
	}

	// The top-ranked candidate is promoted so downstream steps treat it
	// like an ordinary single item.
	best := alternates[0]
	best.Alternates = alternates
	return &best, nil
}

func (r *Resolver) previewFromSearchItem(item searchItem) Preview {
	title := html.UnescapeString(item.Snippet.Title)
	author := item.Snippet.ChannelTitle

	artwork := item.Snippet.Thumbnails.High.URL
	if artwork == "" {
		artwork = item.Snippet.Thumbnails.Medium.URL
	}
	if artwork == "" {
		artwork = item.Snippet.Thumbnails.Default.URL
	}

	desc := media.Descriptor{ID: item.ID.VideoID, Platform: media.PlatformVideo}
	return Preview{
		Title:       media.CleanTitle(title, author),
		Author:      media.CleanAuthor(author),
		ArtworkURL:  artwork,
		Platform:    media.PlatformVideo,
		ResolvedURL: desc.WatchURL(),
		ID:          item.ID.VideoID,
	}
}
