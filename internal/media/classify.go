// Package media turns free-form user input into structured descriptors
// and cleans up the noisy titles both platforms attach to media.
package media

import (
	"net/url"
	"strings"
)

type Platform string

const (
	PlatformVideo     Platform = "video"
	PlatformStreaming Platform = "streaming"
)

const videoIDLength = 11

// Descriptor identifies a single item or a collection on one platform.
// Exactly one of single item / collection holds; a search-query
// descriptor carries the raw phrase in ID until a search resolves it.
type Descriptor struct {
	ID            string
	Platform      Platform
	IsCollection  bool
	CollectionID  string
	IsSearchQuery bool
}

// WatchURL returns the canonical playable URL for the descriptor.
func (d *Descriptor) WatchURL() string {
	switch {
	case d == nil:
		return ""
	case d.Platform == PlatformStreaming && d.IsCollection:
		return "https://open.spotify.com/playlist/" + d.CollectionID
	case d.Platform == PlatformStreaming:
		return "https://open.spotify.com/track/" + d.ID
	case d.IsCollection:
		return "https://www.youtube.com/playlist?list=" + d.CollectionID
	default:
		return "https://www.youtube.com/watch?v=" + d.ID
	}
}

// Classify parses input into a Descriptor. Non-URL text becomes a
// search-query descriptor; unrecognized or malformed URLs yield nil.
func Classify(input string) *Descriptor {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	if !strings.Contains(input, "://") && !strings.HasPrefix(strings.ToLower(input), "www.") {
		return &Descriptor{
			ID:            input,
			Platform:      PlatformVideo,
			IsSearchQuery: true,
		}
	}

	parsed, err := url.Parse(input)
	if err != nil || parsed.Host == "" {
		return nil
	}

	host := normalizeHostname(parsed)
	switch host {
	case "youtu.be":
		return classifyShortLink(parsed)
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		return classifyVideoHost(parsed)
	case "open.spotify.com", "spotify.com":
		return classifyStreamingHost(parsed)
	}
	return nil
}

// normalizeHostname returns the lowercase hostname with any "www."
// prefix and port stripped.
func normalizeHostname(parsed *url.URL) string {
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func classifyShortLink(parsed *url.URL) *Descriptor {
	id := firstPathSegment(parsed.Path)
	if id == "" {
		return nil
	}
	return &Descriptor{ID: id, Platform: PlatformVideo}
}

func classifyVideoHost(parsed *url.URL) *Descriptor {
	query := parsed.Query()
	videoID := query.Get("v")

	if list := query.Get("list"); list != "" {
		desc := &Descriptor{
			Platform:     PlatformVideo,
			IsCollection: true,
			CollectionID: list,
		}
		// A video ID alongside the list is kept for thumbnail derivation.
		if len(videoID) == videoIDLength {
			desc.ID = videoID
		}
		return desc
	}

	segments := pathSegments(parsed.Path)
	if len(segments) >= 2 && segments[0] == "playlist" {
		return &Descriptor{
			Platform:     PlatformVideo,
			IsCollection: true,
			CollectionID: segments[1],
		}
	}

	if videoID != "" {
		if len(videoID) != videoIDLength {
			return nil
		}
		return &Descriptor{ID: videoID, Platform: PlatformVideo}
	}
	return nil
}

func classifyStreamingHost(parsed *url.URL) *Descriptor {
	segments := pathSegments(parsed.Path)
	if len(segments) < 2 {
		return nil
	}
	id := stripQuerySuffix(segments[1])
	if id == "" {
		return nil
	}
	switch segments[0] {
	case "track":
		return &Descriptor{ID: id, Platform: PlatformStreaming}
	case "playlist":
		return &Descriptor{
			Platform:     PlatformStreaming,
			IsCollection: true,
			CollectionID: id,
		}
	}
	return nil
}

func firstPathSegment(path string) string {
	segments := pathSegments(path)
	if len(segments) == 0 {
		return ""
	}
	return stripQuerySuffix(segments[0])
}

func pathSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// stripQuerySuffix drops anything after an embedded "?" so identifiers
// pasted with tracking parameters stay clean.
func stripQuerySuffix(segment string) string {
	if i := strings.Index(segment, "?"); i >= 0 {
		return segment[:i]
	}
	return segment
}
