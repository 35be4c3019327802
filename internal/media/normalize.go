package media

import (
	"regexp"
	"strings"
)

// UntitledTrack is the placeholder used when a title is missing entirely.
const UntitledTrack = "Untitled Track"

var (
	decorationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)[(\[]\s*official(?:\s+music)?\s+video\s*[)\]]`),
		regexp.MustCompile(`(?i)[(\[]\s*official(?:\s+hd)?\s+(?:audio|lyrics?(?:\s+video)?)\s*[)\]]`),
		regexp.MustCompile(`(?i)[(\[]\s*(?:full\s+)?hd(?:\s+quality)?\s*[)\]]`),
		regexp.MustCompile(`(?i)[(\[]\s*lyrics?\s+video\s*[)\]]`),
	}
	trailingJunkPattern = regexp.MustCompile(`(?i)\s*[(\[][^()\[\]]*(?:video|audio|hd|official|4k|quality)[^()\[\]]*[)\]]\s*$`)
	whitespaceRun       = regexp.MustCompile(`\s+`)
	illegalFilenameRune = regexp.MustCompile(`[/\\?%*:|"<>\x00-\x1F]`)
)

// CleanTitle strips promotional decorations and redundant artist
// prefixes from a video-platform title. The result is stable:
// CleanTitle(CleanTitle(s, a), a) == CleanTitle(s, a).
func CleanTitle(title, author string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return UntitledTrack
	}

	// Single passes are not stable (dropping one artist prefix can
	// expose another), so iterate to a fixed point.
	for i := 0; i < 8; i++ {
		next := cleanOnce(title, author)
		if next == title {
			break
		}
		title = next
	}
	if title == "" {
		return UntitledTrack
	}
	return title
}

func cleanOnce(title, author string) string {
	for _, pattern := range decorationPatterns {
		title = pattern.ReplaceAllString(title, " ")
	}

	if strings.Count(title, "-") >= 2 {
		if i := strings.Index(title, "-"); i >= 0 {
			title = title[i+1:]
		}
	} else if author != "" {
		// "Artist - Song" with the artist restating the channel name.
		if i := strings.Index(title, " - "); i > 0 {
			if foldName(title[:i]) == foldName(CleanAuthor(author)) {
				title = title[i+3:]
			}
		}
	}

	title = trailingJunkPattern.ReplaceAllString(title, "")

	title = whitespaceRun.ReplaceAllString(title, " ")
	title = strings.TrimSpace(title)
	title = strings.TrimSuffix(title, "-")
	return strings.TrimSpace(title)
}

// CleanAuthor strips channel furniture ("VEVO", " - Topic", trailing
// "Official") from a video-platform author name.
func CleanAuthor(author string) string {
	author = strings.TrimSpace(author)
	author = trimSuffixFold(author, "vevo")
	author = trimSuffixFold(author, "- topic")
	author = trimSuffixFold(author, "official")
	return strings.TrimSpace(author)
}

// SanitizeFilename replaces filesystem-illegal characters so the name
// is safe on every platform the artifact may be saved to.
func SanitizeFilename(name string) string {
	clean := illegalFilenameRune.ReplaceAllString(name, "-")
	clean = whitespaceRun.ReplaceAllString(clean, " ")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return "track"
	}
	return clean
}

func foldName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
}

func trimSuffixFold(value, suffix string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) > len(suffix) && strings.EqualFold(trimmed[len(trimmed)-len(suffix):], suffix) {
		return strings.TrimSpace(trimmed[:len(trimmed)-len(suffix)])
	}
	return trimmed
}
