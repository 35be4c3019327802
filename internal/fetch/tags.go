package fetch

import (
	"bytes"
	"strings"

	id3v2 "github.com/bogem/id3v2/v2"
)

// Tags holds metadata recovered from a downloaded artifact's embedded
// container, used to improve filenames when the preview title was weak.
type Tags struct {
	Title  string
	Artist string
	Album  string
	Year   string
}

func (t Tags) Empty() bool {
	return t == Tags{}
}

// ReadTags extracts ID3 metadata from an MP3 artifact. It never fails:
// artifacts without an ID3 container, or with one that cannot be
// parsed, yield empty tags.
func ReadTags(artifact []byte) Tags {
	if len(artifact) < 3 || !bytes.HasPrefix(artifact, []byte("ID3")) {
		return Tags{}
	}

	tag, err := id3v2.ParseReader(bytes.NewReader(artifact), id3v2.Options{Parse: true})
	if err != nil || tag == nil {
		return Tags{}
	}

	return Tags{
		Title:  strings.TrimSpace(tag.Title()),
		Artist: firstArtist(tag.Artist()),
		Album:  strings.TrimSpace(tag.Album()),
		Year:   strings.TrimSpace(tag.GetTextFrame(tag.CommonID("Year")).Text),
	}
}

// firstArtist keeps the first entry of an ID3 multi-artist field.
func firstArtist(artist string) string {
	artist = strings.TrimSpace(artist)
	for _, sep := range []string{"; ", ";", " / "} {
		if i := strings.Index(artist, sep); i >= 0 {
			return strings.TrimSpace(artist[:i])
		}
	}
	return artist
}
