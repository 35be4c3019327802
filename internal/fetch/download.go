package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/songreel/songreel/internal/errcat"
	"github.com/songreel/songreel/internal/media"
	"github.com/songreel/songreel/internal/preview"
)

// Downloader drives the remote download protocol for one item or
// collection per call.
type Downloader struct {
	Client    *http.Client
	BaseURL   string
	Token     string
	OutputDir string
	Renderer  Renderer
}

func NewDownloader(client *http.Client, baseURL, token, outputDir string, renderer Renderer) *Downloader {
	if client == nil {
		client = NewAPIClient(3 * time.Minute)
	}
	if renderer == nil {
		renderer = NopRenderer{}
	}
	return &Downloader{
		Client:    client,
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Token:     token,
		OutputDir: outputDir,
		Renderer:  renderer,
	}
}

type initiationRequest struct {
	URL      string      `json:"url"`
	Format   string      `json:"format"`
	Metadata requestMeta `json:"metadata"`
}

type requestMeta struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

type initiationStatus struct {
	Message    string `json:"message"`
	Detail     string `json:"detail"`
	Error      string `json:"error"`
	PlaylistID any    `json:"playlist_id"`
}

// quotedName extracts a quoted collection name out of a status message
// like: playlist "Road Trip Mix" is ready.
var quotedName = regexp.MustCompile(`['"]([^'"]+)['"]`)

// Download runs the full protocol for the preview and records the
// outcome on session. A session that already completed short-circuits
// straight to Save without re-contacting the network; a session still
// downloading makes the call a no-op.
func (d *Downloader) Download(ctx context.Context, pv *preview.Preview, format string, session *Session) error {
	switch session.State() {
	case StateComplete:
		_, err := d.Save(session)
		return err
	case StateDownloading:
		return nil
	}

	if d.Token == "" {
		err := errcat.New(errcat.CategoryAuth, "authentication required: sign in and provide a token")
		session.fail(err)
		return err
	}

	if !session.begin() {
		return nil
	}

	d.Renderer.Start(pv.Title)
	stop := startIllusion(session, d.Renderer)
	defer stop()

	if err := d.run(ctx, pv, format, session, stop); err != nil {
		session.fail(err)
		d.Renderer.Finish()
		return err
	}

	d.Renderer.Update(100)
	d.Renderer.Finish()
	return nil
}

// Save writes the completed artifact to the configured output directory.
func (d *Downloader) Save(session *Session) (string, error) {
	return Save(session, d.OutputDir)
}

func (d *Downloader) run(ctx context.Context, pv *preview.Preview, format string, session *Session, stop func()) error {
	payload, err := json.Marshal(initiationRequest{
		URL:    pv.ResolvedURL,
		Format: format,
		Metadata: requestMeta{
			Artist: pv.Author,
			Title:  pv.Title,
		},
	})
	if err != nil {
		return errcat.Wrap(errcat.CategoryRemote, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.BaseURL+"/api/download", bytes.NewReader(payload))
	if err != nil {
		return errcat.Wrap(errcat.CategoryRemote, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.Token)

	resp, err := d.Client.Do(req)
	if err != nil {
		return errcat.Wrap(errcat.CategoryRemote, fmt.Errorf("download request failed: %w", err))
	}
	defer resp.Body.Close()

	// The response has arrived; the fabricated progress stops here and
	// the outcome decides the final jump.
	stop()

	if resp.StatusCode == http.StatusTooManyRequests {
		return errcat.New(errcat.CategoryRateLimit,
			"slow down: the download limit was reached, try again in a few minutes")
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch {
	case strings.HasPrefix(mediaType, "audio/"):
		return d.handleAudio(pv, format, session, resp)
	case mediaType == "application/json":
		return d.handleJSON(ctx, pv, session, resp)
	default:
		if resp.StatusCode != http.StatusOK {
			return errcat.Newf(errcat.CategoryRemote, "download failed with status %d", resp.StatusCode)
		}
		return errcat.New(errcat.CategoryRemote, "unexpected response format from download service")
	}
}

func (d *Downloader) handleAudio(pv *preview.Preview, format string, session *Session, resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errcat.Wrap(errcat.CategoryRemote, fmt.Errorf("reading audio body: %w", err))
	}
	if len(data) == 0 {
		return errcat.New(errcat.CategoryEmptyArtifact, "the service returned empty audio content")
	}

	tags := Tags{}
	if format == "mp3" {
		tags = ReadTags(data)
	}
	if tags.Artist == "" {
		tags.Artist = resp.Header.Get("X-Song-Artist")
	}

	filename := d.resolveFilename(pv, format, tags, resp.Header)
	session.complete(data, filename, tags)
	return nil
}

func (d *Downloader) handleJSON(ctx context.Context, pv *preview.Preview, session *Session, resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errcat.Wrap(errcat.CategoryRemote, fmt.Errorf("reading response: %w", err))
	}

	var status initiationStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return errcat.Newf(errcat.CategoryRemote, "download failed with status %d", resp.StatusCode)
	}

	if msg := firstNonEmpty(status.Detail, status.Error); msg != "" {
		return errcat.New(errcat.CategoryRemote, msg)
	}

	// The video platform signals success through message phrasing and
	// never returns a numeric identifier, so that check runs first; the
	// other platform's explicit playlist_id is the generic fallback.
	var collectionID string
	if pv.Platform == media.PlatformVideo && mentionsPlaylist(status.Message) {
		if desc := media.Classify(pv.ResolvedURL); desc != nil {
			collectionID = desc.CollectionID
		}
	}
	if collectionID == "" {
		collectionID = playlistIDString(status.PlaylistID)
	}
	if collectionID == "" {
		if resp.StatusCode != http.StatusOK {
			return errcat.Newf(errcat.CategoryRemote, "download failed with status %d", resp.StatusCode)
		}
		return errcat.New(errcat.CategoryRemote, "unexpected response format from download service")
	}

	name := pv.Title
	if m := quotedName.FindStringSubmatch(status.Message); m != nil {
		name = m[1]
	}
	return d.fetchArchive(ctx, pv, session, collectionID, name)
}

func (d *Downloader) fetchArchive(ctx context.Context, pv *preview.Preview, session *Session, collectionID, name string) error {
	endpoint := fmt.Sprintf("%s/api/playlist/%s/archive", d.BaseURL, collectionID)
	if pv.Platform == media.PlatformVideo {
		endpoint = fmt.Sprintf("%s/api/youtube/playlist/%s/archive", d.BaseURL, collectionID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errcat.Wrap(errcat.CategoryRemote, err)
	}
	req.Header.Set("Authorization", "Bearer "+d.Token)

	resp, err := d.Client.Do(req)
	if err != nil {
		return errcat.Wrap(errcat.CategoryRemote, fmt.Errorf("archive request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errcat.Newf(errcat.CategoryRemote, "archive fetch failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errcat.Wrap(errcat.CategoryRemote, fmt.Errorf("reading archive: %w", err))
	}
	if len(data) == 0 {
		return errcat.New(errcat.CategoryEmptyArtifact, "the service returned an empty archive")
	}

	if name == "" {
		name = "Playlist"
	}
	session.complete(data, media.SanitizeFilename(name)+".zip", Tags{})
	return nil
}

// resolveFilename picks the best available title: the preview's, unless
// it looks like a placeholder and embedded tags or response headers
// know better, then a server-supplied disposition name, then a dated
// generic name as the last resort.
func (d *Downloader) resolveFilename(pv *preview.Preview, format string, tags Tags, header http.Header) string {
	title := pv.Title
	if looksPlaceholder(title) {
		title = firstNonEmpty(tags.Title, header.Get("X-Song-Title"), title)
	}
	if pv.Platform == media.PlatformVideo {
		title = media.CleanTitle(title, pv.Author)
	}

	if looksPlaceholder(title) {
		if fn := dispositionFilename(header.Get("Content-Disposition")); fn != "" {
			return media.SanitizeFilename(fn)
		}
		return fmt.Sprintf("songreel-%s.%s", time.Now().Format("2006-01-02"), format)
	}
	return media.SanitizeFilename(title + "." + format)
}

func looksPlaceholder(title string) bool {
	switch strings.ToLower(strings.TrimSpace(title)) {
	case "", strings.ToLower(media.UntitledTrack), "track", "playlist", "audio", "unknown":
		return true
	}
	return false
}

func dispositionFilename(value string) string {
	if value == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(value)
	if err != nil {
		return ""
	}
	return params["filename"]
}

func mentionsPlaylist(message string) bool {
	return strings.Contains(strings.ToLower(message), "playlist")
}

func playlistIDString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
