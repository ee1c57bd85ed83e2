package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	ErrInvalidURL = errors.New("url must be absolute http or https")
	ErrNoMedia    = errors.New("no audio or video found at url")
	ErrTooLarge   = errors.New("remote media exceeds the size limit")
)

const maxPageBytes = 5 << 20

// mediaSelectors are tried in order on HTML pages.
var mediaSelectors = []struct {
	selector string
	attr     string
}{
	{`meta[property="og:audio"]`, "content"},
	{`meta[property="og:audio:url"]`, "content"},
	{`meta[property="og:audio:secure_url"]`, "content"},
	{`meta[property="og:video"]`, "content"},
	{`meta[property="og:video:url"]`, "content"},
	{`audio[src]`, "src"},
	{`audio source[src]`, "src"},
	{`video source[src]`, "src"},
	{`source[src]`, "src"},
}

// Media is a resolved, downloadable media location.
type Media struct {
	URL         string
	Filename    string
	ContentType string
	// Size is the advertised length in bytes, or -1 when unknown.
	Size  int64
	Title string
}

// Resolver turns user supplied links into media URLs.
type Resolver struct {
	client *http.Client
}

func NewResolver(client *http.Client) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}
	return &Resolver{client: client}
}

// Resolve returns the media behind rawURL. Direct media links are used as-is;
// HTML pages are scraped for Open Graph audio/video tags and <audio>/<source>
// elements. The size comes from a HEAD probe of the media URL.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*Media, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}

	media, err := r.head(ctx, u.String())
	if err == nil && isMediaType(media.ContentType, u.Path) {
		return media, nil
	}

	pageMedia, err := r.scrape(ctx, u)
	if err != nil {
		return nil, err
	}
	if probed, err := r.head(ctx, pageMedia.URL); err == nil {
		pageMedia.Size = probed.Size
		if probed.ContentType != "" {
			pageMedia.ContentType = probed.ContentType
		}
	}
	return pageMedia, nil
}

func (r *Resolver) head(ctx context.Context, mediaURL string) (*Media, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, mediaURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("head %s: status %d", mediaURL, resp.StatusCode)
	}

	size := int64(-1)
	if v := resp.Header.Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			size = n
		}
	}
	return &Media{
		URL:         mediaURL,
		Filename:    filenameFromURL(mediaURL),
		ContentType: baseType(resp.Header.Get("Content-Type")),
		Size:        size,
	}, nil
}

func (r *Resolver) scrape(ctx context.Context, page *url.URL) (*Media, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch page: status %d: %w", resp.StatusCode, ErrNoMedia)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	for _, s := range mediaSelectors {
		value, ok := doc.Find(s.selector).First().Attr(s.attr)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		ref, err := url.Parse(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		mediaURL := page.ResolveReference(ref).String()
		title, _ := doc.Find(`meta[property="og:title"]`).First().Attr("content")
		if title == "" {
			title = strings.TrimSpace(doc.Find("title").First().Text())
		}
		return &Media{
			URL:      mediaURL,
			Filename: filenameFromURL(mediaURL),
			Size:     -1,
			Title:    title,
		}, nil
	}
	return nil, ErrNoMedia
}

// Download fetches media into memory, failing with ErrTooLarge beyond maxBytes.
func (r *Resolver) Download(ctx context.Context, media *Media, maxBytes int64) ([]byte, string, error) {
	if media.Size > maxBytes {
		return nil, "", ErrTooLarge
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, media.URL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("download: %w", err)
	}
	if int64(len(body)) > maxBytes {
		return nil, "", ErrTooLarge
	}
	contentType := baseType(resp.Header.Get("Content-Type"))
	if contentType == "" {
		contentType = media.ContentType
	}
	return body, contentType, nil
}

var mediaExtensions = map[string]bool{
	".mp3": true, ".m4a": true, ".mp4": true, ".wav": true, ".ogg": true,
	".oga": true, ".flac": true, ".webm": true, ".aac": true, ".opus": true,
}

func isMediaType(contentType, urlPath string) bool {
	switch {
	case strings.HasPrefix(contentType, "audio/"), strings.HasPrefix(contentType, "video/"), contentType == "application/ogg":
		return true
	case contentType == "application/octet-stream" || contentType == "binary/octet-stream":
		return mediaExtensions[strings.ToLower(path.Ext(urlPath))]
	default:
		return false
	}
}

func baseType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

func filenameFromURL(mediaURL string) string {
	u, err := url.Parse(mediaURL)
	if err != nil {
		return "remote-audio"
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "remote-audio"
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name
}
