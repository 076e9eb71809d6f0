package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	statusPath   = "/api/status"
	manifestPath = "/api/files"
)

// Manifest represents the /api/files document downloaded from server
type Manifest struct {
	TotalSize int64
	Files     []RemoteFile
}

// RemoteFile is an entry inside Manifest
type RemoteFile struct {
	Name        string
	Size        int64
	DownloadURL string
}

type manifestDoc struct {
	Statistics *struct {
		TotalSize *int64 `json:"total_size"`
	} `json:"statistics"`
	Files []struct {
		Name        *string `json:"name"`
		Size        *int64  `json:"size"`
		DownloadURL *string `json:"download_url"`
	} `json:"files"`
}

// ParseManifest decodes a manifest document and rewrites each download_url onto baseURL.
// A null name is kept as an empty Name so the entry still takes part in orphan matching
// but can never be fetched.
func ParseManifest(data []byte, baseURL string) (*Manifest, error) {
	doc := &manifestDoc{}
	err := json.Unmarshal(data, doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedManifest, err)
	}
	if doc.Statistics == nil || doc.Statistics.TotalSize == nil {
		return nil, fmt.Errorf("%w: missing statistics.total_size", ErrMalformedManifest)
	}

	m := &Manifest{
		TotalSize: *doc.Statistics.TotalSize,
		Files:     make([]RemoteFile, 0, len(doc.Files)),
	}
	for i, f := range doc.Files {
		if f.Size == nil {
			return nil, fmt.Errorf("%w: files[%d] missing size", ErrMalformedManifest, i)
		}
		entry := RemoteFile{
			Size:        *f.Size,
			DownloadURL: rewriteURL(baseURL, f.DownloadURL),
		}
		if f.Name != nil {
			entry.Name = *f.Name
		}
		m.Files = append(m.Files, entry)
	}
	return m, nil
}

// rewriteURL drops everything up to and including the first slash of path and
// prefixes the remainder with baseURL.
func rewriteURL(baseURL string, path *string) string {
	short := ""
	if path != nil {
		short = (*path)[strings.Index(*path, "/")+1:]
	}
	return baseURL + "/" + short
}

// FetchManifest downloads and parses the manifest at url.
// Any transport, status or parse failure is returned wrapped in ErrManifestUnavailable.
func (c *Client) FetchManifest(ctx context.Context, url string) (*Manifest, error) {
	log := c.log.With(slog.String("op", "FetchManifest"), slog.String("url", url))
	log.Debug("Downloading manifest")

	data, err := c.getBody(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestUnavailable, err)
	}

	m, err := ParseManifest(data, c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestUnavailable, err)
	}
	log.Debug("Manifest parsed", slog.Int("files", len(m.Files)), slog.Int64("total_size", m.TotalSize))
	return m, nil
}

func (c *Client) manifest(ctx context.Context) (*Manifest, error) {
	return c.FetchManifest(ctx, c.baseURL+manifestPath)
}

// getBody performs a GET and returns the whole body of a 2xx response.
func (c *Client) getBody(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request %s: %w", url, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, fmt.Errorf("download %s responded %d: %w", url, resp.StatusCode, ErrBadStatus)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return data, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code <= 299
}
