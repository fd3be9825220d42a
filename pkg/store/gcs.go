package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cryoscan/cryoscan/pkg/errors"
)

// DefaultEndpoint is the public Google Cloud Storage JSON API endpoint.
const DefaultEndpoint = "https://storage.googleapis.com"

// DefaultHTTPTimeout bounds a single listing or download request. Large
// projection files are a few hundred MB, so this is generous.
var DefaultHTTPTimeout = 10 * time.Minute

// GCS is a read-only client for a public GCS-style bucket using the JSON
// listing API. Paths are addressed as "<bucket>/<object>" so listing
// results line up with the catalog path grammar, and object URLs use the
// "gs://" scheme.
type GCS struct {
	bucket   string
	endpoint string
	http     *http.Client
}

// GCSOption configures a GCS client.
type GCSOption func(*GCS)

// WithEndpoint overrides the API endpoint. Used for test servers and
// S3-compatible gateways that speak the same listing dialect.
func WithEndpoint(endpoint string) GCSOption {
	return func(g *GCS) {
		g.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) GCSOption {
	return func(g *GCS) {
		g.http = c
	}
}

// NewGCS creates a client for the named bucket.
func NewGCS(bucket string, opts ...GCSOption) *GCS {
	g := &GCS{
		bucket:   bucket,
		endpoint: DefaultEndpoint,
		http:     &http.Client{Timeout: DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Bucket returns the bucket name, which is also the store root segment.
func (g *GCS) Bucket() string {
	return g.bucket
}

// listResponse is the subset of the JSON listing response we consume.
// Object sizes arrive as decimal strings.
type listResponse struct {
	Items []struct {
		Name string `json:"name"`
		Size string `json:"size"`
	} `json:"items"`
	Prefixes      []string `json:"prefixes"`
	NextPageToken string   `json:"nextPageToken"`
}

// List returns the immediate children of prefix using delimited listing.
// Pagination is followed until the listing is exhausted.
func (g *GCS) List(ctx context.Context, prefix string) ([]Entry, error) {
	objPrefix := strings.TrimPrefix(prefix, g.bucket)
	objPrefix = strings.TrimPrefix(objPrefix, "/")
	if objPrefix != "" && !strings.HasSuffix(objPrefix, "/") {
		objPrefix += "/"
	}

	var entries []Entry
	pageToken := ""
	for {
		q := url.Values{}
		q.Set("delimiter", "/")
		if objPrefix != "" {
			q.Set("prefix", objPrefix)
		}
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}
		listURL := fmt.Sprintf("%s/storage/v1/b/%s/o?%s", g.endpoint, url.PathEscape(g.bucket), q.Encode())

		page, err := g.listPage(ctx, listURL)
		if err != nil {
			return nil, errors.WrapList(prefix, err)
		}

		for _, p := range page.Prefixes {
			entries = append(entries, Entry{
				Name:  g.bucket + "/" + strings.TrimSuffix(p, "/"),
				IsDir: true,
			})
		}
		for _, item := range page.Items {
			size, err := strconv.ParseInt(item.Size, 10, 64)
			if err != nil {
				// A missing or malformed size defaults to zero rather
				// than failing the listing.
				size = 0
			}
			entries = append(entries, Entry{
				Name: g.bucket + "/" + item.Name,
				Size: size,
			})
		}

		if page.NextPageToken == "" {
			return entries, nil
		}
		pageToken = page.NextPageToken
	}
}

func (g *GCS) listPage(ctx context.Context, listURL string) (*listResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing returned status %d", resp.StatusCode)
	}

	var page listResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Open downloads the object named by url fully into memory and returns a
// seekable reader over it. The HTTP connection is released before Open
// returns, so cached entries never hold a remote handle.
func (g *GCS) Open(ctx context.Context, rawURL string) (io.ReadSeekCloser, error) {
	object, err := g.objectName(rawURL)
	if err != nil {
		return nil, err
	}

	mediaURL := fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media",
		g.endpoint, url.PathEscape(g.bucket), url.PathEscape(object))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, errors.WrapIO("open", rawURL, err)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, errors.WrapIO("open", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.WrapIO("open", rawURL, errors.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.WrapIO("open", rawURL, fmt.Errorf("download returned status %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapIO("read", rawURL, err)
	}

	return &memObject{Reader: bytes.NewReader(data)}, nil
}

// objectName resolves a gs:// URL or bare path to an object name within
// the configured bucket.
func (g *GCS) objectName(rawURL string) (string, error) {
	path := rawURL
	if i := strings.Index(path, "://"); i >= 0 {
		path = path[i+3:]
	}
	if !strings.HasPrefix(path, g.bucket+"/") {
		return "", errors.WrapIO("open", rawURL, fmt.Errorf("url is not in bucket %s", g.bucket))
	}
	return strings.TrimPrefix(path, g.bucket+"/"), nil
}

// memObject is a fully materialized object. Close is a no-op; the bytes
// are owned by the reader.
type memObject struct {
	*bytes.Reader
}

func (m *memObject) Close() error {
	return nil
}
