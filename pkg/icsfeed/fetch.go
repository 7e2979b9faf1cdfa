package icsfeed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const defaultFetchTimeout = 15 * time.Second

type cacheEntry struct {
	etag         string
	lastModified string
	body         []byte
	hash         string
}

// Fetcher downloads feeds, honoring ETag and Last-Modified. The cache lives
// in memory for the process lifetime.
type Fetcher struct {
	client *http.Client

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewFetcher uses client, or a client with a 15s timeout when nil.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &Fetcher{client: client, cache: map[string]cacheEntry{}}
}

// Fetch returns the current body of src. A 304 answer reuses the cached body
// and sets NotModified.
func (f *Fetcher) Fetch(ctx context.Context, src Source) (FetchResult, error) {
	if src.URL == "" {
		return FetchResult{}, ErrEmptyURL
	}

	f.mu.Lock()
	cached, hasCache := f.cache[src.URL]
	f.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return FetchResult{}, err
	}
	if hasCache {
		if cached.etag != "" {
			req.Header.Set("If-None-Match", cached.etag)
		}
		if cached.lastModified != "" {
			req.Header.Set("If-Modified-Since", cached.lastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return FetchResult{}, fmt.Errorf("fetch feed %s: %w", src.ID, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return FetchResult{}, fmt.Errorf("read feed %s: %w", src.ID, err)
		}
		entry := cacheEntry{
			etag:         resp.Header.Get("ETag"),
			lastModified: resp.Header.Get("Last-Modified"),
			body:         body,
			hash:         Hash(body),
		}
		f.mu.Lock()
		f.cache[src.URL] = entry
		f.mu.Unlock()
		return FetchResult{Source: src, Body: body, Hash: entry.hash}, nil
	case http.StatusNotModified:
		if !hasCache {
			return FetchResult{}, fmt.Errorf("feed %s answered 304 without a cached body", src.ID)
		}
		return FetchResult{Source: src, Body: cached.body, Hash: cached.hash, NotModified: true}, nil
	default:
		return FetchResult{}, fmt.Errorf("feed %s: unexpected status %s", src.ID, resp.Status)
	}
}

// Hash is the content hash used as a feed cursor.
func Hash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
