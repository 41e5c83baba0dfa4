// Package blob stores report files, one container per client, and hands out
// short-lived read-only URLs for them.
package blob

import (
	"context"       // Request scoped storage calls
	"errors"        // Sentinel errors
	"fmt"           // Error wrapping
	"io"            // Body reading
	"net/http"      // Signed URL fetch
	"path/filepath" // Key validation
	"strings"       // Key validation
	"time"          // URL validity, listing timestamps

	"report_portal/internal/domain" // Error kinds
)

// ContentTypePDF is the content type reports are written with
const ContentTypePDF = "application/pdf"

// ErrInvalidKey is returned for container or object names that could escape
// their namespace
var ErrInvalidKey = errors.New("invalid blob key")

// Info describes one stored object
type Info struct {
	Key          string    // Object key inside the container
	Size         int64     // Content length
	LastModified time.Time // Last write time
}

// Store is the object storage contract used by the report service
type Store interface {
	// Put writes data under container/key, creating the container when needed
	Put(ctx context.Context, container, key string, data []byte, contentType string) error
	// SignedURL returns a read-only URL for container/key valid for ttl
	SignedURL(ctx context.Context, container, key string, ttl time.Duration) (string, error)
	// List returns the objects of a container; a missing container is empty
	List(ctx context.Context, container string) ([]Info, error)
	// Delete removes container/key
	Delete(ctx context.Context, container, key string) error
}

// ValidateKey rejects empty names, path separators and dot segments
func ValidateKey(name string) error {
	if name == "" || name == "." || name == ".." {
		return ErrInvalidKey
	}
	if strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return ErrInvalidKey
	}
	return nil
}

// Fetcher downloads the content behind a signed URL
type Fetcher struct {
	Client   *http.Client // HTTP client, no retries
	MaxBytes int64        // Upper bound on the body read into memory
}

// NewFetcher returns a Fetcher with a bounded timeout
func NewFetcher(timeout time.Duration, maxBytes int64) *Fetcher {
	return &Fetcher{Client: &http.Client{Timeout: timeout}, MaxBytes: maxBytes}
}

// Fetch GETs url and returns the body. Transport failures and non-2xx
// answers are ErrStorage.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", domain.ErrStorage, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch blob: %w", domain.ErrStorage, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: fetch blob: status %d", domain.ErrStorage, resp.StatusCode)
	}
	body := io.Reader(resp.Body)
	if f.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, f.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: read blob: %w", domain.ErrStorage, err)
	}
	if f.MaxBytes > 0 && int64(len(data)) > f.MaxBytes {
		return nil, fmt.Errorf("%w: blob exceeds %d bytes", domain.ErrStorage, f.MaxBytes)
	}
	return data, nil
}
