package blob

import (
	"context"       // Request scoped storage calls
	"errors"        // Not-exist checks
	"fmt"           // Error wrapping
	"io"            // Readers
	"io/fs"         // Directory entries
	"net/url"       // URL building
	"os"            // File system
	"path/filepath" // Path joining
	"strings"       // Base URL trimming
	"time"          // Token expiry

	"report_portal/internal/utils" // Signed URL tokens
)

// LocalStore keeps blobs in a directory tree for development. Its signed URLs
// point back at this application's /blobs route and carry an HS256 token
// bound to one object.
type LocalStore struct {
	root    string // Directory holding one sub-directory per container
	secret  string // Token signing secret
	baseURL string // Public base URL of this app
}

// NewLocalStore creates the root directory if needed
func NewLocalStore(root, secret, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create blob root: %w", err)
	}
	return &LocalStore{root: root, secret: secret, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *LocalStore) path(container, key string) (string, error) {
	if err := ValidateKey(container); err != nil {
		return "", err
	}
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(l.root, container, key), nil
}

// Put writes data through a temp file so readers never see partial content
func (l *LocalStore) Put(_ context.Context, container, key string, data []byte, _ string) error {
	p, err := l.path(container, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return fmt.Errorf("failed to create container %s: %w", container, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // No-op after a successful rename
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("failed to commit blob: %w", err)
	}
	return nil
}

// SignedURL returns <baseURL>/blobs/<container>/<key>?token=<jwt>
func (l *LocalStore) SignedURL(_ context.Context, container, key string, ttl time.Duration) (string, error) {
	if _, err := l.path(container, key); err != nil {
		return "", err
	}
	token, err := utils.GenerateBlobToken(container, key, l.secret, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to sign blob URL: %w", err)
	}
	return l.baseURL + "/blobs/" + url.PathEscape(container) + "/" + url.PathEscape(key) +
		"?token=" + url.QueryEscape(token), nil
}

// Verify checks that token grants read access to container/key
func (l *LocalStore) Verify(token, container, key string) error {
	_, err := utils.ParseBlobToken(token, l.secret, container, key)
	return err
}

// Open returns the blob content and its size
func (l *LocalStore) Open(container, key string) (io.ReadCloser, int64, error) {
	p, err := l.path(container, key)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, 0, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, st.Size(), nil
}

// List reads the container directory, skipping in-flight temp files
func (l *LocalStore) List(_ context.Context, container string) ([]Info, error) {
	if err := ValidateKey(container); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(l.root, container))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list container %s: %w", container, err)
	}
	var out []Info
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".upload-") {
			continue
		}
		st, err := e.Info()
		if err != nil {
			continue // Removed while listing
		}
		out = append(out, Info{Key: e.Name(), Size: st.Size(), LastModified: st.ModTime()})
	}
	return out, nil
}

// Delete removes one blob
func (l *LocalStore) Delete(_ context.Context, container, key string) error {
	p, err := l.path(container, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete blob %s/%s: %w", container, key, err)
	}
	return nil
}
