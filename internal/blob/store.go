package blob

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Store keeps uploaded files on disk under root, organized by bucket, and
// issues public URLs under baseURL. It stands in for a hosted object store.
type Store struct {
	root    string
	baseURL string
}

func NewStore(root, baseURL string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Store{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put writes the reader's bytes under bucket/name and returns the relative
// blob path and the byte count. Bucket and name must be plain path segments.
func (s *Store) Put(bucket, name string, r io.Reader) (string, int64, error) {
	if !validSegment(bucket) || !validSegment(name) {
		return "", 0, fmt.Errorf("blob: invalid path %q/%q", bucket, name)
	}

	dir := filepath.Join(s.root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create bucket: %w", err)
	}

	dst := filepath.Join(dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", 0, fmt.Errorf("create blob: %w", err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(dst)
		return "", 0, fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", 0, fmt.Errorf("write blob: %w", err)
	}
	return path.Join(bucket, name), n, nil
}

// PublicURL returns the URL a client can fetch a stored blob from.
func (s *Store) PublicURL(blobPath string) string {
	return s.baseURL + "/blobs/" + blobPath
}

// Remove deletes a stored blob. Missing blobs are not an error.
func (s *Store) Remove(blobPath string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(blobPath)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}

// Root is the directory blobs are served from.
func (s *Store) Root() string {
	return s.root
}

func validSegment(seg string) bool {
	if seg == "" || seg == "." || seg == ".." {
		return false
	}
	return !strings.ContainsAny(seg, `/\`)
}
