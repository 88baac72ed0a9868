package lib

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ImageStore persists uploaded room images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// DiskImageStore writes images under Dir, for local runs without a bucket.
type DiskImageStore struct {
	Dir     string
	BaseURL string
}

func (s *DiskImageStore) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	dst := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("writing %s: %w", dst, err)
	}
	return s.BaseURL + "/" + key, nil
}
