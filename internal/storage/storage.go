// Package storage persists uploaded plate images and hands back public URLs.
package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store saves an image payload and returns a publicly resolvable URL.
type Store interface {
	Save(ctx context.Context, data []byte, contentType string) (string, error)
}

// Disk writes images under Dir and serves them below BaseURL.
type Disk struct {
	dir     string
	baseURL string
}

func NewDisk(dir, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Disk{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save writes data under a timestamp-plus-uuid name so that concurrent
// uploads never collide.
func (d *Disk) Save(_ context.Context, data []byte, contentType string) (string, error) {
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), uuid.NewString(), extFor(contentType))
	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return d.baseURL + "/" + name, nil
}

func extFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
