// Package storage stores uploaded images on a local directory or an
// S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"

	"storefront/internal/config"
)

// Disk is the driver interface for uploaded files. Paths are slash separated
// and relative to the disk root.
type Disk interface {
	Put(ctx context.Context, path string, r io.Reader, contentType string) error
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

// New returns the disk selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Disk, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(cfg.LocalRoot, cfg.PublicURL), nil
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
