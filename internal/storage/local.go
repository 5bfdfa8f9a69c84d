package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local writes files below a root directory. Files are served by the API
// under /storage in development.
type Local struct {
	root    string
	baseURL string
}

func NewLocal(root, baseURL string) *Local {
	if root == "" {
		root = "storage"
	}
	return &Local{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Root is the directory files are written to.
func (d *Local) Root() string {
	return d.root
}

func (d *Local) full(path string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(path))
	if clean == string(filepath.Separator) {
		return "", fmt.Errorf("storage/local: empty path")
	}
	return filepath.Join(d.root, clean), nil
}

func (d *Local) Put(_ context.Context, path string, r io.Reader, _ string) error {
	full, err := d.full(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("storage/local: mkdir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("storage/local: create %s: %w", path, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return fmt.Errorf("storage/local: write %s: %w", path, err)
	}
	return f.Close()
}

// Delete returns nil if the file did not exist.
func (d *Local) Delete(_ context.Context, path string) error {
	full, err := d.full(path)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage/local: delete %s: %w", path, err)
	}
	return nil
}

func (d *Local) URL(path string) string {
	return d.baseURL + "/" + strings.TrimLeft(path, "/")
}
