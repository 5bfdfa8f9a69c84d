package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"storefront/internal/storage"

	"github.com/google/uuid"
)

// MaxUploadSize is the largest accepted image.
const MaxUploadSize = 5 << 20

var (
	ErrUnsupportedImage = errors.New("file must be a jpeg, png, webp or gif image")
	ErrFileTooLarge     = errors.New("file exceeds 5 MiB")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// StoredFile is the location of an uploaded file.
type StoredFile struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

type UploadService interface {
	// StoreImage sniffs the content type, so the client-supplied type and
	// file name are not trusted.
	StoreImage(ctx context.Context, r io.Reader, size int64) (*StoredFile, error)
}

type uploadService struct {
	disk storage.Disk
}

func NewUploadService(disk storage.Disk) UploadService {
	return &uploadService{disk: disk}
}

func (s *uploadService) StoreImage(ctx context.Context, r io.Reader, size int64) (*StoredFile, error) {
	if size > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	br := bufio.NewReaderSize(io.LimitReader(r, MaxUploadSize+1), 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	contentType := http.DetectContentType(head)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedImage
	}

	counted := &countingReader{r: br}
	path := "images/" + uuid.NewString() + ext
	if err := s.disk.Put(ctx, path, counted, contentType); err != nil {
		return nil, err
	}
	if counted.n > MaxUploadSize {
		_ = s.disk.Delete(ctx, path)
		return nil, ErrFileTooLarge
	}
	return &StoredFile{Path: path, URL: s.disk.URL(path)}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
