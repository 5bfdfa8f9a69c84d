package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storefront/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_PutAndDelete(t *testing.T) {
	root := t.TempDir()
	disk := NewLocal(root, "http://localhost:8080/storage/")
	ctx := context.Background()

	require.NoError(t, disk.Put(ctx, "images/a.png", strings.NewReader("png"), "image/png"))

	data, err := os.ReadFile(filepath.Join(root, "images", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "http://localhost:8080/storage/images/a.png", disk.URL("images/a.png"))

	require.NoError(t, disk.Delete(ctx, "images/a.png"))
	require.NoError(t, disk.Delete(ctx, "images/a.png"), "deleting a missing file is not an error")
}

func TestLocal_StaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	disk := NewLocal(root, "")

	require.NoError(t, disk.Put(context.Background(), "../../escape.txt", strings.NewReader("x"), ""))
	_, err := os.Stat(filepath.Join(root, "escape.txt"))
	assert.NoError(t, err)
}

func TestNew_SelectsDriver(t *testing.T) {
	disk, err := New(context.Background(), config.StorageConfig{Driver: "local", LocalRoot: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &Local{}, disk)

	_, err = New(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)

	_, err = New(context.Background(), config.StorageConfig{Driver: "s3"})
	assert.ErrorContains(t, err, "S3_BUCKET")
}

func TestS3_URL(t *testing.T) {
	disk, err := NewS3(context.Background(), config.StorageConfig{
		S3Bucket: "shop", S3Region: "eu-west-1", S3Key: "k", S3Secret: "s",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://shop.s3.eu-west-1.amazonaws.com/images/x.jpg", disk.URL("/images/x.jpg"))
}
