package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Uploader writes storefront images to a GCS bucket and hands back the
// public URL to store on the product record.
type Uploader struct {
	client *storage.Client
	bucket string
}

func NewUploader(ctx context.Context, bucket string) (*Uploader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Uploader{client: client, bucket: bucket}, nil
}

func (u *Uploader) Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	name := fmt.Sprintf("products/%s%s", uuid.NewString(), path.Ext(filename))
	w := u.client.Bucket(u.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize %s: %w", name, err)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, name), nil
}

func (u *Uploader) Close() error {
	return u.client.Close()
}
