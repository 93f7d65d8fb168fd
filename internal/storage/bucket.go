package storage

import (
	"context"
	"fmt"
	"strings"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// Bucket abstracts the image blob store so services and tests do not
// depend on the hosted backend.
type Bucket interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, path string) error
	PublicURL(path string) string
}

// FirebaseBucket is the production Bucket backed by the project's
// default Cloud Storage bucket.
type FirebaseBucket struct {
	bucket string
	handle *gcs.BucketHandle
}

// NewFirebaseBucket initializes the storage client from a service
// account credentials file.
func NewFirebaseBucket(ctx context.Context, bucket, credentialsPath string) (*FirebaseBucket, error) {
	app, err := firebase.NewApp(ctx,
		&firebase.Config{StorageBucket: bucket},
		option.WithCredentialsFile(credentialsPath),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init firebase app: %w", err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage client: %w", err)
	}

	handle, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", bucket, err)
	}

	return &FirebaseBucket{bucket: bucket, handle: handle}, nil
}

// Upload writes the object and returns its public URL.
func (b *FirebaseBucket) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	w := b.handle.Object(path).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s: %w", path, err)
	}
	return b.PublicURL(path), nil
}

// Delete removes the object. Deleting a missing object is not an error.
func (b *FirebaseBucket) Delete(ctx context.Context, path string) error {
	err := b.handle.Object(path).Delete(ctx)
	if err != nil && err != gcs.ErrObjectNotExist {
		return fmt.Errorf("failed to delete object %s: %w", path, err)
	}
	return nil
}

// PublicURL returns the object's public address.
func (b *FirebaseBucket) PublicURL(path string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.bucket, path)
}

// PathFromURL extracts the object path from a public URL produced for
// the given bucket, or "" if the URL does not belong to it. Image
// rows store full URLs, deletes need the object path back.
func PathFromURL(bucket, url string) string {
	marker := "/" + bucket + "/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return ""
	}
	return strings.TrimPrefix(url[idx+len(marker):], "/")
}
