package scratch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"vidfetch/logger"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCS keeps scratch objects in a Cloud Storage bucket
type GCS struct {
	client    *storage.Client
	bucket    string
	prefix    string
	newWriter func(ctx context.Context, name string) io.WriteCloser
}

// NewGCS builds a GCS backend from a base64 encoded service account key.
// accessInfo: credentialsJSON, bucket, prefix (optional).
func NewGCS(ctx context.Context, accessInfo map[string]string) (Backend, error) {
	if err := requireKeys(accessInfo, "credentialsJSON", "bucket"); err != nil {
		return nil, err
	}

	credentialsJSON, err := base64.StdEncoding.DecodeString(accessInfo["credentialsJSON"])
	if err != nil {
		return nil, fmt.Errorf("decode credentialsJSON: %w", err)
	}

	client, err := storage.NewClient(ctx, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}

	b := &GCS{
		client: client,
		bucket: accessInfo["bucket"],
		prefix: accessInfo["prefix"],
	}
	b.newWriter = func(ctx context.Context, name string) io.WriteCloser {
		return b.object(name).NewWriter(ctx)
	}
	return b, nil
}

func (b *GCS) object(name string) *storage.ObjectHandle {
	return b.client.Bucket(b.bucket).Object(b.prefix + name)
}

// Put streams reader into the object
func (b *GCS) Put(ctx context.Context, name string, reader io.Reader) error {
	// cancelling the writer's context aborts the upload instead of
	// finalizing a partial object
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	wc := b.newWriter(wctx, name)

	if _, err := io.Copy(wc, reader); err != nil {
		cancel()
		wc.Close()
		return fmt.Errorf("io.Copy: %w", err)
	}

	// The upload only completes on Close.
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}

	logger.Debugf("uploaded scratch object '%s' to bucket '%s'", b.prefix+name, b.bucket)
	return nil
}

// Get reads the whole object
func (b *GCS) Get(ctx context.Context, name string) ([]byte, error) {
	rc, err := b.object(name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Object.NewReader: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}
	return data, nil
}

// Remove deletes the object; a missing object is not an error
func (b *GCS) Remove(ctx context.Context, name string) error {
	if err := b.object(name).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("Object.Delete: %w", err)
	}
	return nil
}

// Close releases the storage client
func (b *GCS) Close() error {
	return b.client.Close()
}
