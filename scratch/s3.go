package scratch

import (
	"context"
	"errors"
	"fmt"
	"io"

	"vidfetch/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3 keeps scratch objects in a bucket under a key prefix
type S3 struct {
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	bucket     string
	prefix     string
}

// NewS3 builds an S3 backend from static credentials.
// accessInfo: accessKey, secretKey, region, bucket, prefix (optional).
func NewS3(ctx context.Context, accessInfo map[string]string) (Backend, error) {
	if err := requireKeys(accessInfo, "accessKey", "secretKey", "region", "bucket"); err != nil {
		return nil, err
	}

	creds := credentials.NewStaticCredentialsProvider(accessInfo["accessKey"], accessInfo["secretKey"], "")
	client := s3.New(s3.Options{
		Region:      accessInfo["region"],
		Credentials: creds,
	})

	return &S3{
		client:     client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
		bucket:     accessInfo["bucket"],
		prefix:     accessInfo["prefix"],
	}, nil
}

func (b *S3) key(name string) string {
	return b.prefix + name
}

// Put streams reader into the object
func (b *S3) Put(ctx context.Context, name string, reader io.Reader) error {
	key := b.key(name)
	_, err := b.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   reader,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, b.bucket, err)
	}

	logger.Debugf("uploaded scratch object '%s' to bucket '%s'", key, b.bucket)
	return nil
}

// Get downloads the whole object into memory
func (b *S3) Get(ctx context.Context, name string) ([]byte, error) {
	key := b.key(name)
	buf := manager.NewWriteAtBuffer(nil)
	_, err := b.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download object %s from bucket %s: %w", key, b.bucket, err)
	}
	return buf.Bytes(), nil
}

// Remove deletes the object; a missing key is not an error
func (b *S3) Remove(ctx context.Context, name string) error {
	key := b.key(name)
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil
		}
		return fmt.Errorf("failed to delete object %s from bucket %s: %w", key, b.bucket, err)
	}
	return nil
}

// Close is a no-op; the S3 client holds no open resources
func (b *S3) Close() error { return nil }
