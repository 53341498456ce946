// Package upstream adapts the video platform client library to the
// collaborator contract the delivery service consumes.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"vidfetch/logger"
	"vidfetch/models"

	"github.com/kkdai/youtube/v2"
)

// VideoClient is the subset of youtube.Client used here
type VideoClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

// YouTube is a stateless, process-wide handle onto the platform. It keeps no
// per-request state, so one instance serves every request.
type YouTube struct {
	client  VideoClient
	timeout time.Duration // per upstream call; zero means unbounded
}

// NewYouTube builds the adapter over a fresh youtube.Client
func NewYouTube(httpClient *http.Client, timeout time.Duration) *YouTube {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return NewWithClient(&youtube.Client{HTTPClient: httpClient}, timeout)
}

// NewWithClient wraps an existing client
func NewWithClient(client VideoClient, timeout time.Duration) *YouTube {
	return &YouTube{client: client, timeout: timeout}
}

func (y *YouTube) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if y.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, y.timeout)
}

func (y *YouTube) video(ctx context.Context, id models.VideoID) (*youtube.Video, error) {
	video, err := y.client.GetVideoContext(ctx, string(id))
	if err != nil {
		return nil, fmt.Errorf("lookup video %s: %w", id, err)
	}
	return video, nil
}

// Metadata fetches the title and basic details of a video
func (y *YouTube) Metadata(ctx context.Context, id models.VideoID) (models.Metadata, error) {
	ctx, cancel := y.withTimeout(ctx)
	defer cancel()

	video, err := y.video(ctx, id)
	if err != nil {
		return models.Metadata{}, err
	}
	return metadataOf(id, video), nil
}

// Manifest lists every stream the platform offers for a video
func (y *YouTube) Manifest(ctx context.Context, id models.VideoID) ([]models.StreamDescriptor, error) {
	ctx, cancel := y.withTimeout(ctx)
	defer cancel()

	video, err := y.video(ctx, id)
	if err != nil {
		return nil, err
	}
	return manifestOf(id, video), nil
}

// Lookup returns metadata and manifest from a single platform call
func (y *YouTube) Lookup(ctx context.Context, id models.VideoID) (models.Metadata, []models.StreamDescriptor, error) {
	ctx, cancel := y.withTimeout(ctx)
	defer cancel()

	video, err := y.video(ctx, id)
	if err != nil {
		return models.Metadata{}, nil, err
	}
	return metadataOf(id, video), manifestOf(id, video), nil
}

func metadataOf(id models.VideoID, video *youtube.Video) models.Metadata {
	return models.Metadata{
		ID:       id,
		Title:    video.Title,
		Author:   video.Author,
		Duration: video.Duration,
	}
}

func manifestOf(id models.VideoID, video *youtube.Video) []models.StreamDescriptor {
	streams := make([]models.StreamDescriptor, 0, len(video.Formats))
	for i := range video.Formats {
		streams = append(streams, DescriptorFromFormat(id, &video.Formats[i]))
	}
	logger.Debugf("manifest for %s: %d streams", id, len(streams))
	return streams
}

// Open starts reading the byte stream behind a descriptor. The caller must
// close the returned reader. The video is fetched again because stream URLs
// are only valid on a freshly resolved video.
func (y *YouTube) Open(ctx context.Context, stream models.StreamDescriptor) (io.ReadCloser, error) {
	ctx, cancel := y.withTimeout(ctx)

	video, err := y.video(ctx, stream.VideoID)
	if err != nil {
		cancel()
		return nil, err
	}

	matches := video.Formats.Itag(stream.Itag)
	if len(matches) == 0 {
		cancel()
		return nil, fmt.Errorf("stream itag %d no longer offered for %s", stream.Itag, stream.VideoID)
	}

	rc, size, err := y.client.GetStreamContext(ctx, video, &matches[0])
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open stream itag %d for %s: %w", stream.Itag, stream.VideoID, err)
	}
	logger.Debugf("opened stream itag=%d for %s (%d bytes announced)", stream.Itag, stream.VideoID, size)

	// the stream is read after Open returns, so the context lives until Close
	return &cancelOnClose{ReadCloser: rc, cancel: cancel}, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}
