// Package delivery selects the best stream for a request and materializes it
// into an in-memory file.
//
// A request moves through Resolving → Fetching → Selecting → Materializing →
// Responding exactly once. Any failure ends it; there are no retries and no
// partial responses. Errors returned by Deliver are *StageError values that
// wrap one of the package sentinels where one applies.
package delivery

import (
	"context"
	"fmt"
	"io"

	"vidfetch/logger"
	"vidfetch/models"
	"vidfetch/scratch"
	"vidfetch/utils"
)

// Collaborator is the video platform capability set the service consumes.
// Implementations must be safe for concurrent use.
type Collaborator interface {
	Metadata(ctx context.Context, id models.VideoID) (models.Metadata, error)
	Manifest(ctx context.Context, id models.VideoID) ([]models.StreamDescriptor, error)
	Open(ctx context.Context, stream models.StreamDescriptor) (io.ReadCloser, error)
}

// VideoLookup is implemented by collaborators that can return metadata and
// manifest from one platform call. Deliver prefers it when available.
type VideoLookup interface {
	Lookup(ctx context.Context, id models.VideoID) (models.Metadata, []models.StreamDescriptor, error)
}

// Service is shared by all requests and holds no per-request state
type Service struct {
	client  Collaborator
	scratch scratch.Backend
}

// NewService panics when either dependency is missing
func NewService(client Collaborator, store scratch.Backend) *Service {
	if client == nil {
		panic("delivery: Collaborator is required")
	}
	if store == nil {
		panic("delivery: scratch Backend is required")
	}
	return &Service{client: client, scratch: store}
}

// Deliver fetches, selects and materializes the stream for id in format
func (s *Service) Deliver(ctx context.Context, id models.VideoID, format models.Format) (*models.DeliveredFile, error) {
	if id == "" {
		return nil, failAt(StageResolving, fmt.Errorf("empty video identifier"))
	}

	meta, streams, err := s.fetch(ctx, id)
	if err != nil {
		return nil, failAt(StageFetching, upstreamErr(err))
	}

	stream, err := SelectStream(streams, format)
	if err != nil {
		logger.Debugf("no %s stream among %d for %s", format, len(streams), id)
		return nil, failAt(StageSelecting, err)
	}
	logger.Debugf("selected itag=%d container=%s bitrate=%d quality=%s for %s (%s)",
		stream.Itag, stream.Container, stream.Bitrate, stream.QualityLabel, id, format)

	data, err := s.materialize(ctx, stream)
	if err != nil {
		return nil, failAt(StageMaterializing, err)
	}

	ext, mediaType := fileType(format)
	return &models.DeliveredFile{
		Data:      data,
		FileName:  fileName(meta, id, ext),
		MediaType: mediaType,
		Stream:    stream,
	}, nil
}

func (s *Service) fetch(ctx context.Context, id models.VideoID) (models.Metadata, []models.StreamDescriptor, error) {
	if l, ok := s.client.(VideoLookup); ok {
		return l.Lookup(ctx, id)
	}

	meta, err := s.client.Metadata(ctx, id)
	if err != nil {
		return models.Metadata{}, nil, err
	}
	streams, err := s.client.Manifest(ctx, id)
	if err != nil {
		return models.Metadata{}, nil, err
	}
	return meta, streams, nil
}

func (s *Service) materialize(ctx context.Context, stream models.StreamDescriptor) ([]byte, error) {
	rc, err := s.client.Open(ctx, stream)
	if err != nil {
		return nil, upstreamErr(fmt.Errorf("open stream: %w", err))
	}
	defer rc.Close()

	return Materialize(ctx, s.scratch, rc)
}

func fileName(meta models.Metadata, id models.VideoID, ext string) string {
	title := utils.SanitizeFilename(meta.Title)
	if title == "" {
		title = string(id)
	}
	return title + "." + ext
}
