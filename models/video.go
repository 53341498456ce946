package models

import (
	"strings"
	"time"
)

// VideoID identifies a video on the remote platform
type VideoID string

// Format is the requested delivery shape
type Format string

const (
	FormatAudio Format = "audio"
	FormatVideo Format = "video"
)

// ParseFormat maps a query value to a Format. Only "audio" selects the audio
// branch; every other value, including empty, falls through to video.
func ParseFormat(s string) Format {
	if s == string(FormatAudio) {
		return FormatAudio
	}
	return FormatVideo
}

// Metadata is what the upstream platform tells us about a video
type Metadata struct {
	ID       VideoID
	Title    string
	Author   string
	Duration time.Duration
}

// QualityTier orders video streams by resolution, then frame rate
type QualityTier struct {
	Height int
	FPS    int
}

// Less reports whether q ranks below other
func (q QualityTier) Less(other QualityTier) bool {
	if q.Height != other.Height {
		return q.Height < other.Height
	}
	return q.FPS < other.FPS
}

// StreamDescriptor describes one entry of a stream manifest
type StreamDescriptor struct {
	VideoID       VideoID
	Itag          int    // platform stream identifier, used to reopen the stream
	MimeType      string // e.g. `video/mp4; codecs="avc1.42001E, mp4a.40.2"`
	Container     string // e.g. "mp4", "webm"
	Bitrate       int    // bits per second
	Quality       QualityTier
	QualityLabel  string // e.g. "1080p60"
	HasAudio      bool
	HasVideo      bool
	ContentLength int64
	Locator       string // remote URL when the platform exposes one
}

// AudioOnly reports whether the stream carries audio and no video
func (s StreamDescriptor) AudioOnly() bool {
	return s.HasAudio && !s.HasVideo
}

// Muxed reports whether the stream carries both audio and video
func (s StreamDescriptor) Muxed() bool {
	return s.HasAudio && s.HasVideo
}

// ContainerFromMimeType extracts the container subtype from a mime type,
// e.g. "video/mp4; codecs=..." -> "mp4".
func ContainerFromMimeType(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	_, sub, ok := strings.Cut(strings.TrimSpace(base), "/")
	if !ok {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(sub))
}
