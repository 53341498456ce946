package models

// Media types sent back to the caller
const (
	MediaTypeMP3 = "audio/mpeg"
	MediaTypeMP4 = "video/mp4"
)

// DeliveredFile is the materialized payload of a single download request
type DeliveredFile struct {
	Data      []byte
	FileName  string // <title>.mp3 or <title>.mp4
	MediaType string
	Stream    StreamDescriptor // the stream the bytes came from
}
