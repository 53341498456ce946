package delivery

import (
	"vidfetch/models"
)

// MP4 is the only container accepted on the video branch
const MP4 = "mp4"

// SelectStream applies the selection policy for format. Among equally ranked
// candidates the first one in manifest order wins.
func SelectStream(streams []models.StreamDescriptor, format models.Format) (models.StreamDescriptor, error) {
	var (
		best  models.StreamDescriptor
		found bool
	)

	if format == models.FormatAudio {
		for _, s := range streams {
			if !s.AudioOnly() {
				continue
			}
			if !found || s.Bitrate > best.Bitrate {
				best, found = s, true
			}
		}
	} else {
		for _, s := range streams {
			if s.Container != MP4 || !s.Muxed() {
				continue
			}
			if !found || best.Quality.Less(s.Quality) {
				best, found = s, true
			}
		}
	}

	if !found {
		return models.StreamDescriptor{}, ErrNoSuitableStream
	}
	return best, nil
}

// fileType returns the extension and media type for a format branch. Audio is
// labelled mp3 whatever the container of the chosen stream is.
func fileType(format models.Format) (ext, mediaType string) {
	if format == models.FormatAudio {
		return "mp3", models.MediaTypeMP3
	}
	return "mp4", models.MediaTypeMP4
}
