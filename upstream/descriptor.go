package upstream

import (
	"strconv"
	"strings"

	"vidfetch/models"

	"github.com/kkdai/youtube/v2"
)

// DescriptorFromFormat maps a platform format onto a StreamDescriptor
func DescriptorFromFormat(id models.VideoID, f *youtube.Format) models.StreamDescriptor {
	mime := strings.ToLower(f.MimeType)
	hasVideo := strings.HasPrefix(mime, "video/")
	hasAudio := strings.HasPrefix(mime, "audio/") || f.AudioChannels > 0

	bitrate := f.Bitrate
	if bitrate == 0 {
		bitrate = f.AverageBitrate
	}

	var quality models.QualityTier
	if hasVideo {
		quality = models.QualityTier{Height: f.Height, FPS: f.FPS}
		if quality.Height == 0 {
			quality.Height, quality.FPS = parseQualityLabel(f.QualityLabel)
		}
	}

	return models.StreamDescriptor{
		VideoID:       id,
		Itag:          f.ItagNo,
		MimeType:      f.MimeType,
		Container:     models.ContainerFromMimeType(f.MimeType),
		Bitrate:       bitrate,
		Quality:       quality,
		QualityLabel:  f.QualityLabel,
		HasAudio:      hasAudio,
		HasVideo:      hasVideo,
		ContentLength: f.ContentLength,
		Locator:       f.URL,
	}
}

// parseQualityLabel reads labels like "720p", "1080p60" or "2160p60 HDR"
func parseQualityLabel(label string) (height, fps int) {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return 0, 0
	}
	h, rest, ok := strings.Cut(fields[0], "p")
	if !ok {
		return 0, 0
	}
	height, _ = strconv.Atoi(h)
	fps, _ = strconv.Atoi(rest)
	return height, fps
}
