// Package resolver turns an arbitrary video page URL into a video identifier.
package resolver

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"vidfetch/models"
)

// ErrInvalidURL is returned when no video identifier can be extracted
var ErrInvalidURL = errors.New("invalid video URL")

// VideoIDParam is the query parameter that carries the id on watch pages
const VideoIDParam = "v"

// Resolve extracts the video identifier from raw. The "v" query parameter
// wins when present and non-empty; otherwise the last non-empty path segment
// is used, which covers short links like https://youtu.be/<id>.
func Resolve(raw string) (models.VideoID, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute URL", ErrInvalidURL, raw)
	}

	if id := u.Query().Get(VideoIDParam); id != "" {
		return models.VideoID(id), nil
	}

	if id := lastSegment(u.Path); id != "" {
		return models.VideoID(id), nil
	}
	return "", fmt.Errorf("%w: no identifier in %q", ErrInvalidURL, raw)
}

func lastSegment(path string) string {
	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return ""
}
