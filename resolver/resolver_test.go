package resolver

import (
	"errors"
	"testing"

	"vidfetch/models"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want models.VideoID
	}{
		{"watch page", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"v among other params", "https://www.youtube.com/watch?list=PL1&v=abc123&t=42", "abc123"},
		{"example host", "https://example.com/watch?v=abc123", "abc123"},
		{"short link", "https://youtu.be/abc123", "abc123"},
		{"short link with tracking", "https://youtu.be/abc123?si=xyz", "abc123"},
		{"trailing slash", "https://youtu.be/abc123/", "abc123"},
		{"embed path", "https://www.youtube.com/embed/abc123", "abc123"},
		{"shorts path", "https://www.youtube.com/shorts/abc123//", "abc123"},
		{"empty v falls back to path", "https://youtu.be/abc123?v=", "abc123"},
		{"empty query string", "https://www.youtube.com/watch?", "watch"},
		{"surrounding whitespace", "  https://youtu.be/abc123  ", "abc123"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Resolve(tc.url)
			if err != nil {
				t.Fatalf("Resolve(%q) returned error: %v", tc.url, err)
			}
			if got != tc.want {
				t.Errorf("Resolve(%q) = %q, want %q", tc.url, got, tc.want)
			}
		})
	}
}

func TestResolveInvalid(t *testing.T) {
	cases := []string{
		"",
		"not a url",
		"://missing-scheme",
		"http://[::1",
		"https://example.com/%zz",
		"https://example.com",
		"https://example.com/",
		"https://example.com///",
		"/watch?v=abc123",
		"mailto:someone@example.com",
	}

	for _, raw := range cases {
		got, err := Resolve(raw)
		if err == nil {
			t.Errorf("Resolve(%q) = %q, expected error", raw, got)
			continue
		}
		if !errors.Is(err, ErrInvalidURL) {
			t.Errorf("Resolve(%q) error %v does not wrap ErrInvalidURL", raw, err)
		}
	}
}
