package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"vidfetch/delivery"
	"vidfetch/failures"
	"vidfetch/models"
	"vidfetch/scratch"
	"vidfetch/success"
)

type fakePlatform struct {
	title   string
	streams []models.StreamDescriptor
	body    []byte
	err     error
}

func (f *fakePlatform) Metadata(ctx context.Context, id models.VideoID) (models.Metadata, error) {
	if f.err != nil {
		return models.Metadata{}, f.err
	}
	return models.Metadata{ID: id, Title: f.title}, nil
}

func (f *fakePlatform) Manifest(ctx context.Context, id models.VideoID) ([]models.StreamDescriptor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.streams, nil
}

func (f *fakePlatform) Open(ctx context.Context, stream models.StreamDescriptor) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.body)), nil
}

func songPlatform() *fakePlatform {
	return &fakePlatform{
		title: "Song",
		streams: []models.StreamDescriptor{
			{Itag: 140, Container: "mp4", Bitrate: 128000, HasAudio: true},
			{Itag: 251, Container: "webm", Bitrate: 160000, HasAudio: true},
			{Itag: 18, Container: "mp4", Quality: models.QualityTier{Height: 360, FPS: 30}, HasAudio: true, HasVideo: true},
		},
		body: []byte("fake media bytes"),
	}
}

// newTestRouter wires a router over platform with a temp scratch dir and
// temp journals
func newTestRouter(t *testing.T, platform delivery.Collaborator) http.Handler {
	t.Helper()
	dir := t.TempDir()
	if err := success.Init(filepath.Join(dir, "success.db")); err != nil {
		t.Fatalf("Failed to init success journal: %v", err)
	}
	if err := failures.Init(filepath.Join(dir, "failures.db")); err != nil {
		t.Fatalf("Failed to init failures journal: %v", err)
	}
	t.Cleanup(func() {
		success.Close()
		failures.Close()
	})

	store, err := scratch.NewLocal(context.Background(), map[string]string{"baseDir": filepath.Join(dir, "scratch")})
	if err != nil {
		t.Fatalf("Failed to open scratch: %v", err)
	}
	return NewRouter(delivery.NewService(platform, store))
}

func download(t *testing.T, h http.Handler, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, DownloadPath+query, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestDownloadAudio(t *testing.T) {
	platform := songPlatform()
	h := newTestRouter(t, platform)

	rr := download(t, h, "?videoUrl=https://www.youtube.com/watch?v%3Dabc123&format=audio")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Expected audio/mpeg, got %s", ct)
	}
	_, params, err := mime.ParseMediaType(rr.Header().Get("Content-Disposition"))
	if err != nil {
		t.Fatalf("Bad Content-Disposition: %v", err)
	}
	if params["filename"] != "Song.mp3" {
		t.Errorf("Expected filename Song.mp3, got %s", params["filename"])
	}
	if !bytes.Equal(rr.Body.Bytes(), platform.body) {
		t.Errorf("Body differs from stream bytes: %q", rr.Body.String())
	}
	if rr.Header().Get("Content-Length") != "16" {
		t.Errorf("Expected Content-Length 16, got %s", rr.Header().Get("Content-Length"))
	}

	requestID := rr.Header().Get(RequestIDHeader)
	if requestID == "" {
		t.Fatal("Expected X-Request-ID header")
	}
	record, err := success.Get(requestID)
	if err != nil || record == nil {
		t.Fatalf("Expected success journal record, got %v (%v)", record, err)
	}
	if record.VideoID != "abc123" || record.Itag != 251 || record.Size != len(platform.body) {
		t.Errorf("Unexpected journal record: %+v", record)
	}
}

func TestDownloadVideoDefaultsFormat(t *testing.T) {
	h := newTestRouter(t, songPlatform())

	rr := download(t, h, "?videoUrl=https://youtu.be/abc123")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "video/mp4" {
		t.Errorf("Expected video/mp4, got %s", ct)
	}
	_, params, _ := mime.ParseMediaType(rr.Header().Get("Content-Disposition"))
	if params["filename"] != "Song.mp4" {
		t.Errorf("Expected Song.mp4, got %s", params["filename"])
	}
}

func TestDownloadErrors(t *testing.T) {
	noMuxed := songPlatform()
	noMuxed.streams = noMuxed.streams[:2]

	broken := songPlatform()
	broken.err = errors.New("video is unavailable")

	cases := []struct {
		name     string
		platform *fakePlatform
		query    string
		status   int
		body     string
		kind     string
	}{
		{"missing url", songPlatform(), "?format=audio", http.StatusBadRequest, "Video URL is required.", "missing_url"},
		{"empty url", songPlatform(), "?videoUrl=&format=video", http.StatusBadRequest, "Video URL is required.", "missing_url"},
		{"invalid url", songPlatform(), "?videoUrl=not-a-url", http.StatusBadRequest, "Invalid video URL.", "invalid_url"},
		{"no stream", noMuxed, "?videoUrl=https://youtu.be/abc123&format=video", http.StatusNotFound, "No suitable stream found.", "no_suitable_stream"},
		{"upstream", broken, "?videoUrl=https://youtu.be/abc123", http.StatusInternalServerError,
			"An error occurred: upstream lookup failed: video is unavailable", "upstream_lookup_failed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestRouter(t, tc.platform)
			rr := download(t, h, tc.query)

			if rr.Code != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, rr.Code)
			}
			if rr.Body.String() != tc.body {
				t.Errorf("Expected body %q, got %q", tc.body, rr.Body.String())
			}

			record, err := failures.Get(rr.Header().Get(RequestIDHeader))
			if err != nil || record == nil {
				t.Fatalf("Expected failure journal record, got %v (%v)", record, err)
			}
			if record.Kind != tc.kind || record.Status != tc.status {
				t.Errorf("Unexpected failure record: %+v", record)
			}
		})
	}
}

func TestDownloadMethodNotAllowed(t *testing.T) {
	h := newTestRouter(t, songPlatform())

	req := httptest.NewRequest(http.MethodGet, DownloadPath+"?videoUrl=https://youtu.be/abc123", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rr.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t, songPlatform())

	req := httptest.NewRequest(http.MethodOptions, DownloadPath, nil)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "X-Custom")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code < 200 || rr.Code > 299 {
		t.Errorf("Expected 2xx for preflight, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin *, got %q", got)
	}
}

func TestCORSOnSimpleRequest(t *testing.T) {
	h := newTestRouter(t, songPlatform())

	req := httptest.NewRequest(http.MethodPost, DownloadPath, nil)
	req.Header.Set("Origin", "https://example.org")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected Access-Control-Allow-Origin *, got %q", got)
	}
}

func TestHealthHandler(t *testing.T) {
	h := newTestRouter(t, songPlatform())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Expected healthy, got %s (%v)", resp.Status, resp.Journal)
	}
	if resp.Journal["success"] != "ok" || resp.Journal["failures"] != "ok" {
		t.Errorf("Unexpected journal health: %v", resp.Journal)
	}
}

func TestHealthDegradedWithoutJournal(t *testing.T) {
	success.Close()
	failures.Close()

	rr := httptest.NewRecorder()
	HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("Expected degraded, got %s", resp.Status)
	}
}

func TestVersionHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	VersionHandler(rr, httptest.NewRequest(http.MethodGet, "/version", nil))

	var resp VersionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode version response: %v", err)
	}
	if resp.Version != version || resp.GoVersion == "" {
		t.Errorf("Unexpected version response: %+v", resp)
	}

	rr = httptest.NewRecorder()
	VersionHandler(rr, httptest.NewRequest(http.MethodPost, "/version", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rr.Code)
	}
}

func TestJournalRoutes(t *testing.T) {
	h := newTestRouter(t, songPlatform())

	ok := download(t, h, "?videoUrl=https://youtu.be/abc123&format=audio")
	bad := download(t, h, "?videoUrl=nope")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/success?id="+ok.Header().Get(RequestIDHeader), nil))
	var sresp map[string]interface{}
	json.Unmarshal(rr.Body.Bytes(), &sresp)
	if sresp["status"] != "success" {
		t.Errorf("Expected success status, got %v", sresp)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/failures?id="+bad.Header().Get(RequestIDHeader), nil))
	var fresp map[string]interface{}
	json.Unmarshal(rr.Body.Bytes(), &fresp)
	if fresp["status"] != "failed" {
		t.Errorf("Expected failed status, got %v", fresp)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/failures?id=unknown", nil))
	json.Unmarshal(rr.Body.Bytes(), &fresp)
	if fresp["status"] != "not_found" {
		t.Errorf("Expected not_found, got %v", fresp)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/success/list", nil))
	var list map[string]interface{}
	json.Unmarshal(rr.Body.Bytes(), &list)
	if list["count"] != float64(1) {
		t.Errorf("Expected 1 success record, got %v", list["count"])
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/failures", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without id, got %d", rr.Code)
	}
}

func TestStatusFor(t *testing.T) {
	status, body := statusFor(errors.New("disk full"))
	if status != http.StatusInternalServerError || body != "An error occurred: disk full" {
		t.Errorf("Unexpected mapping: %d %q", status, body)
	}
}
