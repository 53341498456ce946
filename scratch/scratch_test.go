package scratch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), "floppy", nil)
	if err == nil {
		t.Fatal("Expected error for unknown backend")
	}
	if !strings.Contains(err.Error(), "unknown scratch backend") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	want := []string{"gcs", "local", "s3", "sftp"}
	if len(names) != len(want) {
		t.Fatalf("Expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, names)
			break
		}
	}
}

func TestRemoteBackendsRequireKeys(t *testing.T) {
	ctx := context.Background()

	if _, err := Open(ctx, "s3", map[string]string{"bucket": "b"}); err == nil {
		t.Error("Expected s3 to reject missing credentials")
	}
	if _, err := Open(ctx, "gcs", map[string]string{}); err == nil {
		t.Error("Expected gcs to reject missing bucket")
	}
	if _, err := Open(ctx, "sftp", map[string]string{"host": "h", "user": "u", "remoteDir": "/tmp"}); err == nil {
		t.Error("Expected sftp to reject missing auth method")
	}
}

func TestS3BackendBuildsWithCredentials(t *testing.T) {
	backend, err := Open(context.Background(), "s3", map[string]string{
		"accessKey": "AKIAEXAMPLE",
		"secretKey": "secret",
		"region":    "eu-west-1",
		"bucket":    "scratch",
		"prefix":    "tmp/",
	})
	if err != nil {
		t.Fatalf("Expected s3 backend, got error: %v", err)
	}
	defer backend.Close()

	if got := backend.(*S3).key("x.part"); got != "tmp/x.part" {
		t.Errorf("Expected prefixed key tmp/x.part, got %s", got)
	}
}

func TestSFTPBackendBuildsWithPassword(t *testing.T) {
	backend, err := Open(context.Background(), "sftp", map[string]string{
		"host":      "sftp.example.com",
		"user":      "scratch",
		"password":  "secret",
		"remoteDir": "/srv/scratch",
	})
	if err != nil {
		t.Fatalf("Expected sftp backend, got error: %v", err)
	}
	s := backend.(*SFTP)
	if s.addr != "sftp.example.com:22" {
		t.Errorf("Expected default port 22, got %s", s.addr)
	}
	if got := s.remotePath("x.part"); got != "/srv/scratch/x.part" {
		t.Errorf("Unexpected remote path %s", got)
	}
}

func TestLocalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	backend, err := Open(ctx, "local", map[string]string{"baseDir": dir})
	if err != nil {
		t.Fatalf("Failed to open local backend: %v", err)
	}
	defer backend.Close()

	payload := []byte("not really an mp4")
	if err := backend.Put(ctx, "a.part", bytes.NewReader(payload)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := backend.Get(ctx, "a.part")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Expected %q, got %q", payload, got)
	}

	if err := backend.Remove(ctx, "a.part"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.part")); !os.IsNotExist(err) {
		t.Error("Expected scratch file to be gone after Remove")
	}

	// removing twice is fine
	if err := backend.Remove(ctx, "a.part"); err != nil {
		t.Errorf("Second Remove should be a no-op, got %v", err)
	}
}

func TestLocalPutIsExclusive(t *testing.T) {
	ctx := context.Background()
	backend, _ := NewLocal(ctx, map[string]string{"baseDir": t.TempDir()})

	if err := backend.Put(ctx, "dup.part", strings.NewReader("one")); err != nil {
		t.Fatalf("First Put failed: %v", err)
	}
	if err := backend.Put(ctx, "dup.part", strings.NewReader("two")); err == nil {
		t.Error("Expected second Put with the same name to fail")
	}
}

func TestLocalRejectsPathNames(t *testing.T) {
	ctx := context.Background()
	backend, _ := NewLocal(ctx, map[string]string{"baseDir": t.TempDir()})

	for _, name := range []string{"", "..", "../escape", "nested/file"} {
		if err := backend.Put(ctx, name, strings.NewReader("x")); err == nil {
			t.Errorf("Expected Put(%q) to be rejected", name)
		}
	}
}

func TestLocalPutStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	backend, _ := NewLocal(context.Background(), map[string]string{"baseDir": dir})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := backend.Put(ctx, "c.part", strings.NewReader("payload"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

// recordingWriter notes whether its context was already done when Close ran
type recordingWriter struct {
	ctx              context.Context
	buf              bytes.Buffer
	cancelledAtClose bool
	closed           bool
}

func (w *recordingWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *recordingWriter) Close() error {
	w.closed = true
	w.cancelledAtClose = w.ctx.Err() != nil
	return nil
}

type brokenReader struct{ sent bool }

func (r *brokenReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, "partial"), nil
	}
	return 0, errors.New("connection reset")
}

func TestGCSPutAbortsPartialUpload(t *testing.T) {
	var w *recordingWriter
	b := &GCS{bucket: "scratch", newWriter: func(ctx context.Context, name string) io.WriteCloser {
		w = &recordingWriter{ctx: ctx}
		return w
	}}

	err := b.Put(context.Background(), "x.part", &brokenReader{})
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("Expected copy error, got %v", err)
	}
	if !w.closed {
		t.Error("Expected writer to be closed")
	}
	if !w.cancelledAtClose {
		t.Error("Expected upload context to be cancelled before Close so the object is not finalized")
	}
}

func TestGCSPutCompletesUpload(t *testing.T) {
	var w *recordingWriter
	b := &GCS{bucket: "scratch", newWriter: func(ctx context.Context, name string) io.WriteCloser {
		w = &recordingWriter{ctx: ctx}
		return w
	}}

	if err := b.Put(context.Background(), "x.part", strings.NewReader("whole")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if w.cancelledAtClose {
		t.Error("Successful upload must be closed with a live context")
	}
	if w.buf.String() != "whole" {
		t.Errorf("Expected written bytes, got %q", w.buf.String())
	}
}
