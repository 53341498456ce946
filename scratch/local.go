package scratch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"vidfetch/logger"
)

// Local keeps scratch objects as plain files under a base directory
type Local struct {
	baseDir string
}

// NewLocal builds a local backend. accessInfo: baseDir (defaults to the OS temp dir).
func NewLocal(ctx context.Context, accessInfo map[string]string) (Backend, error) {
	baseDir := accessInfo["baseDir"]
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create scratch dir %s: %w", baseDir, err)
	}
	return &Local{baseDir: baseDir}, nil
}

func (l *Local) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid scratch name %q", name)
	}
	return filepath.Join(l.baseDir, name), nil
}

// Put creates the file exclusively and copies reader into it
func (l *Local) Put(ctx context.Context, name string, reader io.Reader) error {
	fullPath, err := l.path(name)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(fullPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, contextReader{ctx: ctx, r: reader}); err != nil {
		return fmt.Errorf("failed to write to file %s: %w", fullPath, err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync file %s: %w", fullPath, err)
	}

	logger.Debugf("wrote scratch file %s", fullPath)
	return nil
}

// Get reads the whole file back
func (l *Local) Get(ctx context.Context, name string) ([]byte, error) {
	fullPath, err := l.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fullPath, err)
	}
	return data, nil
}

// Remove deletes the file; a missing file is not an error
func (l *Local) Remove(ctx context.Context, name string) error {
	fullPath, err := l.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove file %s: %w", fullPath, err)
	}
	return nil
}

// Close is a no-op for the local backend
func (l *Local) Close() error { return nil }

// contextReader stops a copy once ctx is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
