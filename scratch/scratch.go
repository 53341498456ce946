// Package scratch holds the transient stores a download is copied through
// before it is handed back to the caller. Objects written here live for the
// duration of one request.
package scratch

import (
	"context"
	"fmt"
	"io"
	"sort"

	"vidfetch/logger"
)

// Backend is a transient object store
type Backend interface {
	Put(ctx context.Context, name string, reader io.Reader) error
	Get(ctx context.Context, name string) ([]byte, error)
	Remove(ctx context.Context, name string) error
	Close() error
}

// Factory builds a backend from its access info
type Factory func(ctx context.Context, accessInfo map[string]string) (Backend, error)

// Registry maps backend name → factory
var Registry = map[string]Factory{
	"local": NewLocal,
	"s3":    NewS3,
	"gcs":   NewGCS,
	"sftp":  NewSFTP,
}

// Open builds the named backend
func Open(ctx context.Context, backendType string, accessInfo map[string]string) (Backend, error) {
	factory, ok := Registry[backendType]
	if !ok {
		return nil, fmt.Errorf("unknown scratch backend: %s (known: %v)", backendType, Names())
	}
	backend, err := factory(ctx, accessInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s scratch backend: %w", backendType, err)
	}
	logger.Debugf("scratch backend [%s] ready", backendType)
	return backend, nil
}

// Names lists the registered backends in sorted order
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// requireKeys checks that accessInfo carries every key in keys
func requireKeys(accessInfo map[string]string, keys ...string) error {
	var missing []string
	for _, k := range keys {
		if accessInfo[k] == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required accessInfo keys: %v", missing)
	}
	return nil
}
