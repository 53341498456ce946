package delivery

import (
	"context"
	"fmt"
	"io"

	"vidfetch/logger"
	"vidfetch/scratch"
	"vidfetch/utils"
)

// Materialize copies src in full through a fresh scratch object and returns
// the bytes. The scratch object is removed on every path, including a copy
// that fails halfway.
func Materialize(ctx context.Context, store scratch.Backend, src io.Reader) (data []byte, err error) {
	name, err := utils.ScratchName()
	if err != nil {
		return nil, err
	}

	defer func() {
		// cleanup must run even when ctx is already cancelled
		if rmErr := store.Remove(context.WithoutCancel(ctx), name); rmErr != nil {
			logger.Errorf("failed to remove scratch object %s: %v", name, rmErr)
			if err == nil {
				data, err = nil, fmt.Errorf("failed to release scratch object: %w", rmErr)
			}
		}
	}()

	if err := store.Put(ctx, name, src); err != nil {
		return nil, fmt.Errorf("copy stream to scratch: %w", err)
	}

	data, err = store.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read back scratch: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyDownload
	}
	return data, nil
}
