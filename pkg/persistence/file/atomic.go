package file

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	writeMaxAttempts  = 3
	writeInitialDelay = 500 * time.Millisecond
)

// writeFileAtomic writes data to a temporary file and renames it over the
// final path, so a crash mid-write never leaves a half-written record
// visible. Transient I/O failures (cloud-sync placeholders, network drives)
// are retried with exponential backoff; after the attempt ceiling the failure
// is surfaced to the caller.
func writeFileAtomic(ctx context.Context, path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	operation := func() (struct{}, error) {
		tmp := path + ".tmp"

		if err := os.WriteFile(tmp, data, 0600); err != nil {
			return struct{}{}, err
		}

		if err := os.Rename(tmp, path); err != nil {
			_ = os.Remove(tmp)

			return struct{}{}, err
		}

		return struct{}{}, nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = writeInitialDelay

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(writeMaxAttempts),
	)

	return err
}
