package health

import (
	"context"
	"os"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck reports unhealthy when the number of goroutines
// exceeds threshold. Useful as a liveness check against goroutine leaks.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(_ context.Context) error {
		if count := runtime.NumGoroutine(); count > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", count, threshold)
		}
		return nil
	}
}

// DirWritableCheck reports unhealthy when dir does not accept new files.
// The invoice pipeline needs the output directory writable before it can
// accept webhook traffic.
func DirWritableCheck(dir string) CheckFunc {
	return func(_ context.Context) error {
		f, err := os.CreateTemp(dir, ".healthcheck-*")
		if err != nil {
			return errors.Wrap(err, "output directory not writable")
		}
		name := f.Name()
		_ = f.Close()
		if err := os.Remove(name); err != nil {
			return errors.Wrap(err, "cleanup probe file")
		}
		return nil
	}
}
