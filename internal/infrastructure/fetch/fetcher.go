// Package fetch retrieves raw dataset bytes from the configured source.
// The dashboard treats the source as a periodically replaced snapshot, so a
// fetch always returns the whole file.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/datascientist-hue/live-dashboard/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrEmptyPayload marks a fetch that succeeded but returned zero bytes.
// Promoted to a fatal ingestion error once retries are exhausted.
var ErrEmptyPayload = errors.New("fetched payload is empty")

// Fetcher retrieves the raw bytes of one remote object.
type Fetcher interface {
	// Fetch returns the full object contents.
	Fetch(ctx context.Context) ([]byte, error)
	// Source identifies the object for cache keys and error messages.
	Source() string
}

// FileFetcher reads a dataset from the local filesystem.
type FileFetcher struct {
	path string
}

// NewFileFetcher creates a FileFetcher.
func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{path: path}
}

// Fetch reads the whole file.
func (f *FileFetcher) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	return data, nil
}

// Source returns the file path.
func (f *FileFetcher) Source() string {
	return "file://" + f.path
}

// RetryingFetcher wraps a Fetcher with a bounded number of attempts and a
// fixed backoff. After exhausting attempts the failure is promoted to a
// fatal FetchError for the cycle.
type RetryingFetcher struct {
	inner    Fetcher
	attempts int
	backoff  time.Duration
	logger   *zap.Logger
}

// NewRetryingFetcher wraps inner with retry behavior. attempts is the total
// number of tries, minimum 1.
func NewRetryingFetcher(inner Fetcher, attempts int, backoff time.Duration, logger *zap.Logger) *RetryingFetcher {
	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingFetcher{inner: inner, attempts: attempts, backoff: backoff, logger: logger}
}

// Fetch tries the inner fetcher up to the configured attempt count.
func (r *RetryingFetcher) Fetch(ctx context.Context) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		data, err := r.inner.Fetch(ctx)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			break
		}

		r.logger.Warn("Dataset fetch failed",
			zap.String("source", r.inner.Source()),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.attempts),
			zap.Error(err))

		if attempt < r.attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.backoff):
			}
		}
	}
	return nil, shared.NewFetchError(r.inner.Source(), lastErr)
}

// Source returns the wrapped fetcher's source.
func (r *RetryingFetcher) Source() string {
	return r.inner.Source()
}

// drainAndClose reads a body to completion and closes it.
func drainAndClose(rc io.ReadCloser) ([]byte, error) {
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	return data, nil
}
