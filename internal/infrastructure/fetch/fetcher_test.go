package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/datascientist-hue/live-dashboard/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	results []func() ([]byte, error)
	calls   int
}

func (s *stubFetcher) Fetch(ctx context.Context) ([]byte, error) {
	i := s.calls
	s.calls++
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	return s.results[i]()
}

func (s *stubFetcher) Source() string { return "stub://dataset" }

func succeed(data []byte) func() ([]byte, error) {
	return func() ([]byte, error) { return data, nil }
}

func fail(err error) func() ([]byte, error) {
	return func() ([]byte, error) { return nil, err }
}

func TestFileFetcher(t *testing.T) {
	t.Run("reads the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.csv")
		require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))

		f := NewFileFetcher(path)
		data, err := f.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "a,b\n1,2\n", string(data))
	})

	t.Run("empty file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.csv")
		require.NoError(t, os.WriteFile(path, nil, 0o644))

		_, err := NewFileFetcher(path).Fetch(context.Background())
		assert.ErrorIs(t, err, ErrEmptyPayload)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := NewFileFetcher(filepath.Join(t.TempDir(), "nope.csv")).Fetch(context.Background())
		assert.Error(t, err)
	})
}

func TestRetryingFetcher(t *testing.T) {
	t.Run("recovers from transient failures", func(t *testing.T) {
		stub := &stubFetcher{results: []func() ([]byte, error){
			fail(errors.New("connection reset")),
			succeed([]byte("payload")),
		}}

		r := NewRetryingFetcher(stub, 3, time.Millisecond, nil)
		data, err := r.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))
		assert.Equal(t, 2, stub.calls)
	})

	t.Run("exhausted retries surface a fetch error", func(t *testing.T) {
		stub := &stubFetcher{results: []func() ([]byte, error){
			fail(errors.New("connection reset")),
		}}

		r := NewRetryingFetcher(stub, 3, time.Millisecond, nil)
		_, err := r.Fetch(context.Background())
		require.Error(t, err)
		assert.Equal(t, 3, stub.calls)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "FETCH_ERROR", de.Code)
		assert.Contains(t, de.Message, "stub://dataset")
	})

	t.Run("cancellation stops retrying", func(t *testing.T) {
		stub := &stubFetcher{results: []func() ([]byte, error){
			fail(context.Canceled),
		}}

		r := NewRetryingFetcher(stub, 5, time.Millisecond, nil)
		_, err := r.Fetch(context.Background())
		require.Error(t, err)
		assert.Equal(t, 1, stub.calls)
	})

	t.Run("empty payload is retried", func(t *testing.T) {
		stub := &stubFetcher{results: []func() ([]byte, error){
			fail(ErrEmptyPayload),
			succeed([]byte("payload")),
		}}

		r := NewRetryingFetcher(stub, 3, time.Millisecond, nil)
		data, err := r.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "payload", string(data))
	})
}
