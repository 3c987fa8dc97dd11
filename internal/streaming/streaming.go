package streaming

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// Sentinel errors for streaming operations.
var (
	// ErrWriteTimeout indicates that a single write exceeded the configured
	// timeout, typically a client draining data too slowly.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates that the client disconnected before the copy
	// completed, detected via request context cancellation.
	ErrClientGone = errors.New("client disconnected")
)

// Config controls chunked copying to a client.
type Config struct {
	// WriteTimeout is the maximum time allowed for a single chunk write
	// (0 = no per-write timeout).
	WriteTimeout time.Duration
	// ChunkSize is the copy buffer size.
	ChunkSize int
}

// DefaultConfig returns sensible defaults for video delivery.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 30 * time.Second,
		ChunkSize:    256 * 1024,
	}
}

// Copy streams r to w in chunks, flushing after each one, checking for
// client disconnection between chunks and applying the per-write timeout.
// Returns the number of bytes written.
//
// There is deliberately no total-duration limit: a large artifact on a slow
// link may legitimately stream for a very long time.
func Copy(ctx context.Context, w io.Writer, r io.Reader, cfg Config) (int64, error) {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultConfig().ChunkSize
	}

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, cfg.ChunkSize)

	var written int64
	for {
		select {
		case <-ctx.Done():
			return written, ErrClientGone
		default:
		}

		n, rerr := r.Read(buf)
		if n > 0 {
			wn, werr := writeWithTimeout(ctx, w, buf[:n], cfg.WriteTimeout)
			written += int64(wn)
			if werr != nil {
				return written, werr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}

		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

// writeWithTimeout performs one write, bounded by timeout when set. The
// write itself runs in a goroutine because net/http response writes have no
// deadline of their own.
func writeWithTimeout(ctx context.Context, w io.Writer, p []byte, timeout time.Duration) (int, error) {
	if timeout <= 0 {
		return w.Write(p)
	}

	type writeResult struct {
		n   int
		err error
	}
	resultCh := make(chan writeResult, 1)

	go func() {
		n, err := w.Write(p)
		resultCh <- writeResult{n, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-resultCh:
		return result.n, result.err
	case <-timer.C:
		return 0, ErrWriteTimeout
	case <-ctx.Done():
		return 0, ErrClientGone
	}
}
