// Package ratelimit provides a token bucket rate limiter for bandwidth
// throttling in FTP transfers, built on golang.org/x/time/rate.
package ratelimit

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// Limiter limits the rate of data transfer to a specified bytes per second.
//
// The bucket holds one second worth of data, allowing short bursts while
// maintaining the average rate over time. A nil *Limiter means unlimited.
type Limiter struct {
	lim *rate.Limiter
}

// New creates a new rate limiter with the specified bytes per second limit.
// It returns nil (unlimited) for bytesPerSecond <= 0.
func New(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	burst := bytesPerSecond
	if burst > int64(maxBurst) {
		burst = int64(maxBurst)
	}
	return &Limiter{
		lim: rate.NewLimiter(rate.Limit(bytesPerSecond), int(burst)),
	}
}

const maxBurst = 1 << 30

// Wait blocks until n bytes may pass. Requests larger than the burst are
// split so that a single large write cannot fail.
func (l *Limiter) Wait(ctx context.Context, n int) error {
	if l == nil {
		return nil
	}
	for n > 0 {
		chunk := min(n, l.lim.Burst())
		if err := l.lim.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// Rate returns the configured limit in bytes per second, or 0 for nil.
func (l *Limiter) Rate() int64 {
	if l == nil {
		return 0
	}
	return int64(l.lim.Limit())
}

type writer struct {
	w       io.Writer
	limiter *Limiter
}

// NewWriter creates a new rate-limited writer.
// If limiter is nil, returns the original writer unchanged.
func NewWriter(w io.Writer, limiter *Limiter) io.Writer {
	if limiter == nil {
		return w
	}
	return &writer{
		w:       w,
		limiter: limiter,
	}
}

// Write implements io.Writer, consuming tokens before writing to apply backpressure.
func (w *writer) Write(p []byte) (int, error) {
	if err := w.limiter.Wait(context.Background(), len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}
