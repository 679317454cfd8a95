package ratelimit

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name           string
		bytesPerSecond int64
		expectNil      bool
	}{
		{"Valid rate", 1024, false},
		{"Zero rate (unlimited)", 0, true},
		{"Negative rate (unlimited)", -1, true},
		{"Very low rate", 1, false},
		{"High rate", 10 * 1024 * 1024, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := New(tt.bytesPerSecond)
			if tt.expectNil {
				assert.Nil(t, limiter)
				return
			}
			require.NotNil(t, limiter)
			assert.Equal(t, tt.bytesPerSecond, limiter.Rate())
		})
	}
}

func TestNilLimiter(t *testing.T) {
	var l *Limiter
	assert.NoError(t, l.Wait(context.Background(), 1<<20))
	assert.Zero(t, l.Rate())
}

func TestNewWriter(t *testing.T) {
	var buf bytes.Buffer

	// With nil limiter, should return original writer
	limited := NewWriter(&buf, nil)
	assert.Same(t, &buf, limited)

	// With valid limiter, should return wrapped writer
	limited = NewWriter(&buf, New(1024))
	assert.NotSame(t, &buf, limited)
}

func TestWriter_Throttles(t *testing.T) {
	var buf bytes.Buffer
	limiter := New(1000)
	w := NewWriter(&buf, limiter)

	data := make([]byte, 500)

	// First 1000 bytes come out of the initial burst.
	start := time.Now()
	for n := 0; n < 2; n++ {
		_, err := w.Write(data)
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), 200*time.Millisecond)

	// The next 500 bytes need about half a second of refill.
	start = time.Now()
	_, err := w.Write(data)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 300*time.Millisecond)
	assert.Equal(t, 1500, buf.Len())
}

func TestWait_LargerThanBurst(t *testing.T) {
	limiter := New(1 << 20)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Two bursts worth of bytes must be split rather than rejected.
	require.NoError(t, limiter.Wait(ctx, 3<<19))
}

func TestWait_Canceled(t *testing.T) {
	limiter := New(10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, limiter.Wait(ctx, 5))
}
