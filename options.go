package ftp

import (
	"fmt"
	"net"
	"time"

	"github.com/gonzalop/ftpsession/internal/ratelimit"
	"github.com/sirupsen/logrus"
)

// Option is a functional option for configuring a Session.
type Option func(*Session) error

// WithTimeout sets the timeout for connection and operations.
// This applies to dialing the control and data channels and to every
// subsequent read and write on them. Zero disables timeouts.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Session) error {
		if timeout < 0 {
			return fmt.Errorf("timeout must not be negative: %s", timeout)
		}
		s.timeout = timeout
		return nil
	}
}

// WithLogger enables logging using the provided logger.
// Commands and responses are logged at debug level, session lifecycle
// events at info level. Passwords are never logged.
//
// Example:
//
//	logger := logrus.New()
//	logger.SetLevel(logrus.DebugLevel)
//	session, _ := ftp.NewSession(ftp.WithLogger(logger))
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Session) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		s.logger = logger
		return nil
	}
}

// WithTransport sets the Transport used to open control and data connections.
// The default is a *net.Dialer.
func WithTransport(t Transport) Option {
	return func(s *Session) error {
		if t == nil {
			return fmt.Errorf("transport must not be nil")
		}
		s.transport = t
		return nil
	}
}

// WithDialer sets a custom net.Dialer for establishing connections.
// This can be used to configure source addresses, keep-alive settings, etc.
func WithDialer(dialer *net.Dialer) Option {
	return WithTransport(dialer)
}

// WithChunkSize sets the buffer capacity used by the transfer loop.
// It affects throughput, not correctness.
func WithChunkSize(size int) Option {
	return func(s *Session) error {
		if size <= 0 {
			return fmt.Errorf("chunk size must be positive: %d", size)
		}
		s.engine.chunkSize = size
		return nil
	}
}

// WithResponseBufferSize sets the maximum length of a control-channel
// response line. The minimum accepted value is 16.
func WithResponseBufferSize(size int) Option {
	return func(s *Session) error {
		if size < 16 {
			return fmt.Errorf("response buffer size must be at least 16: %d", size)
		}
		s.responseBufferSize = size
		return nil
	}
}

// WithBandwidthLimit limits data-channel transfers to bytesPerSecond.
// Zero means unlimited.
func WithBandwidthLimit(bytesPerSecond int64) Option {
	return func(s *Session) error {
		if bytesPerSecond < 0 {
			return fmt.Errorf("bandwidth limit must not be negative: %d", bytesPerSecond)
		}
		s.engine.limiter = ratelimit.New(bytesPerSecond)
		return nil
	}
}

// WithProgress registers a callback that receives the cumulative byte count
// of the running transfer after every chunk.
func WithProgress(fn ProgressFunc) Option {
	return func(s *Session) error {
		s.engine.progress = fn
		return nil
	}
}
