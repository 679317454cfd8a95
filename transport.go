package ftp

import (
	"context"
	"net"
	"time"
)

// Transport opens the network connections used by a session, for both the
// control channel and every passive data channel.
//
// *net.Dialer satisfies Transport. Tests can substitute an implementation
// that hands out in-memory connections or injects failures.
type Transport interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// dial opens a TCP connection through t, bounded by timeout when it is positive.
func dial(t Transport, address string, timeout time.Duration) (net.Conn, error) {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return t.DialContext(ctx, "tcp", address)
}
