package ftp

import (
	"net"
	"time"
)

// deadlineConn bounds every Read and Write on the control and data channels.
// Each call gets a fresh deadline of timeout from now.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

// withDeadlines wraps conn, or returns it unchanged when timeout is not positive.
func withDeadlines(conn net.Conn, timeout time.Duration) net.Conn {
	if timeout <= 0 {
		return conn
	}
	return &deadlineConn{Conn: conn, timeout: timeout}
}

func (c *deadlineConn) Read(b []byte) (n int, err error) {
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(b)
}

func (c *deadlineConn) Write(b []byte) (n int, err error) {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(b)
}
