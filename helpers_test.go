package ftp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// newTestLogger returns a debug-level logger that records entries instead of
// printing them.
func newTestLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

// transportFunc adapts a function to the Transport interface.
type transportFunc func(ctx context.Context, network, address string) (net.Conn, error)

func (f transportFunc) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	return f(ctx, network, address)
}

var errDialRefused = errors.New("dial refused")

// countingTransport counts dials and the connections it hands out.
// Dials to an address in fail are refused.
type countingTransport struct {
	dialer net.Dialer
	fail   map[string]bool

	dials atomic.Int32

	mu    sync.Mutex
	conns []*trackedConn
}

func (c *countingTransport) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	c.dials.Add(1)
	if c.fail[address] {
		return nil, errDialRefused
	}
	conn, err := c.dialer.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	tc := &trackedConn{Conn: conn}
	c.mu.Lock()
	c.conns = append(c.conns, tc)
	c.mu.Unlock()
	return tc, nil
}

// open returns how many connections handed out are still open.
func (c *countingTransport) open() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, tc := range c.conns {
		if !tc.closed.Load() {
			n++
		}
	}
	return n
}

type trackedConn struct {
	net.Conn
	closed atomic.Bool
}

func (c *trackedConn) Close() error {
	c.closed.Store(true)
	return c.Conn.Close()
}

// recordConn captures everything written to it.
type recordConn struct {
	net.Conn
	out      bytes.Buffer
	writeErr error
	closed   bool
}

func (c *recordConn) Write(b []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	return c.out.Write(b)
}

func (c *recordConn) Close() error {
	c.closed = true
	return nil
}

// fileTracker opens local files for a transferEngine and counts the handles
// that have not been closed yet.
type fileTracker struct {
	open atomic.Int32
}

func (ft *fileTracker) install(e *transferEngine) {
	e.createFile = func(path string) (io.WriteCloser, error) {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		return ft.track(f), nil
	}
	e.openFile = func(path string) (io.ReadCloser, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return ft.track(f), nil
	}
}

func (ft *fileTracker) track(f *os.File) *trackedFile {
	ft.open.Add(1)
	return &trackedFile{File: f, tracker: ft}
}

type trackedFile struct {
	*os.File
	tracker *fileTracker
	closed  atomic.Bool
}

func (f *trackedFile) Close() error {
	if f.closed.CompareAndSwap(false, true) {
		f.tracker.open.Add(-1)
	}
	return f.File.Close()
}
