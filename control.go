package ftp

import (
	"bufio"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// controlChannel owns the control connection of a session. It frames
// commands, reads one response line at a time and maps responses to
// success or failure.
type controlChannel struct {
	// conn is the underlying network connection, wrapped with deadlines
	conn net.Conn

	// reader is a bounded buffered reader; a response line must fit in it
	reader *bufio.Reader

	logger logrus.FieldLogger
	closed bool
}

// openControl dials host:port and validates the 220 greeting.
//
// A dial failure returns a nil channel. When the connection was established
// but the greeting is unreadable or unexpected, the channel is returned
// together with the error so the caller stays the owner of the socket.
func openControl(t Transport, host string, port int, timeout time.Duration, bufSize int, logger logrus.FieldLogger) (*controlChannel, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	logger.WithField("addr", addr).Debug("connecting to ftp server")

	conn, err := dial(t, addr, timeout)
	if err != nil {
		return nil, connectionError("connect", err, "failed to connect to %s", addr)
	}

	conn = withDeadlines(conn, timeout)
	cc := &controlChannel{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, bufSize),
		logger: logger,
	}

	if _, err := cc.await("connect", "CONNECT", CodeServiceReady); err != nil {
		return cc, err
	}
	return cc, nil
}

// formatCommand joins verb and the trimmed argument with a single space and
// appends the line terminator.
func formatCommand(verb, arg string) string {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return verb + "\r\n"
	}
	return verb + " " + arg + "\r\n"
}

// send writes one command line in a single Write call.
// An argument with an embedded CR or LF is rejected before anything is
// written, so one call can never put two commands on the wire.
func (cc *controlChannel) send(verb, arg string) error {
	if cc.closed {
		return ioError("", net.ErrClosed, "control channel closed")
	}
	if err := checkArgument("", verb, arg); err != nil {
		return err
	}

	if verb == "PASS" {
		cc.logger.WithField("cmd", "PASS ****").Debug("ftp command")
	} else {
		cc.logger.WithField("cmd", strings.TrimSpace(verb+" "+strings.TrimSpace(arg))).Debug("ftp command")
	}

	line := formatCommand(verb, arg)
	n, err := io.WriteString(cc.conn, line)
	if err != nil {
		return ioError("", err, "failed to send %s", verb)
	}
	if n != len(line) {
		return ioError("", io.ErrShortWrite, "failed to send %s", verb)
	}
	return nil
}

// readResponse reads one response and returns its final line without the
// terminator. A dash-continued reply ("220-...") is consumed up to its
// closing line ("220 ..."), and only that line is returned.
func (cc *controlChannel) readResponse() (string, error) {
	line, err := cc.readLine()
	if err != nil {
		return "", err
	}
	code, ok := continuationCode(line)
	if !ok {
		return line, nil
	}

	for n := 0; n < maxContinuationLines; n++ {
		next, err := cc.readLine()
		if err != nil {
			return "", err
		}
		if next == code || strings.HasPrefix(next, code+" ") {
			return next, nil
		}
	}
	return "", protocolError("", "", 0, "reply %s continues for more than %d lines", code, maxContinuationLines)
}

// maxContinuationLines bounds how many lines one dash-continued reply may span.
const maxContinuationLines = 128

// readLine reads one line through the bounded reader.
// Lines longer than the reader's buffer are rejected.
func (cc *controlChannel) readLine() (string, error) {
	if cc.closed {
		return "", ioError("", net.ErrClosed, "control channel closed")
	}

	line, err := cc.reader.ReadSlice('\n')
	switch {
	case errors.Is(err, bufio.ErrBufferFull):
		return "", protocolError("", "", 0, "response line exceeds %d bytes", cc.reader.Size())
	case err == io.EOF && len(line) > 0:
		// Peer closed right after an unterminated final line; keep it.
	case err != nil:
		return "", ioError("", err, "failed to read response")
	}

	raw := strings.TrimRight(string(line), "\r\n")
	cc.logger.WithField("response", raw).Debug("ftp response")
	return raw, nil
}

// continuationCode returns the code of a line that opens a multi-line reply.
func continuationCode(line string) (string, bool) {
	if len(line) < 4 || line[3] != '-' {
		return "", false
	}
	if _, ok := extractCode(line); !ok {
		return "", false
	}
	return line[:3], true
}

// await reads one response and validates its code against expected.
func (cc *controlChannel) await(op, command string, expected ...int) (*Response, error) {
	raw, err := cc.readResponse()
	if err != nil {
		return nil, annotate(err, op, command)
	}
	resp, err := ValidateResponse(raw, expected...)
	if err != nil {
		return resp, annotate(err, op, command)
	}
	return resp, nil
}

// exchange sends one command and validates the response code.
func (cc *controlChannel) exchange(op, verb, arg string, expected ...int) (*Response, error) {
	if err := cc.send(verb, arg); err != nil {
		return nil, annotate(err, op, verb)
	}
	return cc.await(op, verb, expected...)
}

// close sends QUIT and closes the socket. Errors sending QUIT are ignored.
// Calling close more than once is a no-op.
func (cc *controlChannel) close() error {
	if cc.closed {
		return nil
	}
	_ = cc.send("QUIT", "")
	cc.closed = true
	return cc.conn.Close()
}

// checkArgument rejects command arguments that would split into more than
// one line on the wire. Surrounding whitespace is trimmed by formatCommand and
// does not count.
func checkArgument(op, verb, arg string) error {
	if strings.ContainsAny(strings.TrimSpace(arg), "\r\n") {
		return protocolError(op, verb, 0, "argument contains a line break")
	}
	return nil
}

// annotate fills in the operation and command on an *Error.
func annotate(err error, op, command string) error {
	var e *Error
	if errors.As(err, &e) {
		if e.Op == "" {
			e.Op = op
		}
		if e.Command == "" {
			e.Command = command
		}
	}
	return err
}
