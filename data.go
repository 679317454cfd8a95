package ftp

import (
	"net"
	"time"
)

// openData opens a passive-mode data channel to addr.
// The returned connection enforces timeout on every read and write.
func openData(t Transport, addr string, timeout time.Duration) (net.Conn, error) {
	conn, err := dial(t, addr, timeout)
	if err != nil {
		return nil, connectionError("", err, "failed to connect to data port %s", addr)
	}
	return withDeadlines(conn, timeout), nil
}

// passiveDataAddr requests passive mode on the control channel and returns
// the address to dial for the data channel.
func (s *Session) passiveDataAddr(op string) (string, error) {
	resp, err := s.control.exchange(op, "PASV", "", CodePassive)
	if err != nil {
		return "", err
	}

	addr, err := DecodePassiveAddress(resp.Message)
	if err != nil {
		return "", annotate(err, op, "PASV")
	}

	// If the server sends 0.0.0.0, we use the control connection address.
	return resolveDataAddr(addr, s.host), nil
}

// openPassiveData negotiates passive mode and opens the data channel.
// The caller owns the returned connection and must close it.
func (s *Session) openPassiveData(op string) (net.Conn, error) {
	addr, err := s.passiveDataAddr(op)
	if err != nil {
		return nil, err
	}

	s.log().WithField("addr", addr).Debug("opening data connection")
	conn, err := openData(s.transport, addr, s.timeout)
	if err != nil {
		return nil, annotate(err, op, "PASV")
	}
	return conn, nil
}

// finishData reads the final transfer confirmation after the data channel
// has been closed.
func (s *Session) finishData(op, command string) error {
	_, err := s.control.await(op, command, CodeClosingData)
	return err
}
