package ftp

import (
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// State is the connection state of a Session.
type State int

const (
	// StateDisconnected is the initial state; no control socket exists.
	StateDisconnected State = iota

	// StateConnected means the server greeted us but we are not logged in.
	StateConnected

	// StateAuthenticated means USER/PASS succeeded; data operations are allowed.
	StateAuthenticated

	// StateError means a protocol or I/O failure occurred. The control socket
	// is still owned by the session; call Connect to recover.
	StateError
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnected:
		return "Connected"
	case StateAuthenticated:
		return "Authenticated"
	case StateError:
		return "Error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	// DefaultPort is the standard FTP control port.
	DefaultPort = 21

	// DefaultTimeout bounds every dial, read and write.
	DefaultTimeout = 30 * time.Second

	// DefaultResponseBufferSize is the maximum length of a response line.
	DefaultResponseBufferSize = 1024
)

// Session is an FTP client session: one control connection plus one
// short-lived passive data connection per listing or transfer.
//
// Operations are synchronous and serialized; at most one command exchange
// and one data transfer are in flight at any time. Any protocol or I/O
// failure moves the session to StateError, after which Connect must be
// called again.
//
// User names, passwords and remote paths that contain CR or LF are rejected
// with KindProtocol before anything is sent, and the state is unchanged.
type Session struct {
	// mu serializes operations
	mu sync.Mutex

	// id identifies the current connection in log output
	id string

	host  string
	port  int
	state State

	// cwd is the current remote directory. It is only sent to the server
	// (as CWD) by ListDirectory.
	cwd string

	// control is non-nil whenever state != StateDisconnected
	control *controlChannel

	transport          Transport
	timeout            time.Duration
	responseBufferSize int
	engine             transferEngine
	logger             logrus.FieldLogger
}

// NewSession creates a disconnected session.
//
// Example:
//
//	session, err := ftp.NewSession(ftp.WithTimeout(10 * time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := session.Connect("ftp.example.com", ftp.DefaultPort); err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
func NewSession(options ...Option) (*Session, error) {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Session{
		state:              StateDisconnected,
		cwd:                "/",
		transport:          &net.Dialer{},
		timeout:            DefaultTimeout,
		responseBufferSize: DefaultResponseBufferSize,
		engine:             transferEngine{chunkSize: DefaultChunkSize},
		logger:             discard,
	}

	for _, opt := range options {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return s, nil
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsConnected reports whether the session holds a healthy control
// connection (StateConnected or StateAuthenticated).
func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateConnected || s.state == StateAuthenticated
}

// CurrentDirectory returns the remote directory used by ListDirectory("")
// and for resolving relative remote paths.
func (s *Session) CurrentDirectory() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cwd
}

// Host returns the host of the last Connect call.
func (s *Session) Host() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.host
}

// ID returns the identifier of the current connection, as used in logs.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *Session) log() logrus.FieldLogger {
	return s.logger.WithFields(logrus.Fields{
		"session": s.id,
		"host":    s.host,
	})
}

// fail moves the session to StateError and returns err.
func (s *Session) fail(err error) error {
	s.state = StateError
	s.log().WithError(err).Warn("ftp session failed")
	return err
}

// require checks that the session is in one of the allowed states.
func (s *Session) require(op string, allowed ...State) error {
	for _, st := range allowed {
		if s.state == st {
			return nil
		}
	}
	return stateError(op, s.state)
}

// Connect opens the control connection to host:port and waits for the
// server greeting. A port of 0 means DefaultPort.
//
// Connect is allowed from StateDisconnected and StateError; in the latter
// case the stale control connection is closed first.
func (s *Session) Connect(host string, port int) error {
	const op = "connect"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(op, StateDisconnected, StateError); err != nil {
		return err
	}

	host = strings.TrimSpace(host)
	if host == "" {
		return connectionError(op, nil, "empty host")
	}
	if port == 0 {
		port = DefaultPort
	}
	if port < 0 || port > 65535 {
		return connectionError(op, nil, "invalid port %d", port)
	}

	if s.control != nil {
		_ = s.control.close()
		s.control = nil
	}

	s.host = host
	s.port = port
	s.id = uuid.NewString()
	s.cwd = "/"

	cc, err := openControl(s.transport, host, port, s.timeout, s.responseBufferSize, s.log())
	if cc == nil {
		s.state = StateDisconnected
		s.log().WithError(err).Warn("ftp connect failed")
		return err
	}
	s.control = cc
	if err != nil {
		return s.fail(err)
	}

	s.state = StateConnected
	s.log().WithField("port", port).Info("connected to ftp server")
	return nil
}

// Authenticate logs in with USER and PASS. The server must answer 331 to
// USER and 230 to PASS.
func (s *Session) Authenticate(user, password string) error {
	const op = "authenticate"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(op, StateConnected, StateAuthenticated); err != nil {
		return err
	}
	if err := checkArgument(op, "USER", user); err != nil {
		return err
	}
	if err := checkArgument(op, "PASS", password); err != nil {
		return err
	}

	if _, err := s.control.exchange(op, "USER", user, CodeNeedPassword); err != nil {
		return s.fail(err)
	}
	if _, err := s.control.exchange(op, "PASS", password, CodeLoggedIn); err != nil {
		return s.fail(err)
	}

	s.state = StateAuthenticated
	s.log().WithField("user", strings.TrimSpace(user)).Info("authenticated")
	return nil
}

// ChangeDirectory sets the current remote directory. Nothing is sent to the
// server; the directory is used by the next ListDirectory("") and for
// resolving relative remote paths. Relative paths are joined to the current
// directory; an empty path means "/".
func (s *Session) ChangeDirectory(dir string) error {
	const op = "cd"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(op, StateAuthenticated); err != nil {
		return err
	}
	if err := checkArgument(op, "CWD", dir); err != nil {
		return err
	}

	if strings.TrimSpace(dir) == "" {
		s.cwd = "/"
	} else {
		s.cwd = s.remotePath(dir)
	}
	s.log().WithField("path", s.cwd).Debug("changed remote directory")
	return nil
}

// ListDirectory returns the raw LIST lines for dir, in server order.
// An empty dir lists the current remote directory; otherwise dir becomes
// the current remote directory once the server accepts CWD.
//
// Example:
//
//	entries, err := session.ListDirectory("/pub")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, line := range entries {
//	    fmt.Println(line)
//	}
func (s *Session) ListDirectory(dir string) ([]string, error) {
	const op = "list"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(op, StateAuthenticated); err != nil {
		return nil, err
	}
	if err := checkArgument(op, "CWD", dir); err != nil {
		return nil, err
	}

	target := s.cwd
	if strings.TrimSpace(dir) != "" {
		target = s.remotePath(dir)
	}
	s.engine.logger = s.log()

	data, err := s.openPassiveData(op)
	if err != nil {
		return nil, s.fail(err)
	}

	if _, err := s.control.exchange(op, "CWD", target, CodeFileActionOK); err != nil {
		data.Close()
		return nil, s.fail(err)
	}
	s.cwd = target

	if _, err := s.control.exchange(op, "LIST", "", CodeFileStatusOK); err != nil {
		data.Close()
		return nil, s.fail(err)
	}

	raw, err := s.engine.copyToBuffer(op, data)
	if err != nil {
		return nil, s.fail(err)
	}

	if err := s.finishData(op, "LIST"); err != nil {
		return nil, s.fail(err)
	}

	entries := splitListing(raw)
	s.log().WithFields(logrus.Fields{"path": target, "entries": len(entries)}).Info("listed directory")
	return entries, nil
}

// DownloadFile retrieves remotePath into a local file. The local path is
// chosen by ResolveLocalPath: an empty localPath or a directory receives
// the remote file name. The local file is removed if the transfer fails.
func (s *Session) DownloadFile(remotePath, localPath string) error {
	const op = "download"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(op, StateAuthenticated); err != nil {
		return err
	}

	if err := checkArgument(op, "RETR", remotePath); err != nil {
		return err
	}
	remotePath = strings.TrimSpace(remotePath)
	if RemoteBaseName(remotePath) == "" {
		return ioError(op, nil, "cannot derive a file name from remote path %q", remotePath)
	}
	target := ResolveLocalPath(remotePath, localPath)
	remote := s.remotePath(remotePath)
	s.engine.logger = s.log()

	data, err := s.openPassiveData(op)
	if err != nil {
		return s.fail(err)
	}

	if _, err := s.control.exchange(op, "RETR", remote, CodeFileStatusOK); err != nil {
		data.Close()
		return s.fail(err)
	}

	n, err := s.engine.copyToFile(op, data, target)
	if err != nil {
		return s.fail(err)
	}

	if err := s.finishData(op, "RETR"); err != nil {
		_ = os.Remove(target)
		return s.fail(err)
	}

	s.log().WithFields(logrus.Fields{"path": remote, "local": target, "bytes": n}).Info("downloaded file")
	return nil
}

// UploadFile stores the local file at remotePath. An empty remotePath uses
// the local file name in the current remote directory.
//
// The local file is checked before anything is sent, so a missing file
// fails with KindIO and leaves the session state unchanged.
func (s *Session) UploadFile(localPath, remotePath string) error {
	const op = "upload"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(op, StateAuthenticated); err != nil {
		return err
	}

	info, err := os.Stat(localPath)
	if err != nil {
		return ioError(op, err, "failed to open local file for reading: %s", localPath)
	}
	if info.IsDir() {
		return ioError(op, nil, "local path is a directory: %s", localPath)
	}
	if strings.TrimSpace(remotePath) == "" {
		remotePath = info.Name()
	}
	if err := checkArgument(op, "STOR", remotePath); err != nil {
		return err
	}
	remote := s.remotePath(remotePath)
	s.engine.logger = s.log()

	data, err := s.openPassiveData(op)
	if err != nil {
		return s.fail(err)
	}

	if _, err := s.control.exchange(op, "STOR", remote, CodeFileStatusOK); err != nil {
		data.Close()
		return s.fail(err)
	}

	n, err := s.engine.copyFromFile(op, localPath, data)
	if err != nil {
		return s.fail(err)
	}

	if err := s.finishData(op, "STOR"); err != nil {
		return s.fail(err)
	}

	s.log().WithFields(logrus.Fields{"path": remote, "local": localPath, "bytes": n}).Info("uploaded file")
	return nil
}

// Disconnect sends QUIT and closes the control connection. It is
// best-effort: the socket is closed and the state reset to
// StateDisconnected even if QUIT cannot be sent.
func (s *Session) Disconnect() error {
	const op = "disconnect"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.require(op, StateConnected, StateAuthenticated, StateError); err != nil {
		return err
	}

	if err := s.control.close(); err != nil {
		s.log().WithError(err).Debug("closing control connection")
	}
	s.control = nil
	s.state = StateDisconnected
	s.log().Info("disconnected from ftp server")
	return nil
}

// Close disconnects the session if it is connected. It implements io.Closer.
func (s *Session) Close() error {
	if s.State() == StateDisconnected {
		return nil
	}
	return s.Disconnect()
}

// remotePath resolves p against the current remote directory.
func (s *Session) remotePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return s.cwd
	}
	if strings.HasPrefix(p, "/") {
		return path.Clean(p)
	}
	return path.Join(s.cwd, p)
}

// splitListing splits a LIST payload into lines, dropping line terminators
// and blank lines.
func splitListing(raw []byte) []string {
	var entries []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, line)
	}
	return entries
}
