// Package ftp implements a passive-mode FTP client session.
//
// # Overview
//
// A Session owns one control connection and opens a short-lived data
// connection for every listing or file transfer. It supports:
//   - Connecting and logging in with USER/PASS
//   - Listing remote directories (LIST)
//   - Downloading (RETR) and uploading (STOR) whole files
//   - Per-operation timeouts, bandwidth limiting and progress callbacks
//   - Structured logging through logrus
//
// Only passive mode is implemented. Active mode, TLS, resume and multi-line
// responses are not supported.
//
// # Basic Usage
//
//	session, err := ftp.NewSession()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := session.Connect("ftp.example.com", ftp.DefaultPort); err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	if err := session.Authenticate("anonymous", "guest@example.com"); err != nil {
//	    log.Fatal(err)
//	}
//
//	entries, err := session.ListDirectory("/pub")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Session States
//
// A session starts in StateDisconnected. Connect moves it to StateConnected,
// Authenticate to StateAuthenticated. Listing and transfers require
// StateAuthenticated. Any protocol or I/O failure during an operation moves
// the session to StateError; the only ways out are Connect and Disconnect.
// Calling an operation in the wrong state returns an error of KindState
// without touching the network.
//
// # Error Handling
//
// Every error returned by a Session is an *Error. Use KindOf or IsKind to
// branch on the failure class:
//
//	if err := session.DownloadFile("/pub/file.txt", ""); err != nil {
//	    switch {
//	    case ftp.IsKind(err, ftp.KindProtocol):
//	        // unexpected reply code or malformed response
//	    case ftp.IsKind(err, ftp.KindIO):
//	        // local file or socket failure, including KindTransfer
//	    }
//	}
//
// Protocol errors carry the command and the server's reply code:
//
//	var ftpErr *ftp.Error
//	if errors.As(err, &ftpErr) && ftpErr.Is5xx() {
//	    fmt.Printf("%s rejected: %d %s\n", ftpErr.Command, ftpErr.Code, ftpErr.Message)
//	}
//
// # Local Paths
//
// DownloadFile writes to the path chosen by ResolveLocalPath. An empty local
// path or a directory receives the remote file name. A file that was
// partially written when a download fails is removed.
package ftp
