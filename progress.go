package ftp

// ProgressFunc is called by the transfer loop after each chunk with the
// total number of bytes transferred so far in the current operation.
//
// Example:
//
//	session, _ := ftp.NewSession(ftp.WithProgress(func(n int64) {
//	    fmt.Printf("\r%d bytes", n)
//	}))
type ProgressFunc func(bytesTransferred int64)
