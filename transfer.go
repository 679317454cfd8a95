package ftp

import (
	"bytes"
	"io"
	"os"

	"github.com/gonzalop/ftpsession/internal/ratelimit"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultChunkSize is the default buffer capacity used by the transfer loop.
const DefaultChunkSize = 1024

// transferEngine copies bytes between a data channel and a local file or
// buffer in fixed-size chunks. Every method closes the data channel and any
// file it opened before returning, on success and on failure.
type transferEngine struct {
	chunkSize int
	limiter   *ratelimit.Limiter
	progress  ProgressFunc
	logger    logrus.FieldLogger

	// createFile and openFile open local files; nil means os.Create and os.Open
	createFile func(path string) (io.WriteCloser, error)
	openFile   func(path string) (io.ReadCloser, error)
}

func (e *transferEngine) create(path string) (io.WriteCloser, error) {
	if e.createFile != nil {
		return e.createFile(path)
	}
	return os.Create(path)
}

func (e *transferEngine) open(path string) (io.ReadCloser, error) {
	if e.openFile != nil {
		return e.openFile(path)
	}
	return os.Open(path)
}

// copyToFile writes everything received on data into a newly created file
// at path. A partially written file is removed on failure.
func (e *transferEngine) copyToFile(op string, data io.ReadCloser, path string) (n int64, err error) {
	defer data.Close()

	f, err := e.create(path)
	if err != nil {
		return 0, ioError(op, err, "failed to open local file for writing: %s", path)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = ioError(op, closeErr, "failed to close local file: %s", path)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return e.copyLoop(op, ratelimit.NewWriter(f, e.limiter), data)
}

// copyFromFile sends the contents of the file at path over data.
func (e *transferEngine) copyFromFile(op, path string, data io.WriteCloser) (int64, error) {
	defer data.Close()

	f, err := e.open(path)
	if err != nil {
		return 0, ioError(op, err, "failed to open local file for reading: %s", path)
	}
	defer f.Close()

	return e.copyLoop(op, ratelimit.NewWriter(data, e.limiter), f)
}

// copyToBuffer accumulates everything received on data in memory.
func (e *transferEngine) copyToBuffer(op string, data io.ReadCloser) ([]byte, error) {
	defer data.Close()

	var buf bytes.Buffer
	if _, err := e.copyLoop(op, &buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// copyLoop reads chunkSize bytes at a time from src until EOF, writing each
// chunk to dst as received.
func (e *transferEngine) copyLoop(op string, dst io.Writer, src io.Reader) (int64, error) {
	chunk := make([]byte, e.chunkSize)
	var total int64

	for {
		n, readErr := src.Read(chunk)
		if n > 0 {
			written, err := dst.Write(chunk[:n])
			total += int64(written)
			if err == nil && written != n {
				err = io.ErrShortWrite
			}
			if err != nil {
				return total, transferError(op, errors.Wrapf(err, "after %d bytes", total), "write failed")
			}
			if e.progress != nil {
				e.progress(total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return total, transferError(op, errors.Wrapf(readErr, "after %d bytes", total), "read failed")
		}
	}

	e.logger.WithFields(logrus.Fields{"op": op, "bytes": total}).Debug("data transfer complete")
	return total, nil
}
