package volume

import (
	"fmt"
	"io"

	"github.com/go-vfat/vfat32/errtrace"
)

// Device is the positional-read handle every other component reads
// through. No component keeps file-position state across calls, so a
// single Device may be shared by concurrent callers without a mutex as
// long as the underlying implementation's ReadAt is itself concurrency
// safe (true of *os.File).
type Device interface {
	ReadAt(p []byte, off int64) (n int, err error)
}

// ReadFull reads exactly len(buf) bytes from dev at off. Short reads are
// promoted to ErrIO: the device-reader contract is all-or-nothing, never
// partial.
func ReadFull(dev Device, off int64, buf []byte) error {
	n, err := dev.ReadAt(buf, off)
	if n == len(buf) && (err == nil || err == io.EOF) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return errtrace.Wrap(fmt.Errorf("read %d of %d bytes at offset %d: %w", n, len(buf), off, err), ErrIO)
}

// ReadAt is a convenience wrapper around ReadFull that allocates the
// buffer for the caller.
func ReadAt(dev Device, off int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := ReadFull(dev, off, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
