package storage

import (
	"bufio"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
)

// Writer is a buffered file writer with an explicit byte-swap flag and
// support for seeking back to patch a previously written field (used to
// back-patch the case count in the header on close).
type Writer struct {
	f    *os.File
	bw   *bufio.Writer
	swap bool
}

// NewWriter wraps f in a Writer with a 64KB buffer.
func NewWriter(f *os.File) *Writer {
	return &Writer{f: f, bw: bufio.NewWriterSize(f, 64*1024)}
}

// SetSwap marks whether subsequent typed writes should byte-swap their
// output. Nothing in this module calls it, so written data is always
// little-endian; it exists for symmetry with Reader.
func (w *Writer) SetSwap(swap bool) { w.swap = swap }

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	return w.bw.Write(p)
}

// WriteByte writes a single byte.
func (w *Writer) WriteByte(b byte) error {
	return w.bw.WriteByte(b)
}

// WriteBytes writes p verbatim.
func (w *Writer) WriteBytes(p []byte) error {
	_, err := w.bw.Write(p)
	return err
}

// WriteInt32 writes a 32-bit signed integer, honoring the swap flag.
func (w *Writer) WriteInt32(v int32) error {
	var buf [4]byte
	byteOrder(w.swap).PutUint32(buf[:], uint32(v))
	_, err := w.bw.Write(buf[:])
	return err
}

// WriteFloat64 writes an IEEE 754 binary64, honoring the swap flag.
func (w *Writer) WriteFloat64(v float64) error {
	var buf [8]byte
	byteOrder(w.swap).PutUint64(buf[:], math.Float64bits(v))
	_, err := w.bw.Write(buf[:])
	return err
}

// Flush flushes the buffered writer to the underlying file.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}

// PatchAt flushes any buffered output, seeks to offset, writes data, and
// seeks back to the end of the file. Used exactly once, on Close, to
// back-patch the case count recorded in the header.
func (w *Writer) PatchAt(offset int64, data []byte) error {
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "storage: flush before patch")
	}
	end, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.Wrap(err, "storage: locate end of file")
	}
	if _, err := w.f.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrap(err, "storage: seek to patch offset")
	}
	if _, err := w.f.Write(data); err != nil {
		return errors.Wrap(err, "storage: write patch")
	}
	if _, err := w.f.Seek(end, io.SeekStart); err != nil {
		return errors.Wrap(err, "storage: restore file position")
	}
	return nil
}
