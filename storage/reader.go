// Package storage provides a buffered, byte-order-aware reader/writer over
// an on-disk file. It is the primitive layer every format package in this
// module builds on: callers get typed int32/float64 accessors, a short
// lookahead (Peek), and a one-step Unread used to back out of a
// misidentified record tag.
package storage

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
)

// maxHistory bounds how far Unread can rewind. Callers only ever need to
// back out of a single fixed-size record header, so a few hundred bytes of
// history is ample.
const maxHistory = 512

// Reader is a buffered file reader with an explicit byte-swap flag and a
// bounded one-step rewind.
type Reader struct {
	br   *bufio.Reader
	swap bool

	history []byte // most-recently consumed bytes, oldest first
	pending []byte // bytes pushed back by Unread, consumed before br
}

// NewReader wraps f in a Reader with a 64KB buffer.
func NewReader(f *os.File) *Reader {
	return &Reader{br: bufio.NewReaderSize(f, 64*1024)}
}

// SetSwap marks whether subsequent typed reads should byte-swap their
// result. Set once, after the layout-code probe in header.go.
func (r *Reader) SetSwap(swap bool) { r.swap = swap }

// Swapped reports the current byte-swap setting.
func (r *Reader) Swapped() bool { return r.swap }

// Read implements io.Reader, draining any pending (unread) bytes first.
func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	if len(r.pending) > 0 {
		n = copy(p, r.pending)
		r.pending = r.pending[n:]
		if n == len(p) {
			r.remember(p[:n])
			return n, nil
		}
	}
	m, err := r.br.Read(p[n:])
	total := n + m
	r.remember(p[:total])
	return total, err
}

func (r *Reader) remember(b []byte) {
	r.history = append(r.history, b...)
	if len(r.history) > maxHistory {
		r.history = r.history[len(r.history)-maxHistory:]
	}
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBytes reads exactly n bytes. A short read yields io.ErrUnexpectedEOF;
// a read that starts at clean EOF yields io.EOF.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadInt32 reads a 32-bit signed integer, honoring the swap flag.
func (r *Reader) ReadInt32() (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	order := byteOrder(r.swap)
	return int32(order.Uint32(buf[:])), nil
}

// ReadFloat64 reads an IEEE 754 binary64, honoring the swap flag.
func (r *Reader) ReadFloat64() (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	order := byteOrder(r.swap)
	return math.Float64frombits(order.Uint64(buf[:])), nil
}

// Peek returns the next n bytes without consuming them. It does not
// participate in Unread's history (peeked bytes haven't been "read" yet).
func (r *Reader) Peek(n int) ([]byte, error) {
	if len(r.pending) >= n {
		return r.pending[:n], nil
	}
	if len(r.pending) > 0 {
		rest, err := r.br.Peek(n - len(r.pending))
		if err != nil {
			return nil, err
		}
		out := make([]byte, 0, n)
		out = append(out, r.pending...)
		out = append(out, rest...)
		return out, nil
	}
	return r.br.Peek(n)
}

// Skip discards the next n bytes.
func (r *Reader) Skip(n int) error {
	if n <= 0 {
		return nil
	}
	if _, err := io.CopyN(io.Discard, r, int64(n)); err != nil {
		return errors.Wrap(err, "storage: skip")
	}
	return nil
}

// Unread pushes the last n consumed bytes back onto the stream, to be
// re-read by the next Read/ReadBytes/ReadInt32 call. Valid up to
// maxHistory bytes back; callers only ever rewind a single record header.
func (r *Reader) Unread(n int) error {
	if n <= 0 {
		return nil
	}
	if n > len(r.history) {
		return errors.Errorf("storage: cannot unread %d bytes, only %d in history", n, len(r.history))
	}
	rewound := r.history[len(r.history)-n:]
	pushed := make([]byte, 0, len(rewound)+len(r.pending))
	pushed = append(pushed, rewound...)
	pushed = append(pushed, r.pending...)
	r.pending = pushed
	r.history = r.history[:len(r.history)-n]
	return nil
}

func byteOrder(swap bool) binary.ByteOrder {
	if swap {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
