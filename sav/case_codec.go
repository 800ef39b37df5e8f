package sav

import (
	"io"
	"math"
	"strings"

	"github.com/daxplore/spssreader/storage"
)

// defaultBias is the compression bias every writer emits and every reader
// should expect, per §4.3 ("the writer always emits 100").
const defaultBias = 100.0

// segmentSource supplies the next 8-byte segment a case is assembled from,
// already normalized to host byte order and with file-SYSMIS remapped to
// host-SYSMIS. io.EOF from nextNumeric/nextString at the first segment of a
// case means end of stream; anywhere else it means a truncated case.
type segmentSource interface {
	nextNumeric() (float64, error)
	nextString() ([8]byte, error)
}

// rawSegmentReader is the uncompressed ("bounce") path: segments are read
// directly via storage.Reader's typed accessors, which already honor the
// swap flag (§4.4 "Uncompressed path").
type rawSegmentReader struct {
	r        *storage.Reader
	fileSpec specials
}

func (s *rawSegmentReader) nextNumeric() (float64, error) {
	f, err := s.r.ReadFloat64()
	if err != nil {
		return 0, err
	}
	return s.fileSpec.remapToHost(f), nil
}

func (s *rawSegmentReader) nextString() ([8]byte, error) {
	raw, err := s.r.ReadBytes(8)
	if err != nil {
		return [8]byte{}, err
	}
	var seg [8]byte
	copy(seg[:], raw)
	return seg, nil
}

// compressedSegmentReader implements the bias-VM decompression path (§4.4
// "Compressed path"): an 8-byte instruction octet followed by zero or more
// literal segments, one per instruction code 253 in that octet, in order.
type compressedSegmentReader struct {
	r        *storage.Reader
	bias     float64
	fileSpec specials

	instr    [8]byte
	pos      int
	loaded   bool
	sawEOF   bool
}

// nextOpcode returns the next instruction code. ok is false at a natural
// end of the underlying stream (no more octets to read).
func (c *compressedSegmentReader) nextOpcode() (op byte, ok bool, err error) {
	if c.sawEOF {
		return 0, false, nil
	}
	if !c.loaded || c.pos >= 8 {
		raw, err := c.r.ReadBytes(8)
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				c.sawEOF = true
				return 0, false, nil
			}
			return 0, false, err
		}
		copy(c.instr[:], raw)
		c.pos = 0
		c.loaded = true
	}
	op = c.instr[c.pos]
	c.pos++
	return op, true, nil
}

// decodeSegment decodes one 8-byte segment from the instruction stream.
// numeric tells it how to interpret codes 1..251/255 and whether a literal
// segment needs host-order byte-swapping (string bytes are never swapped).
// Code 0 is padding and is skipped (§4.4 "padding; skip"). ok is false at
// end of stream (natural EOF or code 252).
func (c *compressedSegmentReader) decodeSegment(numeric bool) (seg [8]byte, ok bool, err error) {
	op, present, err := c.nextOpcode()
	for err == nil && present && op == 0 {
		op, present, err = c.nextOpcode()
	}
	if err != nil {
		return seg, false, err
	}
	if !present {
		return seg, false, nil
	}
	switch {
	case op == 252:
		return seg, false, nil
	case op >= 1 && op <= 251:
		if !numeric {
			return seg, false, corruptRecord(0, "compression code %d is not valid for a string segment", op)
		}
		return float64Segment(float64(op) - c.bias), true, nil
	case op == 253:
		raw, err := c.r.ReadBytes(8)
		if err != nil {
			return seg, false, wrapErr(KindIO, err, "reading compressed literal segment")
		}
		copy(seg[:], raw)
		if numeric {
			if c.r.Swapped() {
				seg = reverseSegment(seg)
			}
			v := segmentToFloat64(seg)
			if v == c.fileSpec.sysmis {
				return float64Segment(Sysmis), true, nil
			}
		}
		return seg, true, nil
	case op == 254:
		return stringSegment(""), true, nil
	case op == 255:
		if !numeric {
			return seg, false, corruptRecord(0, "compression code 255 is not valid for a string segment")
		}
		return float64Segment(Sysmis), true, nil
	default:
		return seg, false, nil
	}
}

func (c *compressedSegmentReader) nextNumeric() (float64, error) {
	seg, ok, err := c.decodeSegment(true)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, io.EOF
	}
	return segmentToFloat64(seg), nil
}

func (c *compressedSegmentReader) nextString() ([8]byte, error) {
	seg, ok, err := c.decodeSegment(false)
	if err != nil {
		return seg, err
	}
	if !ok {
		return seg, io.EOF
	}
	return seg, nil
}

func segmentToFloat64(seg [8]byte) float64 {
	var bits uint64
	for i := 7; i >= 0; i-- {
		bits = bits<<8 | uint64(seg[i])
	}
	return math.Float64frombits(bits)
}

func reverseSegment(seg [8]byte) [8]byte {
	var out [8]byte
	for i := range seg {
		out[i] = seg[7-i]
	}
	return out
}

// readCase assembles one Case from src, walking dict.Variables in
// declaration order and consuming SegmentCount segments per variable
// (§4.4 "Segment-to-value assembly"). io.EOF from the very first segment of
// the case is end-of-stream; an EOF anywhere after that is a truncated file.
func readCase(dict *Dictionary, src segmentSource) (Case, error) {
	c := make(Case, len(dict.Variables))
	first := true

	for i, v := range dict.Variables {
		if v.IsNumeric() {
			f, err := src.nextNumeric()
			if err != nil {
				if err == io.EOF && first {
					return nil, io.EOF
				}
				if err == io.EOF {
					return nil, newErr(KindCorruptPartialCase, "case truncated mid-record")
				}
				return nil, err
			}
			c[i] = Num(f)
			first = false
			continue
		}

		segs := v.SegmentCount()
		buf := make([]byte, 0, segs*8)
		for s := 0; s < segs; s++ {
			seg, err := src.nextString()
			if err != nil {
				if err == io.EOF && first {
					return nil, io.EOF
				}
				if err == io.EOF {
					return nil, newErr(KindCorruptPartialCase, "case truncated mid-record")
				}
				return nil, err
			}
			buf = append(buf, seg[:]...)
			first = false
		}
		if len(buf) > v.Width {
			buf = buf[:v.Width]
		}
		c[i] = Str(strings.TrimRight(string(buf), " "))
	}
	return c, nil
}

// segmentSink is the write-side counterpart of segmentSource.
type segmentSink interface {
	putNumeric(f float64) error
	putString(seg [8]byte) error
}

// rawSegmentWriter is the uncompressed write path: one WriteFloat64/
// WriteBytes call per segment, always host sentinels (the writer never
// emits file-declared sentinels other than the host's own, §4.3).
type rawSegmentWriter struct {
	w *storage.Writer
}

func (s *rawSegmentWriter) putNumeric(f float64) error { return s.w.WriteFloat64(f) }
func (s *rawSegmentWriter) putString(seg [8]byte) error { return s.w.WriteBytes(seg[:]) }

// compressedSegmentWriter implements the write side of the bias-VM (§4.4
// "Writer state"): opcodes accumulate into an 8-byte octet; any opcode 253
// carries a pending literal that's flushed immediately after the octet.
type compressedSegmentWriter struct {
	w        *storage.Writer
	bias     float64
	octet    [8]byte
	literals [][8]byte
	n        int
}

func newCompressedSegmentWriter(w *storage.Writer) *compressedSegmentWriter {
	return &compressedSegmentWriter{w: w, bias: defaultBias}
}

func (c *compressedSegmentWriter) pushOpcode(op byte, literal *[8]byte) error {
	c.octet[c.n] = op
	if literal != nil {
		c.literals = append(c.literals, *literal)
	}
	c.n++
	if c.n == 8 {
		return c.flush()
	}
	return nil
}

func (c *compressedSegmentWriter) flush() error {
	if c.n == 0 {
		return nil
	}
	for i := c.n; i < 8; i++ {
		c.octet[i] = 0
	}
	if err := c.w.WriteBytes(c.octet[:]); err != nil {
		return err
	}
	for _, lit := range c.literals {
		if err := c.w.WriteBytes(lit[:]); err != nil {
			return err
		}
	}
	c.octet = [8]byte{}
	c.literals = c.literals[:0]
	c.n = 0
	return nil
}

func (c *compressedSegmentWriter) putNumeric(f float64) error {
	if f == Sysmis {
		return c.pushOpcode(255, nil)
	}
	biased := f + c.bias
	if biased == math.Trunc(biased) && biased >= 1 && biased <= 251 {
		return c.pushOpcode(byte(biased), nil)
	}
	lit := float64Segment(f)
	return c.pushOpcode(253, &lit)
}

func (c *compressedSegmentWriter) putString(seg [8]byte) error {
	if seg == blankStringSegment {
		return c.pushOpcode(254, nil)
	}
	lit := seg
	return c.pushOpcode(253, &lit)
}

var blankStringSegment = stringSegment("")

// writeCase disassembles c into segments via sink, in dict.Variables order,
// padding string values to each variable's declared width with ASCII spaces
// and splitting long strings across SegmentCount 8-byte chunks (§4.4
// "Value-to-segment disassembly").
func writeCase(dict *Dictionary, c Case, sink segmentSink) error {
	for i, v := range dict.Variables {
		val := c[i]
		if v.IsNumeric() {
			if err := sink.putNumeric(val.Num); err != nil {
				return err
			}
			continue
		}
		padded := padField(val.Str, v.SegmentCount()*8)
		for s := 0; s < v.SegmentCount(); s++ {
			var seg [8]byte
			copy(seg[:], padded[s*8:s*8+8])
			if err := sink.putString(seg); err != nil {
				return err
			}
		}
	}
	return nil
}
