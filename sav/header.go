package sav

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/daxplore/spssreader/storage"
)

const (
	magic      = "$FL2"
	headerSize = 176

	// productPrefix opens the header's product-name banner; OpenWriter
	// writes it and readHeader strips it from ReadInfo.ProductName.
	productPrefix = "@(#) SPSS DATA FILE "
)

// header mirrors the 176-byte fixed record every system file opens with
// (§4.2): a magic, a free-form product-name banner, a layout code whose
// value (always 2) doubles as the endianness probe, sizing/compression
// flags, and a handful of free-text fields.
type header struct {
	productName  string
	layoutCode   int32
	caseSize     int32 // nominal count of 8-byte segments per case
	compressed   bool
	weightIndex  int32 // 1-based index of the weight variable, 0 for none
	caseCount    int32 // -1 if unknown at write time
	bias         float64
	creationDate string
	creationTime string
	fileLabel    string
}

// ReadInfo reports everything a caller might want to know about an opened
// file beyond its dictionary and cases: the banner fields from the header
// plus the machine/charset facts recorded in the extension records (§6.2).
type ReadInfo struct {
	ProductName  string
	CreationDate string
	CreationTime string
	FileLabel    string
	Compressed   bool
	BigEndian    bool
	Version      [3]int32
	FloatFormat  string
	Charset      string
	// CaseCount is the header's declared case count, or -1 if the writer
	// that produced the file didn't know it up front (§6.1/§6.2).
	CaseCount int32
}

// probeEndianness reads the layout-code field assuming little-endian first;
// a system file's layout code is always 2, so whichever byte order yields 2
// is the file's actual order. This mirrors read_header's approach of
// reading the raw bytes once and testing both interpretations rather than
// trusting a separate "this file is big-endian" flag.
func probeEndianness(raw [4]byte) (swap bool, ok bool) {
	le := int32(raw[0]) | int32(raw[1])<<8 | int32(raw[2])<<16 | int32(raw[3])<<24
	if le == 2 {
		return false, true
	}
	be := int32(raw[3]) | int32(raw[2])<<8 | int32(raw[1])<<16 | int32(raw[0])<<24
	if be == 2 {
		return true, true
	}
	return false, false
}

// readHeader consumes the 176-byte header from r, auto-detecting byte
// order from the layout-code field and leaving r.SetSwap configured for
// everything that follows (§4.2).
func readHeader(r *storage.Reader) (header, error) {
	var h header

	magicBytes, err := r.ReadBytes(4)
	if err != nil {
		return h, wrapErr(KindIO, err, "reading magic")
	}
	if string(magicBytes) != magic {
		return h, newErrf(KindBadMagic, "expected %q, got %q", magic, magicBytes)
	}

	prodBytes, err := r.ReadBytes(60)
	if err != nil {
		return h, wrapErr(KindIO, err, "reading product name")
	}
	h.productName = strings.TrimPrefix(trimField(prodBytes), productPrefix)

	layoutRaw, err := r.ReadBytes(4)
	if err != nil {
		return h, wrapErr(KindIO, err, "reading layout code")
	}
	var probe [4]byte
	copy(probe[:], layoutRaw)
	swap, ok := probeEndianness(probe)
	if !ok {
		return h, newErrf(KindBadLayout, "layout code is not 2 under either byte order")
	}
	r.SetSwap(swap)
	h.layoutCode = 2

	if h.caseSize, err = r.ReadInt32(); err != nil {
		return h, wrapErr(KindIO, err, "reading nominal case size")
	}
	compressedFlag, err := r.ReadInt32()
	if err != nil {
		return h, wrapErr(KindIO, err, "reading compression flag")
	}
	h.compressed = compressedFlag != 0

	if h.weightIndex, err = r.ReadInt32(); err != nil {
		return h, wrapErr(KindIO, err, "reading weight index")
	}
	if h.caseCount, err = r.ReadInt32(); err != nil {
		return h, wrapErr(KindIO, err, "reading case count")
	}
	if h.bias, err = r.ReadFloat64(); err != nil {
		return h, wrapErr(KindIO, err, "reading compression bias")
	}

	dateBytes, err := r.ReadBytes(9)
	if err != nil {
		return h, wrapErr(KindIO, err, "reading creation date")
	}
	h.creationDate = trimField(dateBytes)

	timeBytes, err := r.ReadBytes(8)
	if err != nil {
		return h, wrapErr(KindIO, err, "reading creation time")
	}
	h.creationTime = trimField(timeBytes)

	labelBytes, err := r.ReadBytes(64)
	if err != nil {
		return h, wrapErr(KindIO, err, "reading file label")
	}
	h.fileLabel = trimField(labelBytes)

	if err := r.Skip(3); err != nil {
		return h, wrapErr(KindIO, err, "skipping header padding")
	}

	return h, nil
}

// writeHeader emits the 176-byte header with caseCount left as -1; the
// writer back-patches the real count on Close via storage.Writer.PatchAt
// (§4.3 "the case count is back-patched").
func writeHeader(w *storage.Writer, h header) error {
	if err := w.WriteBytes([]byte(magic)); err != nil {
		return errors.Wrap(err, "writing magic")
	}
	if err := w.WriteBytes(padField(h.productName, 60)); err != nil {
		return errors.Wrap(err, "writing product name")
	}
	if err := w.WriteInt32(2); err != nil {
		return errors.Wrap(err, "writing layout code")
	}
	if err := w.WriteInt32(h.caseSize); err != nil {
		return errors.Wrap(err, "writing nominal case size")
	}
	compressedFlag := int32(0)
	if h.compressed {
		compressedFlag = 1
	}
	if err := w.WriteInt32(compressedFlag); err != nil {
		return errors.Wrap(err, "writing compression flag")
	}
	if err := w.WriteInt32(h.weightIndex); err != nil {
		return errors.Wrap(err, "writing weight index")
	}
	if err := w.WriteInt32(-1); err != nil {
		return errors.Wrap(err, "writing placeholder case count")
	}
	if err := w.WriteFloat64(h.bias); err != nil {
		return errors.Wrap(err, "writing compression bias")
	}
	if err := w.WriteBytes(padField(h.creationDate, 9)); err != nil {
		return errors.Wrap(err, "writing creation date")
	}
	if err := w.WriteBytes(padField(h.creationTime, 8)); err != nil {
		return errors.Wrap(err, "writing creation time")
	}
	if err := w.WriteBytes(padField(h.fileLabel, 64)); err != nil {
		return errors.Wrap(err, "writing file label")
	}
	if err := w.WriteBytes([]byte{0, 0, 0}); err != nil {
		return errors.Wrap(err, "writing header padding")
	}
	return nil
}

// caseCountOffset is the byte offset of the case-count int32 within the
// header, used by Writer.Close to back-patch the real count.
const caseCountOffset = 4 + 60 + 4 + 4 + 4 + 4

func stampCreation() (date, t string) {
	now := time.Now()
	return now.Format("02 Jan 06"), now.Format("15:04:05")
}

func trimField(b []byte) string {
	return strings.TrimRight(string(b), " \x00")
}

func padField(s string, width int) []byte {
	out := make([]byte, width)
	for i := range out {
		out[i] = ' '
	}
	copy(out, s)
	if len(s) > width {
		copy(out, s[:width])
	}
	return out
}
