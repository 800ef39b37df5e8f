package sav

import (
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/daxplore/spssreader/storage"
)

const (
	shortNameLen  = 8
	maxShortLabel = 8 // missing-value discretes and value-label keys on strings
)

// varByIndex is the per-segment lookup table read_variables builds: each
// entry is the index into dict.Variables of the head variable occupying
// that segment, or -1 for a long-string continuation segment, which cannot
// be the target of a weight index or a value-label index (§4.3). Indices
// are stored rather than *Variable pointers because dict.Variables is a
// []Variable value slice: AddVariable's append can reallocate the backing
// array, which would detach any pointer captured before the reallocation.
type varByIndex []int

const continuationIndex = -1

// readVariables consumes the contiguous run of tag-2 records that follows
// the header, populating dict and returning a segment-indexed lookup table
// for the value-label and weight-index cross-references that follow
// (sfm-read.c:read_variables).
func readVariables(r *storage.Reader, dict *Dictionary, warn WarnFunc) (varByIndex, error) {
	var byIdx varByIndex
	longStringRemaining := 0

	for {
		tag, err := r.ReadInt32()
		if err != nil {
			return nil, wrapErr(KindIO, err, "reading record tag")
		}
		if tag != 2 {
			if err := r.Unread(4); err != nil {
				return nil, wrapErr(KindIO, err, "unreading non-variable tag")
			}
			break
		}

		typ, err := r.ReadInt32()
		if err != nil {
			return nil, wrapErr(KindIO, err, "reading variable type")
		}
		hasLabel, err := r.ReadInt32()
		if err != nil {
			return nil, wrapErr(KindIO, err, "reading has-label flag")
		}
		nMissing, err := r.ReadInt32()
		if err != nil {
			return nil, wrapErr(KindIO, err, "reading missing-value count")
		}
		printRaw, err := r.ReadInt32()
		if err != nil {
			return nil, wrapErr(KindIO, err, "reading print format")
		}
		writeRaw, err := r.ReadInt32()
		if err != nil {
			return nil, wrapErr(KindIO, err, "reading write format")
		}
		nameBytes, err := r.ReadBytes(shortNameLen)
		if err != nil {
			return nil, wrapErr(KindIO, err, "reading variable name")
		}

		if longStringRemaining > 0 {
			if typ != -1 {
				return nil, corruptRecord(2, "string variable does not have the proper number of continuation records")
			}
			byIdx = append(byIdx, continuationIndex)
			longStringRemaining--
			continue
		}
		if typ == -1 {
			return nil, corruptRecord(2, "superfluous long string continuation record")
		}
		if typ < 0 || typ > 255 {
			return nil, corruptRecord(2, "bad variable type code %d", typ)
		}
		if hasLabel != 0 && hasLabel != 1 {
			return nil, corruptRecord(2, "variable label indicator is not 0 or 1")
		}
		if nMissing < -3 || nMissing > 3 || nMissing == -1 {
			return nil, corruptRecord(2, "missing value indicator %d is not -3, -2, 0, 1, 2 or 3", nMissing)
		}

		name, err := canonicalizeName(nameBytes, warn)
		if err != nil {
			return nil, err
		}

		v := Variable{Name: name, ShortName: name, Width: int(typ)}

		if hasLabel == 1 {
			label, err := readPaddedLabel(r)
			if err != nil {
				return nil, err
			}
			v.Label = label
		}

		if nMissing != 0 {
			mv, err := readMissingValues(r, nMissing, v.IsNumeric())
			if err != nil {
				return nil, err
			}
			v.Missing = mv
		}

		print, err := unpackFormat(printRaw)
		if err != nil {
			if warn != nil {
				warn("variable %q: %v, using default format", v.Name, err)
			}
			print = defaultFormatFor(v)
		}
		write, err := unpackFormat(writeRaw)
		if err != nil {
			if warn != nil {
				warn("variable %q: %v, using default format", v.Name, err)
			}
			write = defaultFormatFor(v)
		}
		v.Print = checkFormat(print, v.IsNumeric(), uint8(v.Width), warn)
		v.Write = checkFormat(write, v.IsNumeric(), uint8(v.Width), warn)

		if err := dict.AddVariable(v); err != nil {
			return nil, err
		}
		idx := len(dict.Variables) - 1
		byIdx = append(byIdx, idx)

		longStringRemaining = dict.Variables[idx].SegmentCount() - 1
	}

	if longStringRemaining != 0 {
		return nil, corruptRecord(2, "long string continuation records omitted at end of dictionary")
	}
	return byIdx, nil
}

func defaultFormatFor(v Variable) Format {
	if v.IsNumeric() {
		return DefaultNumericFormat
	}
	return DefaultStringFormat(uint8(v.Width))
}

// canonicalizeName upcases a-z bytes with a warning, validates the first
// byte is a letter/@/#, and trims trailing space padding, per read_variables'
// character-by-character scan.
func canonicalizeName(raw []byte, warn WarnFunc) (string, error) {
	end := len(raw)
	for end > 0 && raw[end-1] == ' ' {
		end--
	}
	if end == 0 {
		return "", corruptRecord(2, "empty variable name")
	}

	out := make([]byte, end)
	first := raw[0]
	if !isAlpha(first) && first != '@' && first != '#' {
		return "", corruptRecord(2, "variable name begins with invalid character")
	}
	if isLower(first) {
		if warn != nil {
			warn("variable name begins with lowercase letter %c", first)
		}
	}
	if first == '#' {
		if warn != nil {
			warn("variable name begins with octothorpe ('#'); scratch variables should not appear in system files")
		}
	}
	out[0] = toUpper(first)

	for i := 1; i < end; i++ {
		c := raw[i]
		switch {
		case isLower(c):
			if warn != nil {
				warn("variable name character %d is lowercase letter %c", i+1, c)
			}
			out[i] = toUpper(c)
		case isAlnum(c) || c == '.' || c == '@' || c == '#' || c == '$' || c == '_':
			out[i] = c
		default:
			return "", corruptRecord(2, "character %q is not valid in a variable name", c)
		}
	}
	return string(out), nil
}

func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isLower(c byte) bool { return c >= 'a' && c <= 'z' }
func isAlnum(c byte) bool { return isAlpha(c) || (c >= '0' && c <= '9') }
func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

// readPaddedLabel reads a variable label: a 32-bit length followed by
// ceil(len/4)*4 bytes, the tail space-padded (§4.3).
func readPaddedLabel(r *storage.Reader) (string, error) {
	length, err := r.ReadInt32()
	if err != nil {
		return "", wrapErr(KindIO, err, "reading label length")
	}
	if length < 0 || length > 255 {
		return "", corruptRecord(2, "variable label length %d out of range", length)
	}
	padded := roundUp4(int(length))
	buf, err := r.ReadBytes(padded)
	if err != nil {
		return "", wrapErr(KindIO, err, "reading label text")
	}
	return string(buf[:length]), nil
}

func roundUp4(n int) int { return (n + 3) &^ 3 }

// readMissingValues reads |nMissing| 8-byte slots, interpreting a negative
// count as "first two slots are a range" per §4.3. A range is only legal on
// numeric variables; discrete slots are reinterpreted as strings for string
// variables, exactly as read_variables does via its NUMERIC/ALPHA branch.
func readMissingValues(r *storage.Reader, nMissing int32, numeric bool) (MissingValues, error) {
	if !numeric && nMissing < 0 {
		return MissingValues{}, corruptRecord(2, "string variable may not have missing values specified as a range")
	}
	count := int(nMissing)
	if count < 0 {
		count = -count
	}

	readOne := func() (Value, float64, error) {
		if numeric {
			f, err := r.ReadFloat64()
			return Num(f), f, err
		}
		raw, err := r.ReadBytes(8)
		if err != nil {
			return Value{}, 0, err
		}
		return Str(strings.TrimRight(string(raw), " ")), 0, nil
	}

	values := make([]Value, count)
	nums := make([]float64, count)
	for i := range values {
		v, f, err := readOne()
		if err != nil {
			return MissingValues{}, wrapErr(KindIO, err, "reading missing value")
		}
		values[i], nums[i] = v, f
	}

	var mv MissingValues
	if nMissing > 0 {
		mv.Discrete = values
		return mv, nil
	}

	lo, hi := nums[0], nums[1]
	switch {
	case lo == SecondLowest:
		mv.RangeLo, mv.RangeHi = SecondLowest, hi
	case hi == Highest:
		mv.RangeLo, mv.RangeHi = lo, Highest
	default:
		mv.RangeLo, mv.RangeHi = lo, hi
	}
	mv.HasRange = true
	if nMissing == -3 {
		mv.Discrete = []Value{values[2]}
	}
	return mv, nil
}

// writeVariables emits one tag-2 record per variable (plus synthetic
// continuation records for long strings), in sfm-write.c's write_variable
// shape.
func writeVariables(w *storage.Writer, dict *Dictionary) error {
	for i := range dict.Variables {
		if err := writeVariable(w, &dict.Variables[i]); err != nil {
			return errors.Wrapf(err, "writing variable %q", dict.Variables[i].Name)
		}
	}
	return nil
}

func writeVariable(w *storage.Writer, v *Variable) error {
	hasLabel := int32(0)
	if v.Label != "" {
		hasLabel = 1
	}

	nMissing, missingValues := packMissingValues(v.Missing, v.IsNumeric())

	if err := w.WriteInt32(2); err != nil {
		return err
	}
	if err := w.WriteInt32(int32(v.Width)); err != nil {
		return err
	}
	if err := w.WriteInt32(hasLabel); err != nil {
		return err
	}
	if err := w.WriteInt32(nMissing); err != nil {
		return err
	}
	if err := w.WriteInt32(v.Print.pack()); err != nil {
		return err
	}
	if err := w.WriteInt32(v.Write.pack()); err != nil {
		return err
	}
	if err := w.WriteBytes(padField(v.ShortName, shortNameLen)); err != nil {
		return err
	}

	if v.Label != "" {
		label := v.Label
		if len(label) > 255 {
			label = label[:255]
		}
		length := int32(len(label))
		padded := roundUp4(len(label))
		if err := w.WriteInt32(length); err != nil {
			return err
		}
		if err := w.WriteBytes(padField(label, padded)); err != nil {
			return err
		}
	}

	for _, seg := range missingValues {
		if err := w.WriteBytes(seg[:]); err != nil {
			return err
		}
	}

	if v.IsLongString() {
		pad := v.SegmentCount() - 1
		for i := 0; i < pad; i++ {
			if err := w.WriteInt32(2); err != nil {
				return err
			}
			if err := w.WriteInt32(-1); err != nil {
				return err
			}
			if err := w.WriteInt32(0); err != nil {
				return err
			}
			if err := w.WriteInt32(0); err != nil {
				return err
			}
			if err := w.WriteInt32(0); err != nil {
				return err
			}
			if err := w.WriteInt32(0); err != nil {
				return err
			}
			if err := w.WriteBytes(make([]byte, shortNameLen)); err != nil {
				return err
			}
		}
	}

	return nil
}

// packMissingValues mirrors write_variable's missing-value packing: a range
// (with LOWEST/HIGHEST substituted for their file sentinels) followed by
// zero or one extra discrete, or 1-3 plain discretes, returning the on-disk
// n_missing_values code (negated when a range is present) and the raw
// 8-byte segments to follow the fixed variable record.
func packMissingValues(m MissingValues, numeric bool) (int32, [][8]byte) {
	if m.Empty() {
		return 0, nil
	}
	var segs [][8]byte
	if m.HasRange {
		segs = append(segs, float64Segment(m.RangeLo), float64Segment(m.RangeHi))
	}
	for _, d := range m.Discrete {
		if numeric {
			segs = append(segs, float64Segment(d.Num))
		} else {
			segs = append(segs, stringSegment(d.Str))
		}
	}
	n := int32(len(segs))
	if m.HasRange {
		n = -n
	}
	return n, segs
}

// float64Segment lays out f as 8 little-endian bytes, matching
// how storage.Writer.WriteFloat64 would encode it without the swap flag.
func float64Segment(f float64) [8]byte {
	var buf [8]byte
	bits := math.Float64bits(f)
	for i := range buf {
		buf[i] = byte(bits >> (8 * i))
	}
	return buf
}

// stringSegment right-pads s with ASCII spaces to 8 bytes, truncating if
// longer (missing-value discretes on strings are restricted to width <= 8
// by the format itself, §3).
func stringSegment(s string) [8]byte {
	var buf [8]byte
	for i := range buf {
		buf[i] = ' '
	}
	copy(buf[:], s)
	return buf
}
