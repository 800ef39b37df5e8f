package sav

import (
	"strings"

	"github.com/daxplore/spssreader/storage"
)

// machineInfo is the parsed content of record 7 subtype 3 (§4.2, §4.3): the
// product's version triple, its floating-point representation, the
// endianness it claims to have written in, and its character-set code.
// The float representation, the endianness cross-check and the charset code
// are validated; the version is carried through to ReadInfo for diagnostics.
type machineInfo struct {
	version     [3]int32
	floatRep    int32
	endianness  int32
	charset     charsetCode
	hasCharset  bool
	hasSpecials bool
	specials    specials
}

const (
	extMachineInteger = 3
	extMachineFloat   = 4
	extVarDisplay     = 11
	extLongNames      = 13
)

// readExtension consumes one record 7 of any subtype, dispatching known
// subtypes into info/dict and skipping unrecognized ones
// (sfm-read.c:read_extension_record / read_extension_record_of_type).
func readExtension(r *storage.Reader, dict *Dictionary, info *machineInfo, probedSwap bool, warn WarnFunc) error {
	subtype, err := r.ReadInt32()
	if err != nil {
		return wrapErr(KindIO, err, "reading extension subtype")
	}
	size, err := r.ReadInt32()
	if err != nil {
		return wrapErr(KindIO, err, "reading extension element size")
	}
	count, err := r.ReadInt32()
	if err != nil {
		return wrapErr(KindIO, err, "reading extension element count")
	}
	if size < 0 || count < 0 {
		return corruptRecord(7, "extension subtype %d has a negative size or count", subtype)
	}
	total := int64(size) * int64(count)
	if size != 0 && total/int64(size) != int64(count) {
		return newErrf(KindTooLarge, "extension subtype %d declares an overflowing byte count", subtype)
	}

	switch subtype {
	case extMachineInteger:
		return readMachineInteger(r, info, probedSwap, int(size), int(count))
	case extMachineFloat:
		return readMachineFloat(r, info, int(size), int(count))
	case extVarDisplay:
		return readVarDisplay(r, dict, int(size), int(count), warn)
	case extLongNames:
		return readLongNames(r, dict, int(size)*int(count))
	default:
		if warn != nil {
			warn("skipping unrecognized extension record subtype %d", subtype)
		}
		if err := r.Skip(int(total)); err != nil {
			return wrapErr(KindIO, err, "skipping extension subtype")
		}
		return nil
	}
}

// readMachineInteger parses subtype 3: version triple, machine code
// (ignored), declared floating-point representation, a compression code
// (ignored, it only ever restates whether bias is 100), the endianness code,
// the character-set code, and a "are strings padded" flag (ignored).
func readMachineInteger(r *storage.Reader, info *machineInfo, probedSwap bool, size, count int) error {
	if size != 4 || count < 8 {
		return corruptRecord(7, "bad size (%d) or count (%d) for integer record", size, count)
	}
	vals := make([]int32, count)
	for i := range vals {
		v, err := r.ReadInt32()
		if err != nil {
			return wrapErr(KindIO, err, "reading machine integer field")
		}
		vals[i] = v
	}

	// vals: [0-2] version triple, [3] machine code (ignored), [4] float
	// rep, [5] compression code (ignored), [6] endianness, [7] charset.
	info.version = [3]int32{vals[0], vals[1], vals[2]}
	info.floatRep = vals[4]
	info.endianness = vals[6]
	info.charset = charsetCode(vals[7])
	info.hasCharset = true

	if info.floatRep != 1 {
		return newErrf(KindUnsupportedFloatRep, "unsupported floating point representation code %d (only IEEE754 is supported)", info.floatRep)
	}

	// endianness code 1 = big-endian, 2 = little-endian (read_machine_int32_info).
	// storage.Reader's swap flag means "interpret as big-endian", so the two
	// must agree once the file's declared order is translated to that sense.
	declaredSwap := info.endianness == 1
	if declaredSwap != probedSwap {
		return newErrf(KindEndiannessMismatch, "file declares endianness code %d, which disagrees with the byte order probed from the header", info.endianness)
	}

	if !info.charset.valid() {
		return newErrf(KindUnsupportedCharset, "unsupported character set code %d", info.charset)
	}
	return nil
}

// readMachineFloat parses subtype 4: the file's sysmis/highest/lowest
// sentinel triple. A mismatch against host sentinels is not an error; the
// caller remembers the file's values and remaps them during case decoding
// (§4.2, §4.4).
func readMachineFloat(r *storage.Reader, info *machineInfo, size, count int) error {
	if size != 8 || count != 3 {
		return corruptRecord(7, "bad size (%d) or count (%d) for float record", size, count)
	}
	sysmis, err := r.ReadFloat64()
	if err != nil {
		return wrapErr(KindIO, err, "reading file sysmis value")
	}
	highest, err := r.ReadFloat64()
	if err != nil {
		return wrapErr(KindIO, err, "reading file highest value")
	}
	lowest, err := r.ReadFloat64()
	if err != nil {
		return wrapErr(KindIO, err, "reading file lowest value")
	}
	info.specials = specials{sysmis: sysmis, highest: highest, lowest: lowest}
	info.hasSpecials = true
	return nil
}

// readVarDisplay parses subtype 11: a measure/width/alignment triple per
// variable (the older two-element measure/alignment layout is not
// recognised), applied to the
// dictionary's head variables in declaration order (sfm-read.c's
// read_display_parameters). A count that doesn't divide evenly by the
// expected stride, or that names more variables than exist, is a soft
// failure: warn and skip the whole block rather than hard-erroring, since
// the data itself is otherwise unaffected.
func readVarDisplay(r *storage.Reader, dict *Dictionary, size, count int, warn WarnFunc) error {
	if size != 4 {
		return corruptRecord(7, "bad size (%d) for variable display record", size)
	}
	nVars := count / 3
	if count%3 != 0 || nVars > len(dict.Variables) {
		if warn != nil {
			warn("ignoring variable display record: element count %d is not a multiple of 3 consistent with %d variables", count, len(dict.Variables))
		}
		return skipInt32s(r, count)
	}

	for i := 0; i < nVars; i++ {
		v := &dict.Variables[i]
		measure, err := r.ReadInt32()
		if err != nil {
			return wrapErr(KindIO, err, "reading variable measure")
		}
		v.Measure = Measure(measure)

		width, err := r.ReadInt32()
		if err != nil {
			return wrapErr(KindIO, err, "reading variable display width")
		}
		v.Columns = int(width)

		align, err := r.ReadInt32()
		if err != nil {
			return wrapErr(KindIO, err, "reading variable alignment")
		}
		v.Alignment = Alignment(align)
	}
	return nil
}

func skipInt32s(r *storage.Reader, count int) error {
	if err := r.Skip(count * 4); err != nil {
		return wrapErr(KindIO, err, "skipping variable display record")
	}
	return nil
}

// readLongNames parses subtype 13: a tab-separated list of
// short=long pairs (sfm-read.c's case 13 handler). Each long name replaces
// the corresponding variable's short-name-derived Name, and the variable is
// moved to the position its entry occupies in the blob. An entry without
// '=' is a hard KindCorruptRecord error, not a warning.
func readLongNames(r *storage.Reader, dict *Dictionary, length int) error {
	raw, err := r.ReadBytes(length)
	if err != nil {
		return wrapErr(KindIO, err, "reading long variable name map")
	}

	pairs := strings.Split(string(raw), "\t")
	seenLong := make(map[string]bool, len(pairs))
	for idx, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			return corruptRecord(7, "malformed long variable name entry %q", pair)
		}
		short, long := pair[:eq], pair[eq+1:]
		if long == "" {
			return corruptRecord(7, "empty long variable name for short name %q", short)
		}
		if seenLong[long] {
			return newErrf(KindDuplicateVariableName, "duplicate long variable name %q", long)
		}
		seenLong[long] = true

		v, ok := dict.VariableByShortName(short)
		if !ok {
			return corruptRecord(7, "long variable name map refers to unknown short name %q", short)
		}

		oldName := v.Name
		if long != oldName {
			if err := dict.Rename(oldName, long); err != nil {
				return err
			}
			v, _ = dict.VariableByShortName(short)
		}
		v.ShortName = short

		if err := dict.Reorder(long, idx); err != nil {
			return err
		}
	}
	return nil
}

// writeMachineRecords emits the always-present subtype 3 (machine integer
// info) and subtype 4 (sentinel triple) records, combined into a single
// record 7 pair the way sfm_open_writer's write_machine_integer_info and
// write_machine_float_info do back to back.
func writeMachineRecords(w *storage.Writer, opts WriteOptions) error {
	if err := w.WriteInt32(7); err != nil {
		return err
	}
	if err := w.WriteInt32(extMachineInteger); err != nil {
		return err
	}
	if err := w.WriteInt32(4); err != nil {
		return err
	}
	if err := w.WriteInt32(8); err != nil {
		return err
	}
	// version triple, machine code, float rep (IEEE754), compression code,
	// endianness, charset -- matching read_machine_int32_info's data[0..7].
	fields := [8]int32{1, 0, 0, 0, 1, 0, writerEndianness, int32(charsetASCII8)}
	for _, f := range fields {
		if err := w.WriteInt32(f); err != nil {
			return err
		}
	}

	if err := w.WriteInt32(7); err != nil {
		return err
	}
	if err := w.WriteInt32(extMachineFloat); err != nil {
		return err
	}
	if err := w.WriteInt32(8); err != nil {
		return err
	}
	if err := w.WriteInt32(3); err != nil {
		return err
	}
	h := hostSpecials()
	if err := w.WriteFloat64(h.sysmis); err != nil {
		return err
	}
	if err := w.WriteFloat64(h.highest); err != nil {
		return err
	}
	return w.WriteFloat64(h.lowest)
}

// writerEndianness is the byte-order code this package always declares in
// the files it writes, using sfm-write.c's endian.c convention (1 =
// big-endian, 2 = little-endian). storage.Writer always emits little-endian
// output regardless of host order, so this is a constant, not a probe.
const writerEndianness int32 = 2

// writeVarDisplay emits subtype 11: a measure/width/alignment triple per
// head variable, always present (sfm-write.c's write_variable_display_parameters).
func writeVarDisplay(w *storage.Writer, dict *Dictionary) error {
	if err := w.WriteInt32(7); err != nil {
		return err
	}
	if err := w.WriteInt32(extVarDisplay); err != nil {
		return err
	}
	if err := w.WriteInt32(4); err != nil {
		return err
	}
	if err := w.WriteInt32(int32(len(dict.Variables) * 3)); err != nil {
		return err
	}
	for i := range dict.Variables {
		v := &dict.Variables[i]
		if err := w.WriteInt32(int32(v.Measure)); err != nil {
			return err
		}
		columns := v.Columns
		if columns == 0 {
			columns = defaultDisplayWidth(v)
		}
		if err := w.WriteInt32(int32(columns)); err != nil {
			return err
		}
		if err := w.WriteInt32(int32(v.Alignment)); err != nil {
			return err
		}
	}
	return nil
}

func defaultDisplayWidth(v *Variable) int {
	if v.IsNumeric() {
		return int(v.Print.Width) + 2
	}
	if v.Width > 32 {
		return 32
	}
	return v.Width
}

// writeLongNames emits subtype 13 (conditional on the caller targeting
// format version 3+): the short=long map in dictionary order, matching
// sfm-write.c's write_longvar_table.
func writeLongNames(w *storage.Writer, dict *Dictionary, shortNames map[string]string) error {
	var b strings.Builder
	for i, v := range dict.Variables {
		if i > 0 {
			b.WriteByte('\t')
		}
		short := shortNames[v.Name]
		if short == "" {
			short = v.ShortName
		}
		b.WriteString(short)
		b.WriteByte('=')
		b.WriteString(v.Name)
	}
	blob := b.String()

	if err := w.WriteInt32(7); err != nil {
		return err
	}
	if err := w.WriteInt32(extLongNames); err != nil {
		return err
	}
	if err := w.WriteInt32(1); err != nil {
		return err
	}
	if err := w.WriteInt32(int32(len(blob))); err != nil {
		return err
	}
	return w.WriteBytes([]byte(blob))
}
