package sav

// FormatType enumerates the SPSS print/write format codes this module
// recognizes. The numeric values match the on-disk SPSS format codes
// exactly (the packed print/write fields in a tag-2 record carry one of
// these in their high byte, §4.3). A code with no constant here converts to
// an unnamed FormatType, not to FormatUnknown, and valid rejects it.
type FormatType int32

const (
	FormatUnknown  FormatType = 0
	FormatA        FormatType = 1 // string
	FormatAHex     FormatType = 2 // string, hex display
	FormatComma    FormatType = 3
	FormatDollar   FormatType = 4
	FormatF        FormatType = 5 // plain numeric
	FormatIB       FormatType = 6
	FormatPIBHex   FormatType = 7
	FormatP        FormatType = 8
	FormatPIB      FormatType = 9
	FormatPK       FormatType = 10
	FormatRB       FormatType = 11
	FormatRBHex    FormatType = 12
	FormatZ        FormatType = 13
	FormatN        FormatType = 14
	FormatE        FormatType = 15
	FormatDate     FormatType = 16
	FormatTime     FormatType = 17
	FormatDateTime FormatType = 18
	FormatADate    FormatType = 19
	FormatJDate    FormatType = 20
	FormatDTime    FormatType = 21
	FormatWkday    FormatType = 22
	FormatMonth    FormatType = 23
	FormatMoyr     FormatType = 24
	FormatQyr      FormatType = 25
	FormatWkyr     FormatType = 26
	FormatPct      FormatType = 27
	FormatDot      FormatType = 28
	FormatEDate    FormatType = 34
	FormatSDate    FormatType = 35
)

// IsString reports whether a format type is only valid on string variables.
func (t FormatType) IsString() bool {
	return t == FormatA || t == FormatAHex
}

// valid reports whether t is one of the format codes this module knows
// about. Codes outside this set are rejected with KindBadFormatSpec, per
// PSPP's translate_fmt returning -1 for an unrecognized byte.
func (t FormatType) valid() bool {
	switch t {
	case FormatA, FormatAHex, FormatComma, FormatDollar, FormatF, FormatIB,
		FormatPIBHex, FormatP, FormatPIB, FormatPK, FormatRB, FormatRBHex,
		FormatZ, FormatN, FormatE, FormatDate, FormatTime, FormatDateTime,
		FormatADate, FormatJDate, FormatDTime, FormatWkday, FormatMonth,
		FormatMoyr, FormatQyr, FormatWkyr, FormatPct, FormatDot, FormatEDate,
		FormatSDate:
		return true
	default:
		return false
	}
}

// Format is a print or write format specifier: a type, a field width, and
// (for numeric types) a count of decimal digits.
type Format struct {
	Type     FormatType
	Width    uint8
	Decimals uint8
}

// DefaultNumericFormat is F8.2, PSPP's fallback when a variable's stored
// format spec fails validation (f8_2 in sfm-read.c:parse_format_spec).
var DefaultNumericFormat = Format{Type: FormatF, Width: 8, Decimals: 2}

// DefaultStringFormat returns an A<width> format, PSPP's fallback for
// invalid string format specs.
func DefaultStringFormat(width uint8) Format {
	return Format{Type: FormatA, Width: width}
}

// pack encodes a Format into the on-disk 32-bit layout: (type<<16)|(width<<8)|decimals.
func (f Format) pack() int32 {
	return int32(f.Type)<<16 | int32(f.Width)<<8 | int32(f.Decimals)
}

// unpackFormat decodes the on-disk 32-bit layout back into a Format,
// returning an error if the type byte isn't recognized (§9 parse_format_spec).
func unpackFormat(raw int32) (Format, error) {
	t := FormatType((raw >> 16) & 0xff)
	if !t.valid() {
		return Format{}, newErrf(KindBadFormatSpec, "unrecognized format type code %d", t)
	}
	return Format{
		Type:     t,
		Width:    uint8((raw >> 8) & 0xff),
		Decimals: uint8(raw & 0xff),
	}, nil
}

// checkFormat validates that a format's string-ness agrees with the
// variable's type (§4.3's parse_format_spec cross-check), falling back to a
// sane default (with a warning) rather than erroring, matching PSPP.
func checkFormat(f Format, numeric bool, width uint8, warn WarnFunc) Format {
	if f.Type.IsString() == numeric {
		if warn != nil {
			warn("format type %d does not match variable type, substituting default", f.Type)
		}
		if numeric {
			return DefaultNumericFormat
		}
		return DefaultStringFormat(width)
	}
	return f
}
