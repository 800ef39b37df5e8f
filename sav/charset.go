package sav

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// charsetCode identifies the on-disk character-representation code carried
// in record 7 subtype 3's eighth element (§4.2): 1=EBCDIC, 2=7-bit ASCII,
// 3=8-bit ASCII, 4=DEC Kanji. Only 2 and 3 are accepted; everything else is
// KindUnsupportedCharset.
type charsetCode int32

const (
	charsetEBCDIC   charsetCode = 1
	charsetASCII7   charsetCode = 2
	charsetASCII8   charsetCode = 3
	charsetDECKanji charsetCode = 4
)

func (c charsetCode) valid() bool { return c == charsetASCII7 || c == charsetASCII8 }

func (c charsetCode) String() string {
	switch c {
	case charsetEBCDIC:
		return "EBCDIC"
	case charsetASCII7:
		return "7-bit ASCII"
	case charsetASCII8:
		return "8-bit ASCII"
	case charsetDECKanji:
		return "DEC Kanji"
	default:
		return "unknown"
	}
}

// checkCharsetClean warns (never errors, to stay byte-exact with PSPP's
// tolerant behavior, §4.2) when text that is supposed to be 7-bit-clean
// ASCII under a declared charset code of 2 contains an 8th-bit-set byte.
// Charset code 3 (8-bit ASCII) is checked against the ISO-8859-1 table
// (the closest real 8-bit Western-text table in the ecosystem) purely to
// catch bytes that don't even decode as Latin-1, which would indicate the
// file actually carries some other encoding entirely.
func checkCharsetClean(code charsetCode, field, text string, warn WarnFunc) {
	if warn == nil || text == "" {
		return
	}
	switch code {
	case charsetASCII7:
		for i := 0; i < len(text); i++ {
			if text[i] >= 0x80 {
				warn("%s contains non-ASCII byte 0x%02x under a declared 7-bit charset", field, text[i])
				return
			}
		}
	case charsetASCII8:
		dec := charmap.ISO8859_1.NewDecoder()
		if _, err := dec.String(text); err != nil {
			warn("%s does not decode cleanly as 8-bit ASCII/Latin-1: %v", field, err)
		}
	}
}

// checkDictionaryCharset runs checkCharsetClean over every free-text field a
// dictionary carries -- variable labels, the file label, and document lines
// -- once the file's declared charset code is known (record 7 subtype 3,
// read only after all tag-2/tag-6 text has already been parsed, §4.2).
func checkDictionaryCharset(dict *Dictionary, code charsetCode, warn WarnFunc) {
	if dict.Label != "" {
		checkCharsetClean(code, "file label", dict.Label, warn)
	}
	for _, line := range dict.Documents {
		checkCharsetClean(code, "document line", line, warn)
	}
	for i := range dict.Variables {
		v := &dict.Variables[i]
		checkCharsetClean(code, fmt.Sprintf("label of variable %q", v.Name), v.Label, warn)
		for _, label := range v.Labels {
			checkCharsetClean(code, fmt.Sprintf("value label on variable %q", v.Name), label, warn)
		}
	}
}
