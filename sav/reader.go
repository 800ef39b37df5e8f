package sav

import (
	"io"
	"os"

	"github.com/daxplore/spssreader/storage"
)

// Reader streams a system file's dictionary and case data
// (sfm-read.c:sfm_open_reader / sfm_read_case, generalized per §4.5's
// Opened → HeaderParsed → VariablesParsed → ExtensionsDrained →
// StreamingCases state machine).
type Reader struct {
	f      *os.File
	r      *storage.Reader
	dict   *Dictionary
	info   ReadInfo
	src    segmentSource
	closed bool
}

// OpenReader parses f's header, dictionary, and extension records, leaving
// the file positioned at the start of the case stream. On any hard error
// the file is closed and (nil, nil, nil, error) is returned.
func OpenReader(f *os.File) (*Reader, *Dictionary, *ReadInfo, error) {
	warn := DefaultWarnFunc
	r := storage.NewReader(f)

	hdr, err := readHeader(r)
	if err != nil {
		f.Close()
		return nil, nil, nil, err
	}
	if hdr.bias != defaultBias && warn != nil {
		warn("compression bias is %g, not the conventional %g", hdr.bias, defaultBias)
	}

	dict := NewDictionary()
	dict.Label = hdr.fileLabel
	byIdx, err := readVariables(r, dict, warn)
	if err != nil {
		f.Close()
		return nil, nil, nil, err
	}

	if hdr.weightIndex != 0 {
		if hdr.weightIndex < 1 || int(hdr.weightIndex) > len(byIdx) {
			f.Close()
			return nil, nil, nil, corruptRecord(2, "weight index %d is not between 1 and %d", hdr.weightIndex, len(byIdx))
		}
		segIdx := byIdx[hdr.weightIndex-1]
		if segIdx == continuationIndex || !dict.Variables[segIdx].IsNumeric() {
			f.Close()
			return nil, nil, nil, newErrf(KindWeightInvalid, "weight index %d does not name a numeric variable", hdr.weightIndex)
		}
		// The tag-7 subtype-13 loop below may still rename this variable to
		// its long name; Dictionary.Rename keeps dict.Weight in sync with
		// that rename (§4.3 "the weight index... indexes a numeric variable").
		dict.Weight = dict.Variables[segIdx].Name
	}

	machine := machineInfo{charset: charsetASCII8}

loop:
	for {
		tag, err := r.ReadInt32()
		if err != nil {
			f.Close()
			return nil, nil, nil, wrapErr(KindIO, err, "reading record tag")
		}
		switch tag {
		case 3:
			if err := readValueLabels(r, dict, byIdx, warn); err != nil {
				f.Close()
				return nil, nil, nil, err
			}
		case 4:
			f.Close()
			return nil, nil, nil, newErr(KindOrphanedIndexRecord, "tag 4 record not preceded by a tag 3 record")
		case 6:
			if err := readDocuments(r, dict); err != nil {
				f.Close()
				return nil, nil, nil, err
			}
		case 7:
			if err := readExtension(r, dict, &machine, r.Swapped(), warn); err != nil {
				f.Close()
				return nil, nil, nil, err
			}
		case 999:
			if err := r.Skip(4); err != nil {
				f.Close()
				return nil, nil, nil, wrapErr(KindIO, err, "reading dictionary terminator filler")
			}
			break loop
		default:
			f.Close()
			return nil, nil, nil, corruptRecord(tag, "unrecognized record type")
		}
	}

	fileSpec := hostSpecials()
	if machine.hasSpecials {
		fileSpec = machine.specials
		if fileSpec.differsFromHost() && warn != nil {
			warn("file sentinels (sysmis=%g, highest=%g, lowest=%g) differ from host sentinels; remapping to host values", fileSpec.sysmis, fileSpec.highest, fileSpec.lowest)
		}
	}

	checkDictionaryCharset(dict, machine.charset, warn)

	var src segmentSource
	if hdr.compressed {
		src = &compressedSegmentReader{r: r, bias: hdr.bias, fileSpec: fileSpec}
	} else {
		src = &rawSegmentReader{r: r, fileSpec: fileSpec}
	}

	info := &ReadInfo{
		ProductName:  hdr.productName,
		CreationDate: hdr.creationDate,
		CreationTime: hdr.creationTime,
		FileLabel:    hdr.fileLabel,
		Compressed:   hdr.compressed,
		BigEndian:    r.Swapped(),
		Version:      machine.version,
		FloatFormat:  "IEEE754",
		Charset:      machine.charset.String(),
		CaseCount:    hdr.caseCount,
	}

	return &Reader{f: f, r: r, dict: dict, info: *info, src: src}, dict, info, nil
}

// ReadCase returns the next case. At a clean end of the case stream it
// returns (nil, false, nil); a truncated or malformed case returns an error
// and marks the reader closed, matching every subsequent call returning
// false thereafter (§7).
func (rd *Reader) ReadCase() (Case, bool, error) {
	if rd.closed {
		return nil, false, nil
	}
	c, err := readCase(rd.dict, rd.src)
	if err != nil {
		if err == io.EOF {
			rd.Close()
			return nil, false, nil
		}
		rd.Close()
		return nil, false, err
	}
	return c, true, nil
}

// Close releases the underlying file. Safe to call more than once.
func (rd *Reader) Close() error {
	if rd.closed {
		return nil
	}
	rd.closed = true
	return rd.f.Close()
}
