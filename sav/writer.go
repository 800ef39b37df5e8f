package sav

import (
	"os"

	"github.com/daxplore/spssreader/storage"
)

// Writer serializes a dictionary and an appended case stream back into
// system-file layout (sfm-write.c:sfm_open_writer / sfm_write_case,
// generalized per §4.5's Opened → HeaderWritten → VarsAndExtsWritten →
// AppendingCases → ClosingAndPatchingCount state machine).
type Writer struct {
	f         *os.File
	w         *storage.Writer
	dict      *Dictionary
	sink      segmentSink
	compSink  *compressedSegmentWriter
	caseCount int32
	closed    bool
}

// OpenWriter writes dict's header, variable records, value labels,
// documents, and extension records to f, leaving it positioned at the start
// of the case stream. The write order matches sfm_open_writer exactly:
// header, variables, value labels, documents, machine info (subtypes 3+4),
// variable display parameters (subtype 11), long variable names (subtype
// 13, iff opts.Version >= VersionSPSS12), then the dictionary terminator.
func OpenWriter(f *os.File, dict *Dictionary, opts WriteOptions) (*Writer, error) {
	w := storage.NewWriter(f)
	shortNames := AssignShortNames(dict)

	date, t := stampCreation()
	productName := opts.ProductName
	if productName == "" {
		productName = defaultProductName
	}
	hdr := header{
		productName:  productPrefix + productName,
		layoutCode:   2,
		caseSize:     int32(dict.SegmentWidth()),
		compressed:   opts.Compress,
		weightIndex:  computeWeightIndex(dict),
		caseCount:    -1,
		bias:         defaultBias,
		creationDate: date,
		creationTime: t,
		fileLabel:    dict.Label,
	}
	if err := writeHeader(w, hdr); err != nil {
		f.Close()
		return nil, err
	}

	if err := writeVariables(w, dict); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeValueLabelBlocks(w, dict); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeDocuments(w, dict); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeMachineRecords(w, opts); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeVarDisplay(w, dict); err != nil {
		f.Close()
		return nil, err
	}
	if opts.Version >= VersionSPSS12 {
		if err := writeLongNames(w, dict, shortNames); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := w.WriteInt32(999); err != nil {
		f.Close()
		return nil, err
	}
	if err := w.WriteInt32(0); err != nil {
		f.Close()
		return nil, err
	}

	wr := &Writer{f: f, w: w, dict: dict}
	if opts.Compress {
		cw := newCompressedSegmentWriter(w)
		wr.compSink = cw
		wr.sink = cw
	} else {
		wr.sink = &rawSegmentWriter{w: w}
	}
	return wr, nil
}

// computeWeightIndex returns the 1-based segment index of dict's weight
// variable, or 0 if none is set (§4.3 "weight index").
func computeWeightIndex(dict *Dictionary) int32 {
	if dict.Weight == "" {
		return 0
	}
	seg := 1
	for _, v := range dict.Variables {
		if v.Name == dict.Weight {
			return int32(seg)
		}
		seg += v.SegmentCount()
	}
	return 0
}

// WriteCase appends one case to the stream. Cases must be supplied in the
// order they're meant to appear; the writer doesn't buffer or reorder them
// beyond what the compressed codec's octet framing requires internally.
func (wr *Writer) WriteCase(c Case) error {
	if err := writeCase(wr.dict, c, wr.sink); err != nil {
		return err
	}
	wr.caseCount++
	return nil
}

// Close flushes any pending compressed octet, back-patches the real case
// count into the header, and closes the file. Safe to call more than once.
func (wr *Writer) Close() error {
	if wr.closed {
		return nil
	}
	wr.closed = true

	if wr.compSink != nil {
		if err := wr.compSink.flush(); err != nil {
			wr.f.Close()
			return err
		}
	}
	if err := wr.w.Flush(); err != nil {
		wr.f.Close()
		return err
	}

	var countBytes [4]byte
	n := wr.caseCount
	countBytes[0] = byte(n)
	countBytes[1] = byte(n >> 8)
	countBytes[2] = byte(n >> 16)
	countBytes[3] = byte(n >> 24)
	if err := wr.w.PatchAt(caseCountOffset, countBytes[:]); err != nil {
		wr.f.Close()
		return err
	}

	return wr.f.Close()
}
