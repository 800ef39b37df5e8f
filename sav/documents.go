package sav

import (
	"github.com/daxplore/spssreader/storage"
)

const documentLineLen = 80

// readDocuments consumes a tag-6 record: a line count followed by that many
// exactly-80-byte lines (sfm-read.c:read_documents). A second tag-6 record
// in the same file is a hard error, matching dict_get_documents' "multiple
// type 6 records" check.
func readDocuments(r *storage.Reader, dict *Dictionary) error {
	if dict.Documents != nil {
		return corruptRecord(6, "system file contains multiple document records")
	}

	lineCount, err := r.ReadInt32()
	if err != nil {
		return wrapErr(KindIO, err, "reading document line count")
	}
	if lineCount <= 0 {
		return corruptRecord(6, "number of document lines (%d) must be greater than 0", lineCount)
	}

	blob, err := r.ReadBytes(int(lineCount) * documentLineLen)
	if err != nil {
		return wrapErr(KindIO, err, "reading document text")
	}

	lines := make([]string, lineCount)
	for i := range lines {
		lines[i] = string(blob[i*documentLineLen : (i+1)*documentLineLen])
	}
	dict.Documents = lines
	return nil
}

// writeDocuments emits a tag-6 record iff the dictionary carries any
// documents. Lines are padded/truncated to exactly 80 bytes each, matching
// write_documents' raw concatenation of 80-byte lines.
func writeDocuments(w *storage.Writer, dict *Dictionary) error {
	if len(dict.Documents) == 0 {
		return nil
	}
	if err := w.WriteInt32(6); err != nil {
		return err
	}
	if err := w.WriteInt32(int32(len(dict.Documents))); err != nil {
		return err
	}
	for _, line := range dict.Documents {
		if err := w.WriteBytes(padField(line, documentLineLen)); err != nil {
			return err
		}
	}
	return nil
}
