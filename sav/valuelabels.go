package sav

import (
	"math"
	"sort"
	"strings"

	"github.com/daxplore/spssreader/storage"
)

// readValueLabels consumes one tag-3/tag-4 pair (sfm-read.c:read_value_labels):
// a block of (value, label) tuples, immediately followed by the list of
// segment indices the labels apply to. byIdx resolves those indices back to
// the variables they name.
func readValueLabels(r *storage.Reader, dict *Dictionary, byIdx varByIndex, warn WarnFunc) error {
	nLabels, err := r.ReadInt32()
	if err != nil {
		return wrapErr(KindIO, err, "reading value label count")
	}
	if nLabels < 0 {
		return corruptRecord(3, "invalid number of labels: %d", nLabels)
	}

	type rawLabel struct {
		raw   [8]byte
		label string
	}
	labels := make([]rawLabel, nLabels)
	for i := range labels {
		raw, err := r.ReadBytes(8)
		if err != nil {
			return wrapErr(KindIO, err, "reading value label value")
		}
		copy(labels[i].raw[:], raw)

		lenByte, err := r.ReadByte()
		if err != nil {
			return wrapErr(KindIO, err, "reading value label length")
		}
		padded := roundUp8(int(lenByte) + 1)
		text, err := r.ReadBytes(padded - 1)
		if err != nil {
			return wrapErr(KindIO, err, "reading value label text")
		}
		labels[i].label = string(text[:lenByte])
	}

	tag, err := r.ReadInt32()
	if err != nil {
		return wrapErr(KindIO, err, "reading record tag after value labels")
	}
	if tag != 4 {
		return newErrf(KindOrphanedIndexRecord, "expected tag 4 after tag 3, got %d", tag)
	}

	nVars, err := r.ReadInt32()
	if err != nil {
		return wrapErr(KindIO, err, "reading value-label variable count")
	}
	if nVars < 1 || int(nVars) > len(byIdx) {
		return corruptRecord(4, "variable count %d associated with a value label is not between 1 and %d", nVars, len(byIdx))
	}

	vars := make([]*Variable, nVars)
	for i := range vars {
		idx, err := r.ReadInt32()
		if err != nil {
			return wrapErr(KindIO, err, "reading value-label variable index")
		}
		if idx < 1 || int(idx) > len(byIdx) {
			return corruptRecord(4, "variable index %d is not between 1 and %d", idx, len(byIdx))
		}
		segIdx := byIdx[idx-1]
		if segIdx == continuationIndex {
			return corruptRecord(4, "variable index %d refers to a string continuation, not a variable", idx)
		}
		v := &dict.Variables[segIdx]
		if !v.IsNumeric() && v.Width > maxShortLabel {
			return corruptRecord(4, "value labels not allowed on long string variable %q", v.Name)
		}
		vars[i] = v
	}
	for _, v := range vars[1:] {
		if v.IsNumeric() != vars[0].IsNumeric() {
			return corruptRecord(4, "variables associated with value label are not all of identical type")
		}
	}

	numeric := vars[0].IsNumeric()
	for _, v := range vars {
		if v.Labels == nil {
			v.Labels = make(ValueLabels, len(labels))
		}
		for _, l := range labels {
			key := labelKey(l.raw, numeric, r.Swapped())
			if _, dup := v.Labels[key]; dup {
				if warn != nil {
					warn("duplicate value label for %v on variable %q", key, v.Name)
				}
			}
			v.Labels[key] = l.label
		}
	}

	return nil
}

func labelKey(raw [8]byte, numeric bool, swap bool) Value {
	if !numeric {
		return Str(strings.TrimRight(string(raw[:]), " "))
	}
	bits := decodeUint64(raw, swap)
	return Num(math.Float64frombits(bits))
}

func decodeUint64(raw [8]byte, swap bool) uint64 {
	var bits uint64
	if swap {
		for i := 0; i < 8; i++ {
			bits = bits<<8 | uint64(raw[i])
		}
	} else {
		for i := 7; i >= 0; i-- {
			bits = bits<<8 | uint64(raw[i])
		}
	}
	return bits
}

func roundUp8(n int) int { return (n + 7) &^ 7 }

// writeValueLabelBlocks emits one tag-3/tag-4 pair per variable carrying
// value labels, in dictionary order, each tag-4 naming the single segment
// index of its owning variable (write_value_labels).
func writeValueLabelBlocks(w *storage.Writer, dict *Dictionary) error {
	segIndex := 1
	for i := range dict.Variables {
		v := &dict.Variables[i]
		if len(v.Labels) > 0 {
			if err := writeValueLabelBlock(w, v, segIndex); err != nil {
				return err
			}
		}
		segIndex += v.SegmentCount()
	}
	return nil
}

func writeValueLabelBlock(w *storage.Writer, v *Variable, segIndex int) error {
	keys := make([]Value, 0, len(v.Labels))
	for k := range v.Labels {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].IsString != keys[j].IsString {
			return !keys[i].IsString
		}
		if keys[i].IsString {
			return keys[i].Str < keys[j].Str
		}
		return keys[i].Num < keys[j].Num
	})

	if err := w.WriteInt32(3); err != nil {
		return err
	}
	if err := w.WriteInt32(int32(len(keys))); err != nil {
		return err
	}
	for _, k := range keys {
		var raw [8]byte
		if k.IsString {
			raw = stringSegment(k.Str)
		} else {
			raw = float64Segment(k.Num)
		}
		if err := w.WriteBytes(raw[:]); err != nil {
			return err
		}
		label := v.Labels[k]
		if len(label) > 255 {
			label = label[:255]
		}
		if err := w.WriteByte(byte(len(label))); err != nil {
			return err
		}
		padded := roundUp8(len(label)+1) - 1
		if err := w.WriteBytes(padField(label, padded)); err != nil {
			return err
		}
	}

	if err := w.WriteInt32(4); err != nil {
		return err
	}
	if err := w.WriteInt32(1); err != nil {
		return err
	}
	return w.WriteInt32(int32(segIndex))
}
