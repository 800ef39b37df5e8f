package sav

import "math"

// Host sentinel values, matching PSPP's sfm-read.c/sfm-write.c constants:
// SYSMIS is the largest-magnitude negative finite double, HIGHEST the
// largest finite double, LOWEST the double just above -FLT64_MAX (so that a
// missing-value range of [LOWEST, x] doesn't collide with SYSMIS itself).
var (
	Sysmis       = -math.MaxFloat64
	Highest      = math.MaxFloat64
	SecondLowest = math.Nextafter(-math.MaxFloat64, 0)
)

// specials holds the file-declared sentinel triple read from record 7
// subtype 4, used to remap file sentinels to host sentinels during case
// decoding (§4.2) and vice versa on write (always host sentinels, §4.3).
type specials struct {
	sysmis  float64
	highest float64
	lowest  float64
}

func hostSpecials() specials {
	return specials{sysmis: Sysmis, highest: Highest, lowest: SecondLowest}
}

// differsFromHost reports whether the file declared different sentinels
// than the host uses, per §4.2's "If any differs from host sentinels".
func (s specials) differsFromHost() bool {
	h := hostSpecials()
	return s.sysmis != h.sysmis || s.highest != h.highest || s.lowest != h.lowest
}

// remapToHost converts a raw numeric segment read from the file into the
// host's representation, substituting the host SYSMIS sentinel whenever the
// file's declared SYSMIS value appears (§4.4 "Segment-to-value assembly").
func (s specials) remapToHost(f float64) float64 {
	if f == s.sysmis {
		return Sysmis
	}
	return f
}
