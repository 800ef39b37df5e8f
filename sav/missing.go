package sav

// MissingValues records which values of a variable should be treated as
// user-missing (§3). At most one of a discrete set (up to three values) or
// a range may be present, optionally together with one extra discrete value
// alongside the range, matching PSPP's MISSING_VALUES encoding.
type MissingValues struct {
	Discrete []Value // 0-3 entries when Range is not set; 0-1 when it is
	HasRange bool
	RangeLo  float64
	RangeHi  float64
}

// code returns the tag-2 record's missing value code: 0 for none, 1-3 for a
// discrete set, -2 for a range alone, -3 for a range plus one discrete
// value, matching the codes read_variables uses to decide how many extra
// flt64 slots follow a variable's base record (§4.3).
func (m MissingValues) code() int32 {
	switch {
	case m.HasRange && len(m.Discrete) == 1:
		return -3
	case m.HasRange:
		return -2
	default:
		return int32(len(m.Discrete))
	}
}

// Empty reports whether no missing values are declared.
func (m MissingValues) Empty() bool {
	return !m.HasRange && len(m.Discrete) == 0
}

// Contains reports whether v is declared user-missing by m. Range checks
// only apply to numeric values, mirroring the original format's restriction
// of MISSING VALUES ranges to numeric variables.
func (m MissingValues) Contains(v Value) bool {
	for _, d := range m.Discrete {
		if d == v {
			return true
		}
	}
	if m.HasRange && !v.IsString {
		lo, hi := m.RangeLo, m.RangeHi
		if lo == SecondLowest {
			return v.Num <= hi
		}
		if hi == Highest {
			return v.Num >= lo
		}
		return v.Num >= lo && v.Num <= hi
	}
	return false
}
