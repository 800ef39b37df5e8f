package sav

import (
	"strings"
)

// AssignShortNames derives an 8-byte on-disk ShortName for every variable
// whose Name is longer than 8 bytes or collides with another variable's
// short name, truncating and then disambiguating with a "_01", "_02", ...
// suffix (§3 "Invariants"). Variables that already fit in 8 bytes and don't
// collide keep their own name, upper-cased, as their short name. The
// long-name mapping this produces is what gets written into the long-name
// extension (subtype 13, §4.3).
func AssignShortNames(d *Dictionary) map[string]string {
	longToShort := make(map[string]string, len(d.Variables))
	used := make(map[string]bool, len(d.Variables))

	for i := range d.Variables {
		v := &d.Variables[i]
		base := v.Name
		if len(base) > 8 {
			base = base[:8]
		}
		base = strings.ToUpper(base)

		short := base
		if used[short] {
			short = disambiguate(base, used)
		}
		used[short] = true
		v.ShortName = short
		longToShort[v.Name] = short
	}

	d.byShortName = nil
	d.ensureIndex()
	return longToShort
}

// disambiguate finds the first "<base5>_NN" (base truncated to 5 bytes,
// NN = 01, 02, ...) not already in used.
func disambiguate(base string, used map[string]bool) string {
	trunc := base
	if len(trunc) > 5 {
		trunc = trunc[:5]
	}
	for n := 1; n < 100; n++ {
		cand := trunc + "_" + twoDigits(n)
		if !used[cand] {
			return cand
		}
	}
	return trunc + "_XX"
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + string(rune('0'+n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}
