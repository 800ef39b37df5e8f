package sav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanonicalizeNameUppercasesWithWarning(t *testing.T) {
	var warned []string
	warn := func(format string, args ...any) {
		warned = append(warned, format)
	}

	name, err := canonicalizeName([]byte("age  "), warn)
	require.NoError(t, err)
	require.Equal(t, "AGE", name)
	require.NotEmpty(t, warned)
}

func TestCanonicalizeNameRejectsEmpty(t *testing.T) {
	_, err := canonicalizeName([]byte("    "), nil)
	require.Error(t, err)
}

func TestCanonicalizeNameRejectsBadFirstCharacter(t *testing.T) {
	_, err := canonicalizeName([]byte("1AGE"), nil)
	require.Error(t, err)
}

func TestCanonicalizeNameAllowsSpecialFirstCharacters(t *testing.T) {
	name, err := canonicalizeName([]byte("@AGE"), nil)
	require.NoError(t, err)
	require.Equal(t, "@AGE", name)

	name, err = canonicalizeName([]byte("#SCRATCH"), nil)
	require.NoError(t, err)
	require.Equal(t, "#SCRATCH", name)
}

func TestCanonicalizeNameRejectsInvalidCharacter(t *testing.T) {
	_, err := canonicalizeName([]byte("AGE!"), nil)
	require.Error(t, err)
}

func TestRoundUp4(t *testing.T) {
	require.Equal(t, 0, roundUp4(0))
	require.Equal(t, 4, roundUp4(1))
	require.Equal(t, 4, roundUp4(4))
	require.Equal(t, 8, roundUp4(5))
}

func TestFloat64SegmentRoundTrip(t *testing.T) {
	seg := float64Segment(3.5)
	require.Equal(t, 3.5, segmentToFloat64(seg))
}

func TestStringSegmentPadsWithSpaces(t *testing.T) {
	seg := stringSegment("ab")
	require.Equal(t, [8]byte{'a', 'b', ' ', ' ', ' ', ' ', ' ', ' '}, seg)
}

func TestReverseSegment(t *testing.T) {
	seg := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	rev := reverseSegment(seg)
	require.Equal(t, [8]byte{8, 7, 6, 5, 4, 3, 2, 1}, rev)
}

func TestDefaultFormatFor(t *testing.T) {
	require.Equal(t, DefaultNumericFormat, defaultFormatFor(Variable{Width: 0}))
	require.Equal(t, DefaultStringFormat(8), defaultFormatFor(Variable{Width: 8}))
}
