package sav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatPackUnpackRoundTrip(t *testing.T) {
	cases := []Format{
		{Type: FormatF, Width: 8, Decimals: 2},
		{Type: FormatA, Width: 40},
		{Type: FormatDate, Width: 11},
	}
	for _, f := range cases {
		got, err := unpackFormat(f.pack())
		require.NoError(t, err)
		require.Equal(t, f, got)
	}
}

func TestUnpackFormatRejectsUnknownType(t *testing.T) {
	_, err := unpackFormat(int32(99) << 16)
	require.Error(t, err)

	e, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, KindBadFormatSpec, e.Kind)
}

func TestCheckFormatFallsBackOnTypeMismatch(t *testing.T) {
	var warned []string
	warn := func(format string, args ...interface{}) {
		warned = append(warned, format)
	}

	got := checkFormat(Format{Type: FormatA, Width: 8}, true, 8, warn)
	require.Equal(t, DefaultNumericFormat, got)
	require.Len(t, warned, 1)

	got = checkFormat(Format{Type: FormatF, Width: 8, Decimals: 2}, false, 12, warn)
	require.Equal(t, DefaultStringFormat(12), got)
}

func TestCheckFormatAcceptsMatchingType(t *testing.T) {
	f := Format{Type: FormatF, Width: 5, Decimals: 1}
	got := checkFormat(f, true, 5, nil)
	require.Equal(t, f, got)
}
