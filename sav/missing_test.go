package sav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMissingValuesContainsDiscrete(t *testing.T) {
	m := MissingValues{Discrete: []Value{Num(9), Num(99)}}
	require.True(t, m.Contains(Num(9)))
	require.True(t, m.Contains(Num(99)))
	require.False(t, m.Contains(Num(1)))
}

func TestMissingValuesContainsRange(t *testing.T) {
	m := MissingValues{HasRange: true, RangeLo: 90, RangeHi: 99}
	require.True(t, m.Contains(Num(95)))
	require.False(t, m.Contains(Num(100)))
	require.False(t, m.Contains(Str("x")))
}

func TestMissingValuesContainsOpenRange(t *testing.T) {
	hi := MissingValues{HasRange: true, RangeLo: SecondLowest, RangeHi: 0}
	require.True(t, hi.Contains(Num(-1000)))
	require.False(t, hi.Contains(Num(1)))

	lo := MissingValues{HasRange: true, RangeLo: 100, RangeHi: Highest}
	require.True(t, lo.Contains(Num(1e9)))
	require.False(t, lo.Contains(Num(1)))
}

func TestMissingValuesCode(t *testing.T) {
	require.Equal(t, int32(0), MissingValues{}.code())
	require.Equal(t, int32(2), MissingValues{Discrete: []Value{Num(1), Num(2)}}.code())
	require.Equal(t, int32(-2), MissingValues{HasRange: true}.code())
	require.Equal(t, int32(-3), MissingValues{HasRange: true, Discrete: []Value{Num(1)}}.code())
}

func TestMissingValuesEmpty(t *testing.T) {
	require.True(t, MissingValues{}.Empty())
	require.False(t, MissingValues{HasRange: true}.Empty())
	require.False(t, MissingValues{Discrete: []Value{Num(1)}}.Empty())
}
