package sav

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProbeEndiannessLittle(t *testing.T) {
	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], 2)

	swap, ok := probeEndianness(raw)
	require.True(t, ok)
	require.False(t, swap)
}

func TestProbeEndiannessBig(t *testing.T) {
	var raw [4]byte
	binary.BigEndian.PutUint32(raw[:], 2)

	swap, ok := probeEndianness(raw)
	require.True(t, ok)
	require.True(t, swap)
}

func TestProbeEndiannessRejectsGarbage(t *testing.T) {
	raw := [4]byte{1, 2, 3, 4}
	_, ok := probeEndianness(raw)
	require.False(t, ok)
}

func TestTrimAndPadField(t *testing.T) {
	require.Equal(t, "hello", trimField([]byte("hello   ")))
	require.Equal(t, "hello", trimField([]byte("hello\x00\x00\x00")))

	padded := padField("hi", 5)
	require.Equal(t, []byte("hi   "), padded)

	truncated := padField("toolong", 3)
	require.Equal(t, []byte("too"), truncated)
}
