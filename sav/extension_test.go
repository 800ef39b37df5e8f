package sav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultDisplayWidthNumeric(t *testing.T) {
	v := &Variable{Width: 0, Print: DefaultNumericFormat}
	require.Equal(t, int(DefaultNumericFormat.Width)+2, defaultDisplayWidth(v))
}

func TestDefaultDisplayWidthShortString(t *testing.T) {
	v := &Variable{Width: 10}
	require.Equal(t, 10, defaultDisplayWidth(v))
}

func TestDefaultDisplayWidthCapsLongString(t *testing.T) {
	v := &Variable{Width: 200}
	require.Equal(t, 32, defaultDisplayWidth(v))
}
