package sav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValueIsSysmis(t *testing.T) {
	require.True(t, Num(Sysmis).IsSysmis())
	require.False(t, Num(0).IsSysmis())
	require.False(t, Str("x").IsSysmis())
}

func TestValueAsMapKey(t *testing.T) {
	labels := ValueLabels{
		Num(1):     "Yes",
		Num(2):     "No",
		Str("M"):   "Male",
	}
	require.Equal(t, "Yes", labels[Num(1)])
	require.Equal(t, "Male", labels[Str("M")])
	_, ok := labels[Num(3)]
	require.False(t, ok)
}

func TestValueLabelsClone(t *testing.T) {
	orig := ValueLabels{Num(1): "Yes"}
	clone := orig.Clone()
	clone[Num(2)] = "No"

	require.Len(t, orig, 1)
	require.Len(t, clone, 2)
}
