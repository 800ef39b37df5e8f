package sav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssignShortNamesKeepsShortUniqueNames(t *testing.T) {
	d := NewDictionary()
	require.NoError(t, d.AddVariable(Variable{Name: "AGE"}))
	require.NoError(t, d.AddVariable(Variable{Name: "WEIGHT"}))

	mapping := AssignShortNames(d)
	require.Equal(t, "AGE", mapping["AGE"])
	require.Equal(t, "WEIGHT", mapping["WEIGHT"])
	require.Equal(t, "AGE", d.Variables[0].ShortName)
}

func TestAssignShortNamesTruncatesLongNames(t *testing.T) {
	d := NewDictionary()
	require.NoError(t, d.AddVariable(Variable{Name: "RespondentAgeInYears"}))

	mapping := AssignShortNames(d)
	short := mapping["RespondentAgeInYears"]
	require.LessOrEqual(t, len(short), 8)
	require.Equal(t, short, d.Variables[0].ShortName)
}

func TestAssignShortNamesDisambiguatesCollisions(t *testing.T) {
	d := NewDictionary()
	require.NoError(t, d.AddVariable(Variable{Name: "VeryLongNameOne"}))
	require.NoError(t, d.AddVariable(Variable{Name: "VeryLongNameTwo"}))

	mapping := AssignShortNames(d)
	s1 := mapping["VeryLongNameOne"]
	s2 := mapping["VeryLongNameTwo"]
	require.NotEqual(t, s1, s2)
	require.LessOrEqual(t, len(s1), 8)
	require.LessOrEqual(t, len(s2), 8)
}

func TestDisambiguateProducesNumberedSuffixes(t *testing.T) {
	used := map[string]bool{"ABCDE_01": true}
	got := disambiguate("ABCDEFGH", used)
	require.Equal(t, "ABCDE_02", got)
}

func TestTwoDigits(t *testing.T) {
	require.Equal(t, "01", twoDigits(1))
	require.Equal(t, "09", twoDigits(9))
	require.Equal(t, "42", twoDigits(42))
}
