package sav

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTempFile(t *testing.T) (*os.File, string) {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "sav-*.sav")
	require.NoError(t, err)
	return f, f.Name()
}

func TestRoundTripMinimalNumericDictionary(t *testing.T) {
	dict := NewDictionary()
	require.NoError(t, dict.AddVariable(Variable{
		Name:  "AGE",
		Print: DefaultNumericFormat,
		Write: DefaultNumericFormat,
	}))
	require.NoError(t, dict.AddVariable(Variable{
		Name:  "SCORE",
		Print: DefaultNumericFormat,
		Write: DefaultNumericFormat,
	}))

	f, path := openTempFile(t)
	w, err := OpenWriter(f, dict, WriteOptions{Compress: false, Version: VersionSPSS12})
	require.NoError(t, err)

	require.NoError(t, w.WriteCase(Case{Num(30), Num(99.5)}))
	require.NoError(t, w.WriteCase(Case{Num(Sysmis), Num(0)}))
	require.NoError(t, w.Close())

	in, err := os.Open(path)
	require.NoError(t, err)
	r, readDict, info, err := OpenReader(in)
	require.NoError(t, err)
	defer r.Close()

	require.False(t, info.Compressed)
	require.Len(t, readDict.Variables, 2)
	require.Equal(t, "AGE", readDict.Variables[0].Name)
	require.Equal(t, "SCORE", readDict.Variables[1].Name)

	c1, ok, err := r.ReadCase()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Num(30), c1[0])
	require.Equal(t, Num(99.5), c1[1])

	c2, ok, err := r.ReadCase()
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, c2[0].IsSysmis())

	_, ok, err = r.ReadCase()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRoundTripCompressedCases(t *testing.T) {
	dict := NewDictionary()
	require.NoError(t, dict.AddVariable(Variable{Name: "N", Print: DefaultNumericFormat, Write: DefaultNumericFormat}))
	require.NoError(t, dict.AddVariable(Variable{Name: "NAME", Width: 8, Print: DefaultStringFormat(8), Write: DefaultStringFormat(8)}))

	f, path := openTempFile(t)
	w, err := OpenWriter(f, dict, WriteOptions{Compress: true, Version: VersionSPSS12})
	require.NoError(t, err)

	cases := []Case{
		{Num(1), Str("A")},
		{Num(Sysmis), Str("")},
		{Num(12345.75), Str("LONGNAME")},
	}
	for _, c := range cases {
		require.NoError(t, w.WriteCase(c))
	}
	require.NoError(t, w.Close())

	in, err := os.Open(path)
	require.NoError(t, err)
	r, _, info, err := OpenReader(in)
	require.NoError(t, err)
	defer r.Close()

	require.True(t, info.Compressed)

	got, ok, err := r.ReadCase()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Num(1), got[0])
	require.Equal(t, Str("A"), got[1])

	got, ok, err = r.ReadCase()
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, got[0].IsSysmis())
	require.Equal(t, Str(""), got[1])

	got, ok, err = r.ReadCase()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Num(12345.75), got[0])
	require.Equal(t, Str("LONGNAME"), got[1])

	_, ok, err = r.ReadCase()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRoundTripLongStringVariable(t *testing.T) {
	dict := NewDictionary()
	require.NoError(t, dict.AddVariable(Variable{Name: "COMMENT", Width: 20, Print: DefaultStringFormat(20), Write: DefaultStringFormat(20)}))

	f, path := openTempFile(t)
	w, err := OpenWriter(f, dict, WriteOptions{Compress: false, Version: VersionSPSS12})
	require.NoError(t, err)
	require.NoError(t, w.WriteCase(Case{Str("this is a long comme")}))
	require.NoError(t, w.Close())

	in, err := os.Open(path)
	require.NoError(t, err)
	r, readDict, _, err := OpenReader(in)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, readDict.Variables, 1)
	require.Equal(t, 3, readDict.Variables[0].SegmentCount())

	got, ok, err := r.ReadCase()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "this is a long comme", got[0].Str)
}

func TestRoundTripValueLabels(t *testing.T) {
	dict := NewDictionary()
	sex := Variable{Name: "SEX", Width: 1, Print: DefaultStringFormat(1), Write: DefaultStringFormat(1)}
	require.NoError(t, sex.SetValueLabel(Str("M"), "Male"))
	require.NoError(t, sex.SetValueLabel(Str("F"), "Female"))
	require.NoError(t, dict.AddVariable(sex))

	group := Variable{Name: "GROUP", Print: DefaultNumericFormat, Write: DefaultNumericFormat}
	require.NoError(t, group.SetValueLabel(Num(1), "Control"))
	require.NoError(t, group.SetValueLabel(Num(2), "Treatment"))
	require.NoError(t, dict.AddVariable(group))

	f, path := openTempFile(t)
	w, err := OpenWriter(f, dict, WriteOptions{Compress: false, Version: VersionSPSS12})
	require.NoError(t, err)
	require.NoError(t, w.WriteCase(Case{Str("M"), Num(1)}))
	require.NoError(t, w.Close())

	in, err := os.Open(path)
	require.NoError(t, err)
	r, readDict, _, err := OpenReader(in)
	require.NoError(t, err)
	defer r.Close()

	sexVar, ok := readDict.VariableByName("SEX")
	require.True(t, ok)
	require.Equal(t, "Male", sexVar.Labels[Str("M")])
	require.Equal(t, "Female", sexVar.Labels[Str("F")])

	groupVar, ok := readDict.VariableByName("GROUP")
	require.True(t, ok)
	require.Equal(t, "Control", groupVar.Labels[Num(1)])
	require.Equal(t, "Treatment", groupVar.Labels[Num(2)])
}

func TestRoundTripLongVariableNames(t *testing.T) {
	dict := NewDictionary()
	require.NoError(t, dict.AddVariable(Variable{
		Name:  "RespondentAgeInYears",
		Print: DefaultNumericFormat,
		Write: DefaultNumericFormat,
	}))
	require.NoError(t, dict.AddVariable(Variable{Name: "Q2", Print: DefaultNumericFormat, Write: DefaultNumericFormat}))

	f, path := openTempFile(t)
	w, err := OpenWriter(f, dict, WriteOptions{Compress: false, Version: VersionSPSS12})
	require.NoError(t, err)
	require.NoError(t, w.WriteCase(Case{Num(42), Num(1)}))
	require.NoError(t, w.Close())

	in, err := os.Open(path)
	require.NoError(t, err)
	r, readDict, _, err := OpenReader(in)
	require.NoError(t, err)
	defer r.Close()

	v, ok := readDict.VariableByName("RespondentAgeInYears")
	require.True(t, ok)
	require.NotEqual(t, v.Name, v.ShortName)
	require.LessOrEqual(t, len(v.ShortName), 8)

	_, ok = readDict.VariableByName("Q2")
	require.True(t, ok)
}

func TestRoundTripWeightVariable(t *testing.T) {
	dict := NewDictionary()
	require.NoError(t, dict.AddVariable(Variable{Name: "ID", Print: DefaultNumericFormat, Write: DefaultNumericFormat}))
	require.NoError(t, dict.AddVariable(Variable{Name: "WEIGHT", Print: DefaultNumericFormat, Write: DefaultNumericFormat}))
	require.NoError(t, dict.SetWeight("WEIGHT"))

	f, path := openTempFile(t)
	w, err := OpenWriter(f, dict, WriteOptions{Compress: false, Version: VersionSPSS12})
	require.NoError(t, err)
	require.NoError(t, w.WriteCase(Case{Num(1), Num(1.5)}))
	require.NoError(t, w.Close())

	in, err := os.Open(path)
	require.NoError(t, err)
	r, readDict, _, err := OpenReader(in)
	require.NoError(t, err)
	defer r.Close()

	require.Equal(t, "WEIGHT", readDict.Weight)
}

func TestReaderCloseIsIdempotentAfterEOF(t *testing.T) {
	dict := NewDictionary()
	require.NoError(t, dict.AddVariable(Variable{Name: "X", Print: DefaultNumericFormat, Write: DefaultNumericFormat}))

	f, path := openTempFile(t)
	w, err := OpenWriter(f, dict, WriteOptions{Compress: false, Version: VersionSPSS12})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	in, err := os.Open(path)
	require.NoError(t, err)
	r, _, _, err := OpenReader(in)
	require.NoError(t, err)

	_, ok, err := r.ReadCase()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
}
