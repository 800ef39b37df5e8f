package sav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDictionaryAddVariableRejectsDuplicateName(t *testing.T) {
	d := NewDictionary()
	require.NoError(t, d.AddVariable(Variable{Name: "AGE"}))

	err := d.AddVariable(Variable{Name: "AGE"})
	require.Error(t, err)
	e, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, KindDuplicateVariableName, e.Kind)
}

func TestDictionaryRenameReindexes(t *testing.T) {
	d := NewDictionary()
	require.NoError(t, d.AddVariable(Variable{Name: "AGE"}))

	require.NoError(t, d.Rename("AGE", "RESPONDENT_AGE"))
	_, ok := d.VariableByName("AGE")
	require.False(t, ok)
	v, ok := d.VariableByName("RESPONDENT_AGE")
	require.True(t, ok)
	require.Equal(t, "RESPONDENT_AGE", v.Name)

	err := d.Rename("RESPONDENT_AGE", "RESPONDENT_AGE")
	require.NoError(t, err)
}

func TestDictionaryReorderMovesVariable(t *testing.T) {
	d := NewDictionary()
	require.NoError(t, d.AddVariable(Variable{Name: "A"}))
	require.NoError(t, d.AddVariable(Variable{Name: "B"}))
	require.NoError(t, d.AddVariable(Variable{Name: "C"}))

	require.NoError(t, d.Reorder("C", 0))

	names := make([]string, len(d.Variables))
	for i, v := range d.Variables {
		names[i] = v.Name
	}
	require.Equal(t, []string{"C", "A", "B"}, names)

	v, ok := d.VariableByName("A")
	require.True(t, ok)
	require.Equal(t, "A", v.Name)
}

func TestDictionaryReorderRejectsUnknownVariable(t *testing.T) {
	d := NewDictionary()
	require.NoError(t, d.AddVariable(Variable{Name: "A"}))
	err := d.Reorder("NOPE", 0)
	require.Error(t, err)
}

func TestDictionarySetWeightRequiresNumeric(t *testing.T) {
	d := NewDictionary()
	require.NoError(t, d.AddVariable(Variable{Name: "NAME", Width: 8}))

	err := d.SetWeight("NAME")
	require.Error(t, err)
	e, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, KindWeightInvalid, e.Kind)

	require.NoError(t, d.AddVariable(Variable{Name: "WEIGHT"}))
	require.NoError(t, d.SetWeight("WEIGHT"))
	require.Equal(t, "WEIGHT", d.Weight)
}

func TestVariableSetValueLabelRejectsLongString(t *testing.T) {
	v := Variable{Name: "COMMENT", Width: 40}
	err := v.SetValueLabel(Str("x"), "label")
	require.Error(t, err)
}

func TestVariableSetValueLabel(t *testing.T) {
	v := Variable{Name: "SEX", Width: 1}
	require.NoError(t, v.SetValueLabel(Str("M"), "Male"))
	require.Equal(t, "Male", v.Labels[Str("M")])
}

func TestSegmentCount(t *testing.T) {
	require.Equal(t, 1, Variable{Width: 0}.SegmentCount())
	require.Equal(t, 1, Variable{Width: 8}.SegmentCount())
	require.Equal(t, 2, Variable{Width: 9}.SegmentCount())
	require.Equal(t, 5, Variable{Width: 40}.SegmentCount())
}
