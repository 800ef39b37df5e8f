package sav

import "fmt"

// ValueLabels maps discrete values of a variable to descriptive text
// (record type 3, cross-referenced against a record type 4 variable-index
// list, §4.3). Restricted by the format to numeric variables and short
// string variables (width <= 8).
type ValueLabels map[Value]string

// Clone returns an independent copy of l.
func (l ValueLabels) Clone() ValueLabels {
	out := make(ValueLabels, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Variable describes one column of the case matrix (§3). ShortName is the
// up-to-8-byte identifier written into tag-2 records; Name is the
// unrestricted-length name carried in the long-name extension (subtype 13,
// §4.3) once AssignShortNames has run. Width is 0 for numeric variables and
// the declared byte width for strings; SegmentCount derives from it.
type Variable struct {
	Name      string
	ShortName string
	Width     int
	Label     string
	Print     Format
	Write     Format
	Missing   MissingValues
	Labels    ValueLabels
	Measure   Measure
	Columns   int
	Alignment Alignment
}

// Measure is the display-level measurement scale recorded in the variable
// display-parameters extension (subtype 11, §4.3).
type Measure int32

const (
	MeasureUnknown Measure = 0
	MeasureNominal Measure = 1
	MeasureOrdinal Measure = 2
	MeasureScale   Measure = 3
)

// Alignment is the display alignment recorded alongside Measure.
type Alignment int32

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

// IsNumeric reports whether the variable holds numeric (as opposed to
// string) values.
func (v Variable) IsNumeric() bool { return v.Width == 0 }

// IsLongString reports whether the variable needs continuation segments
// (width > 8 bytes, §3).
func (v Variable) IsLongString() bool { return v.Width > 8 }

// SegmentCount returns how many 8-byte on-disk segments the variable
// occupies: 1 for a numeric variable, ceil(width/8) for a string (§3).
func (v Variable) SegmentCount() int {
	if v.IsNumeric() {
		return 1
	}
	return (v.Width + 7) / 8
}

// SetValueLabel attaches label to value on v, rejecting long string
// variables per §3 ("Value labels are restricted to numeric variables and
// short strings"). Mirrors val_labs_replace's type-matching requirement:
// the map itself doesn't care, but only a codec write path ever inspects
// it, so the check belongs to the mutation, not the type.
func (v *Variable) SetValueLabel(value Value, label string) error {
	if v.IsLongString() {
		return newErrf(KindMissingValueNotAllowed, "value labels are not allowed on long string variable %q", v.Name)
	}
	if value.IsString != !v.IsNumeric() {
		return newErrf(KindBadVariableName, "value type does not match variable %q", v.Name)
	}
	if v.Labels == nil {
		v.Labels = make(ValueLabels)
	}
	v.Labels[value] = label
	return nil
}

// Dictionary is the parsed (or to-be-written) variable set plus file-level
// metadata: everything that precedes the case stream (§3, §6.2).
type Dictionary struct {
	Variables []Variable
	Documents []string
	Label     string
	Weight    string // name of the weighting variable, or "" for none

	byName      map[string]int
	byShortName map[string]int
}

// NewDictionary returns an empty dictionary ready for AddVariable calls.
func NewDictionary() *Dictionary {
	return &Dictionary{
		byName:      make(map[string]int),
		byShortName: make(map[string]int),
	}
}

func (d *Dictionary) ensureIndex() {
	if d.byName == nil {
		d.byName = make(map[string]int, len(d.Variables))
		d.byShortName = make(map[string]int, len(d.Variables))
		for i, v := range d.Variables {
			d.byName[v.Name] = i
			if v.ShortName != "" {
				d.byShortName[v.ShortName] = i
			}
		}
	}
}

// AddVariable appends v to the dictionary, rejecting a name collision with
// KindDuplicateVariableName (§4.3 "the name must not repeat an earlier
// variable's name").
func (d *Dictionary) AddVariable(v Variable) error {
	d.ensureIndex()
	if _, dup := d.byName[v.Name]; dup {
		return newErrf(KindDuplicateVariableName, "variable %q already exists", v.Name)
	}
	idx := len(d.Variables)
	d.Variables = append(d.Variables, v)
	d.byName[v.Name] = idx
	if v.ShortName != "" {
		d.byShortName[v.ShortName] = idx
	}
	return nil
}

// VariableByName looks a variable up by its long name.
func (d *Dictionary) VariableByName(name string) (*Variable, bool) {
	d.ensureIndex()
	i, ok := d.byName[name]
	if !ok {
		return nil, false
	}
	return &d.Variables[i], true
}

// VariableByShortName looks a variable up by its 8-byte on-disk name.
func (d *Dictionary) VariableByShortName(name string) (*Variable, bool) {
	d.ensureIndex()
	i, ok := d.byShortName[name]
	if !ok {
		return nil, false
	}
	return &d.Variables[i], true
}

// Rename changes a variable's long name, re-indexing the dictionary.
func (d *Dictionary) Rename(oldName, newName string) error {
	d.ensureIndex()
	i, ok := d.byName[oldName]
	if !ok {
		return newErrf(KindBadVariableName, "no such variable %q", oldName)
	}
	if j, dup := d.byName[newName]; dup && j != i {
		return newErrf(KindDuplicateVariableName, "variable %q already exists", newName)
	}
	delete(d.byName, oldName)
	d.byName[newName] = i
	d.Variables[i].Name = newName
	if d.Weight == oldName {
		d.Weight = newName
	}
	return nil
}

// SetWeight designates name as the weighting variable. name must refer to a
// numeric variable already present, matching the original's WEIGHT-index
// recomputation at write time (§4.3 "weight index").
func (d *Dictionary) SetWeight(name string) error {
	if name == "" {
		d.Weight = ""
		return nil
	}
	v, ok := d.VariableByName(name)
	if !ok {
		return newErrf(KindWeightInvalid, "no such variable %q", name)
	}
	if !v.IsNumeric() {
		return newErrf(KindWeightInvalid, "weight variable %q must be numeric", name)
	}
	d.Weight = name
	return nil
}

// Reorder moves the variable named name to position newIndex among
// Variables, shifting the others, matching dict_reorder_var's use by the
// long-name-map reader to restore on-disk declaration order (§4.3 subtype 13
// "reorder variables to match blob order").
func (d *Dictionary) Reorder(name string, newIndex int) error {
	d.ensureIndex()
	i, ok := d.byName[name]
	if !ok {
		return newErrf(KindBadVariableName, "no such variable %q", name)
	}
	if newIndex < 0 || newIndex >= len(d.Variables) {
		return newErrf(KindBadVariableName, "reorder index %d out of range", newIndex)
	}
	if i == newIndex {
		return nil
	}
	v := d.Variables[i]
	rest := make([]Variable, 0, len(d.Variables)-1)
	rest = append(rest, d.Variables[:i]...)
	rest = append(rest, d.Variables[i+1:]...)

	out := make([]Variable, 0, len(d.Variables))
	out = append(out, rest[:newIndex]...)
	out = append(out, v)
	out = append(out, rest[newIndex:]...)

	d.Variables = out
	d.byName = nil
	d.byShortName = nil
	d.ensureIndex()
	return nil
}

// SegmentWidth returns the total number of 8-byte segments a case occupies,
// the sum of every variable's SegmentCount (§3). OpenWriter writes it as
// the header's case-size field.
func (d *Dictionary) SegmentWidth() int {
	total := 0
	for _, v := range d.Variables {
		total += v.SegmentCount()
	}
	return total
}

// SetLabel sets the file-level label (the header's "file label" field, §4.3).
func (d *Dictionary) SetLabel(label string) { d.Label = label }

// SetDocuments replaces the file's document lines (tag-6, §4.3). Each line
// is truncated or space-padded to 80 bytes on write; callers don't need to
// pre-pad them here.
func (d *Dictionary) SetDocuments(lines []string) { d.Documents = lines }

// Case holds one row of data: one Value per variable, in dictionary order.
type Case []Value

// At returns the value at position i.
func (c Case) At(i int) Value { return c[i] }

// Set assigns the value at position i.
func (c Case) Set(i int, v Value) { c[i] = v }

// Get returns the value of the named variable in c, given the dictionary
// that describes it.
func (d *Dictionary) Get(c Case, name string) (Value, error) {
	v, ok := d.VariableByName(name)
	if !ok {
		return Value{}, newErrf(KindBadVariableName, "no such variable %q", name)
	}
	d.ensureIndex()
	i := d.byName[name]
	if i >= len(c) {
		return Value{}, fmt.Errorf("case has %d values, variable %q is at index %d", len(c), v.Name, i)
	}
	return c[i], nil
}
