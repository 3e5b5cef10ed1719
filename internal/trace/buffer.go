package trace

// NamedArray is one recorded int array.
type NamedArray struct {
	Name   string
	Values []int
}

// NamedInt is one recorded variable or highlight.
type NamedInt struct {
	Name  string
	Value int
}

// stepBuffer holds the transient state of the open step.
//
// Entries keep the position of their first write. Re-recording a name within
// the same step overwrites the value in place and does not count against the
// limit.
type stepBuffer struct {
	arrays     []NamedArray
	variables  []NamedInt
	highlights []NamedInt
	message    string
}

func (b *stepBuffer) reset() {
	b.arrays = nil
	b.variables = nil
	b.highlights = nil
	b.message = ""
}

// putArray stores a copy of values, truncated to lim.MaxArrayLen. It returns
// the overflow, if any; a truncated array is still stored.
func (b *stepBuffer) putArray(name string, values []int, lim Limits) *CapacityError {
	var overflow *CapacityError
	if len(values) > lim.MaxArrayLen {
		values = values[:lim.MaxArrayLen]
		overflow = &CapacityError{Kind: KindArrayLen, Name: name, Limit: lim.MaxArrayLen}
	}
	snapshot := make([]int, len(values))
	copy(snapshot, values)

	for i := range b.arrays {
		if b.arrays[i].Name == name {
			b.arrays[i].Values = snapshot
			return overflow
		}
	}
	if len(b.arrays) >= lim.MaxArrays {
		return &CapacityError{Kind: KindArrays, Name: name, Limit: lim.MaxArrays}
	}
	b.arrays = append(b.arrays, NamedArray{Name: name, Values: snapshot})
	return overflow
}

func (b *stepBuffer) putVariable(name string, value int, lim Limits) *CapacityError {
	return putNamed(&b.variables, name, value, lim.MaxVariables, KindVariables)
}

func (b *stepBuffer) putHighlight(name string, index int, lim Limits) *CapacityError {
	return putNamed(&b.highlights, name, index, lim.MaxHighlights, KindHighlights)
}

func putNamed(list *[]NamedInt, name string, value, limit int, kind Kind) *CapacityError {
	for i := range *list {
		if (*list)[i].Name == name {
			(*list)[i].Value = value
			return nil
		}
	}
	if len(*list) >= limit {
		return &CapacityError{Kind: kind, Name: name, Limit: limit}
	}
	*list = append(*list, NamedInt{Name: name, Value: value})
	return nil
}
