package fdw

// TargetEntry is one column reference in a statement's target list. Hidden
// entries are bookkeeping columns appended during planning; the executor
// carries them but they never reach the client.
type TargetEntry struct {
	Column string
	Hidden bool
}

// TargetList is the mutable projection of the statement being planned.
type TargetList struct {
	Entries []TargetEntry
}

// Has reports whether any entry, hidden or not, references the column.
func (tl *TargetList) Has(column string) bool {
	for _, e := range tl.Entries {
		if e.Column == column {
			return true
		}
	}
	return false
}

// Append adds an entry to the end of the list.
func (tl *TargetList) Append(e TargetEntry) {
	tl.Entries = append(tl.Entries, e)
}

// Hidden returns the names of all hidden entries, in list order.
func (tl *TargetList) Hidden() []string {
	var cols []string
	for _, e := range tl.Entries {
		if e.Hidden {
			cols = append(cols, e.Column)
		}
	}
	return cols
}

// injectKeyColumns appends a hidden reference for every declared index
// column absent from the statement's existing projection. Update and Delete
// then always receive key values, regardless of the statement's original
// column list.
func injectKeyColumns(tl *TargetList, indexColumns []string) {
	for _, col := range indexColumns {
		if tl.Has(col) {
			continue
		}
		tl.Append(TargetEntry{Column: col, Hidden: true})
	}
}
