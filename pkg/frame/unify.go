package frame

// Unify concatenates frames into one table. The result's column set is the
// ordered union of all input columns (first-seen order across frames in
// input order); rows keep their frame order and intra-frame order, and any
// row whose source frame lacked a column gets a nil cell there. This is a
// pure ordered union: no deduplication, no sorting, no join keys.
//
// Unify(nil) and Unify of zero frames return the canonical empty frame.
func Unify(frames []*Frame) *Frame {
	var (
		order []string
		seen  = make(map[string]struct{})
		total int
	)
	for _, f := range frames {
		total += f.NumRows()
		for _, name := range f.Columns() {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				order = append(order, name)
			}
		}
	}

	out := New()
	for _, name := range order {
		values := make([]interface{}, 0, total)
		for _, f := range frames {
			if col, ok := f.Column(name); ok {
				values = append(values, col.Values...)
				continue
			}
			// Reindex onto the union: absent column, all cells missing.
			for i := 0; i < f.NumRows(); i++ {
				values = append(values, nil)
			}
		}

		// Frames may disagree on a column's type; re-resolving the
		// concatenated cells promotes int64 -> float64 -> string.
		typ, normalized := resolveValues(values)
		// AddColumn cannot fail here: names are unique by construction
		// and all columns share the total row count.
		_ = out.AddColumn(name, typ, normalized)
	}
	return out
}
