package repository

// diffKeys compares the rows a form submits with the rows already stored.
// It returns the keys to insert and to delete.  A key submitted twice is
// reported through dup so the save can fail the way a second INSERT
// would, instead of being collapsed silently.
func diffKeys[K comparable](existing, desired []K) (add, remove []K, dup *K) {
	want := make(map[K]bool, len(desired))
	for i, k := range desired {
		if want[k] {
			return nil, nil, &desired[i]
		}
		want[k] = true
	}
	have := make(map[K]bool, len(existing))
	for _, k := range existing {
		have[k] = true
		if !want[k] {
			remove = append(remove, k)
		}
	}
	for _, k := range desired {
		if !have[k] {
			add = append(add, k)
		}
	}
	return add, remove, dup
}
