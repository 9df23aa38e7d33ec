package repository

import (
	"reflect"
	"testing"
)

func TestDiffKeys(t *testing.T) {
	add, remove, dup := diffKeys([]uint64{1, 2, 3}, []uint64{3, 4, 1})
	if dup != nil {
		t.Fatalf("unexpected dup %v", *dup)
	}
	if !reflect.DeepEqual(add, []uint64{4}) {
		t.Fatalf("add = %v", add)
	}
	if !reflect.DeepEqual(remove, []uint64{2}) {
		t.Fatalf("remove = %v", remove)
	}
}

func TestDiffKeysEmptyDesiredRemovesAll(t *testing.T) {
	add, remove, _ := diffKeys([]uint64{5, 6}, []uint64{})
	if len(add) != 0 || !reflect.DeepEqual(remove, []uint64{5, 6}) {
		t.Fatalf("add=%v remove=%v", add, remove)
	}
}

func TestDiffKeysReportsDuplicateSubmission(t *testing.T) {
	type role struct{ staff, kind uint64 }
	_, _, dup := diffKeys([]role{{1, 1}}, []role{{1, 2}, {3, 1}, {1, 2}})
	if dup == nil || *dup != (role{1, 2}) {
		t.Fatalf("dup = %v", dup)
	}
}

func TestDiffKeysSameRoleTwiceDifferentTypeIsAllowed(t *testing.T) {
	type role struct{ staff, kind uint64 }
	add, _, dup := diffKeys(nil, []role{{1, 1}, {1, 2}})
	if dup != nil || len(add) != 2 {
		t.Fatalf("add=%v dup=%v", add, dup)
	}
}
