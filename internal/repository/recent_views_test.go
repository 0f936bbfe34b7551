package repository

import (
	"reflect"
	"testing"
)

func TestPushRecentPrepends(t *testing.T) {
	got := pushRecent([]uint64{2, 3}, 1)
	if !reflect.DeepEqual(got, []uint64{1, 2, 3}) {
		t.Fatalf("got %v, want [1 2 3]", got)
	}
}

func TestPushRecentMovesDuplicateToFront(t *testing.T) {
	got := pushRecent([]uint64{5, 7, 9}, 9)
	if !reflect.DeepEqual(got, []uint64{9, 5, 7}) {
		t.Fatalf("got %v, want [9 5 7]", got)
	}
}

func TestPushRecentRepeatOfFrontIsNoop(t *testing.T) {
	got := pushRecent([]uint64{4, 6}, 4)
	if !reflect.DeepEqual(got, []uint64{4, 6}) {
		t.Fatalf("got %v, want [4 6]", got)
	}
}

func TestPushRecentEvictsOldest(t *testing.T) {
	got := pushRecent([]uint64{3, 2, 1}, 4)
	if !reflect.DeepEqual(got, []uint64{4, 3, 2}) {
		t.Fatalf("got %v, want [4 3 2]", got)
	}
}

func TestPushRecentNeverExceedsCap(t *testing.T) {
	list := []uint64{}
	for id := uint64(1); id <= 10; id++ {
		list = pushRecent(list, id)
		if len(list) > 3 {
			t.Fatalf("list grew past cap: %v", list)
		}
	}
	if !reflect.DeepEqual(list, []uint64{10, 9, 8}) {
		t.Fatalf("got %v, want [10 9 8]", list)
	}
}

func TestPushRecentEmptyList(t *testing.T) {
	got := pushRecent(nil, 42)
	if !reflect.DeepEqual(got, []uint64{42}) {
		t.Fatalf("got %v, want [42]", got)
	}
}
