package repository

import (
	"errors"
	"testing"

	"github.com/hpuma/carmarket/internal/model"
)

func TestDecideSoftDeleteFromAnyState(t *testing.T) {
	for _, state := range []string{model.StatePublished, model.StateSold, model.StateDeleted} {
		next, stamp, err := decideSoftDelete(state)
		if err != nil {
			t.Fatalf("from %s: %v", state, err)
		}
		if next != model.StateDeleted || !stamp {
			t.Errorf("from %s: next=%s stamp=%v", state, next, stamp)
		}
	}
}

func TestDecideMarkSoldClearsDeletedAt(t *testing.T) {
	next, stamp, err := decideMarkSold(true)(model.StatePublished)
	if err != nil {
		t.Fatal(err)
	}
	if next != model.StateSold || stamp {
		t.Errorf("next=%s stamp=%v", next, stamp)
	}
}

func TestDecideMarkSoldFromDeleted(t *testing.T) {
	if _, _, err := decideMarkSold(true)(model.StateDeleted); err != nil {
		t.Errorf("permissive mode rejected deleted listing: %v", err)
	}
	if _, _, err := decideMarkSold(false)(model.StateDeleted); !errors.Is(err, ErrInvalidState) {
		t.Errorf("strict mode err = %v, want ErrInvalidState", err)
	}
}

func TestDecideRestore(t *testing.T) {
	for _, state := range []string{model.StateSold, model.StateDeleted} {
		next, stamp, err := decideRestore(state)
		if err != nil {
			t.Fatalf("from %s: %v", state, err)
		}
		if next != model.StatePublished || stamp {
			t.Errorf("from %s: next=%s stamp=%v", state, next, stamp)
		}
	}
	if _, _, err := decideRestore(model.StatePublished); !errors.Is(err, ErrInvalidState) {
		t.Errorf("restore of published listing err = %v, want ErrInvalidState", err)
	}
}
