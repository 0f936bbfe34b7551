package repository

import (
	"errors"
	"strings"
	"testing"

	"github.com/hpuma/carmarket/internal/model"
)

func TestOrderClauseKnownSorts(t *testing.T) {
	cases := map[string]string{
		SortRecent:    "v.created_at DESC, v.id ASC",
		SortPriceAsc:  "v.price ASC, v.id ASC",
		SortPriceDesc: "v.price DESC, v.id ASC",
		SortYearDesc:  "v.year DESC, v.id ASC",
		SortKmAsc:     "v.km ASC, v.id ASC",
		SortRelevance: "v.verified DESC, v.created_at DESC, v.id ASC",
	}
	for sort, want := range cases {
		if got := orderClause(sort); got != want {
			t.Errorf("orderClause(%q) = %q, want %q", sort, got, want)
		}
	}
}

func TestOrderClauseFallsBackToRecent(t *testing.T) {
	for _, sort := range []string{"", "bogus", "PRICE"} {
		if got := orderClause(sort); got != orderClause(SortRecent) {
			t.Errorf("orderClause(%q) = %q, want recent ordering", sort, got)
		}
	}
}

func TestOrderClauseTieBreaksOnID(t *testing.T) {
	for _, sort := range []string{SortRecent, SortPriceAsc, SortPriceDesc, SortYearDesc, SortKmAsc, SortRelevance} {
		if got := orderClause(sort); !strings.HasSuffix(got, "v.id ASC") {
			t.Errorf("orderClause(%q) = %q, missing id tie-break", sort, got)
		}
	}
}

func TestBuildVehicleWhereEmpty(t *testing.T) {
	cond, args := buildVehicleWhere(VehicleSearchQuery{})
	if cond != "1=1" {
		t.Fatalf("cond = %q, want 1=1", cond)
	}
	if len(args) != 0 {
		t.Fatalf("args = %v, want empty", args)
	}
}

func TestBuildVehicleWhereSubstringFilters(t *testing.T) {
	cond, args := buildVehicleWhere(VehicleSearchQuery{Brand: "ToYo"})
	if !strings.Contains(cond, "LOWER(v.brand) LIKE ?") {
		t.Fatalf("cond = %q, want brand LIKE clause", cond)
	}
	if len(args) != 1 || args[0] != "%toyo%" {
		t.Fatalf("args = %v, want lowercased pattern", args)
	}
}

func TestBuildVehicleWhereExactFilters(t *testing.T) {
	cond, args := buildVehicleWhere(VehicleSearchQuery{Type: "SUV", Year: 2020})
	if !strings.Contains(cond, "v.type = ?") || !strings.Contains(cond, "v.year = ?") {
		t.Fatalf("cond = %q, want exact type and year clauses", cond)
	}
	if len(args) != 2 || args[0] != "SUV" || args[1] != 2020 {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildVehicleWhereRanges(t *testing.T) {
	min, max := 1000.0, 5000.0
	minKm, maxKm := int64(10), int64(99)
	cond, args := buildVehicleWhere(VehicleSearchQuery{
		MinPrice: &min, MaxPrice: &max, MinKm: &minKm, MaxKm: &maxKm,
	})
	for _, clause := range []string{"v.price >= ?", "v.price <= ?", "v.km >= ?", "v.km <= ?"} {
		if !strings.Contains(cond, clause) {
			t.Errorf("cond = %q, missing %q", cond, clause)
		}
	}
	if len(args) != 4 {
		t.Fatalf("args = %v, want 4 values", args)
	}
}

func TestBuildVehicleWhereZeroBoundsStillFilter(t *testing.T) {
	zero := 0.0
	_, args := buildVehicleWhere(VehicleSearchQuery{MinPrice: &zero})
	if len(args) != 1 {
		t.Fatalf("explicit zero bound was dropped, args = %v", args)
	}
}

func TestBuildVehicleWhereFreeTextSearch(t *testing.T) {
	cond, args := buildVehicleWhere(VehicleSearchQuery{Search: "Golf"})
	if !strings.Contains(cond, "(LOWER(v.brand) LIKE ? OR LOWER(v.model) LIKE ?)") {
		t.Fatalf("cond = %q, want brand OR model clause", cond)
	}
	if len(args) != 2 || args[0] != "%golf%" || args[1] != "%golf%" {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildVehicleWhereSellerScope(t *testing.T) {
	cond, args := buildVehicleWhere(VehicleSearchQuery{SellerID: 7, Status: "USED"})
	if !strings.Contains(cond, "v.seller_id = ?") {
		t.Fatalf("cond = %q, want seller scope", cond)
	}
	if !strings.Contains(cond, " AND ") {
		t.Fatalf("cond = %q, clauses not ANDed", cond)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v", args)
	}
}

func TestPageWindow(t *testing.T) {
	// 20 rows at 9 per page is 3 pages.
	if tp, err := pageWindow(3, 9, 20); err != nil || tp != 3 {
		t.Errorf("last page: totalPages=%d err=%v", tp, err)
	}
	if tp, err := pageWindow(1, 9, 20); err != nil || tp != 3 {
		t.Errorf("first page: totalPages=%d err=%v", tp, err)
	}
	// An exact multiple has no partial trailing page.
	if tp, err := pageWindow(2, 10, 20); err != nil || tp != 2 {
		t.Errorf("exact multiple: totalPages=%d err=%v", tp, err)
	}
}

func TestPageWindowPastEnd(t *testing.T) {
	if _, err := pageWindow(4, 9, 20); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("page past end: err = %v, want ErrPageOutOfRange", err)
	}
	if _, err := pageWindow(3, 10, 20); !errors.Is(err, ErrPageOutOfRange) {
		t.Errorf("page just past exact multiple: err = %v, want ErrPageOutOfRange", err)
	}
}

func TestPageWindowEmptyResultSet(t *testing.T) {
	for _, page := range []int{1, 2, 99} {
		if tp, err := pageWindow(page, 9, 0); err != nil || tp != 0 {
			t.Errorf("page %d of empty set: totalPages=%d err=%v", page, tp, err)
		}
	}
}

func TestCollapseToMainAttachesFlaggedImage(t *testing.T) {
	items := []VehicleSummary{
		{Vehicle: model.Vehicle{ID: 1}},
		{Vehicle: model.Vehicle{ID: 2}},
	}
	collapseToMain(items, map[uint64]string{1: "one.jpg"})

	if len(items[0].Images) != 1 || items[0].Images[0].URL != "one.jpg" || !items[0].Images[0].IsMain {
		t.Errorf("item 1 images = %v", items[0].Images)
	}
	if items[1].Images == nil || len(items[1].Images) != 0 {
		t.Errorf("item without main image = %v, want empty non-nil set", items[1].Images)
	}
}

func TestCollapseToMainIgnoresUnknownIDs(t *testing.T) {
	items := []VehicleSummary{{Vehicle: model.Vehicle{ID: 5}}}
	collapseToMain(items, map[uint64]string{99: "stray.jpg"})
	if len(items[0].Images) != 0 {
		t.Errorf("stray url attached: %v", items[0].Images)
	}
}

func TestBuildVehicleWhereVerified(t *testing.T) {
	f := false
	cond, args := buildVehicleWhere(VehicleSearchQuery{Verified: &f})
	if !strings.Contains(cond, "v.verified = ?") {
		t.Fatalf("cond = %q", cond)
	}
	if len(args) != 1 || args[0] != false {
		t.Fatalf("args = %v, want explicit false", args)
	}
}
