package handler

import (
	"net/http"
	"testing"
)

func TestUserCreateRejectsMissingFields(t *testing.T) {
	h := &UserHandler{}
	cases := []string{
		`{}`,
		`{"first_name":"Ana","last_name":"P","email":"a@b.com","password":"x"}`,
		`{"first_name":"Ana","last_name":"P","password":"x","phone":"123"}`,
	}
	for _, body := range cases {
		c, rec := newTestContext(http.MethodPost, "/v1/users", body)
		if err := h.Create(c); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestUserCreateRejectsUnknownPackage(t *testing.T) {
	h := &UserHandler{}
	body := `{"first_name":"Ana","last_name":"P","email":"a@b.com","password":"x","phone":"123","package_type":"platinum"}`
	c, rec := newTestContext(http.MethodPost, "/v1/users", body)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUserGetByIDRejectsBadID(t *testing.T) {
	h := &UserHandler{}
	c, rec := newTestContext(http.MethodGet, "/v1/users/xyz", "")
	c.SetParamNames("id")
	c.SetParamValues("xyz")
	if err := h.GetByID(c); err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetUserIDFromContext(t *testing.T) {
	c, _ := newTestContext(http.MethodGet, "/", "")
	c.Set("user_id", uint64(7))
	if uid, err := getUserID(c); err != nil || uid != 7 {
		t.Errorf("uint64: got %d, %v", uid, err)
	}
	c.Set("user_id", float64(8))
	if uid, err := getUserID(c); err != nil || uid != 8 {
		t.Errorf("float64: got %d, %v", uid, err)
	}
	c.Set("user_id", "9")
	if uid, err := getUserID(c); err != nil || uid != 9 {
		t.Errorf("string: got %d, %v", uid, err)
	}
	c.Set("user_id", nil)
	if _, err := getUserID(c); err == nil {
		t.Error("nil accepted")
	}
}

func TestPageParam(t *testing.T) {
	cases := map[string]int{
		"/?page=3":  3,
		"/?page=0":  1,
		"/?page=-2": 1,
		"/?page=x":  1,
		"/":         1,
	}
	for target, want := range cases {
		c, _ := newTestContext(http.MethodGet, target, "")
		if got := pageParam(c); got != want {
			t.Errorf("pageParam(%q) = %d, want %d", target, got, want)
		}
	}
}
