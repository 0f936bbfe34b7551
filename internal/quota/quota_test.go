package quota

import (
	"context"
	"errors"
	"testing"

	"github.com/hpuma/carmarket/internal/model"
)

type fakeUsers struct {
	user model.User
	err  error
}

func (f fakeUsers) GetByID(context.Context, uint64) (model.User, error) { return f.user, f.err }

type fakePackages struct {
	pkg model.Package
	err error
}

func (f fakePackages) GetByType(context.Context, string) (model.Package, error) {
	return f.pkg, f.err
}

type fakeCounter struct {
	count int64
	err   error
}

func (f fakeCounter) CountBySeller(context.Context, uint64) (int64, error) { return f.count, f.err }

func guardWith(u fakeUsers, p fakePackages, c fakeCounter) *Guard {
	return NewGuard(u, p, c)
}

func TestCanPublishUnderLimit(t *testing.T) {
	g := guardWith(
		fakeUsers{user: model.User{ID: 1, PackageType: "basic"}},
		fakePackages{pkg: model.Package{Type: "basic", MaxListings: 3}},
		fakeCounter{count: 2},
	)
	if !g.CanPublish(context.Background(), 1) {
		t.Fatal("user under limit was denied")
	}
}

func TestCanPublishAtLimit(t *testing.T) {
	g := guardWith(
		fakeUsers{user: model.User{ID: 1, PackageType: "basic"}},
		fakePackages{pkg: model.Package{Type: "basic", MaxListings: 3}},
		fakeCounter{count: 3},
	)
	if g.CanPublish(context.Background(), 1) {
		t.Fatal("user at limit was allowed")
	}
}

func TestCanPublishNoPackage(t *testing.T) {
	g := guardWith(
		fakeUsers{user: model.User{ID: 1}},
		fakePackages{},
		fakeCounter{},
	)
	if g.CanPublish(context.Background(), 1) {
		t.Fatal("user without a package was allowed")
	}
}

func TestCanPublishFailsClosed(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name string
		g    *Guard
	}{
		{"user lookup error", guardWith(
			fakeUsers{err: boom},
			fakePackages{pkg: model.Package{MaxListings: 3}},
			fakeCounter{},
		)},
		{"package lookup error", guardWith(
			fakeUsers{user: model.User{ID: 1, PackageType: "basic"}},
			fakePackages{err: boom},
			fakeCounter{},
		)},
		{"count error", guardWith(
			fakeUsers{user: model.User{ID: 1, PackageType: "basic"}},
			fakePackages{pkg: model.Package{Type: "basic", MaxListings: 3}},
			fakeCounter{err: boom},
		)},
	}
	for _, tc := range cases {
		if tc.g.CanPublish(context.Background(), 1) {
			t.Errorf("%s: guard did not fail closed", tc.name)
		}
	}
}
