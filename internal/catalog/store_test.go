package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gomediaserver/internal/probe"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(context.Background(), filepath.Join(dir, "files.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutObjectDuplicateID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	obj := Object{ObjectID: "0$0", ParentID: "0", Class: "container.storageFolder", Name: "Videos"}
	if err := s.PutObject(ctx, obj); err != nil {
		t.Fatalf("first PutObject: %v", err)
	}
	if err := s.PutObject(ctx, obj); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("second PutObject = %v, want ErrDuplicateID", err)
	}
}

func TestPutDetailAndGetDetail(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	d := Detail{Detail: probe.Detail{
		Path:        "/media/movie.mp4",
		Size:        12345,
		ModifiedAt:  time.Unix(1700000000, 0),
		Title:       "My Movie",
		MIME:        "video/mp4",
		DLNAProfile: "AVC_MP4_HP_HD",
		MediaKind:   probe.KindVideo,
	}}

	id, err := s.PutDetail(ctx, d)
	if err != nil {
		t.Fatalf("PutDetail: %v", err)
	}
	if id == 0 {
		t.Fatal("expected nonzero detail id")
	}

	got, err := s.GetDetail(ctx, id)
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	if got.Title != "My Movie" || got.DLNAProfile != "AVC_MP4_HP_HD" {
		t.Errorf("GetDetail = %+v, want Title=My Movie DLNAProfile=AVC_MP4_HP_HD", got)
	}
}

func TestListChildrenAndCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	root := Object{ObjectID: RootObjectID, ParentID: RootParentID, Class: "container.storageFolder", Name: "root"}
	if err := s.PutObject(ctx, root); err != nil {
		t.Fatalf("put root: %v", err)
	}

	for i, name := range []string{"b.mp4", "a.mp4", "c.mp4"} {
		child := Object{
			ObjectID: MintChildID(RootObjectID, i),
			ParentID: RootObjectID,
			Class:    "item.videoItem",
			Name:     name,
		}
		if err := s.PutObject(ctx, child); err != nil {
			t.Fatalf("put child %d: %v", i, err)
		}
	}

	n, err := s.CountChildren(ctx, RootObjectID)
	if err != nil {
		t.Fatalf("CountChildren: %v", err)
	}
	if n != 3 {
		t.Errorf("CountChildren = %d, want 3", n)
	}

	children, err := s.ListChildren(ctx, RootObjectID, 0, 0, Order{})
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if len(children) != 3 {
		t.Fatalf("ListChildren returned %d, want 3", len(children))
	}
	if children[0].Name != "a.mp4" || children[1].Name != "b.mp4" || children[2].Name != "c.mp4" {
		t.Errorf("ListChildren order = %v, want alphabetical by name", children)
	}
}

func TestFindByGlobMatchesDescendants(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	objs := []Object{
		{ObjectID: "0", ParentID: "-1", Class: "container.storageFolder", Name: "root"},
		{ObjectID: "0$0", ParentID: "0", Class: "container.storageFolder", Name: "videos"},
		{ObjectID: "0$0$0", ParentID: "0$0", Class: "item.videoItem", Name: "movie.mp4"},
		{ObjectID: "0$1", ParentID: "0", Class: "item.videoItem", Name: "unrelated.mp4"},
	}
	for _, o := range objs {
		if err := s.PutObject(ctx, o); err != nil {
			t.Fatalf("put %s: %v", o.ObjectID, err)
		}
	}

	matches, err := s.FindByGlob(ctx, DescendantGlob("0$0"), Predicate{}, Order{}, 0, 0)
	if err != nil {
		t.Fatalf("FindByGlob: %v", err)
	}
	if len(matches) != 1 || matches[0].ObjectID != "0$0$0" {
		t.Errorf("FindByGlob(0$0$*) = %v, want exactly 0$0$0", matches)
	}
}

func TestMaxChildOrdinal(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if max, err := s.MaxChildOrdinal(ctx, "0"); err != nil || max != -1 {
		t.Fatalf("MaxChildOrdinal on empty parent = (%d, %v), want (-1, nil)", max, err)
	}

	for i := 0; i < 5; i++ {
		o := Object{ObjectID: MintChildID("0", i), ParentID: "0", Class: "item.videoItem", Name: "x"}
		if err := s.PutObject(ctx, o); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	max, err := s.MaxChildOrdinal(ctx, "0")
	if err != nil {
		t.Fatalf("MaxChildOrdinal: %v", err)
	}
	if max != 4 {
		t.Errorf("MaxChildOrdinal = %d, want 4", max)
	}
}

func TestSystemUpdateIDBumpsOnlyWhenDue(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if bumped, _ := s.BumpSystemUpdateIDIfDue(time.Hour); bumped {
		t.Error("expected no bump with zero pending changes")
	}

	if err := s.PutObject(ctx, Object{ObjectID: "0", ParentID: "-1", Class: "container.storageFolder", Name: "root"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	bumped, id := s.BumpSystemUpdateIDIfDue(0)
	if !bumped || id != 1 {
		t.Errorf("BumpSystemUpdateIDIfDue = (%v, %d), want (true, 1)", bumped, id)
	}

	// Immediately again with a long min-interval: should not bump even
	// though there could be new changes, since not enough time elapsed.
	if bumped, _ := s.BumpSystemUpdateIDIfDue(time.Hour); bumped {
		t.Error("expected no bump within min interval")
	}
}

func TestLastOrdinal(t *testing.T) {
	cases := []struct {
		id      string
		want    int
		wantOK  bool
	}{
		{"0$a", 10, true},
		{"0$0$f", 15, true},
		{"0", 0, false},
		{"0$", 0, false},
		{"0$zz", 0, false},
	}
	for _, c := range cases {
		got, ok := lastOrdinal(c.id)
		if ok != c.wantOK || (ok && got != c.want) {
			t.Errorf("lastOrdinal(%q) = (%d, %v), want (%d, %v)", c.id, got, ok, c.want, c.wantOK)
		}
	}
}
