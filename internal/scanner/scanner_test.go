package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gomediaserver/internal/catalog"
	"gomediaserver/internal/probe"
)

type fakeProber struct{}

func (fakeProber) Probe(path string) (*probe.ContainerInfo, error) {
	return nil, errors.New("fake: no container probing in scanner tests")
}

func openTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := catalog.Open(context.Background(), filepath.Join(dir, "files.db"))
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestScannerRunBuildsHierarchy(t *testing.T) {
	mediaDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(mediaDir, "Show"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"movie1.mp4":       "fake mp4 bytes",
		"movie2.mkv":       "fake mkv bytes",
		".hidden.mp4":      "should be ignored",
		"Show/episode.mp4": "fake episode bytes",
	}
	for name, content := range files {
		path := filepath.Join(mediaDir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store := openTestStore(t)
	ctx := context.Background()
	if err := store.PutObject(ctx, catalog.Object{
		ObjectID: catalog.RootObjectID, ParentID: catalog.RootParentID,
		Class: "container.storageFolder", Name: "root",
	}); err != nil {
		t.Fatal(err)
	}

	prober := probe.New(fakeProber{}, nil)
	sc := New(store, prober, []Root{
		{Path: mediaDir, Kinds: probe.MaskAll, ObjectID: catalog.MintChildID(catalog.RootObjectID, 0)},
	}, nil)

	if err := sc.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	rootMediaID := catalog.MintChildID(catalog.RootObjectID, 0)
	children, err := store.ListChildren(ctx, rootMediaID, 0, 0, catalog.Order{})
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}

	var names []string
	for _, c := range children {
		names = append(names, c.Name)
	}
	// movie1.mp4 and movie2.mkv fail probing (fakeProber always errors) but
	// still get stored with a fallback MIME; the hidden file is skipped;
	// Show/ becomes a subcontainer.
	if len(names) != 3 {
		t.Fatalf("children = %v, want 3 entries (2 files + 1 subdir)", names)
	}

	foundShow := false
	for _, c := range children {
		if c.Name == "Show" && c.Class == "container.storageFolder" {
			foundShow = true
		}
	}
	if !foundShow {
		t.Errorf("expected a Show subcontainer among %v", names)
	}
}

func TestScannerIsIdempotentOnRerun(t *testing.T) {
	mediaDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(mediaDir, "movie.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := openTestStore(t)
	ctx := context.Background()
	if err := store.PutObject(ctx, catalog.Object{
		ObjectID: catalog.RootObjectID, ParentID: catalog.RootParentID,
		Class: "container.storageFolder", Name: "root",
	}); err != nil {
		t.Fatal(err)
	}

	prober := probe.New(fakeProber{}, nil)
	root := Root{Path: mediaDir, Kinds: probe.MaskAll, ObjectID: catalog.MintChildID(catalog.RootObjectID, 0)}
	sc := New(store, prober, []Root{root}, nil)

	if err := sc.Run(ctx); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if err := sc.Run(ctx); err != nil {
		t.Fatalf("second Run: %v", err)
	}
}

func TestScannerClassesUnrecognizedFileAsPlainItem(t *testing.T) {
	mediaDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(mediaDir, "movie.mp4"), []byte("fake mp4 bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := openTestStore(t)
	ctx := context.Background()
	if err := store.PutObject(ctx, catalog.Object{
		ObjectID: catalog.RootObjectID, ParentID: catalog.RootParentID,
		Class: "container.storageFolder", Name: "root",
	}); err != nil {
		t.Fatal(err)
	}

	// fakeProber always fails container probing, so probe.Run falls back to
	// MediaKind = KindNone even though the filename-extension guess is video.
	prober := probe.New(fakeProber{}, nil)
	sc := New(store, prober, []Root{
		{Path: mediaDir, Kinds: probe.MaskAll, ObjectID: catalog.MintChildID(catalog.RootObjectID, 0)},
	}, nil)

	if err := sc.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	rootMediaID := catalog.MintChildID(catalog.RootObjectID, 0)
	children, err := store.ListChildren(ctx, rootMediaID, 0, 0, catalog.Order{})
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if len(children) != 1 {
		t.Fatalf("children = %v, want 1", children)
	}
	if children[0].Class != "item" {
		t.Errorf("Class = %q, want \"item\" for an undecodable file (media_kind=none)", children[0].Class)
	}
}

func TestFilterEntriesSkipsHiddenAndUnwanted(t *testing.T) {
	if classify("movie.mp4") != probe.KindVideo {
		t.Error("expected .mp4 to classify as video")
	}
	if classify("song.mp3") != probe.KindAudio {
		t.Error("expected .mp3 to classify as audio")
	}
	if classify("photo.png") != probe.KindImage {
		t.Error("expected .png to classify as image")
	}
	if classify("info.nfo") != probe.KindNFO {
		t.Error("expected .nfo to classify as nfo")
	}
	if classify("README") != probe.KindNone {
		t.Error("expected extensionless file to classify as none")
	}
	if !isHidden(".hidden") {
		t.Error("expected dotfile to be hidden")
	}
}
