package didl

import (
	"strings"
	"testing"

	"gomediaserver/internal/catalog"
	"gomediaserver/internal/probe"
)

func TestRenderContainerRoot(t *testing.T) {
	b := NewBuffer(0)
	rc := RenderContext{IfaceIP: "192.168.1.10", Port: 8200, Filter: FilterAll}

	obj := catalog.Object{ObjectID: catalog.RootObjectID, ParentID: catalog.RootParentID, Class: "container.storageFolder", Name: "root"}
	if err := RenderNode(b, rc, obj, nil); err != nil {
		t.Fatalf("RenderNode: %v", err)
	}

	out := b.String()
	if !strings.Contains(out, `id="0"`) || !strings.Contains(out, `parentID="-1"`) {
		t.Errorf("missing root id/parentID attrs: %s", out)
	}
	if !strings.Contains(out, `<upnp:class>object.container.storageFolder</upnp:class>`) {
		t.Errorf("missing upnp:class: %s", out)
	}
}

func TestRenderItemWithResource(t *testing.T) {
	b := NewBuffer(0)
	rc := RenderContext{IfaceIP: "10.0.0.5", Port: 8200, Filter: FilterAll}

	d := &catalog.Detail{ID: 42, Detail: probe.Detail{
		Title:       "My Movie",
		Size:        123456,
		MIME:        "video/mp4",
		DLNAProfile: "AVC_MP4_HP_HD",
		Resolution:  "1920x1080",
		DurationMs:  65000,
	}}
	obj := catalog.Object{ObjectID: "0$0$0", ParentID: "0$0", Class: "item.videoItem", Name: "My Movie"}

	if err := RenderNode(b, rc, obj, d); err != nil {
		t.Fatalf("RenderNode: %v", err)
	}

	out := b.String()
	if !strings.Contains(out, "http://10.0.0.5:8200/MediaItems/42.mp4") {
		t.Errorf("missing synthesized URL: %s", out)
	}
	if !strings.Contains(out, `size="123456"`) {
		t.Errorf("missing size attr: %s", out)
	}
	if !strings.Contains(out, "DLNA.ORG_PN=AVC_MP4_HP_HD") {
		t.Errorf("missing DLNA profile: %s", out)
	}
	if !strings.Contains(out, `duration="0:01:05.000"`) {
		t.Errorf("missing duration attr: %s", out)
	}
}

func TestRenderItemFilterExcludesFields(t *testing.T) {
	b := NewBuffer(0)
	rc := RenderContext{IfaceIP: "10.0.0.5", Port: 8200, Filter: ParseFilter("dc:title")}

	d := &catalog.Detail{ID: 1, Detail: probe.Detail{Title: "t", MIME: "video/mp4", Genre: "Action"}}
	obj := catalog.Object{ObjectID: "0$0", ParentID: "0", Class: "item.videoItem", Name: "t"}

	if err := RenderNode(b, rc, obj, d); err != nil {
		t.Fatalf("RenderNode: %v", err)
	}
	out := b.String()
	if strings.Contains(out, "<res ") {
		t.Errorf("expected no <res> when Filter doesn't include 'res': %s", out)
	}
	if strings.Contains(out, "upnp:genre") {
		t.Errorf("expected no genre when Filter doesn't include upnp:genre: %s", out)
	}
}

func TestEscapeRoundTripsTitle(t *testing.T) {
	title := `A & B < C > D "quoted"`
	escaped := escapeText(title)
	if strings.Contains(escaped, "&\"") {
		t.Errorf("escapeText should not pass raw quotes through unexpectedly: %s", escaped)
	}
	// A single de-escape of the entities we emit recovers the original for
	// the characters escapeText actually encodes (&, <, >).
	restored := strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">").Replace(escaped)
	if restored != title {
		t.Errorf("round trip = %q, want %q", restored, title)
	}
}

func TestParseFilterWildcardMeansAll(t *testing.T) {
	if ParseFilter("") != FilterAll {
		t.Error("empty filter should mean all")
	}
	if ParseFilter("*") != FilterAll {
		t.Error("* filter should mean all")
	}
	if ParseFilter("res,@size") != FilterRes|FilterSize {
		t.Error("explicit filter should select only listed tokens")
	}
}

func TestBufferGrowsAndTruncates(t *testing.T) {
	b := NewBuffer(0)
	if err := b.AppendString(strings.Repeat("x", 100)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	mark := b.Len()
	if err := b.AppendString("y"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	b.Truncate(mark)
	if b.Len() != mark {
		t.Errorf("Len after truncate = %d, want %d", b.Len(), mark)
	}
}

func TestBufferHardCapExceeded(t *testing.T) {
	b := NewBuffer(10)
	if err := b.AppendString(strings.Repeat("x", 5)); err != nil {
		t.Fatalf("unexpected error within cap: %v", err)
	}
	err := b.AppendString(strings.Repeat("y", 1<<20))
	if err == nil {
		t.Fatal("expected ErrBufferCapExceeded when growth would exceed hard cap")
	}
}
