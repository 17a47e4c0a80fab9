package probe

import (
	"os"
	"path/filepath"
	"testing"
)

type fakeProber struct {
	info *ContainerInfo
	err  error
}

func (f fakeProber) Probe(path string) (*ContainerInfo, error) {
	return f.info, f.err
}

func writeTempFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestProbeRunVideo(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "movie.mp4", []byte("fake mp4 bytes"))

	p := New(fakeProber{info: &ContainerInfo{
		FormatName: "mov,mp4,m4a,3gp,3g2,mj2",
		DurationMs: 5000,
		BitrateBps: 4_000_000,
		Video: &StreamInfo{
			CodecName: "h264",
			Profile:   "high",
			Width:     1920,
			Height:    1080,
		},
		Audio: &StreamInfo{
			CodecName:  "aac",
			Channels:   2,
			SampleRate: 48000,
			BitrateBps: 192000,
			ExtraData:  []byte{0x12, 0x10},
		},
	}}, nil)

	d, err := p.Run(path, KindVideo)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d.MediaKind != KindVideo {
		t.Errorf("MediaKind = %v, want KindVideo", d.MediaKind)
	}
	if d.Resolution != "1920x1080" {
		t.Errorf("Resolution = %q, want 1920x1080", d.Resolution)
	}
	if d.DLNAProfile != "AVC_MP4_HP_HD_AAC_MULT5" {
		t.Errorf("DLNAProfile = %q, want AVC_MP4_HP_HD_AAC_MULT5", d.DLNAProfile)
	}
	if d.MIME != "video/mp4" {
		t.Errorf("MIME = %q, want video/mp4", d.MIME)
	}
	if d.Title != "movie" {
		t.Errorf("Title = %q, want movie", d.Title)
	}
}

func TestProbeRunVideoNoVideoStreamYieldsKindNone(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "audiobook.mp4", []byte("fake mp4 bytes"))

	p := New(fakeProber{info: &ContainerInfo{
		FormatName: "mov,mp4,m4a,3gp,3g2,mj2",
		DurationMs: 5000,
		Audio: &StreamInfo{
			CodecName:  "aac",
			Channels:   2,
			SampleRate: 48000,
		},
	}}, nil)

	d, err := p.Run(path, KindVideo)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d.MediaKind != KindNone {
		t.Errorf("MediaKind = %v, want KindNone for a no-video-stream candidate", d.MediaKind)
	}
}

func TestProbeRunContainerProbeFailureYieldsKindNone(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "corrupt.mp4", []byte("not actually a container"))

	p := New(fakeProber{err: ErrUnsupportedKind}, nil)

	d, err := p.Run(path, KindVideo)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d.MediaKind != KindNone {
		t.Errorf("MediaKind = %v, want KindNone when the container probe fails", d.MediaKind)
	}
}

func TestProbeRunVideoNoVideoStream(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "weird.mp4", []byte("x"))

	p := New(fakeProber{info: &ContainerInfo{FormatName: "mp4", Audio: &StreamInfo{CodecName: "aac"}}}, nil)

	d, err := p.Run(path, KindVideo)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d.DLNAProfile != "" {
		t.Errorf("DLNAProfile = %q, want empty for missing video stream", d.DLNAProfile)
	}
	if d.MIME == "" {
		t.Error("expected a fallback MIME type even without a video stream")
	}
}

func TestProbeRunProbeFailureFallsBackToMimeSniff(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "clip.bin", []byte("%PDF-1.4 not actually a pdf but sniffable"))

	p := New(fakeProber{err: ErrProbeFailed}, nil)

	d, err := p.Run(path, KindVideo)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d.MIME == "" {
		t.Error("expected non-empty MIME fallback on probe failure")
	}
	if d.DLNAProfile != "" {
		t.Errorf("DLNAProfile = %q, want empty on probe failure", d.DLNAProfile)
	}
}

func TestProbeRunNFOOverride(t *testing.T) {
	dir := t.TempDir()
	videoPath := writeTempFile(t, dir, "show.mkv", []byte("x"))
	writeTempFile(t, dir, "show.nfo", []byte(`<movie><title>Override Title</title><genre>Drama</genre></movie>`))

	p := New(fakeProber{info: &ContainerInfo{
		FormatName: "matroska,webm",
		Video:      &StreamInfo{CodecName: "h264", Profile: "main", Width: 1280, Height: 720},
	}}, nil)

	d, err := p.Run(videoPath, KindVideo)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d.Title != "Override Title" {
		t.Errorf("Title = %q, want sidecar override", d.Title)
	}
	if d.Genre != "Drama" {
		t.Errorf("Genre = %q, want Drama", d.Genre)
	}
}

func TestProbeRunImage(t *testing.T) {
	dir := t.TempDir()
	// Minimal valid PNG signature, enough for mimetype to sniff.
	png := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	path := writeTempFile(t, dir, "photo.png", png)

	p := New(fakeProber{}, nil)
	d, err := p.Run(path, KindImage)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if d.MediaKind != KindImage {
		t.Errorf("MediaKind = %v, want KindImage", d.MediaKind)
	}
	if d.Size != int64(len(png)) {
		t.Errorf("Size = %d, want %d", d.Size, len(png))
	}
}

func TestProbeRunUnsupportedKind(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "whatever", []byte("x"))

	p := New(fakeProber{}, nil)
	if _, err := p.Run(path, KindNone); err == nil {
		t.Error("expected error for unsupported media kind")
	}
}
