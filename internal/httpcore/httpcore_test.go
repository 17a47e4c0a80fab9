package httpcore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"gomediaserver/internal/catalog"
	"gomediaserver/internal/media"
	"gomediaserver/internal/probe"
)

func openTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	s, err := catalog.Open(context.Background(), t.TempDir()+"/catalog.db")
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedVideoDetail(t *testing.T, s *catalog.Store, root string) int64 {
	t.Helper()
	path := filepath.Join(root, "movie.mp4")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("write fixture file: %v", err)
	}
	id, err := s.PutDetail(context.Background(), catalog.Detail{Detail: probe.Detail{
		Path:      path,
		Size:      10,
		Title:     "movie",
		MIME:      "video/mp4",
		MediaKind: probe.KindVideo,
	}})
	if err != nil {
		t.Fatalf("put detail: %v", err)
	}
	return id
}

func newTestHandler(t *testing.T, s *catalog.Store, root string) *StreamHandler {
	return NewStreamHandler(s, []string{root}, media.ModeFileDirect, 0, nil, false, nil)
}

func TestParseDetailID(t *testing.T) {
	id, ok := parseDetailID("/MediaItems/42.mp4")
	if !ok || id != 42 {
		t.Fatalf("got id=%d ok=%v, want 42/true", id, ok)
	}
	if _, ok := parseDetailID("/other/42.mp4"); ok {
		t.Fatalf("expected no match for unrelated prefix")
	}
}

func TestStreamServesWholeFile(t *testing.T) {
	root := t.TempDir()
	s := openTestStore(t)
	id := seedVideoDetail(t, s, root)
	h := newTestHandler(t, s, root)

	req := httptest.NewRequest(http.MethodGet, "/MediaItems/"+itoa(id)+".mp4", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "0123456789" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if rec.Header().Get("Accept-Ranges") != "bytes" {
		t.Errorf("missing Accept-Ranges header")
	}
}

func TestStreamServesPartialRange(t *testing.T) {
	root := t.TempDir()
	s := openTestStore(t)
	id := seedVideoDetail(t, s, root)
	h := newTestHandler(t, s, root)

	req := httptest.NewRequest(http.MethodGet, "/MediaItems/"+itoa(id)+".mp4", nil)
	req.Header.Set("Range", "bytes=2-5")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206, body = %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "2345" {
		t.Errorf("body = %q, want 2345", rec.Body.String())
	}
	if cr := rec.Header().Get("Content-Range"); cr != "bytes 2-5/10" {
		t.Errorf("Content-Range = %q", cr)
	}
}

func TestStreamRangeStartPastEndIsBadRequest(t *testing.T) {
	root := t.TempDir()
	s := openTestStore(t)
	id := seedVideoDetail(t, s, root)
	h := newTestHandler(t, s, root)

	req := httptest.NewRequest(http.MethodGet, "/MediaItems/"+itoa(id)+".mp4", nil)
	req.Header.Set("Range", "bytes=8-3")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStreamRangeEndBeyondSizeIsNotSatisfiable(t *testing.T) {
	root := t.TempDir()
	s := openTestStore(t)
	id := seedVideoDetail(t, s, root)
	h := newTestHandler(t, s, root)

	req := httptest.NewRequest(http.MethodGet, "/MediaItems/"+itoa(id)+".mp4", nil)
	req.Header.Set("Range", "bytes=20-200")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("status = %d, want 416, body = %s", rec.Code, rec.Body.String())
	}
	if cr := rec.Header().Get("Content-Range"); cr != "bytes */10" {
		t.Errorf("Content-Range = %q, want bytes */10", cr)
	}
}

func TestStreamUnknownDetailIs404(t *testing.T) {
	root := t.TempDir()
	s := openTestStore(t)
	h := newTestHandler(t, s, root)

	req := httptest.NewRequest(http.MethodGet, "/MediaItems/999.mp4", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestStreamImageRejectsStreamingMode(t *testing.T) {
	root := t.TempDir()
	s := openTestStore(t)
	path := filepath.Join(root, "photo.jpg")
	if err := os.WriteFile(path, []byte("jpgdata"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	id, err := s.PutDetail(context.Background(), catalog.Detail{Detail: probe.Detail{
		Path: path, Size: 7, MIME: "image/jpeg", MediaKind: probe.KindImage,
	}})
	if err != nil {
		t.Fatalf("put detail: %v", err)
	}
	h := newTestHandler(t, s, root)

	req := httptest.NewRequest(http.MethodGet, "/MediaItems/"+itoa(id)+".jpg", nil)
	req.Header.Set("transferMode.dlna.org", "Streaming")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotAcceptable {
		t.Fatalf("status = %d, want 406", rec.Code)
	}
}

func TestStreamTimeSeekWithoutRangeIsRejected(t *testing.T) {
	root := t.TempDir()
	s := openTestStore(t)
	id := seedVideoDetail(t, s, root)
	h := newTestHandler(t, s, root)

	req := httptest.NewRequest(http.MethodGet, "/MediaItems/"+itoa(id)+".mp4", nil)
	req.Header.Set("TimeSeekRange.dlna.org", "npt=10.0-")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotAcceptable {
		t.Fatalf("status = %d, want 406", rec.Code)
	}
}

func TestStreamWidePathRejected(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	s := openTestStore(t)
	path := filepath.Join(outside, "escape.mp4")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	id, err := s.PutDetail(context.Background(), catalog.Detail{Detail: probe.Detail{
		Path: path, Size: 1, MIME: "video/mp4", MediaKind: probe.KindVideo,
	}})
	if err != nil {
		t.Fatalf("put detail: %v", err)
	}
	h := newTestHandler(t, s, root)

	req := httptest.NewRequest(http.MethodGet, "/MediaItems/"+itoa(id)+".mp4", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestContentFeaturesFlagsForVideoVsImage(t *testing.T) {
	videoFeatures := contentFeatures("AVC_MP4_BL_CIF15_AAC_520", probe.KindVideo, transferStreaming)
	if !strings.Contains(videoFeatures, "DLNA.ORG_PN=AVC_MP4_BL_CIF15_AAC_520") {
		t.Errorf("missing DLNA.ORG_PN: %s", videoFeatures)
	}
	if !strings.Contains(videoFeatures, "DLNA.ORG_FLAGS=01700000") {
		t.Errorf("unexpected video flags: %s", videoFeatures)
	}

	imageFeatures := contentFeatures("", probe.KindImage, transferInteractive)
	if strings.Contains(imageFeatures, "DLNA.ORG_PN=") {
		t.Errorf("expected no PN for unprofiled image: %s", imageFeatures)
	}
	if !strings.Contains(imageFeatures, "DLNA.ORG_FLAGS=00F00000") {
		t.Errorf("unexpected image flags: %s", imageFeatures)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
