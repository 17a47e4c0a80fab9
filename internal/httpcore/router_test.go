package httpcore

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"gomediaserver/internal/soap"
)

func TestNewMuxServesDescriptorsAndUnknownPath(t *testing.T) {
	root := t.TempDir()
	s := openTestStore(t)
	h := newTestHandler(t, s, root)

	descriptors, err := NewDescriptors(DescriptorInfo{FriendlyName: "Test Server", UUID: "uuid:test"}, nil)
	if err != nil {
		t.Fatalf("NewDescriptors: %v", err)
	}

	mux := NewMux(Router{
		Descriptors: descriptors,
		Dispatcher:  soap.NewDispatcher(s, "127.0.0.1", 8081, false, nil),
		Stream:      h,
	})

	req := httptest.NewRequest(http.MethodGet, "/rootDesc.xml", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("rootDesc status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/nothing-here", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path status = %d, want 404", rec.Code)
	}
}
