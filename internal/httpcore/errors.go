package httpcore

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	errBadRange       = errors.New("httpcore: malformed Range header")
	errTransferReject = errors.New("httpcore: transfer mode rejected for this media kind")
)

// writeError renders a minimal text/html error body, matching the teacher's
// http.Error usage but covering the DLNA-specific statuses (406, 416) the
// stdlib helper has no opinion on.
func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	fmt.Fprintf(w, "<html><head><title>%d %s</title></head><body><h1>%d %s</h1><p>%s</p></body></html>",
		code, http.StatusText(code), code, http.StatusText(code), msg)
}
