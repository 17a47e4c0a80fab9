package httpcore

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gomediaserver/internal/catalog"
	"gomediaserver/internal/media"
	"gomediaserver/internal/probe"
)

// StreamHandler serves GET/HEAD /MediaItems/<detail_id>.<ext> requests:
// resolve the Detail row, open the underlying file through a media.Root
// (rejecting any path that resolves outside the configured roots), and
// hand off to http.ServeContent for Range/If-Modified-Since handling,
// after stamping the DLNA headers spec.md §4.6.1 requires.
type StreamHandler struct {
	Store      *catalog.Store
	Roots      []string // configured media root directories, absolute paths
	Mode       media.ResourceMode
	BufferSize int
	Limiter    *media.IOLimiter
	StrictDLNA bool
	Log        *slog.Logger
}

func NewStreamHandler(store *catalog.Store, roots []string, mode media.ResourceMode, bufferSize int, limiter *media.IOLimiter, strictDLNA bool, log *slog.Logger) *StreamHandler {
	if log == nil {
		log = slog.Default()
	}
	return &StreamHandler{Store: store, Roots: roots, Mode: mode, BufferSize: bufferSize, Limiter: limiter, StrictDLNA: strictDLNA, Log: log}
}

// ServeHTTP implements the `/MediaItems/<detail_id>.<ext>` route.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	detailID, ok := parseDetailID(r.URL.Path)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	detail, err := h.Store.GetDetail(r.Context(), detailID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no such media item")
			return
		}
		h.Log.Error("stream: load detail", "id", detailID, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	root, rel, ok := resolveRoot(h.Roots, detail.Path)
	if !ok {
		h.Log.Warn("stream: path outside configured roots", "path", detail.Path, "remote", r.RemoteAddr)
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	isImage := detail.MediaKind == probe.KindImage
	mode := transferModeHeader(r, isImage)

	if err := validateTransferMode(mode, isImage, r, h.StrictDLNA); err != nil {
		switch {
		case errors.Is(err, errTransferReject) && mode == transferInteractive:
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusNotAcceptable, err.Error())
		}
		return
	}

	if hasTimeSeekOrPlaySpeed(r) && r.Header.Get("Range") == "" {
		writeError(w, http.StatusNotAcceptable, "TimeSeekRange.dlna.org/PlaySpeed.dlna.org require Range")
		return
	}

	rng, hasRange, err := parseRange(r.Header.Get("Range"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed Range header")
		return
	}

	if h.Limiter != nil {
		if err := h.Limiter.TryAcquire(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "server too busy")
			return
		}
		defer h.Limiter.Release()
	}

	mediaRoot := media.NewRoot(root, h.Mode, h.BufferSize)
	resource, err := mediaRoot.Open(rel)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrPathOutsideRoot):
			h.Log.Warn("stream: wide link rejected", "path", detail.Path, "remote", r.RemoteAddr)
			writeError(w, http.StatusForbidden, "forbidden")
		case errors.Is(err, os.ErrNotExist):
			writeError(w, http.StatusNotFound, "file not found")
		default:
			h.Log.Error("stream: open resource", "path", detail.Path, "err", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	defer resource.Close()

	if hasRange {
		_, _, satisfiable, malformed := rng.resolve(resource.Size())
		if malformed {
			writeError(w, http.StatusBadRequest, "range start beyond range end")
			return
		}
		if !satisfiable {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", resource.Size()))
			writeError(w, http.StatusRequestedRangeNotSatisfiable, "range not satisfiable")
			return
		}
	}

	h.writeDLNAHeaders(w, r, detail, mode)

	h.Log.Debug("streaming", "detail_id", detailID, "path", detail.Path, "mode", mode, "range", r.Header.Get("Range"))
	http.ServeContent(w, r, resource.Name(), resource.ModTime(), resource)
}

func (h *StreamHandler) writeDLNAHeaders(w http.ResponseWriter, r *http.Request, detail *catalog.Detail, mode transferMode) {
	if detail.MIME != "" {
		w.Header().Set("Content-Type", detail.MIME)
	}
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("transferMode.dlna.org", string(mode))

	if wantsContentFeatures(r) {
		w.Header().Set("contentFeatures.dlna.org", contentFeatures(detail.DLNAProfile, detail.MediaKind, mode))
	}
	if wantsCaptionInfo(r) && detail.CaptionPath != "" {
		w.Header().Set("CaptionInfo.sec", captionURL(r, detail))
	}
}

// captionURL synthesizes the sibling-subtitle URL advertised via
// CaptionInfo.sec, reusing the request's own host so it works behind
// whatever interface the client actually reached.
func captionURL(r *http.Request, detail *catalog.Detail) string {
	return fmt.Sprintf("http://%s/Captions/%s", r.Host, filepath.Base(detail.CaptionPath))
}

// validateTransferMode implements the transfer-mode negotiation table from
// spec §4.6.1 step 3.
func validateTransferMode(mode transferMode, isImage bool, r *http.Request, strictDLNA bool) error {
	switch mode {
	case transferStreaming:
		if isImage {
			return fmt.Errorf("%w: Streaming not valid for image items", errTransferReject)
		}
	case transferInteractive:
		if r.Header.Get("realTimeInfo.dlna.org") != "" {
			return fmt.Errorf("%w: Interactive incompatible with realTimeInfo.dlna.org", errTransferReject)
		}
		if !isImage && strictDLNA {
			return fmt.Errorf("%w: Interactive not valid for non-image items in strict mode", errTransferReject)
		}
	}
	return nil
}

// parseDetailID extracts the numeric detail id from a `/MediaItems/<id>.<ext>`
// request path, matching the URL scheme internal/didl.MediaURL synthesizes.
func parseDetailID(urlPath string) (int64, bool) {
	name := strings.TrimPrefix(urlPath, "/MediaItems/")
	if name == urlPath {
		return 0, false
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	id, err := strconv.ParseInt(name, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// resolveRoot finds the configured root directory that is an ancestor of
// absPath and returns that root plus absPath's path relative to it, the
// form media.Root.Open requires.
func resolveRoot(roots []string, absPath string) (root, rel string, ok bool) {
	for _, r := range roots {
		relPath, err := filepath.Rel(r, absPath)
		if err != nil {
			continue
		}
		if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
			continue
		}
		return r, relPath, true
	}
	return "", "", false
}
