// Package webui serves the small set of non-DLNA conveniences layered on
// top of the catalog: an M3U playlist export and a plain HTML file listing,
// both reachable from an ordinary web browser rather than a DLNA renderer.
package webui

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"gomediaserver/internal/catalog"
	"gomediaserver/internal/didl"
)

// Handler serves /playlist.m3u and / (the browsable file listing).
type Handler struct {
	Store   *catalog.Store
	IfaceIP string
	Port    int
	Log     *slog.Logger
	index   *template.Template
}

// New builds a Handler. ifaceIP/port are the address media URLs are
// synthesized against, matching internal/didl.MediaURL's scheme.
func New(store *catalog.Store, ifaceIP string, port int, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Store: store, IfaceIP: ifaceIP, Port: port, Log: log, index: template.Must(template.New("index.html").Parse(indexTemplate))}
}

// item is one playable entry: a catalog Object with a Detail row, flattened
// out of the container hierarchy for listing purposes.
type item struct {
	Name string
	URL  string
}

// listItems walks every descendant of the root container and returns the
// ones that reference a Detail row (actual media, not folders).
func (h *Handler) listItems(ctx context.Context) ([]item, error) {
	objects, err := h.Store.FindByGlob(ctx, catalog.DescendantGlob(catalog.RootObjectID),
		catalog.Predicate{SQL: "o.detail_id IS NOT NULL"}, catalog.Order{}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("webui: list items: %w", err)
	}

	items := make([]item, 0, len(objects))
	for _, o := range objects {
		detail, err := h.Store.GetDetail(ctx, *o.DetailID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("webui: load detail %d: %w", *o.DetailID, err)
		}
		items = append(items, item{
			Name: o.Name,
			URL:  didl.MediaURL(h.IfaceIP, h.Port, detail.ID, detail.MIME),
		})
	}
	return items, nil
}

// HandleM3U serves GET /playlist.m3u: every item in the catalog as an M3U
// extended playlist, so a desktop media player can load the whole library
// without going through DLNA at all.
func (h *Handler) HandleM3U(w http.ResponseWriter, r *http.Request) {
	items, err := h.listItems(r.Context())
	if err != nil {
		h.Log.Error("webui: build playlist failed", "err", err)
		http.Error(w, "could not list files", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/x-mpegurl")
	fmt.Fprintln(w, "#EXTM3U")
	for _, it := range items {
		fmt.Fprintf(w, "#EXTINF:-1,%s\n", it.Name)
		fmt.Fprintln(w, it.URL)
	}
}

// HandleIndex serves GET /: a plain HTML page listing every catalog item
// with a direct streaming link.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	items, err := h.listItems(r.Context())
	if err != nil {
		h.Log.Error("webui: build index failed", "err", err)
		http.Error(w, "could not list files", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.index.Execute(w, items); err != nil {
		h.Log.Error("webui: render index failed", "err", err)
	}
}

const indexTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Media Library</title></head>
<body>
<h1>Media Library</h1>
<p><a href="/playlist.m3u">Download as M3U playlist</a></p>
<ul>
{{range .}}<li><a href="{{.URL}}">{{.Name}}</a></li>
{{end}}</ul>
</body>
</html>
`
