package probe

import (
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// nfoSidecar is the subset of Kodi-style .nfo XML fields spec.md §4.1 step 7
// allows to override probed metadata. Unknown elements are ignored.
type nfoSidecar struct {
	XMLName xml.Name `xml:"-"`
	Title   string   `xml:"title"`
	Plot    string   `xml:"plot"`
	Genre   string   `xml:"genre"`
	Premiered string `xml:"premiered"`
	Year    string   `xml:"year"`
	Actor   []struct {
		Name string `xml:"name"`
	} `xml:"actor"`
}

// sidecarPath returns the .nfo path paired with a media file: same base name,
// .nfo extension, same directory.
func sidecarPath(mediaPath string) string {
	ext := filepath.Ext(mediaPath)
	return strings.TrimSuffix(mediaPath, ext) + ".nfo"
}

// applyNFOOverride implements spec.md §4.1 step 7: if a sidecar .nfo file
// exists next to the media file, parse it and let its fields override the
// probed title/genre/date/comment. A missing or malformed sidecar is not an
// error — Probe falls back silently to the probed values.
func applyNFOOverride(d *Detail) {
	path := sidecarPath(d.Path)
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, 1<<20))
	if err != nil {
		return
	}

	var side nfoSidecar
	if err := xml.Unmarshal(data, &side); err != nil {
		return
	}

	if side.Title != "" {
		d.Title = side.Title
	}
	if side.Genre != "" {
		d.Genre = side.Genre
	}
	if side.Plot != "" {
		d.Comment = side.Plot
	}
	switch {
	case side.Premiered != "":
		d.Date = side.Premiered
	case side.Year != "":
		d.Date = side.Year
	}
	if len(side.Actor) > 0 {
		names := make([]string, 0, len(side.Actor))
		for _, a := range side.Actor {
			if a.Name != "" {
				names = append(names, a.Name)
			}
		}
		if len(names) > 0 {
			d.Creator = strings.Join(names, ", ")
		}
	}
}

// probeNFO builds a Detail directly from a standalone .nfo file, for the case
// where the NFO itself is the scanned object (MediaKind == KindNFO).
func probeNFO(path string) (*Detail, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var side nfoSidecar
	if err := xml.Unmarshal(data, &side); err != nil {
		return &Detail{
			Path:      path,
			MIME:      "text/xml",
			MediaKind: KindNFO,
		}, nil
	}

	d := &Detail{
		Path:      path,
		Title:     side.Title,
		Genre:     side.Genre,
		Comment:   side.Plot,
		MIME:      "text/xml",
		MediaKind: KindNFO,
	}
	if side.Premiered != "" {
		d.Date = side.Premiered
	} else {
		d.Date = side.Year
	}
	return d, nil
}
