package probe

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// sniffMIME implements spec.md §4.1 step 6's fallback: when container
// probing fails outright (corrupt file, unsupported format) but the file is
// still a readable regular file, sniff its MIME type from content rather
// than leaving it blank. Images and anything the container prober can't
// touch go through this path exclusively.
func sniffMIME(path string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", err
	}
	return mt.String(), nil
}

// imageKind reports whether an extension names a still image, using the
// same extension table the scanner consults for media-kind classification.
func imageKind(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ImageExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// probeImage builds a Detail for a still image using mimetype sniffing only;
// images never go through the container/codec cascade.
func probeImage(path string, size int64) (*Detail, error) {
	mime, err := sniffMIME(path)
	if err != nil {
		mime = "application/octet-stream"
	}
	return &Detail{
		Path:      path,
		Size:      size,
		MIME:      mime,
		MediaKind: KindImage,
	}, nil
}
