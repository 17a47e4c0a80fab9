package scanner

import (
	"os"
	"strings"
)

// captionExtensions lists sidecar subtitle formats Scanner pairs with a
// video file sharing the same base name.
var captionExtensions = []string{".srt", ".smi"}

// findCaption reports the sibling caption file path for a video, if any
// exists on disk.
func findCaption(videoPath string) (string, bool) {
	ext := extOf(videoPath)
	base := strings.TrimSuffix(videoPath, ext)

	for _, capExt := range captionExtensions {
		candidate := base + capExt
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

func extOf(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return ""
	}
	return path[idx:]
}
