package didl

import "fmt"

// MediaURL synthesizes the streaming URL for a Detail row, per the URL
// synthesis rule: http://<iface_ip>:<port>/MediaItems/<detail_id>.<ext>
func MediaURL(ifaceIP string, port int, detailID int64, mime string) string {
	return fmt.Sprintf("http://%s:%d/MediaItems/%d.%s", ifaceIP, port, detailID, extForMIME(mime))
}

var mimeToExt = map[string]string{
	"video/x-msvideo":         "avi",
	"video/mpeg":              "mpg",
	"video/mp4":               "mp4",
	"video/x-ms-wmv":          "wmv",
	"video/x-matroska":        "mkv",
	"video/x-flv":             "flv",
	"video/quicktime":         "mov",
	"video/3gpp":              "3gp",
	"video/vnd.dlna.mpeg-tts": "ts",
	"audio/mpeg":              "mp3",
	"audio/mp4":               "m4a",
	"audio/x-ms-wma":          "wma",
	"audio/x-flac":            "flac",
	"audio/ogg":               "ogg",
	"audio/L16":               "pcm",
	"image/jpeg":              "jpg",
	"image/png":               "png",
	"image/gif":               "gif",
	"image/bmp":               "bmp",
}

// extForMIME maps a stored MIME type to the file extension used in
// synthesized media URLs, falling back to "dat" for anything unrecognized.
func extForMIME(mime string) string {
	if ext, ok := mimeToExt[mime]; ok {
		return ext
	}
	return "dat"
}
