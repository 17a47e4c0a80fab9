package httpcore

import (
	"net/http"
	"strconv"
	"strings"
)

// transferMode is the negotiated transferMode.dlna.org value for a response.
type transferMode string

const (
	transferStreaming   transferMode = "Streaming"
	transferInteractive transferMode = "Interactive"
	transferBackground  transferMode = "Background"
)

// byteRange is a parsed single-range `Range: bytes=start-end` request, with
// end left at -1 when the client omitted it (meaning "to the end").
type byteRange struct {
	start, end int64
}

// parseRange parses a single-range byte Range header. Multi-range requests
// aren't supported (neither is any DLNA renderer this server targets), so a
// header with a comma is rejected the same as one that fails to parse.
func parseRange(header string) (byteRange, bool, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return byteRange{}, false, nil
	}
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return byteRange{}, false, errBadRange
	}
	spec := header[len(prefix):]
	if strings.Contains(spec, ",") {
		return byteRange{}, false, errBadRange
	}

	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return byteRange{}, false, errBadRange
	}

	r := byteRange{end: -1}
	if parts[0] != "" {
		v, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || v < 0 {
			return byteRange{}, false, errBadRange
		}
		r.start = v
	}
	if parts[1] != "" {
		v, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || v < 0 {
			return byteRange{}, false, errBadRange
		}
		r.end = v
	}
	return r, true, nil
}

// resolve clamps r against size, applying the "end missing or equal to size
// means end of file" rule. It reports one bool for the malformed-request
// case (start beyond end) and a separate bool for the satisfiability case
// (end at or past size after the clamp), which the caller maps to 416
// rather than 400. The malformed check runs first, matching the spec's
// ordering: start > end faults 400 even when end is also out of range.
func (r byteRange) resolve(size int64) (start, end int64, satisfiable bool, malformed bool) {
	start = r.start
	end = r.end
	if end < 0 || end == size {
		end = size - 1
	}
	if start < 0 || start > end {
		return 0, 0, false, true
	}
	if end >= size {
		return 0, 0, false, false
	}
	return start, end, true, false
}

// transferModeHeader parses transferMode.dlna.org, defaulting by media kind
// per spec §4.6.1 step 4: Interactive for images, Streaming otherwise.
func transferModeHeader(r *http.Request, isImage bool) transferMode {
	v := strings.TrimSpace(r.Header.Get("transferMode.dlna.org"))
	switch v {
	case string(transferStreaming):
		return transferStreaming
	case string(transferInteractive):
		return transferInteractive
	case string(transferBackground):
		return transferBackground
	default:
		if isImage {
			return transferInteractive
		}
		return transferStreaming
	}
}

// wantsContentFeatures reports whether the client asked for
// contentFeatures.dlna.org via getcontentFeatures.dlna.org: 1. Per spec, any
// value other than the literal "1" is treated as absent.
func wantsContentFeatures(r *http.Request) bool {
	return strings.TrimSpace(r.Header.Get("getcontentFeatures.dlna.org")) == "1"
}

// wantsCaptionInfo reports whether the client set getCaptionInfo.sec.
func wantsCaptionInfo(r *http.Request) bool {
	return strings.TrimSpace(r.Header.Get("getCaptionInfo.sec")) != ""
}

// hasTimeSeekOrPlaySpeed reports whether either header that must be
// accompanied by a Range request is present.
func hasTimeSeekOrPlaySpeed(r *http.Request) bool {
	return r.Header.Get("TimeSeekRange.dlna.org") != "" || r.Header.Get("PlaySpeed.dlna.org") != ""
}

// isStrictDLNAClient reports the `uctt.upnp.org:*` marker header that, per
// spec, enables strict-DLNA response mode for the request.
func isStrictDLNAClient(r *http.Request) bool {
	for name := range r.Header {
		if strings.HasPrefix(strings.ToLower(name), "uctt.upnp.org") {
			return true
		}
	}
	return false
}
