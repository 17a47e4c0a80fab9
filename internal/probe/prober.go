package probe

import (
	"fmt"
	"strconv"

	"github.com/anacrolix/ffprobe"
)

// Prober extracts container/codec metadata from a media file. Swappable so
// tests can exercise the cascade without shelling out to ffprobe.
type Prober interface {
	Probe(path string) (*ContainerInfo, error)
}

// FFProber runs ffprobe via anacrolix/ffprobe and translates its generic
// map[string]interface{} output into ContainerInfo, the shape the cascade in
// cascade.go dispatches on.
type FFProber struct{}

func NewFFProber() FFProber { return FFProber{} }

func (FFProber) Probe(path string) (*ContainerInfo, error) {
	info, err := ffprobe.Run(path)
	if err != nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, err)
	}
	if info == nil {
		return nil, fmt.Errorf("ffprobe %q: %w", path, ErrProbeFailed)
	}

	ci := &ContainerInfo{
		FormatName: firstString(info.Format, "format_name"),
		DurationMs: durationMs(firstString(info.Format, "duration")),
		BitrateBps: parseInt64(firstString(info.Format, "bit_rate")),
	}

	for _, s := range info.Streams {
		switch firstString(s, "codec_type") {
		case "video":
			if ci.Video == nil && !isAttachedPicStream(s) {
				ci.Video = videoStreamFrom(s)
			}
		case "audio":
			if ci.Audio == nil {
				ci.Audio = audioStreamFrom(s)
			}
		}
	}

	return ci, nil
}

func isAttachedPicStream(s map[string]interface{}) bool {
	disp, ok := s["disposition"].(map[string]interface{})
	if !ok {
		return false
	}
	v, _ := disp["attached_pic"].(float64)
	return v == 1
}

func videoStreamFrom(s map[string]interface{}) *StreamInfo {
	return &StreamInfo{
		CodecName:  firstString(s, "codec_name"),
		Profile:    normalizeProfile(firstString(s, "profile")),
		Level:      int(parseInt64(firstString(s, "level"))),
		Width:      int(parseInt64(firstString(s, "width"))),
		Height:     int(parseInt64(firstString(s, "height"))),
		FrameRate:  parseFrameRate(firstString(s, "r_frame_rate")),
		Interlaced: isInterlaced(firstString(s, "field_order")),
		BitrateBps: parseInt64(firstString(s, "bit_rate")),
		ExtraData:  extraDataBytes(s),
	}
}

func audioStreamFrom(s map[string]interface{}) *StreamInfo {
	return &StreamInfo{
		CodecName:  firstString(s, "codec_name"),
		Channels:   int(parseInt64(firstString(s, "channels"))),
		SampleRate: int(parseInt64(firstString(s, "sample_rate"))),
		BitrateBps: parseInt64(firstString(s, "bit_rate")),
		ExtraData:  extraDataBytes(s),
	}
}

func firstString(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func parseInt64(s string) int64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(v)
}

func durationMs(s string) int64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(v * 1000)
}

func parseFrameRate(s string) float64 {
	var num, den int64
	if _, err := fmt.Sscanf(s, "%d/%d", &num, &den); err != nil || den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func isInterlaced(fieldOrder string) bool {
	switch fieldOrder {
	case "tt", "bb", "tb", "bt":
		return true
	default:
		return false
	}
}

func normalizeProfile(p string) string {
	switch p {
	case "Baseline", "Constrained Baseline":
		return "baseline"
	case "Main":
		return "main"
	case "High", "High 10", "High 4:2:2", "High 4:4:4 Predictive":
		return "high"
	default:
		return ""
	}
}

// extraDataBytes pulls codec extradata out when ffprobe reports it as a hex
// string under "extradata" (present when -show_data is implied by the
// package's probe args). Absent in most builds; callers treat nil safely.
func extraDataBytes(s map[string]interface{}) []byte {
	raw, ok := s["extradata"].(string)
	if !ok || raw == "" {
		return nil
	}
	out := make([]byte, 0, len(raw)/2)
	for i := 0; i+1 < len(raw); i += 2 {
		var b byte
		if _, err := fmt.Sscanf(raw[i:i+2], "%02x", &b); err != nil {
			return nil
		}
		out = append(out, b)
	}
	return out
}
