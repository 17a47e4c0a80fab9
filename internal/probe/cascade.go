package probe

import "strings"

// cascadeInput is the full set of signals the DLNA profile cascade in
// spec.md §4.1 step 4 dispatches on.
type cascadeInput struct {
	Container     string
	VideoCodec    string
	VideoProfile  string // normalized: "baseline", "main", "high"
	VideoLevel    int
	Width, Height int
	FPS           float64
	Interlaced    bool
	BitrateBps    int64
	Audio         AudioProfile
	TS            TSFraming
}

type cascadeResult struct {
	Profile string // DLNA.ORG_PN value; empty means "do not advertise"
	MIME    string
}

type cascadeRule struct {
	name    string
	match   func(in cascadeInput) bool
	resolve func(in cascadeInput) cascadeResult
}

// runCascade walks the decision table top to bottom; first match wins. This
// is the Go-idiomatic replacement for minidlna's dlna_pn switch ladder, per
// spec.md §9's redesign note.
func runCascade(in cascadeInput) cascadeResult {
	for _, rule := range cascadeTable {
		if rule.match(in) {
			return rule.resolve(in)
		}
	}
	return cascadeResult{MIME: genericMIME(in.Container)}
}

func isSD(w, h int) bool  { return w > 0 && h > 0 && !isHD(w, h) }
func isHD(w, h int) bool  { return w >= 1280 && h >= 720 }
func isCIF(w, h int) bool { return w <= 352 && h <= 288 }

var cascadeTable = []cascadeRule{
	{
		name: "mpeg-ps-pal",
		match: func(in cascadeInput) bool {
			return in.Container == "mpeg" && in.VideoCodec == "mpeg2video" && (in.Height == 576 || in.Height == 288)
		},
		resolve: func(in cascadeInput) cascadeResult {
			return suffixed("MPEG_PS_PAL", in.Audio, "video/mpeg")
		},
	},
	{
		name: "mpeg-ps-ntsc",
		match: func(in cascadeInput) bool {
			return in.Container == "mpeg" && in.VideoCodec == "mpeg2video"
		},
		resolve: func(in cascadeInput) cascadeResult {
			return suffixed("MPEG_PS_NTSC", in.Audio, "video/mpeg")
		},
	},
	{
		name: "ts-mpeg2-hd",
		match: func(in cascadeInput) bool {
			return in.Container == "mpegts" && in.VideoCodec == "mpeg2video" && isHD(in.Width, in.Height)
		},
		resolve: func(in cascadeInput) cascadeResult {
			mime, suf := tsMIME(in.TS)
			return suffixed("MPEG_TS_HD_NA"+suf, in.Audio, mime)
		},
	},
	{
		name: "ts-mpeg2-sd",
		match: func(in cascadeInput) bool {
			return in.Container == "mpegts" && in.VideoCodec == "mpeg2video"
		},
		resolve: func(in cascadeInput) cascadeResult {
			mime, suf := tsMIME(in.TS)
			region := "NA"
			if in.Height == 576 {
				region = "EU"
			}
			return suffixed("MPEG_TS_SD_"+region+suf, in.Audio, mime)
		},
	},
	{
		name: "ts-avc-hd-interlaced-ac3",
		match: func(in cascadeInput) bool {
			return in.Container == "mpegts" && in.VideoCodec == "h264" && isHD(in.Width, in.Height) &&
				in.Interlaced && in.Audio == AudioAC3 &&
				(in.VideoProfile == "main" || in.VideoProfile == "high")
		},
		resolve: func(in cascadeInput) cascadeResult {
			mime, suf := tsMIME(in.TS)
			rate := "60"
			if in.FPS > 0 && in.FPS < 27 {
				rate = "50"
			}
			return cascadeResult{Profile: "AVC_TS_HD_" + rate + "_AC3" + suf, MIME: mime}
		},
	},
	{
		name: "ts-avc-baseline-cif",
		match: func(in cascadeInput) bool {
			return in.Container == "mpegts" && in.VideoCodec == "h264" && in.VideoProfile == "baseline" && isCIF(in.Width, in.Height)
		},
		resolve: func(in cascadeInput) cascadeResult {
			mime, suf := tsMIME(in.TS)
			rate := "30"
			if in.FPS > 0 && in.FPS < 27 {
				rate = "15"
			}
			return suffixed("AVC_TS_BL_CIF"+rate+suf, in.Audio, mime)
		},
	},
	{
		name: "ts-avc-main-sd",
		match: func(in cascadeInput) bool {
			return in.Container == "mpegts" && in.VideoCodec == "h264" && in.VideoProfile == "main" &&
				isSD(in.Width, in.Height) && in.BitrateBps <= 10_000_000
		},
		resolve: func(in cascadeInput) cascadeResult {
			mime, suf := tsMIME(in.TS)
			return suffixed("AVC_TS_MP_SD"+suf, in.Audio, mime)
		},
	},
	{
		name: "ts-avc-high-hd-ac3",
		match: func(in cascadeInput) bool {
			return in.Container == "mpegts" && in.VideoCodec == "h264" && in.VideoProfile == "high" &&
				isHD(in.Width, in.Height) && in.BitrateBps <= 30_000_000 && in.Audio == AudioAC3
		},
		resolve: func(in cascadeInput) cascadeResult {
			mime, _ := tsMIME(in.TS)
			return cascadeResult{Profile: "AVC_TS_HP_HD_AC3", MIME: mime}
		},
	},
	{
		name: "mp4-avc",
		match: func(in cascadeInput) bool {
			return (in.Container == "mp4" || in.Container == "3gp") && in.VideoCodec == "h264"
		},
		resolve: func(in cascadeInput) cascadeResult {
			tier := map[string]string{"baseline": "BL", "main": "MP", "high": "HP"}[in.VideoProfile]
			if tier == "" {
				tier = "BL"
			}
			size := "SD"
			if isHD(in.Width, in.Height) {
				size = "HD"
			}
			return suffixed("AVC_MP4_"+tier+"_"+size, in.Audio, "video/mp4")
		},
	},
	{
		name: "mp4-mpeg4-part2",
		match: func(in cascadeInput) bool {
			return (in.Container == "mp4" || in.Container == "3gp") && in.VideoCodec == "mpeg4"
		},
		resolve: func(in cascadeInput) cascadeResult {
			mime := "video/mp4"
			if in.Container == "3gp" {
				mime = "video/3gpp"
			}
			return suffixed("MPEG4_P2_3GPP_SP", in.Audio, mime)
		},
	},
	{
		name: "asf-wmv",
		match: func(in cascadeInput) bool {
			return in.Container == "asf" && (in.VideoCodec == "wmv3" || in.VideoCodec == "vc1")
		},
		resolve: func(in cascadeInput) cascadeResult {
			tier := "MED"
			switch {
			case in.Width <= 176 && in.Height <= 144:
				tier = "SPLL"
			case in.Width <= 352 && in.Height <= 288:
				tier = "SPML"
			case isHD(in.Width, in.Height):
				tier = "HIGH"
			}
			return cascadeResult{Profile: "WMV_" + tier + "_BASE", MIME: "video/x-ms-wmv"}
		},
	},
}

// suffixed appends the audio-profile suffix to a video PN root, per
// spec.md §4.1 step 4.
func suffixed(root string, audio AudioProfile, mime string) cascadeResult {
	suf := audioSuffix(audio)
	if suf == "" {
		return cascadeResult{Profile: root, MIME: mime}
	}
	return cascadeResult{Profile: root + "_" + suf, MIME: mime}
}

// genericMIME implements spec.md §4.1 step 6: when no DLNA profile matches,
// still assign a MIME by container.
func genericMIME(container string) string {
	switch strings.ToLower(container) {
	case "avi":
		return "video/x-msvideo"
	case "mov":
		return "video/quicktime"
	case "mp4":
		return "video/mp4"
	case "matroska", "mkv":
		return "video/x-matroska"
	case "flv":
		return "video/x-flv"
	case "mpeg", "mpegts", "mpegps":
		return "video/mpeg"
	case "asf":
		return "video/x-ms-wmv"
	default:
		return "application/octet-stream"
	}
}
