package probe

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Probe is the stateful entry point the scanner calls per media candidate.
// It owns the container Prober and the logger; it is safe for concurrent
// use from multiple scanner workers since it holds no mutable state.
type Probe struct {
	prober Prober
	log    *slog.Logger
}

func New(prober Prober, log *slog.Logger) *Probe {
	if log == nil {
		log = slog.Default()
	}
	return &Probe{prober: prober, log: log}
}

// Run implements spec.md §4.1 end to end: open the container, enumerate
// streams, classify audio, run the DLNA cascade, detect TS framing, fall
// back to MIME sniffing on failure, and apply any .nfo sidecar override.
// The returned Detail always has Path/Size/ModifiedAt/MediaKind set, even
// when probing fails outright — callers store it rather than skip it, per
// step 8's "unrecognized but present" semantics.
func (p *Probe) Run(path string, kind MediaKind) (*Detail, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindNFO:
		d, err := probeNFO(path)
		if err != nil {
			return nil, err
		}
		fillStat(d, fi)
		return d, nil
	case KindImage:
		d, err := probeImage(path, fi.Size())
		if err != nil {
			return nil, err
		}
		fillStat(d, fi)
		applyNFOOverride(d)
		return d, nil
	case KindVideo, KindAudio:
		return p.probeAV(path, fi, kind)
	default:
		return nil, ErrUnsupportedKind
	}
}

func (p *Probe) probeAV(path string, fi os.FileInfo, kind MediaKind) (*Detail, error) {
	d := &Detail{
		Path:      path,
		Title:     titleFromFilename(path),
		MediaKind: kind,
	}
	fillStat(d, fi)

	ci, err := p.prober.Probe(path)
	if err != nil {
		p.log.Warn("container probe failed, falling back to mime sniff",
			"path", path, "err", err)
		d.MediaKind = KindNone
		if mime, serr := sniffMIME(path); serr == nil {
			d.MIME = mime
		} else {
			d.MIME = "application/octet-stream"
		}
		applyNFOOverride(d)
		return d, nil
	}

	d.DurationMs = ci.DurationMs
	d.BitrateBps = ci.BitrateBps

	if kind == KindVideo {
		if ci.Video == nil {
			p.log.Warn("no video stream in candidate", "path", path, "err", ErrNoVideoStream)
			d.MediaKind = KindNone
			d.MIME = genericMIME(ci.FormatName)
			applyNFOOverride(d)
			return d, nil
		}
		d.Resolution = resolutionString(ci.Video.Width, ci.Video.Height)
	}

	audio := classifyAudioProfile(ci.Audio)
	if ci.Audio != nil {
		d.Channels = ci.Audio.Channels
		d.SampleRateHz = ci.Audio.SampleRate
	}

	if kind == KindAudio {
		d.MIME = audioMIME(ci.FormatName, audio)
		applyNFOOverride(d)
		return d, nil
	}

	var tsHeader []byte
	if isTSContainer(ci.FormatName) {
		tsHeader = readHeader(path, 576)
	}

	in := cascadeInput{
		Container:    normalizeContainer(ci.FormatName),
		VideoCodec:   ci.Video.CodecName,
		VideoProfile: ci.Video.Profile,
		VideoLevel:   ci.Video.Level,
		Width:        ci.Video.Width,
		Height:       ci.Video.Height,
		FPS:          ci.Video.FrameRate,
		Interlaced:   ci.Video.Interlaced,
		BitrateBps:   ci.BitrateBps,
		Audio:        audio,
		TS:           detectTSFraming(tsHeader),
	}

	res := runCascade(in)
	d.DLNAProfile = res.Profile
	d.MIME = res.MIME

	applyNFOOverride(d)
	return d, nil
}

func fillStat(d *Detail, fi os.FileInfo) {
	d.Size = fi.Size()
	d.ModifiedAt = fi.ModTime()
}

func titleFromFilename(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func resolutionString(w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	return itoa(w) + "x" + itoa(h)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func normalizeContainer(formatName string) string {
	names := strings.Split(formatName, ",")
	if len(names) == 0 {
		return formatName
	}
	first := strings.TrimSpace(names[0])
	switch first {
	case "mov", "mp4", "m4a", "3gp", "3g2", "mj2":
		if strings.Contains(formatName, "3gp") {
			return "3gp"
		}
		return "mp4"
	case "matroska", "webm":
		return "mkv"
	case "mpegts":
		return "mpegts"
	case "mpeg", "mpegvideo":
		return "mpeg"
	case "asf":
		return "asf"
	case "avi":
		return "avi"
	case "flv":
		return "flv"
	default:
		return first
	}
}

func isTSContainer(formatName string) bool {
	return strings.Contains(formatName, "mpegts")
}

func audioMIME(formatName string, profile AudioProfile) string {
	switch profile {
	case AudioMP3:
		return "audio/mpeg"
	case AudioAAC, AudioAACMult5:
		return "audio/mp4"
	case AudioPCM:
		return "audio/L16"
	case AudioWMABase, AudioWMAFull, AudioWMAPro:
		return "audio/x-ms-wma"
	default:
		if strings.Contains(formatName, "flac") {
			return "audio/x-flac"
		}
		if strings.Contains(formatName, "ogg") {
			return "audio/ogg"
		}
		return "audio/mpeg"
	}
}

func readHeader(path string, n int) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	buf := make([]byte, n)
	read, _ := io.ReadFull(f, buf)
	return buf[:read]
}
