package probe

import "time"

// AudioProfile is the DLNA audio-profile classification from spec.md §4.1 step 3.
type AudioProfile string

const (
	AudioUnknown  AudioProfile = "UNKNOWN"
	AudioMP3      AudioProfile = "MP3"
	AudioAC3      AudioProfile = "AC3"
	AudioWMABase  AudioProfile = "WMA_BASE"
	AudioWMAFull  AudioProfile = "WMA_FULL"
	AudioWMAPro   AudioProfile = "WMA_PRO"
	AudioMP2      AudioProfile = "MP2"
	AudioPCM      AudioProfile = "PCM"
	AudioAAC      AudioProfile = "AAC"
	AudioAACMult5 AudioProfile = "AAC_MULT5"
	AudioAMR      AudioProfile = "AMR"
)

// TSFraming describes the MPEG-TS packet framing detected per spec.md §4.1 step 5.
type TSFraming int

const (
	TSFramingNone TSFraming = iota
	TSFraming188
	TSFraming192Empty
	TSFraming192Timestamp
)

// StreamInfo describes one elementary stream as reported by the container prober.
type StreamInfo struct {
	CodecName   string // e.g. "h264", "mpeg2video", "aac", "ac3", "mp3", "wmav2"
	Profile     string // normalized: "baseline", "main", "high", or "" when unrecognized
	Level       int    // e.g. 30, 31, 41 (x10 notation, matches ffprobe)
	Width       int
	Height      int
	FrameRate   float64
	Interlaced  bool
	Channels    int
	SampleRate  int
	BitrateBps  int64
	ExtraData   []byte // codec extradata, used for AAC object-type byte
	IsThumbnail bool
}

// ContainerInfo is what a Prober extracts from a media file before the DLNA
// cascade runs.
type ContainerInfo struct {
	FormatName string // e.g. "mpeg", "mpegts", "mp4", "asf", "avi", "matroska"
	DurationMs int64
	BitrateBps int64
	Video      *StreamInfo
	Audio      *StreamInfo
	TSHeader   []byte // unused: FFProber leaves it nil; Probe reads the 576-byte header itself for framing detection
}

// Detail mirrors the Detail record in spec.md §3. It is produced by Probe and
// stored verbatim (never mutated after insert) by internal/catalog.
type Detail struct {
	Path          string
	Size          int64
	ModifiedAt    time.Time
	Title         string
	Creator       string
	Artist        string
	Album         string
	Genre         string
	Comment       string
	Date          string
	DurationMs    int64
	Channels      int
	SampleRateHz  int
	BitrateBps    int64
	Resolution    string
	MIME          string
	DLNAProfile   string // empty means "do not advertise"
	MediaKind     MediaKind
	CaptionPath   string // sibling .srt/.smi subtitle file, if paired by the scanner
}
