package probe

// classifyAudioProfile implements the audio-profile classification rules
// from spec.md §4.1 step 3.
func classifyAudioProfile(a *StreamInfo) AudioProfile {
	if a == nil {
		return AudioUnknown
	}

	switch a.CodecName {
	case "mp3":
		return AudioMP3
	case "ac3", "eac3":
		return AudioAC3
	case "mp2":
		return AudioMP2
	case "pcm_s16le", "pcm_s16be", "pcm_u8":
		return AudioPCM
	case "amr_nb", "amr_wb":
		return AudioAMR
	case "wmav1", "wmav2":
		return classifyWMA(a.BitrateBps)
	case "wmapro":
		return AudioWMAPro
	case "aac":
		return classifyAAC(a)
	default:
		return AudioUnknown
	}
}

func classifyWMA(bitrateBps int64) AudioProfile {
	switch {
	case bitrateBps <= 193000:
		return AudioWMABase
	case bitrateBps <= 385000:
		return AudioWMAFull
	default:
		return AudioUnknown
	}
}

// aacObjectType extracts the top 5 bits of the first extradata byte, which
// encode the MPEG-4 audio object type (2 = LC, 17 = LC_ER).
func aacObjectType(extradata []byte) int {
	if len(extradata) == 0 {
		return 0
	}
	return int(extradata[0] >> 3)
}

const (
	aacObjectLC   = 2
	aacObjectLCER = 17
)

func classifyAAC(a *StreamInfo) AudioProfile {
	objType := aacObjectType(a.ExtraData)
	if objType != aacObjectLC && objType != aacObjectLCER {
		return AudioUnknown
	}
	if a.SampleRate < 8000 || a.SampleRate > 48000 {
		return AudioUnknown
	}

	switch {
	case a.Channels <= 2 && a.BitrateBps <= 576000:
		return AudioAAC
	case a.Channels <= 6 && a.BitrateBps <= 1440000:
		return AudioAACMult5
	default:
		return AudioUnknown
	}
}

// audioSuffix maps an audio profile to the suffix appended to AVC/MP4/TS
// DLNA profile strings, per spec.md §4.1 step 4.
func audioSuffix(p AudioProfile) string {
	switch p {
	case AudioMP3:
		return "MPEG1_L3"
	case AudioAC3:
		return "AC3"
	case AudioAAC, AudioAACMult5:
		return "AAC_MULT5"
	default:
		return ""
	}
}
