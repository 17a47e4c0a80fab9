package probe

import "testing"

func TestClassifyAudioProfile(t *testing.T) {
	cases := []struct {
		name string
		in   *StreamInfo
		want AudioProfile
	}{
		{"nil stream", nil, AudioUnknown},
		{"mp3", &StreamInfo{CodecName: "mp3"}, AudioMP3},
		{"ac3", &StreamInfo{CodecName: "ac3"}, AudioAC3},
		{"eac3", &StreamInfo{CodecName: "eac3"}, AudioAC3},
		{"pcm", &StreamInfo{CodecName: "pcm_s16le"}, AudioPCM},
		{"wma base", &StreamInfo{CodecName: "wmav2", BitrateBps: 128000}, AudioWMABase},
		{"wma full", &StreamInfo{CodecName: "wmav2", BitrateBps: 300000}, AudioWMAFull},
		{"wma too hot", &StreamInfo{CodecName: "wmav2", BitrateBps: 500000}, AudioUnknown},
		{"wmapro", &StreamInfo{CodecName: "wmapro"}, AudioWMAPro},
		{
			"aac stereo lc",
			&StreamInfo{CodecName: "aac", SampleRate: 44100, Channels: 2, BitrateBps: 256000, ExtraData: []byte{0x12, 0x10}},
			AudioAAC,
		},
		{
			"aac 5.1 mult5",
			&StreamInfo{CodecName: "aac", SampleRate: 48000, Channels: 6, BitrateBps: 1000000, ExtraData: []byte{0x12, 0x10}},
			AudioAACMult5,
		},
		{
			"aac he-aac unsupported object type",
			&StreamInfo{CodecName: "aac", SampleRate: 44100, Channels: 2, BitrateBps: 128000, ExtraData: []byte{0x28}},
			AudioUnknown,
		},
		{"unknown codec", &StreamInfo{CodecName: "opus"}, AudioUnknown},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := classifyAudioProfile(c.in)
			if got != c.want {
				t.Errorf("classifyAudioProfile(%+v) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestAudioSuffix(t *testing.T) {
	cases := map[AudioProfile]string{
		AudioMP3:      "MPEG1_L3",
		AudioAC3:      "AC3",
		AudioAAC:      "AAC_MULT5",
		AudioAACMult5: "AAC_MULT5",
		AudioPCM:      "",
		AudioUnknown:  "",
	}
	for profile, want := range cases {
		if got := audioSuffix(profile); got != want {
			t.Errorf("audioSuffix(%v) = %q, want %q", profile, got, want)
		}
	}
}

func TestAACObjectType(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want int
	}{
		{"empty", nil, 0},
		{"lc", []byte{0x12, 0x10}, aacObjectLC},
		{"lc-er", []byte{byte(aacObjectLCER << 3)}, aacObjectLCER},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := aacObjectType(c.data); got != c.want {
				t.Errorf("aacObjectType(%x) = %d, want %d", c.data, got, c.want)
			}
		})
	}
}
