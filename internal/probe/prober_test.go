package probe

import "testing"

func TestParseFrameRate(t *testing.T) {
	cases := map[string]float64{
		"30000/1001": 29.97002997002997,
		"25/1":       25,
		"":           0,
		"bogus":      0,
		"1/0":        0,
	}
	for in, want := range cases {
		if got := parseFrameRate(in); got != want {
			t.Errorf("parseFrameRate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNormalizeProfile(t *testing.T) {
	cases := map[string]string{
		"Baseline":             "baseline",
		"Constrained Baseline": "baseline",
		"Main":                 "main",
		"High":                 "high",
		"High 10":              "high",
		"Weird":                "",
	}
	for in, want := range cases {
		if got := normalizeProfile(in); got != want {
			t.Errorf("normalizeProfile(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsInterlaced(t *testing.T) {
	for _, v := range []string{"tt", "bb", "tb", "bt"} {
		if !isInterlaced(v) {
			t.Errorf("isInterlaced(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"progressive", ""} {
		if isInterlaced(v) {
			t.Errorf("isInterlaced(%q) = true, want false", v)
		}
	}
}

func TestFirstString(t *testing.T) {
	m := map[string]interface{}{
		"str":   "hello",
		"float": 42.0,
	}
	if got := firstString(m, "str"); got != "hello" {
		t.Errorf("firstString(str) = %q, want hello", got)
	}
	if got := firstString(m, "float"); got != "42" {
		t.Errorf("firstString(float) = %q, want 42", got)
	}
	if got := firstString(m, "missing"); got != "" {
		t.Errorf("firstString(missing) = %q, want empty", got)
	}
}

func TestIsAttachedPicStream(t *testing.T) {
	withPic := map[string]interface{}{
		"disposition": map[string]interface{}{"attached_pic": 1.0},
	}
	without := map[string]interface{}{
		"disposition": map[string]interface{}{"attached_pic": 0.0},
	}
	if !isAttachedPicStream(withPic) {
		t.Error("expected attached_pic stream to be detected")
	}
	if isAttachedPicStream(without) {
		t.Error("expected non-attached-pic stream not to be flagged")
	}
}
